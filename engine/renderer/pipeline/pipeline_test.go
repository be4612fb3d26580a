package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func program(t *testing.T, version int) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(shader.ProgramTubeFloor, "fn f() {}", version)
	require.NoError(t, err)
	return s
}

func TestMeshDescriptor(t *testing.T) {
	p := NewPipeline("tube", PipelineTypeMesh, program(t, 1),
		WithSampleCount(4),
		WithBlendEnabled(true),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithColorFormat(wgpu.TextureFormatRGBA8UnormSrgb),
	)

	desc := p.Descriptor(nil, nil)
	require.Len(t, desc.Vertex.Buffers, 1)
	assert.Equal(t, uint64(32), desc.Vertex.Buffers[0].ArrayStride)
	assert.Len(t, desc.Vertex.Buffers[0].Attributes, 3)
	assert.Equal(t, shader.VertexEntryPoint, desc.Vertex.EntryPoint)
	assert.Equal(t, shader.FragmentEntryPoint, desc.Fragment.EntryPoint)

	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, desc.Fragment.Targets[0].Format)
	assert.NotNil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, uint32(4), desc.Multisample.Count)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)

	require.NotNil(t, desc.DepthStencil)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
}

func TestPostDescriptorHasNoDepthOrBuffers(t *testing.T) {
	p := NewPipeline("bright", PipelineTypePost, program(t, 1), WithSampleCount(0))

	desc := p.Descriptor(nil, nil)
	assert.Empty(t, desc.Vertex.Buffers)
	assert.Nil(t, desc.DepthStencil)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.False(t, p.DepthWriteEnabled())
}

func TestStale(t *testing.T) {
	p := NewPipeline("tube", PipelineTypeMesh, program(t, 1))
	assert.False(t, p.Stale(program(t, 1)))
	assert.True(t, p.Stale(program(t, 2)))
	assert.False(t, p.Stale(nil))
}

func TestKey(t *testing.T) {
	a := Key(shader.ProgramRobot, wgpu.TextureFormatBGRA8UnormSrgb, 4, "transparent")
	b := Key(shader.ProgramRobot, wgpu.TextureFormatBGRA8UnormSrgb, 1, "transparent")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, shader.ProgramRobot)
}
