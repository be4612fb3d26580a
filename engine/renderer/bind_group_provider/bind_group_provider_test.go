package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewProviderIsEmpty(t *testing.T) {
	p := NewBindGroupProvider("tube", WithIndexCount(6))
	assert.Equal(t, "tube", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Equal(t, 6, p.IndexCount())
	assert.False(t, p.Ready())
	p.Release()
	assert.Zero(t, p.IndexCount())
}

func TestPostLayoutBindings(t *testing.T) {
	desc := PostLayout()
	assert.Len(t, desc.Entries, 4)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, desc.Entries[PostBindingSource].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, desc.Entries[PostBindingSampler].Sampler.Type)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[PostBindingParams].Buffer.Type)
	assert.Equal(t, uint64(PostParamsSize), desc.Entries[PostBindingParams].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, desc.Entries[PostBindingAux].Texture.SampleType)
}

func TestMeshLayouts(t *testing.T) {
	assert.Equal(t, uint64(CameraUniformSize), CameraLayout().Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(ObjectUniformSize), ObjectLayout().Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(32), UniformMaterialLayout(32).Entries[0].Buffer.MinBindingSize)

	tex := TextureMaterialLayout()
	assert.Len(t, tex.Entries, 2)
	assert.Equal(t, uint32(1), tex.Entries[1].Binding)
}
