package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies the kind of geometry a pipeline draws.
type PipelineType int

const (
	// PipelineTypeMesh draws indexed meshes with the shared vertex layout and a depth attachment.
	PipelineTypeMesh PipelineType = iota

	// PipelineTypePost draws a fullscreen triangle with no vertex buffers and no depth attachment.
	PipelineTypePost
)

// DepthFormat is the depth attachment format of every mesh pass.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	// program is the shader the GPU pipeline was built from; its version detects hot reloads.
	program shader.Shader

	renderPipeline *wgpu.RenderPipeline

	colorFormat       wgpu.TextureFormat
	sampleCount       uint32
	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline holds the configuration of one render pipeline and, once registered, the GPU object.
// A pipeline is specific to a program, a color target format and a sample count.
type Pipeline interface {
	// Type returns the type of the pipeline.
	//
	// Returns:
	//   - PipelineType: mesh or post
	Type() PipelineType

	// PipelineKey returns the unique cache key of this pipeline.
	//
	// Returns:
	//   - string: the key
	PipelineKey() string

	// Program returns the shader this pipeline is built from.
	//
	// Returns:
	//   - shader.Shader: the program
	Program() shader.Shader

	// Stale reports whether the library now holds a newer version of the program.
	//
	// Parameters:
	//   - current: the library's current shader for the same key
	//
	// Returns:
	//   - bool: true if the pipeline must be rebuilt
	Stale(current shader.Shader) bool

	// RenderPipeline returns the GPU pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline or nil
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU pipeline, releasing a previous one.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Descriptor builds the render pipeline descriptor for this configuration.
	//
	// Parameters:
	//   - module: the compiled shader module of Program()
	//   - layout: the pipeline layout
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for Device.CreateRenderPipeline
	Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor

	ColorFormat() wgpu.TextureFormat
	SampleCount() uint32
	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState

	// Release releases the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// Key builds the cache key for a pipeline configuration.
//
// Parameters:
//   - program: the program key
//   - format: the color target format
//   - sampleCount: the MSAA sample count
//   - variant: a free-form suffix for fixed-function state (for example "transparent")
//
// Returns:
//   - string: the cache key
func Key(program string, format wgpu.TextureFormat, sampleCount uint32, variant string) string {
	return fmt.Sprintf("%s@%d/x%d/%s", program, format, sampleCount, variant)
}

// NewPipeline creates a pipeline configuration for a program.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: mesh or post
//   - program: the shader program
//   - opts: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(pipelineKey string, pipelineType PipelineType, program shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		pipelineType:      pipelineType,
		program:           program,
		colorFormat:       wgpu.TextureFormatBGRA8UnormSrgb,
		sampleCount:       1,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pipelineType == PipelineTypePost {
		p.depthTestEnabled = false
		p.depthWriteEnabled = false
	}
	return p
}

// MeshVertexLayout is the vertex buffer layout of geometry.Vertex.
//
// Returns:
//   - wgpu.VertexBufferLayout: position at location 0, normal at 1, uv at 2
func MeshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: geometry.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

func (p *pipeline) Descriptor(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor {
	target := wgpu.ColorTargetState{
		Format:    p.colorFormat,
		WriteMask: p.writeMask,
	}
	if p.blendEnabled {
		target.Blend = p.blendState
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}

	if p.pipelineType == PipelineTypeMesh {
		desc.Vertex.Buffers = []wgpu.VertexBufferLayout{MeshVertexLayout()}
		depthCompare := wgpu.CompareFunctionLess
		if !p.depthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}
	return desc
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Program() shader.Shader {
	return p.program
}

func (p *pipeline) Stale(current shader.Shader) bool {
	if current == nil || p.program == nil {
		return false
	}
	return current.Version() != p.program.Version()
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	if p.renderPipeline != nil && p.renderPipeline != rp {
		p.renderPipeline.Release()
	}
	p.renderPipeline = rp
}

func (p *pipeline) ColorFormat() wgpu.TextureFormat {
	return p.colorFormat
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
