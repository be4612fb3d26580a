package material

import (
	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
)

// Side selects which triangle faces a material renders.
type Side int

const (
	// SideFront renders counter-clockwise faces only.
	SideFront Side = iota
	// SideBack renders clockwise faces only.
	SideBack
	// SideDouble renders both faces.
	SideDouble
)

// material is the implementation of the Material interface.
type material struct {
	name        string
	program     string
	uniforms    *UniformSet
	texture     *common.TextureStagingData
	sampler     common.SamplerStagingData
	color       [4]float32
	transparent bool
	depthWrite  bool
	side        Side
}

// Material defines the interface for a render material: the shader program it draws with,
// its per-frame uniform values or texture, and the fixed-function state the pipeline needs.
//
// Pipeline-affecting state (program, transparency, depth write, side) is fixed at construction.
// Uniform values are mutable through Uniforms() and are uploaded on every draw.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Program retrieves the key of the shader program this material draws with.
	//
	// Returns:
	//   - string: the program key (see the shader package Program* constants)
	Program() string

	// Uniforms retrieves the scalar uniform set, or nil for materials without uniforms.
	//
	// Returns:
	//   - *UniformSet: the uniform set or nil
	Uniforms() *UniformSet

	// Texture retrieves the color texture, or nil for materials without one.
	//
	// Returns:
	//   - *common.TextureStagingData: the texture data or nil
	Texture() *common.TextureStagingData

	// Sampler retrieves the sampler configuration used with Texture.
	//
	// Returns:
	//   - common.SamplerStagingData: the sampler configuration, zero fields meaning defaults
	Sampler() common.SamplerStagingData

	// Color retrieves the RGBA tint multiplied into the output.
	//
	// Returns:
	//   - [4]float32: the color
	Color() [4]float32

	// Transparent reports whether the material alpha-blends and is drawn after opaque geometry.
	//
	// Returns:
	//   - bool: true when alpha blending is enabled
	Transparent() bool

	// DepthWrite reports whether the material writes depth.
	//
	// Returns:
	//   - bool: true when depth writes are enabled
	DepthWrite() bool

	// Side reports which faces are rendered.
	//
	// Returns:
	//   - Side: the rendered faces
	Side() Side
}

var _ Material = &material{}

// NewShaderMaterial creates a material driven by a custom program and a set of f32 uniforms.
//
// Parameters:
//   - name: the material name
//   - program: the shader program key
//   - uniforms: the uniform names, in the field order of the program's uniform struct
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the new material
func NewShaderMaterial(name, program string, uniforms []string, options ...MaterialBuilderOption) Material {
	m := newMaterial(name, program, options...)
	m.uniforms = NewUniformSet(name, uniforms...)
	return m
}

// NewBasicMaterial creates an unlit material that outputs its texture, unaffected by lights.
//
// Parameters:
//   - name: the material name
//   - texture: the color texture
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the new material
func NewBasicMaterial(name string, texture *common.TextureStagingData, options ...MaterialBuilderOption) Material {
	m := newMaterial(name, shader.ProgramBaked, options...)
	m.texture = texture
	return m
}

func newMaterial(name, program string, options ...MaterialBuilderOption) *material {
	m := &material{
		name:       name,
		program:    program,
		color:      [4]float32{1, 1, 1, 1},
		depthWrite: true,
		side:       SideFront,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Program() string {
	return m.program
}

func (m *material) Uniforms() *UniformSet {
	return m.uniforms
}

func (m *material) Texture() *common.TextureStagingData {
	return m.texture
}

func (m *material) Sampler() common.SamplerStagingData {
	return m.sampler
}

func (m *material) Color() [4]float32 {
	return m.color
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) DepthWrite() bool {
	return m.depthWrite
}

func (m *material) Side() Side {
	return m.side
}
