package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Program keys. Each key names a WGSL source under assets/ (or the override directory) with
// a vs_main and fs_main entry point.
const (
	// ProgramTubeFloor draws the scroll-reactive tubes.
	ProgramTubeFloor = "tube_floor"
	// ProgramRobot draws the scroll-reactive robot part.
	ProgramRobot = "robot"
	// ProgramBaked draws unlit geometry with a baked color texture.
	ProgramBaked = "baked"
	// ProgramBloomBright keeps the pixels above the luminance threshold.
	ProgramBloomBright = "bloom_bright"
	// ProgramBloomBlur is a separable gaussian blur along params.direction.
	ProgramBloomBlur = "bloom_blur"
	// ProgramBloomComposite adds the blurred bloom on top of the source image.
	ProgramBloomComposite = "bloom_composite"
)

// Programs lists every built-in program key.
var Programs = []string{
	ProgramTubeFloor,
	ProgramRobot,
	ProgramBaked,
	ProgramBloomBright,
	ProgramBloomBlur,
	ProgramBloomComposite,
}

const (
	// VertexEntryPoint is the vertex stage entry point shared by every program.
	VertexEntryPoint = "vs_main"
	// FragmentEntryPoint is the fragment stage entry point shared by every program.
	FragmentEntryPoint = "fs_main"
)

// shader is the implementation of the Shader interface.
type shader struct {
	key      string
	source   string
	version  int
	includes []string
	module   *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL program ready for module creation. The version increases
// every time the library reloads the program, so pipelines can detect stale modules.
type Shader interface {
	// Key retrieves the program key.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// Source retrieves the expanded WGSL source.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// Version retrieves the load generation of this program, starting at 1.
	//
	// Returns:
	//   - int: the version
	Version() int

	// Includes retrieves the shared chunks expanded into the source.
	//
	// Returns:
	//   - []string: the chunk names
	Includes() []string

	// Module returns the shader module descriptor built from the expanded source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the descriptor
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes a WGSL source into a Shader.
//
// Parameters:
//   - key: the program key
//   - source: the raw WGSL source, which may contain include annotations
//   - version: the load generation
//
// Returns:
//   - Shader: the new shader
//   - error: an error if pre-processing fails
func NewShader(key, source string, version int) (Shader, error) {
	pp := NewPreProcessor()
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return &shader{
		key:      key,
		source:   expanded,
		version:  version,
		includes: pp.Includes(),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: expanded,
			},
		},
	}, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Version() int {
	return s.version
}

func (s *shader) Includes() []string {
	return append([]string(nil), s.includes...)
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
