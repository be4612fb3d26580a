package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// Bind group indices used by the mesh programs.
const (
	GroupCamera   = 0
	GroupObject   = 1
	GroupMaterial = 2
)

// Uniform buffer sizes in bytes, matching the WGSL structs in the shader chunks.
const (
	// CameraUniformSize is view_proj (mat4x4) plus position (vec4).
	CameraUniformSize = 80
	// ObjectUniformSize is model (mat4x4) plus color (vec4).
	ObjectUniformSize = 80
	// PostParamsSize is threshold, strength, radius, smoothing, direction and texel.
	PostParamsSize = 32
)

// Post-processing bindings, all in group 0.
const (
	PostBindingSource  = 0
	PostBindingSampler = 1
	PostBindingParams  = 2
	PostBindingAux     = 3
)

// CameraLayout describes group 0 of the mesh programs.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func CameraLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label:   "Camera Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, CameraUniformSize)},
	}
}

// ObjectLayout describes group 1 of the mesh programs.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func ObjectLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label:   "Object Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, ObjectUniformSize)},
	}
}

// UniformMaterialLayout describes group 2 for materials driven by a uniform set.
//
// Parameters:
//   - size: the uniform buffer size in bytes
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func UniformMaterialLayout(size uint64) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label:   "Uniform Material Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, size)},
	}
}

// TextureMaterialLayout describes group 2 for materials sampling one color texture.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func TextureMaterialLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Material Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0),
			samplerEntry(1),
		},
	}
}

// PostLayout describes group 0 of the fullscreen post-processing programs.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func PostLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Post Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(PostBindingSource),
			samplerEntry(PostBindingSampler),
			uniformEntry(PostBindingParams, wgpu.ShaderStageFragment, PostParamsSize),
			textureEntry(PostBindingAux),
		},
	}
}

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: size,
		},
	}
}

func textureEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		},
	}
}
