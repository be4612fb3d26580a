package material

import "github.com/Carmen-Shannon/scrollbot/common"

// MaterialBuilderOption is a functional option for configuring a Material.
// Use the With* functions to create options.
type MaterialBuilderOption func(*material)

// WithTransparent enables alpha blending and draws the material after opaque geometry.
//
// Parameters:
//   - transparent: true to enable alpha blending
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithTransparent(transparent bool) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = transparent
	}
}

// WithDepthWrite sets whether the material writes depth. Defaults to true.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithDepthWrite(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.depthWrite = enabled
	}
}

// WithSide sets which faces the material renders. Defaults to SideFront.
//
// Parameters:
//   - side: the rendered faces
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithSide(side Side) MaterialBuilderOption {
	return func(m *material) {
		m.side = side
	}
}

// WithColor sets the RGBA tint. Defaults to opaque white.
//
// Parameters:
//   - color: the RGBA color
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.color = color
	}
}

// WithSampler overrides the texture sampler configuration.
//
// Parameters:
//   - sampler: the sampler configuration; zero fields fall back to linear/repeat
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithSampler(sampler common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = sampler
	}
}
