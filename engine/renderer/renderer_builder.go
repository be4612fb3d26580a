package renderer

import "log/slog"

// RendererBuilderOption is a functional option applied to a renderer during construction.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresent = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count of the WebGPU backend.
// When not specified, the default is MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithMaxPixelRatio caps the device pixel ratio used for the drawing buffer. Defaults to 2.
//
// Parameters:
//   - ratio: the cap; values <= 0 are ignored
//
// Returns:
//   - RendererBuilderOption: a function that applies the cap to a renderer
func WithMaxPixelRatio(ratio float64) RendererBuilderOption {
	return func(r *renderer) {
		if ratio > 0 {
			r.maxPixelRatio = ratio
		}
	}
}

// WithSize sets the initial logical size and pixel ratio.
//
// Parameters:
//   - width: the logical width
//   - height: the logical height
//   - pixelRatio: the device pixel ratio, clamped like SetPixelRatio
//
// Returns:
//   - RendererBuilderOption: a function that applies the size to a renderer
func WithSize(width, height int, pixelRatio float64) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = max(width, 0), max(height, 0)
		r.pixelRatio = pixelRatio
	}
}

// WithLogger sets the logger used for surface and pipeline records.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
