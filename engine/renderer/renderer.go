package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultMaxPixelRatio caps the device pixel ratio used for the drawing buffer.
const DefaultMaxPixelRatio = 2.0

// renderer is the implementation of the Renderer interface.
type renderer struct {
	// mu guards the size fields, written by window callbacks and read by the render goroutine.
	mu *sync.Mutex

	backend RendererBackend
	logger  *slog.Logger

	width, height  int
	pixelRatio     float64
	maxPixelRatio  float64
	configuredW    int
	configuredH    int
	pendingPresent *PresentMode

	autoClear    bool
	clearColor   [4]float32
	depthPending bool
	inFrame      bool

	// wgpu construction options collected from builder options.
	forceFallbackAdapter bool
	msaa                 MSAASampleCount
}

// Renderer draws a scene graph from a camera, either straight to the window or into the
// offscreen target read by the bloom compositor.
//
// Sizes follow the browser model: SetSize takes logical pixels, SetPixelRatio the device pixel
// ratio, and the drawing buffer is their product with the ratio capped at the configured maximum.
// Size changes are recorded immediately and applied to the GPU at the next BeginFrame, so they
// are safe to call from window callbacks at any frequency.
type Renderer interface {
	// SetSize sets the output size in logical pixels.
	//
	// Parameters:
	//   - width: the logical width
	//   - height: the logical height
	SetSize(width, height int)

	// Size returns the output size in logical pixels.
	//
	// Returns:
	//   - int: the logical width
	//   - int: the logical height
	Size() (int, int)

	// SetPixelRatio sets the device pixel ratio, clamped to (0, max pixel ratio].
	//
	// Parameters:
	//   - ratio: the device pixel ratio reported by the host
	SetPixelRatio(ratio float64)

	// PixelRatio returns the clamped pixel ratio in use.
	//
	// Returns:
	//   - float64: the pixel ratio
	PixelRatio() float64

	// DrawingBufferSize returns the physical size of the drawing buffer.
	//
	// Returns:
	//   - int: the width in physical pixels
	//   - int: the height in physical pixels
	DrawingBufferSize() (int, int)

	// SetAutoClear sets whether Render clears color and depth before drawing. Defaults to true.
	//
	// Parameters:
	//   - enabled: true to clear on every Render
	SetAutoClear(enabled bool)

	// SetClearColor sets the color used by clearing passes.
	//
	// Parameters:
	//   - color: the RGBA clear color
	SetClearColor(color [4]float32)

	// ClearDepth makes the next screen pass clear depth while keeping color.
	ClearDepth()

	// SetPresentMode changes the present mode at the next BeginFrame.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BeginFrame applies any pending resize and acquires the next surface texture.
	//
	// Returns:
	//   - error: ErrSurfaceUnavailable when the drawing buffer is empty, or a backend error
	BeginFrame() error

	// Render draws the scene to the screen from the camera, honoring the camera's layers.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw from
	//
	// Returns:
	//   - error: an error if the pass could not be recorded
	Render(s *scene.Scene, cam camera.Camera) error

	// RenderTo draws the scene into the chosen target. The offscreen target is always cleared to
	// the scene background, which the bloom composite carries onto the screen.
	//
	// Parameters:
	//   - target: the render target
	//   - s: the scene to draw
	//   - cam: the camera to draw from
	//
	// Returns:
	//   - error: an error if the pass could not be recorded
	RenderTo(target RenderTarget, s *scene.Scene, cam camera.Camera) error

	// ApplyBloom composites the offscreen target plus its bloom onto the screen.
	//
	// Parameters:
	//   - params: the bloom parameters
	//
	// Returns:
	//   - error: an error if the passes could not be recorded
	ApplyBloom(params BloomParams) error

	// EndFrame submits and presents the frame.
	//
	// Returns:
	//   - error: an error if submission fails
	EndFrame() error

	// Release releases the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer over an existing backend.
//
// Parameters:
//   - backend: the GPU backend
//   - options: functional options to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := newRenderer(options...)
	r.backend = backend
	if r.pendingPresent != nil {
		r.backend.SetPresentMode(*r.pendingPresent)
		r.pendingPresent = nil
	}
	return r
}

// NewWGPURenderer creates a Renderer with the WebGPU backend drawing into the given surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, typically from Window.SurfaceDescriptor
//   - lib: the shader library the backend builds pipelines from
//   - options: functional options to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: an error if no adapter or device could be acquired
func NewWGPURenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, lib shader.Library, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	backend, err := newWGPURendererBackend(surfaceDescriptor, lib, r.logger, r.forceFallbackAdapter, r.msaa)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	r.backend = backend
	if r.pendingPresent != nil {
		r.backend.SetPresentMode(*r.pendingPresent)
		r.pendingPresent = nil
	}
	return r, nil
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        slog.Default(),
		pixelRatio:    1,
		maxPixelRatio: DefaultMaxPixelRatio,
		autoClear:     true,
		clearColor:    [4]float32{0, 0, 0, 1},
		msaa:          MSAA4x,
	}
	for _, opt := range options {
		opt(r)
	}
	r.SetPixelRatio(r.pixelRatio)
	return r
}

func (r *renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width = max(width, 0)
	r.height = max(height, 0)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPixelRatio(ratio float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	r.pixelRatio = common.Clamp(ratio, 0, r.maxPixelRatio)
}

func (r *renderer) PixelRatio() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) DrawingBufferSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawingBufferSize()
}

func (r *renderer) drawingBufferSize() (int, int) {
	return int(math.Floor(float64(r.width) * r.pixelRatio)), int(math.Floor(float64(r.height) * r.pixelRatio))
}

func (r *renderer) SetAutoClear(enabled bool) {
	r.autoClear = enabled
}

func (r *renderer) SetClearColor(color [4]float32) {
	r.clearColor = color
}

func (r *renderer) ClearDepth() {
	r.depthPending = true
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingPresent = &mode
	// Force a reconfigure so the new mode takes effect.
	r.configuredW, r.configuredH = 0, 0
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	w, h := r.drawingBufferSize()
	reconfigure := w != r.configuredW || h != r.configuredH
	pendingPresent := r.pendingPresent
	r.pendingPresent = nil
	r.mu.Unlock()

	if w <= 0 || h <= 0 {
		return ErrSurfaceUnavailable
	}
	if pendingPresent != nil {
		r.backend.SetPresentMode(*pendingPresent)
	}
	if reconfigure {
		if err := r.backend.ConfigureSurface(w, h); err != nil {
			return fmt.Errorf("renderer: configure %dx%d: %w", w, h, err)
		}
		r.mu.Lock()
		r.configuredW, r.configuredH = w, h
		r.mu.Unlock()
		r.logger.Debug("surface configured", "width", w, "height", h)
	}

	if err := r.backend.BeginFrame(); err != nil {
		if errors.Is(err, ErrSurfaceUnavailable) {
			// The surface went stale underneath us; reconfigure next frame.
			r.mu.Lock()
			r.configuredW, r.configuredH = 0, 0
			r.mu.Unlock()
		}
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) Render(s *scene.Scene, cam camera.Camera) error {
	return r.RenderTo(TargetScreen, s, cam)
}

func (r *renderer) RenderTo(target RenderTarget, s *scene.Scene, cam camera.Camera) error {
	if !r.inFrame {
		return ErrNoFrame
	}

	opts := PassOptions{
		Target: target,
		Color:  r.clearColor,
		Camera: FrameCamera{
			ViewProj: cam.ViewProjectionMatrix(),
			Position: cam.Position(),
		},
	}
	switch {
	case target == TargetOffscreen, r.autoClear:
		opts.ClearColor, opts.ClearDepth = true, true
		opts.Color = s.Background()
	default:
		opts.ClearDepth = r.depthPending
	}
	if target == TargetScreen {
		r.depthPending = false
	}

	if err := r.backend.BeginPass(opts); err != nil {
		return fmt.Errorf("renderer: begin %s pass: %w", target, err)
	}
	defer r.backend.EndPass()

	for _, item := range CollectDrawList(s, cam) {
		if err := r.backend.Draw(item); err != nil {
			return fmt.Errorf("renderer: draw %q: %w", item.Name, err)
		}
	}
	return nil
}

func (r *renderer) ApplyBloom(params BloomParams) error {
	if !r.inFrame {
		return ErrNoFrame
	}
	return r.backend.Bloom(params)
}

func (r *renderer) EndFrame() error {
	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	if err := r.backend.EndFrame(); err != nil {
		return err
	}
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.backend.Release()
}
