package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/google/uuid"
)

// ErrSurfaceUnavailable is returned by BeginFrame when there is nothing to draw into, for example
// while the window is minimized. The frame should be skipped, not treated as a failure.
var ErrSurfaceUnavailable = errors.New("renderer: surface unavailable")

// ErrNoFrame is returned when a pass or draw is issued outside BeginFrame/EndFrame.
var ErrNoFrame = errors.New("renderer: no frame in progress")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RenderTarget selects the color attachment of a pass.
type RenderTarget int

const (
	// TargetScreen is the window surface.
	TargetScreen RenderTarget = iota
	// TargetOffscreen is the full-resolution color buffer the bloom compositor reads from.
	TargetOffscreen
)

func (t RenderTarget) String() string {
	switch t {
	case TargetScreen:
		return "screen"
	case TargetOffscreen:
		return "offscreen"
	default:
		return "unknown"
	}
}

// FrameCamera is the per-pass camera data uploaded to group 0.
type FrameCamera struct {
	ViewProj [16]float32
	Position [3]float32
}

// PassOptions describes one render pass.
type PassOptions struct {
	Target RenderTarget

	// ClearColor clears the color attachment when true; otherwise the previous contents are kept.
	ClearColor bool
	Color      [4]float32

	// ClearDepth clears the depth attachment when true.
	ClearDepth bool

	Camera FrameCamera
}

// DrawItem is one mesh draw inside a pass.
type DrawItem struct {
	NodeID   uuid.UUID
	Name     string
	Geometry *geometry.Geometry
	Material material.Material
	Model    [16]float32
}

// BloomParams configures the bright-pass, blur and composite steps.
type BloomParams struct {
	Strength  float32
	Radius    float32
	Threshold float32
}

// DefaultBloomParams returns strength 1.5, radius 0.4 and threshold 0.85.
func DefaultBloomParams() BloomParams {
	return BloomParams{Strength: 1.5, Radius: 0.4, Threshold: 0.85}
}

// RendererBackend is the GPU-facing half of the Renderer. The Renderer decides what is drawn,
// in which pass and with which clear behaviour; the backend owns every GPU object.
// All methods are called from the render goroutine.
type RendererBackend interface {
	// ConfigureSurface (re)creates the surface and every size-dependent target.
	//
	// Parameters:
	//   - width: drawing buffer width in physical pixels
	//   - height: drawing buffer height in physical pixels
	//
	// Returns:
	//   - error: an error if the targets could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode takes effect at the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the surface texture and opens a command encoder.
	BeginFrame() error

	// BeginPass opens a render pass on the chosen target.
	BeginPass(opts PassOptions) error

	// Draw records one mesh draw into the open pass.
	Draw(item DrawItem) error

	// EndPass closes the open pass.
	EndPass()

	// Bloom runs bright-pass, blur and composite from the offscreen target onto the screen.
	Bloom(params BloomParams) error

	// EndFrame flushes pending buffer writes and submits the frame.
	EndFrame() error

	// Present shows the submitted frame.
	Present()

	// Release releases every GPU object.
	Release()
}
