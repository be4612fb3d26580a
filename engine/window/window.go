package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// ResizeCallback receives the logical window size and the device pixel ratio.
type ResizeCallback func(width, height int, pixelRatio float64)

// MouseButtonCallback receives a button transition and the cursor position in logical pixels.
type MouseButtonCallback func(button MouseButton, pressed bool, x, y float64)

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title          string
	width          int
	height         int
	minWidth       int
	minHeight      int
	pixelRatio     float64
	internalWindow any

	onResize      ResizeCallback
	onScroll      func(delta float64)
	onKeyDown     func(key int)
	onKeyUp       func(key int)
	onMouseButton MouseButtonCallback
	onMouseMove   func(x, y float64)
}

// Window is the host window: it owns the native handle, exposes the WebGPU surface
// descriptor, and dispatches input and resize events to registered callbacks.
//
// Every method must be called from the goroutine that created the window, which is
// locked to its OS thread. Callbacks run on that thread during ProcessMessages.
type Window interface {
	// SetResizeCallback registers the resize handler. It fires whenever the logical size
	// or the pixel ratio changes.
	//
	// Parameters:
	//   - cb: the handler
	SetResizeCallback(cb ResizeCallback)

	// SetScrollCallback registers the wheel handler.
	//
	// Parameters:
	//   - cb: receives the vertical wheel delta in notches; positive scrolls up
	SetScrollCallback(cb func(delta float64))

	// SetKeyDownCallback registers the key press handler. Repeats are delivered as presses.
	//
	// Parameters:
	//   - cb: receives the key code (see the common Key* constants)
	SetKeyDownCallback(cb func(key int))

	// SetKeyUpCallback registers the key release handler.
	//
	// Parameters:
	//   - cb: receives the key code
	SetKeyUpCallback(cb func(key int))

	// SetMouseButtonCallback registers the mouse button handler.
	//
	// Parameters:
	//   - cb: the handler
	SetMouseButtonCallback(cb MouseButtonCallback)

	// SetMouseMoveCallback registers the cursor handler.
	//
	// Parameters:
	//   - cb: receives the cursor position in logical pixels
	SetMouseMoveCallback(cb func(x, y float64))

	// SurfaceDescriptor retrieves the platform surface descriptor for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and has not been asked to close.
	//
	// Returns:
	//   - bool: true while the window is open
	IsRunning() bool

	// Close destroys the native window.
	//
	// Returns:
	//   - error: an error if the window was never created
	Close() error

	// ProcessMessages dispatches pending events without blocking.
	//
	// Returns:
	//   - bool: true while the window is open
	ProcessMessages() bool

	// Width retrieves the logical width.
	//
	// Returns:
	//   - int: the width in logical pixels
	Width() int

	// Height retrieves the logical height.
	//
	// Returns:
	//   - int: the height in logical pixels
	Height() int

	// PixelRatio retrieves the ratio of framebuffer pixels to logical pixels.
	//
	// Returns:
	//   - float64: the device pixel ratio
	PixelRatio() float64
}

var _ Window = &engineWindow{}

// NewWindow creates the native window and returns it. The calling goroutine is locked to
// its OS thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the new window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:      "scrollbot",
		width:      1280,
		height:     720,
		minWidth:   1,
		minHeight:  1,
		pixelRatio: 1,
	}
	for _, opt := range options {
		opt(w)
	}

	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetResizeCallback(cb ResizeCallback) {
	w.onResize = cb
}

func (w *engineWindow) SetScrollCallback(cb func(delta float64)) {
	w.onScroll = cb
}

func (w *engineWindow) SetKeyDownCallback(cb func(key int)) {
	w.onKeyDown = cb
}

func (w *engineWindow) SetKeyUpCallback(cb func(key int)) {
	w.onKeyUp = cb
}

func (w *engineWindow) SetMouseButtonCallback(cb MouseButtonCallback) {
	w.onMouseButton = cb
}

func (w *engineWindow) SetMouseMoveCallback(cb func(x, y float64)) {
	w.onMouseMove = cb
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) PixelRatio() float64 {
	return w.pixelRatio
}

// resize records a new logical size and pixel ratio and notifies the resize callback when
// either changed.
func (w *engineWindow) resize(width, height int, pixelRatio float64) {
	if pixelRatio <= 0 {
		pixelRatio = w.pixelRatio
	}
	if width == w.width && height == w.height && pixelRatio == w.pixelRatio {
		return
	}
	w.width, w.height, w.pixelRatio = width, height, pixelRatio
	if w.onResize != nil {
		w.onResize(width, height, pixelRatio)
	}
}

// pixelRatioFor derives the device pixel ratio from the framebuffer and window widths,
// falling back to the monitor content scale when the window has no area.
func pixelRatioFor(framebufferWidth, windowWidth int, contentScale float64) float64 {
	if windowWidth > 0 && framebufferWidth > 0 {
		return float64(framebufferWidth) / float64(windowWidth)
	}
	if contentScale > 0 {
		return contentScale
	}
	return 1
}
