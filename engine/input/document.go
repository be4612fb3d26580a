package input

import (
	"sync"

	"github.com/Carmen-Shannon/scrollbot/common"
)

const (
	// DefaultScrollStep is the distance one wheel notch scrolls.
	DefaultScrollStep = 100.0
	// ArrowScrollStep is the distance an arrow key scrolls.
	ArrowScrollStep = 40.0
)

// Document is the virtual scrollable page standing in for a browser document.
// Its offset is clamped to [0, max(0, height - viewportHeight)] and every change is
// forwarded to the input State through OnScroll.
type Document struct {
	mu             *sync.Mutex
	state          *State
	height         float64
	viewportHeight float64
	offset         float64
	step           float64
}

// NewDocument creates a document of the given height and publishes its metrics to state.
//
// Parameters:
//   - state: the input state to notify
//   - height: the document height in logical pixels
//   - options: functional options to configure the document
//
// Returns:
//   - *Document: the new document
func NewDocument(state *State, height float64, options ...DocumentBuilderOption) *Document {
	d := &Document{
		mu:     &sync.Mutex{},
		state:  state,
		height: max(height, 0),
		step:   DefaultScrollStep,
	}
	for _, opt := range options {
		opt(d)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publish()
	return d
}

// Height returns the document height.
func (d *Document) Height() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.height
}

// Offset returns the current scroll offset.
func (d *Document) Offset() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offset
}

// MaxOffset returns the largest reachable scroll offset.
func (d *Document) MaxOffset() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxOffset()
}

// SetViewportHeight updates the visible height and re-clamps the offset.
//
// Parameters:
//   - height: the viewport height in logical pixels
func (d *Document) SetViewportHeight(height float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewportHeight = max(height, 0)
	d.offset = common.Clamp(d.offset, 0, d.maxOffset())
	d.publish()
}

// ScrollTo moves to an absolute offset, clamped to the scrollable range.
//
// Parameters:
//   - y: the target offset
func (d *Document) ScrollTo(y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offset = common.Clamp(y, 0, d.maxOffset())
	d.publish()
}

// ScrollBy moves the offset by delta, clamped to the scrollable range.
//
// Parameters:
//   - delta: the distance; positive scrolls down
func (d *Document) ScrollBy(delta float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offset = common.Clamp(d.offset+delta, 0, d.maxOffset())
	d.publish()
}

// Wheel applies a mouse wheel movement. Positive notches scroll up, as GLFW reports them.
//
// Parameters:
//   - notches: the vertical wheel offset
func (d *Document) Wheel(notches float64) {
	d.mu.Lock()
	step := d.step
	d.mu.Unlock()
	d.ScrollBy(-notches * step)
}

// Key applies a navigation key press.
//
// Parameters:
//   - key: a GLFW key code
//
// Returns:
//   - bool: true if the key is a navigation key
func (d *Document) Key(key int) bool {
	d.mu.Lock()
	page := d.viewportHeight
	d.mu.Unlock()

	switch key {
	case common.KeyDown:
		d.ScrollBy(ArrowScrollStep)
	case common.KeyUp:
		d.ScrollBy(-ArrowScrollStep)
	case common.KeyPageDown, common.KeySpace:
		d.ScrollBy(page)
	case common.KeyPageUp:
		d.ScrollBy(-page)
	case common.KeyHome:
		d.ScrollTo(0)
	case common.KeyEnd:
		d.ScrollTo(d.MaxOffset())
	default:
		return false
	}
	return true
}

// maxOffset returns the scrollable range. Caller must hold the mutex.
func (d *Document) maxOffset() float64 {
	return max(0, d.height-d.viewportHeight)
}

// publish forwards the metrics to the state. Caller must hold the mutex.
func (d *Document) publish() {
	if d.state != nil {
		d.state.OnScroll(d.offset, d.height)
	}
}
