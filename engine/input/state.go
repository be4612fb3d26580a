// Package input tracks the host-window metrics the frame loop reads: scroll offset,
// document height, viewport size and pixel density.
package input

import (
	"sync"
)

// Snapshot is an immutable copy of the input state taken at the start of a frame.
type Snapshot struct {
	// ScrollY is the vertical scroll offset of the document in logical pixels.
	ScrollY float64
	// ClientHeight is the full document height in logical pixels.
	ClientHeight float64
	// Width and Height are the viewport size in logical pixels.
	Width, Height int
	// PixelRatio is the device pixel ratio reported by the host.
	PixelRatio float64
}

// ResizeListener is notified after the viewport size or pixel ratio changed.
type ResizeListener func(width, height int, pixelRatio float64)

// State is the explicit input-state object written by window callbacks and read by the frame loop.
type State struct {
	mu        *sync.Mutex
	snap      Snapshot
	listeners []ResizeListener
}

// NewState creates an input state with a pixel ratio of 1.
//
// Parameters:
//   - options: functional options to seed the state
//
// Returns:
//   - *State: the new state
func NewState(options ...StateBuilderOption) *State {
	s := &State{
		mu:   &sync.Mutex{},
		snap: Snapshot{PixelRatio: 1},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// AddResizeListener registers a listener called on every OnResize.
//
// Parameters:
//   - l: the listener
func (s *State) AddResizeListener(l ResizeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// OnResize records the new viewport metrics and notifies every resize listener.
// Listeners run on the caller's goroutine, outside the state lock.
//
// Parameters:
//   - width: the viewport width in logical pixels
//   - height: the viewport height in logical pixels
//   - pixelRatio: the device pixel ratio
func (s *State) OnResize(width, height int, pixelRatio float64) {
	s.mu.Lock()
	s.snap.Width = max(width, 0)
	s.snap.Height = max(height, 0)
	if pixelRatio > 0 {
		s.snap.PixelRatio = pixelRatio
	}
	w, h, pr := s.snap.Width, s.snap.Height, s.snap.PixelRatio
	listeners := append([]ResizeListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(w, h, pr)
	}
}

// OnScroll records the current document metrics. No bounds checking is done here.
//
// Parameters:
//   - scrollY: the scroll offset
//   - clientHeight: the document height
func (s *State) OnScroll(scrollY, clientHeight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ScrollY = scrollY
	s.snap.ClientHeight = clientHeight
}

// Snapshot returns a consistent copy of the state.
//
// Returns:
//   - Snapshot: the copy
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
