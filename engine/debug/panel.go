// Package debug provides a small inspection panel: a named set of live values that can be
// toggled on and dumped to the log.
package debug

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultWidth is the panel width in logical pixels.
const DefaultWidth = 400

// Control is one named value shown by the panel.
type Control struct {
	Name  string
	Value func() any
}

// Panel is a collection of controls. It starts hidden and holds no controls until some are added.
type Panel struct {
	mu       *sync.Mutex
	logger   *slog.Logger
	width    int
	visible  bool
	controls []Control
	interval time.Duration
	lastShow time.Time
}

// PanelBuilderOption is a functional option for configuring a Panel.
type PanelBuilderOption func(*Panel)

// WithWidth sets the panel width.
func WithWidth(width int) PanelBuilderOption {
	return func(p *Panel) {
		if width > 0 {
			p.width = width
		}
	}
}

// WithLogger sets the logger the panel writes to.
func WithLogger(logger *slog.Logger) PanelBuilderOption {
	return func(p *Panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithVisible sets the initial visibility.
func WithVisible(visible bool) PanelBuilderOption {
	return func(p *Panel) {
		p.visible = visible
	}
}

// WithInterval sets how often a visible panel refreshes. Defaults to one second.
func WithInterval(d time.Duration) PanelBuilderOption {
	return func(p *Panel) {
		if d > 0 {
			p.interval = d
		}
	}
}

// NewPanel creates a hidden, empty panel.
//
// Parameters:
//   - options: functional options to configure the panel
//
// Returns:
//   - *Panel: the new panel
func NewPanel(options ...PanelBuilderOption) *Panel {
	p := &Panel{
		mu:       &sync.Mutex{},
		logger:   slog.Default(),
		width:    DefaultWidth,
		interval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Width returns the panel width.
func (p *Panel) Width() int {
	return p.width
}

// Add registers a control. Controls are shown in registration order.
//
// Parameters:
//   - name: the label
//   - value: called on every refresh
func (p *Panel) Add(name string, value func() any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controls = append(p.controls, Control{Name: name, Value: value})
}

// Controls returns the registered controls.
func (p *Panel) Controls() []Control {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Control(nil), p.controls...)
}

// Toggle flips visibility and returns the new state.
func (p *Panel) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = !p.visible
	p.lastShow = time.Time{}
	return p.visible
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Refresh shows the current values if the panel is visible and the refresh interval has passed.
//
// Parameters:
//   - now: the current time
//
// Returns:
//   - bool: true if the values were shown
func (p *Panel) Refresh(now time.Time) bool {
	p.mu.Lock()
	if !p.visible || now.Sub(p.lastShow) < p.interval {
		p.mu.Unlock()
		return false
	}
	p.lastShow = now
	p.mu.Unlock()

	p.Dump()
	return true
}

// Dump writes every control value to the log at info level, whether the panel is visible or not.
func (p *Panel) Dump() {
	controls := p.Controls()
	attrs := make([]any, 0, 2*len(controls)+2)
	attrs = append(attrs, "width", p.width)
	for _, c := range controls {
		attrs = append(attrs, c.Name, c.Value())
	}
	p.logger.Info("debug panel", attrs...)
}
