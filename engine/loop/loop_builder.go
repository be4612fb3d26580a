package loop

import (
	"log/slog"
	"time"
)

// LoopBuilderOption is a functional option for configuring a Loop.
type LoopBuilderOption func(*loop)

// WithTickRate sets the tick rate of the default ticker in frames per second.
// Values <= 0 fall back to 60.
//
// Parameters:
//   - fps: the target frames per second
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithTickRate(fps float64) LoopBuilderOption {
	return func(l *loop) {
		if fps <= 0 {
			fps = 60
		}
		l.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithTicks replaces the default ticker with an external tick source, such as a display
// refresh signal or a channel driven by a test.
//
// Parameters:
//   - ticks: the tick channel
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithTicks(ticks <-chan time.Time) LoopBuilderOption {
	return func(l *loop) {
		l.ticks = ticks
	}
}

// WithClock replaces time.Now as the source of frame timing.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithClock(now func() time.Time) LoopBuilderOption {
	return func(l *loop) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used for frame failures.
func WithLogger(logger *slog.Logger) LoopBuilderOption {
	return func(l *loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}
