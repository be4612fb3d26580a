// Package loop drives one update-and-render step per display refresh through an explicit
// Idle -> Running -> Stopped state machine.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrLoopStopped is returned by Run on a loop that has already stopped. Stopped is terminal.
	ErrLoopStopped = errors.New("loop: stopped")
	// ErrLoopRunning is returned by Run on a loop that is already running.
	ErrLoopRunning = errors.New("loop: already running")
)

// State is the lifecycle state of a Loop.
type State int

const (
	// StateIdle is a loop that was created but not yet started.
	StateIdle State = iota
	// StateRunning is a loop executing frames.
	StateRunning
	// StateStopped is a loop that will never run again.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Frame carries the timing of one tick.
type Frame struct {
	// Index counts frames from 0.
	Index uint64
	// Elapsed is the monotonic time since Run started.
	Elapsed time.Duration
	// Delta is the time since the previous frame.
	Delta time.Duration
}

// FrameFunc performs one update and one rendered frame. A returned error stops the loop.
type FrameFunc func(ctx context.Context, f Frame) error

// loop implements the Loop interface.
type loop struct {
	mu       *sync.Mutex
	state    State
	frame    FrameFunc
	logger   *slog.Logger
	tickRate time.Duration
	ticks    <-chan time.Time
	now      func() time.Time
	posted   []func()
	quit     chan struct{}
	quitOnce sync.Once
}

// Loop runs a FrameFunc once per tick on the goroutine that called Run.
type Loop interface {
	// Run executes frames until Stop, context cancellation or a frame error.
	// It blocks on the calling goroutine.
	//
	// Parameters:
	//   - ctx: cancelling the context stops the loop
	//
	// Returns:
	//   - error: nil on Stop or cancellation, the frame error that stopped the loop,
	//     ErrLoopRunning or ErrLoopStopped
	Run(ctx context.Context) error

	// Stop moves the loop to StateStopped. Safe to call multiple times and from any goroutine.
	Stop()

	// Post queues fn to run on the loop goroutine before the next frame.
	//
	// Parameters:
	//   - fn: the work to run
	//
	// Returns:
	//   - error: ErrLoopStopped if the loop will never run fn
	Post(fn func()) error

	// State reports the current lifecycle state.
	//
	// Returns:
	//   - State: the state
	State() State

	// Done is closed once the loop reaches StateStopped. Work posted but not yet run is
	// dropped at that point.
	Done() <-chan struct{}
}

var _ Loop = &loop{}

// NewLoop creates an idle loop that will call frame once per tick.
// The default tick source is a 60 Hz time.Ticker.
//
// Parameters:
//   - frame: the per-frame work
//   - options: functional options to configure the loop
//
// Returns:
//   - Loop: the new loop
func NewLoop(frame FrameFunc, options ...LoopBuilderOption) Loop {
	l := &loop{
		mu:       &sync.Mutex{},
		state:    StateIdle,
		frame:    frame,
		logger:   slog.Default(),
		tickRate: time.Second / 60,
		now:      time.Now,
		quit:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *loop) Done() <-chan struct{} {
	return l.quit
}

func (l *loop) Stop() {
	l.quitOnce.Do(func() {
		l.mu.Lock()
		l.state = StateStopped
		l.posted = nil
		l.mu.Unlock()
		close(l.quit)
	})
}

func (l *loop) Post(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateStopped {
		return ErrLoopStopped
	}
	l.posted = append(l.posted, fn)
	return nil
}

func (l *loop) Run(ctx context.Context) (err error) {
	l.mu.Lock()
	switch l.state {
	case StateRunning:
		l.mu.Unlock()
		return ErrLoopRunning
	case StateStopped:
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.state = StateRunning
	l.mu.Unlock()

	defer l.Stop()
	// A panic inside a frame stops the loop with an error instead of crashing the process.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loop: frame panicked: %v", r)
			l.logger.Error("frame loop recovered from panic", "panic", r)
		}
	}()

	ticks := l.ticks
	if ticks == nil {
		ticker := time.NewTicker(l.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	start := l.now()
	last := start
	var index uint64

	for {
		// Stop and cancellation win over a pending tick.
		select {
		case <-l.quit:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		select {
		case <-l.quit:
			return nil
		case <-ctx.Done():
			return nil
		case _, ok := <-ticks:
			if !ok {
				l.logger.Debug("tick source closed, stopping loop")
				return nil
			}
			l.runPosted()

			now := l.now()
			f := Frame{Index: index, Elapsed: now.Sub(start), Delta: now.Sub(last)}
			last = now
			index++

			if err := l.frame(ctx, f); err != nil {
				l.logger.Error("frame failed, stopping loop", "frame", f.Index, "error", err)
				return err
			}
		}
	}
}

// runPosted drains the post queue on the loop goroutine.
func (l *loop) runPosted() {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
}
