package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func preloadedTicks(n int) chan time.Time {
	ch := make(chan time.Time, n)
	for range n {
		ch <- time.Time{}
	}
	return ch
}

func TestLoopRendersOncePerTick(t *testing.T) {
	ticks := preloadedTicks(5)
	var frames []Frame
	var l Loop
	l = NewLoop(func(_ context.Context, f Frame) error {
		assert.Equal(t, StateRunning, l.State())
		frames = append(frames, f)
		if len(frames) == 3 {
			l.Stop()
		}
		return nil
	}, WithTicks(ticks), WithClock((&fakeClock{step: 10 * time.Millisecond}).now))

	require.NoError(t, l.Run(context.Background()))

	require.Len(t, frames, 3)
	assert.Len(t, ticks, 2, "ticks after Stop must not be consumed")
	for i, f := range frames {
		assert.Equal(t, uint64(i), f.Index)
		assert.Equal(t, time.Duration(i+1)*10*time.Millisecond, f.Elapsed)
		assert.Equal(t, 10*time.Millisecond, f.Delta)
	}
	assert.Equal(t, StateStopped, l.State())
}

func TestLoopCannotRestart(t *testing.T) {
	l := NewLoop(func(context.Context, Frame) error { return nil }, WithTicks(make(chan time.Time)))
	l.Stop()

	assert.ErrorIs(t, l.Run(context.Background()), ErrLoopStopped)
	assert.ErrorIs(t, l.Post(func() {}), ErrLoopStopped)
	assert.Equal(t, StateStopped, l.State())
}

func TestLoopRejectsConcurrentRun(t *testing.T) {
	ticks := make(chan time.Time)
	l := NewLoop(func(context.Context, Frame) error { return nil }, WithTicks(ticks))

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	// The first tick is only received once Run is executing.
	ticks <- time.Time{}

	assert.ErrorIs(t, l.Run(context.Background()), ErrLoopRunning)
	l.Stop()
	assert.NoError(t, <-done)
}

func TestLoopStopsOnFrameError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	l := NewLoop(func(context.Context, Frame) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}, WithTicks(preloadedTicks(4)))

	assert.ErrorIs(t, l.Run(context.Background()), boom)
	assert.Equal(t, 2, calls)
	assert.Equal(t, StateStopped, l.State())
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	l := NewLoop(func(context.Context, Frame) error {
		calls++
		cancel()
		return nil
	}, WithTicks(preloadedTicks(3)))

	assert.NoError(t, l.Run(ctx))
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateStopped, l.State())
}

func TestLoopRecoversFramePanic(t *testing.T) {
	l := NewLoop(func(context.Context, Frame) error {
		panic("bad frame")
	}, WithTicks(preloadedTicks(1)))

	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad frame")
	assert.Equal(t, StateStopped, l.State())
}

func TestPostRunsBeforeNextFrame(t *testing.T) {
	var order []string
	var l Loop
	l = NewLoop(func(context.Context, Frame) error {
		order = append(order, "frame")
		if len(order) == 2 {
			require.NoError(t, l.Post(func() { order = append(order, "posted") }))
		}
		if len(order) == 4 {
			l.Stop()
		}
		return nil
	}, WithTicks(preloadedTicks(5)))

	require.NoError(t, l.Post(func() { order = append(order, "early") }))
	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, []string{"early", "frame", "posted", "frame"}, order)
}

func TestLoopStopsWhenTicksClose(t *testing.T) {
	ticks := preloadedTicks(2)
	close(ticks)
	frames := 0
	l := NewLoop(func(context.Context, Frame) error {
		frames++
		return nil
	}, WithTicks(ticks))

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 2, frames)
	assert.Equal(t, StateStopped, l.State())
}

func TestDoneClosesOnStopAndDropsPosted(t *testing.T) {
	l := NewLoop(func(context.Context, Frame) error { return nil }, WithTicks(make(chan time.Time)))
	ran := false
	require.NoError(t, l.Post(func() { ran = true }))

	select {
	case <-l.Done():
		t.Fatal("Done closed before Stop")
	default:
	}
	l.Stop()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Stop")
	}
	assert.False(t, ran)
}
