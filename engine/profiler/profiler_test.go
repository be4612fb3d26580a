package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	var buf bytes.Buffer
	p := NewProfiler(
		WithClock(func() time.Time { return now }),
		WithInterval(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	for range 29 {
		now = now.Add(time.Second / 60)
		assert.False(t, p.Tick())
	}
	for range 32 {
		now = now.Add(time.Second / 60)
		p.Tick()
	}

	stats := p.Last()
	assert.InDelta(t, 60, stats.FPS, 1)
	assert.Contains(t, buf.String(), "fps=")
}
