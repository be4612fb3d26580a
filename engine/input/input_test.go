package input

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnResizeNotifiesListeners(t *testing.T) {
	s := NewState()
	var got [][3]float64
	s.AddResizeListener(func(w, h int, pr float64) {
		got = append(got, [3]float64{float64(w), float64(h), pr})
	})

	s.OnResize(800, 600, 2)
	s.OnResize(800, 600, 2)
	s.OnResize(0, 0, 0)

	require.Len(t, got, 3)
	assert.Equal(t, [3]float64{800, 600, 2}, got[0])
	assert.Equal(t, got[0], got[1])
	// A zero pixel ratio keeps the previous one.
	assert.Equal(t, [3]float64{0, 0, 2}, got[2])

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Width)
	assert.Equal(t, 2.0, snap.PixelRatio)
}

func TestOnScrollIsUnchecked(t *testing.T) {
	s := NewState()
	s.OnScroll(-5, 0)
	snap := s.Snapshot()
	assert.Equal(t, -5.0, snap.ScrollY)
	assert.Equal(t, 0.0, snap.ClientHeight)
}

func TestStateIsSafeForConcurrentUse(t *testing.T) {
	s := NewState(WithViewport(100, 100, 1))
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.OnScroll(float64(i), 1000)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000.0, s.Snapshot().ClientHeight)
}

func TestDocumentClampsOffset(t *testing.T) {
	tests := []struct {
		name     string
		height   float64
		viewport float64
		scrollTo float64
		want     float64
	}{
		{"within range", 3000, 800, 1000, 1000},
		{"negative", 3000, 800, -50, 0},
		{"past end", 3000, 800, 5000, 2200},
		{"shorter than viewport", 500, 800, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			d := NewDocument(s, tt.height, WithViewportHeight(tt.viewport))
			d.ScrollTo(tt.scrollTo)

			assert.Equal(t, tt.want, d.Offset())
			snap := s.Snapshot()
			assert.Equal(t, tt.want, snap.ScrollY)
			assert.Equal(t, tt.height, snap.ClientHeight)
		})
	}
}

func TestDocumentWheelAndKeys(t *testing.T) {
	s := NewState()
	d := NewDocument(s, 3000, WithViewportHeight(800), WithScrollStep(50))

	d.Wheel(-2)
	assert.Equal(t, 100.0, d.Offset())
	d.Wheel(1)
	assert.Equal(t, 50.0, d.Offset())

	assert.True(t, d.Key(common.KeyDown))
	assert.Equal(t, 90.0, d.Offset())
	assert.True(t, d.Key(common.KeyPageDown))
	assert.Equal(t, 890.0, d.Offset())
	assert.True(t, d.Key(common.KeyEnd))
	assert.Equal(t, 2200.0, d.Offset())
	assert.True(t, d.Key(common.KeyHome))
	assert.Equal(t, 0.0, d.Offset())
	assert.False(t, d.Key(common.KeyH))
}

func TestDocumentViewportShrinkReclamps(t *testing.T) {
	s := NewState()
	d := NewDocument(s, 1000, WithViewportHeight(200))
	d.ScrollTo(800)
	d.SetViewportHeight(600)
	assert.Equal(t, 400.0, d.Offset())
	assert.Equal(t, 400.0, s.Snapshot().ScrollY)
}
