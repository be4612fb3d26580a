package debug

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPanelIsHiddenAndEmpty(t *testing.T) {
	p := NewPanel()
	assert.Equal(t, 400, p.Width())
	assert.False(t, p.Visible())
	assert.Empty(t, p.Controls())
}

func TestToggleAndRefresh(t *testing.T) {
	var buf bytes.Buffer
	p := NewPanel(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))), WithInterval(time.Second))
	calls := 0
	p.Add("reactiveLength", func() any { calls++; return 37.5 })

	now := time.Unix(100, 0)
	assert.False(t, p.Refresh(now), "hidden panels do not refresh")

	assert.True(t, p.Toggle())
	assert.True(t, p.Refresh(now))
	assert.False(t, p.Refresh(now.Add(500*time.Millisecond)))
	assert.True(t, p.Refresh(now.Add(time.Second)))
	assert.Equal(t, 2, calls)
	assert.Contains(t, buf.String(), "reactiveLength=37.5")

	assert.False(t, p.Toggle())
}

func TestDumpIgnoresVisibility(t *testing.T) {
	var buf bytes.Buffer
	p := NewPanel(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	p.Add("bloom", func() any { return true })

	p.Dump()
	assert.Contains(t, buf.String(), "bloom=true")
	assert.Contains(t, buf.String(), "width=400")
}
