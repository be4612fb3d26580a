package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		vv, v, q bool
		want     slog.Level
	}{
		{true, false, false, slog.LevelDebug},
		{true, false, true, slog.LevelDebug},
		{false, true, true, slog.LevelInfo},
		{false, false, true, slog.LevelError},
		{false, false, false, slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromFlags(tt.vv, tt.v, tt.q))
	}
}

func TestNewLoggerFollowsUserLevel(t *testing.T) {
	defer UserLevel.Set(UserLevel.Level())

	var buf bytes.Buffer
	UserLevel.Set(slog.LevelWarn)
	logger := Component(NewLogger(&buf), "stage")

	logger.Info("hidden")
	logger.Warn("shown", "clientHeight", 0)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "component=stage")
	assert.Contains(t, buf.String(), "clientHeight=0")

	buf.Reset()
	UserLevel.Set(slog.LevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
