package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, float32(45), cfg.Camera.Fov)
	assert.Equal(t, "Cube008", cfg.Model.RobotNode)
	assert.Equal(t, 2.0, cfg.Render.MaxPixelRatio)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "demo"

[bloom]
enabled = true
strength = 2.0

[model]
bloom_child_index = 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.True(t, cfg.Bloom.Enabled)
	assert.Equal(t, float32(2), cfg.Bloom.Strength)
	assert.Equal(t, float32(0.85), cfg.Bloom.Threshold)
	assert.Equal(t, 3, cfg.Model.BloomChildIndex)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\ncolour = 3\n"), 0o644))

	_, err := Load(path)
	var strict *toml.StrictMissingError
	assert.True(t, errors.As(err, &strict))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"bad msaa", func(c *Config) { c.Window.MSAA = 2 }},
		{"zero document height", func(c *Config) { c.Document.Height = 0 }},
		{"damping above one", func(c *Config) { c.Camera.Damping = 1.5 }},
		{"zero damping", func(c *Config) { c.Camera.Damping = 0 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.01 }},
		{"negative bloom child", func(c *Config) { c.Model.BloomChildIndex = -1 }},
		{"negative strength", func(c *Config) { c.Bloom.Strength = -1 }},
		{"zero pixel ratio cap", func(c *Config) { c.Render.MaxPixelRatio = 0 }},
		{"missing model", func(c *Config) { c.Assets.Model = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestEncodeRoundTripsDefaults(t *testing.T) {
	data, err := Default().Encode()
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, cfg.Decode(data))
	assert.Equal(t, Default(), cfg)
}
