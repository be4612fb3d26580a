// Package config loads the TOML configuration of the scrollbot viewer.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Window configures the host window.
type Window struct {
	Title    string `toml:"title"`
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	VSync    bool   `toml:"vsync"`
	MSAA     int    `toml:"msaa"`
	Software bool   `toml:"software"`
}

// Document configures the virtual scrollable page.
type Document struct {
	Height     float64 `toml:"height"`
	ScrollStep float64 `toml:"scroll_step"`
}

// Assets lists the asset files.
type Assets struct {
	Lines        string `toml:"lines"`
	Texture      string `toml:"texture"`
	Model        string `toml:"model"`
	ShaderDir    string `toml:"shader_dir"`
	WatchShaders bool   `toml:"watch_shaders"`
}

// Camera configures the perspective camera and its damped controls.
type Camera struct {
	Fov      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
	Damping  float32    `toml:"damping"`
}

// Model configures how the loaded model is attached.
type Model struct {
	RobotNode       string `toml:"robot_node"`
	BloomChildIndex int    `toml:"bloom_child_index"`
}

// Bloom configures the bloom composite.
type Bloom struct {
	Enabled   bool    `toml:"enabled"`
	Strength  float32 `toml:"strength"`
	Radius    float32 `toml:"radius"`
	Threshold float32 `toml:"threshold"`
}

// Render configures the renderer and frame loop.
type Render struct {
	MaxPixelRatio float64    `toml:"max_pixel_ratio"`
	TickRate      float64    `toml:"tick_rate"`
	Background    [4]float32 `toml:"background"`
}

// Debug configures the debug panel and profiler.
type Debug struct {
	Panel    bool `toml:"panel"`
	Profiler bool `toml:"profiler"`
}

// Config is the full configuration file.
type Config struct {
	Window   Window   `toml:"window"`
	Document Document `toml:"document"`
	Assets   Assets   `toml:"assets"`
	Camera   Camera   `toml:"camera"`
	Model    Model    `toml:"model"`
	Bloom    Bloom    `toml:"bloom"`
	Render   Render   `toml:"render"`
	Debug    Debug    `toml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{
			Title:  "scrollbot",
			Width:  1280,
			Height: 720,
			VSync:  true,
			MSAA:   4,
		},
		Document: Document{
			Height:     4000,
			ScrollStep: 100,
		},
		Assets: Assets{
			Lines:   "assets/lines.json",
			Texture: "assets/robot/baked.jpg",
			Model:   "assets/robot/robotNew.glb",
		},
		Camera: Camera{
			Fov:      45,
			Near:     0.1,
			Far:      1000,
			Position: [3]float32{50.25383781964611, 25.86425160640591, 59.24067475534197},
			Damping:  0.05,
		},
		Model: Model{
			RobotNode:       "Cube008",
			BloomChildIndex: 0,
		},
		Bloom: Bloom{
			Strength:  1.5,
			Radius:    0.4,
			Threshold: 0.85,
		},
		Render: Render{
			MaxPixelRatio: 2,
			TickRate:      60,
			Background:    [4]float32{0, 0, 0, 1},
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// Unknown keys are rejected. An empty path returns the validated defaults.
//
// Parameters:
//   - path: the file path, or ""
//
// Returns:
//   - Config: the configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.Decode(data); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode merges a TOML document into c. Keys absent from the document keep their value.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - error: a decode error, including *toml.StrictMissingError for unknown keys
func (c *Config) Decode(data []byte) error {
	return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(c)
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate rejects values the viewer cannot run with.
//
// Returns:
//   - error: every problem found, joined and wrapping ErrInvalidConfig; nil if valid
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	check(c.Window.MSAA == 1 || c.Window.MSAA == 4, "window.msaa %d must be 1 or 4", c.Window.MSAA)
	check(positive(c.Document.Height), "document.height %v must be positive", c.Document.Height)
	check(positive(c.Document.ScrollStep), "document.scroll_step %v must be positive", c.Document.ScrollStep)
	check(c.Assets.Lines != "", "assets.lines is required")
	check(c.Assets.Texture != "", "assets.texture is required")
	check(c.Assets.Model != "", "assets.model is required")
	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "camera.fov %v must be in (0, 180)", c.Camera.Fov)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera near %v / far %v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	check(c.Camera.Damping > 0 && c.Camera.Damping <= 1, "camera.damping %v must be in (0, 1]", c.Camera.Damping)
	check(c.Model.RobotNode != "", "model.robot_node is required")
	check(c.Model.BloomChildIndex >= 0, "model.bloom_child_index %d must not be negative", c.Model.BloomChildIndex)
	check(c.Bloom.Strength >= 0 && c.Bloom.Radius >= 0 && c.Bloom.Threshold >= 0, "bloom parameters must not be negative")
	check(positive(c.Render.MaxPixelRatio), "render.max_pixel_ratio %v must be positive", c.Render.MaxPixelRatio)
	check(positive(c.Render.TickRate), "render.tick_rate %v must be positive", c.Render.TickRate)

	return errors.Join(errs...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
