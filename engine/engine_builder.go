package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/scrollbot/engine/config"
	"github.com/Carmen-Shannon/scrollbot/engine/loader"
	"github.com/Carmen-Shannon/scrollbot/engine/loop"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer"
	"github.com/Carmen-Shannon/scrollbot/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the configuration. Defaults to config.Default().
//
// Parameters:
//   - cfg: the configuration; it is validated by NewEngine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithWindow sets the host window. The engine registers its callbacks, creates the renderer on
// its surface, and closes it on shutdown.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer injects a renderer instead of creating a WebGPU one on the window.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithLoader injects the asset loader. The engine releases it on shutdown.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithLogger sets the root logger; every component logs through a child of it.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLoopOptions appends options to the frame loop, after the configured tick rate and logger.
//
// Parameters:
//   - options: the loop options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoopOptions(options ...loop.LoopBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.loopOptions = append(e.loopOptions, options...)
	}
}
