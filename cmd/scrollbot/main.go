// Command scrollbot opens the scroll-reactive robot scene.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Carmen-Shannon/scrollbot/engine"
	"github.com/Carmen-Shannon/scrollbot/engine/config"
	"github.com/Carmen-Shannon/scrollbot/engine/logx"
	"github.com/Carmen-Shannon/scrollbot/engine/window"
)

// GLFW requires every window call on the main OS thread.
func init() {
	runtime.LockOSThread()
}

type flags struct {
	configPath string
	verbose    bool
	veryVerb   bool
	quiet      bool
	bloom      bool
	panel      bool
	profile    bool
	software   bool
	watch      bool
	shaderDir  string
	width      int
	height     int
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to a TOML configuration file.")
	flag.BoolVar(&f.verbose, "v", false, "Log at info level.")
	flag.BoolVar(&f.veryVerb, "vv", false, "Log at debug level.")
	flag.BoolVar(&f.quiet, "q", false, "Log errors only.")
	flag.BoolVar(&f.bloom, "bloom", false, "Enable the two-pass bloom composite.")
	flag.BoolVar(&f.panel, "panel", false, "Show the debug panel at startup.")
	flag.BoolVar(&f.profile, "profile", false, "Log frame rate and memory statistics.")
	flag.BoolVar(&f.software, "software", false, "Force the software (fallback) GPU adapter.")
	flag.BoolVar(&f.watch, "watch-shaders", false, "Hot-reload shader overrides from -shader-dir.")
	flag.StringVar(&f.shaderDir, "shader-dir", "", "Directory of WGSL overrides named <program>.wgsl.")
	flag.IntVar(&f.width, "width", 0, "Window width in logical pixels.")
	flag.IntVar(&f.height, "height", 0, "Window height in logical pixels.")
	flag.Parse()

	logger := logx.SetDefault(os.Stderr, logx.LevelFromFlags(f.veryVerb, f.verbose, f.quiet))

	if err := run(f, logger); err != nil {
		logger.Error("scrollbot failed", "error", err)
		os.Exit(1)
	}
}

func run(f flags, logger *slog.Logger) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return fmt.Errorf("open window: %w", err)
	}

	eng, err := engine.NewEngine(ctx,
		engine.WithConfig(cfg),
		engine.WithWindow(w),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("scrollbot started",
		"width", w.Width(), "height", w.Height(), "pixelRatio", w.PixelRatio(),
		"bloom", cfg.Bloom.Enabled, "model", cfg.Assets.Model)

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyFlags overrides configuration values with the flags that were set explicitly.
func applyFlags(cfg *config.Config, f flags) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "bloom":
			cfg.Bloom.Enabled = f.bloom
		case "panel":
			cfg.Debug.Panel = f.panel
		case "profile":
			cfg.Debug.Profiler = f.profile
		case "software":
			cfg.Window.Software = f.software
		case "watch-shaders":
			cfg.Assets.WatchShaders = f.watch
		case "shader-dir":
			cfg.Assets.ShaderDir = f.shaderDir
		case "width":
			cfg.Window.Width = f.width
		case "height":
			cfg.Window.Height = f.height
		}
	})
}
