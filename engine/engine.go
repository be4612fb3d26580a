// Package engine composes the window, input tracking, asset loading, stage and frame loop
// into the scrollbot viewer and owns the process lifecycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/config"
	"github.com/Carmen-Shannon/scrollbot/engine/debug"
	"github.com/Carmen-Shannon/scrollbot/engine/input"
	"github.com/Carmen-Shannon/scrollbot/engine/loader"
	"github.com/Carmen-Shannon/scrollbot/engine/logx"
	"github.com/Carmen-Shannon/scrollbot/engine/loop"
	"github.com/Carmen-Shannon/scrollbot/engine/profiler"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
	"github.com/Carmen-Shannon/scrollbot/engine/stage"
	"github.com/Carmen-Shannon/scrollbot/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// pollInterval is how often the main thread pumps window events.
const pollInterval = 4 * time.Millisecond

// ErrMissingAsset is returned by NewEngine when a required asset file does not exist.
var ErrMissingAsset = errors.New("required asset file missing")

// engine implements the Engine interface.
// Coordinates the window thread, the render goroutine and the loader pool.
type engine struct {
	cfg    config.Config
	logger *slog.Logger

	window   window.Window
	renderer renderer.Renderer
	library  shader.Library
	loader   loader.Loader

	state    *input.State
	document *input.Document
	camera   camera.Camera
	stage    *stage.Stage
	loop     loop.Loop

	loopOptions []loop.LoopBuilderOption

	profiler *profiler.Profiler
	panel    *debug.Panel

	drag  dragState
	shift bool

	modelReady chan struct{}

	wg       sync.WaitGroup
	quit     chan struct{}
	quitOnce sync.Once
}

// dragState tracks the mouse button held for orbit or pan.
type dragState struct {
	button window.MouseButton
	active bool
	x, y   float64
}

// Engine is the scrollbot viewer.
// It wires window events into the input state, runs the frame loop on a render goroutine,
// and attaches the model once its asynchronous load completes.
type Engine interface {
	// Run starts the render goroutine and the model load, then pumps window events on the
	// calling goroutine until the window closes, ctx is cancelled, Quit is called or a frame fails.
	//
	// Parameters:
	//   - ctx: the root context; cancelling it stops the engine
	//
	// Returns:
	//   - error: the frame error that stopped the loop, or nil on a normal shutdown
	Run(ctx context.Context) error

	// Quit stops the engine. Safe to call multiple times and from any goroutine.
	Quit()

	// Window returns the host window, or nil when running headless.
	Window() window.Window

	// State returns the input state tracker.
	State() *input.State

	// Document returns the virtual scrollable document.
	Document() *input.Document

	// Stage returns the stage. It is owned by the render goroutine while Run is active.
	Stage() *stage.Stage

	// Renderer returns the renderer.
	Renderer() renderer.Renderer

	// Panel returns the debug panel.
	Panel() *debug.Panel

	// ModelReady is closed once the model load has finished, attached or not.
	ModelReady() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates the engine: it loads the lines and the baked texture, which are required
// to build the stage, and wires resize, scroll, key and mouse events.
// Without WithRenderer, a WebGPU renderer is created on the window's surface.
//
// Parameters:
//   - ctx: bounds the startup asset loads
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the new engine
//   - error: an invalid configuration, a failed asset load, or a renderer error
func NewEngine(ctx context.Context, options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:        config.Default(),
		logger:     slog.Default(),
		quit:       make(chan struct{}),
		modelReady: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg := e.cfg

	width, height, pixelRatio := cfg.Window.Width, cfg.Window.Height, 1.0
	if e.window != nil {
		width, height, pixelRatio = e.window.Width(), e.window.Height(), e.window.PixelRatio()
	}

	e.state = input.NewState(input.WithViewport(width, height, pixelRatio))
	e.document = input.NewDocument(e.state, cfg.Document.Height,
		input.WithScrollStep(cfg.Document.ScrollStep),
		input.WithViewportHeight(float64(height)),
	)

	if e.loader == nil {
		e.loader = loader.NewLoader(loader.WithLogger(logx.Component(e.logger, "loader")))
	}

	if err := e.initRenderer(width, height, pixelRatio); err != nil {
		e.release()
		return nil, err
	}

	e.camera = newCamera(cfg.Camera, width, height)

	linesTask := e.loader.LoadLines(cfg.Assets.Lines)
	textureTask := e.loader.LoadTexture(cfg.Assets.Texture)
	lines, err := linesTask.Await(ctx)
	if err != nil {
		e.release()
		return nil, assetError("lines", cfg.Assets.Lines, err)
	}
	baked, err := textureTask.Await(ctx)
	if err != nil {
		e.release()
		return nil, assetError("texture", cfg.Assets.Texture, err)
	}

	e.stage, err = stage.NewStage(lines, baked, e.renderer, e.camera,
		stage.WithLogger(logx.Component(e.logger, "stage")),
		stage.WithRobotNode(cfg.Model.RobotNode),
		stage.WithBloomChildIndex(cfg.Model.BloomChildIndex),
		stage.WithBloom(cfg.Bloom.Enabled, renderer.BloomParams{
			Strength:  cfg.Bloom.Strength,
			Radius:    cfg.Bloom.Radius,
			Threshold: cfg.Bloom.Threshold,
		}),
		stage.WithBackground(cfg.Render.Background),
	)
	if err != nil {
		e.release()
		return nil, fmt.Errorf("engine: build stage: %w", err)
	}

	loopOptions := append([]loop.LoopBuilderOption{
		loop.WithTickRate(cfg.Render.TickRate),
		loop.WithLogger(logx.Component(e.logger, "loop")),
	}, e.loopOptions...)
	e.loop = loop.NewLoop(e.frame, loopOptions...)

	if cfg.Debug.Profiler {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(logx.Component(e.logger, "profiler")))
	}
	e.panel = debug.NewPanel(
		debug.WithLogger(logx.Component(e.logger, "debug")),
		debug.WithVisible(cfg.Debug.Panel),
	)

	e.state.AddResizeListener(e.onResize)
	e.bindWindow()

	return e, nil
}

// assetError wraps a required asset failure. A missing file also matches ErrMissingAsset and
// names the directory the asset is expected in.
func assetError(kind, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("engine: load %s: %w in %s (see assets/README.md): %w", kind, ErrMissingAsset, filepath.Dir(path), err)
	}
	return fmt.Errorf("engine: load %s: %w", kind, err)
}

// initRenderer creates the shader library and the WebGPU renderer unless one was injected.
func (e *engine) initRenderer(width, height int, pixelRatio float64) error {
	if e.renderer != nil {
		return nil
	}
	if e.window == nil {
		return errors.New("engine: a window or a renderer is required")
	}

	lib, err := shader.NewLibrary(shader.WithOverrideDir(e.cfg.Assets.ShaderDir))
	if err != nil {
		return fmt.Errorf("engine: load shaders: %w", err)
	}
	e.library = lib

	present := renderer.PresentModeVSync
	if !e.cfg.Window.VSync {
		present = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAAOff
	if e.cfg.Window.MSAA > 1 {
		msaa = renderer.MSAA4x
	}

	r, err := renderer.NewWGPURenderer(e.window.SurfaceDescriptor(), lib,
		renderer.WithSize(width, height, pixelRatio),
		renderer.WithMaxPixelRatio(e.cfg.Render.MaxPixelRatio),
		renderer.WithPresentMode(present),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(e.cfg.Window.Software),
		renderer.WithLogger(logx.Component(e.logger, "renderer")),
	)
	if err != nil {
		return fmt.Errorf("engine: create renderer: %w", err)
	}
	e.renderer = r
	return nil
}

// newCamera builds the perspective camera and its damped orbit controls.
func newCamera(c config.Camera, width, height int) camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
		camera.WithPosition(c.Position[0], c.Position[1], c.Position[2]),
		camera.WithDampingFactor(c.Damping),
	)
	options := []camera.CameraBuilderOption{
		camera.WithFov(mgl32.DegToRad(c.Fov)),
		camera.WithNear(c.Near),
		camera.WithFar(c.Far),
		camera.WithController(ctrl),
	}
	if width > 0 && height > 0 {
		options = append(options, camera.WithAspect(float32(width)/float32(height)))
	}
	return camera.NewCamera(options...)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) State() *input.State {
	return e.state
}

func (e *engine) Document() *input.Document {
	return e.document
}

func (e *engine) Stage() *stage.Stage {
	return e.stage
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Panel() *debug.Panel {
	return e.panel
}

func (e *engine) ModelReady() <-chan struct{} {
	return e.modelReady
}

func (e *engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-e.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	e.wg.Add(1)
	go e.handleModel(ctx, e.loader.LoadModel(e.cfg.Assets.Model))

	if e.cfg.Assets.WatchShaders && e.library != nil && e.library.OverrideDir() != "" {
		e.wg.Add(1)
		go e.handleShaderWatch(ctx)
	}

	errCh := make(chan error, 1)
	e.wg.Add(1)
	go e.handleRender(ctx, cancel, errCh)

	e.pumpEvents(ctx, cancel)

	err := <-errCh
	e.wg.Wait()
	e.release()
	return err
}

// Quit signals the engine to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

// pumpEvents dispatches window events on the calling goroutine until ctx is done.
// A closed window cancels ctx. Without a window it only waits for ctx.
func (e *engine) pumpEvents(ctx context.Context, cancel context.CancelFunc) {
	if e.window == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.window.ProcessMessages() {
				e.logger.Info("window closed")
				cancel()
				return
			}
		}
	}
}

// handleRender runs the frame loop in its own goroutine and cancels ctx when it exits.
// Recovers from panics outside the frame callback to avoid crashing the process.
func (e *engine) handleRender(ctx context.Context, cancel context.CancelFunc, errCh chan<- error) {
	defer e.wg.Done()
	defer cancel()

	var err error
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", "panic", r)
			err = fmt.Errorf("engine: render goroutine panicked: %v", r)
		}
		errCh <- err
	}()

	err = e.loop.Run(ctx)
}

// frame is the per-tick work: update and render the stage, then tick the profiler and panel.
func (e *engine) frame(_ context.Context, f loop.Frame) error {
	if err := e.stage.Frame(e.state.Snapshot(), f); err != nil {
		return err
	}
	if e.profiler != nil {
		e.profiler.Tick()
	}
	e.panel.Refresh(time.Now())
	return nil
}

// handleModel awaits the model load and posts the attach step to the loop.
// modelReady is closed once the attach has run or the loop has stopped without running it.
func (e *engine) handleModel(ctx context.Context, task *loader.Task[*loader.Model]) {
	defer e.wg.Done()
	defer close(e.modelReady)

	m, err := task.Await(ctx)
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("model load failed, running without the model", "path", e.cfg.Assets.Model, "error", err)
		}
		return
	}
	for _, w := range m.Warnings {
		e.logger.Warn("model loaded with warnings", "model", m.Name, "warning", w)
	}

	attached := make(chan struct{})
	err = e.loop.Post(func() {
		defer close(attached)
		e.attach(m)
	})
	if err != nil {
		e.logger.Debug("model not attached", "model", m.Name, "error", err)
		return
	}
	select {
	case <-attached:
	case <-e.loop.Done():
		e.logger.Debug("loop stopped before the model was attached", "model", m.Name)
	}
}

// attach runs on the loop goroutine.
func (e *engine) attach(m *loader.Model) {
	err := e.stage.AttachModel(m)
	var notFound *scene.NodeNotFoundError
	switch {
	case err == nil:
		e.logger.Info("model attached", "model", m.Name, "meshes", m.MeshCount)
	case errors.As(err, &notFound):
		e.logger.Error("configuration error: robot node not found, keeping the baked material",
			"node", notFound.Name, "model", notFound.Root, "setting", "model.robot_node")
	case errors.Is(err, stage.ErrRobotWithoutMesh):
		e.logger.Error("robot node has no geometry, check that the model's compressed meshes decode",
			"node", e.cfg.Model.RobotNode, "model", m.Name)
	default:
		e.logger.Error("attach model failed", "model", m.Name, "error", err)
	}
}

// handleShaderWatch hot-reloads shader overrides until ctx is done.
func (e *engine) handleShaderWatch(ctx context.Context) {
	defer e.wg.Done()
	if err := shader.Watch(ctx, e.library, logx.Component(e.logger, "shader"), nil); err != nil {
		e.logger.Warn("shader hot reload disabled", "error", err)
	}
}

// onResize forwards a new viewport to the renderer, the camera and the document.
// A zero-area size updates the renderer but leaves the camera aspect alone.
func (e *engine) onResize(width, height int, pixelRatio float64) {
	e.renderer.SetPixelRatio(pixelRatio)
	e.renderer.SetSize(width, height)
	e.document.SetViewportHeight(float64(height))
	if width > 0 && height > 0 {
		e.camera.SetAspect(float32(width) / float32(height))
	}
}

// bindWindow registers the window callbacks.
func (e *engine) bindWindow() {
	if e.window == nil {
		return
	}
	e.window.SetResizeCallback(e.state.OnResize)
	e.window.SetScrollCallback(e.onWheel)
	e.window.SetKeyDownCallback(e.onKeyDown)
	e.window.SetKeyUpCallback(e.onKeyUp)
	e.window.SetMouseButtonCallback(e.onMouseButton)
	e.window.SetMouseMoveCallback(e.onMouseMove)
}

// onWheel scrolls the document, or zooms the camera while Shift is held.
func (e *engine) onWheel(delta float64) {
	if ctrl := e.camera.Controller(); e.shift && ctrl != nil {
		ctrl.Zoom(float32(delta))
		return
	}
	e.document.Wheel(delta)
}

func (e *engine) onKeyDown(key int) {
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		e.shift = true
	case common.KeyH:
		visible := e.panel.Toggle()
		e.logger.Info("debug panel toggled", "visible", visible)
	case common.KeyP:
		e.post(e.panel.Dump)
	case common.KeyB:
		e.post(func() {
			e.stage.SetBloom(!e.stage.Bloom())
			e.logger.Info("bloom toggled", "enabled", e.stage.Bloom())
		})
	default:
		e.document.Key(key)
	}
}

func (e *engine) onKeyUp(key int) {
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		e.shift = false
	}
}

// onMouseButton starts a drag: the left button orbits, right and middle pan.
func (e *engine) onMouseButton(button window.MouseButton, pressed bool, x, y float64) {
	if !pressed {
		if e.drag.active && e.drag.button == button {
			e.drag.active = false
		}
		return
	}
	e.drag = dragState{button: button, active: true, x: x, y: y}
}

func (e *engine) onMouseMove(x, y float64) {
	if !e.drag.active {
		return
	}
	dx, dy := float32(x-e.drag.x), float32(y-e.drag.y)
	e.drag.x, e.drag.y = x, y

	ctrl := e.camera.Controller()
	if ctrl == nil {
		return
	}
	switch e.drag.button {
	case window.MouseButtonLeft:
		ctrl.Rotate(dx, dy)
	default:
		ctrl.PanRight(-dx)
		ctrl.PanUp(dy)
	}
}

// post queues fn on the loop goroutine.
func (e *engine) post(fn func()) {
	if err := e.loop.Post(fn); err != nil {
		e.logger.Debug("dropped posted work", "error", err)
	}
}

// release frees the loader pool, the renderer and the window.
func (e *engine) release() {
	if e.loader != nil {
		e.loader.Release()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			e.logger.Debug("window close", "error", err)
		}
	}
}
