package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/config"
	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/loader"
	"github.com/Carmen-Shannon/scrollbot/engine/loop"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
	"github.com/Carmen-Shannon/scrollbot/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend counts frames and draws. It is only read after Run returns.
type fakeBackend struct {
	frames  int
	draws   int
	beginFn func() error
}

var _ renderer.RendererBackend = &fakeBackend{}

func (b *fakeBackend) ConfigureSurface(int, int) error { return nil }
func (b *fakeBackend) SetPresentMode(renderer.PresentMode) {}
func (b *fakeBackend) BeginPass(renderer.PassOptions) error { return nil }
func (b *fakeBackend) Draw(renderer.DrawItem) error { b.draws++; return nil }
func (b *fakeBackend) EndPass() {}
func (b *fakeBackend) Bloom(renderer.BloomParams) error { return nil }
func (b *fakeBackend) EndFrame() error { return nil }
func (b *fakeBackend) Present() {}
func (b *fakeBackend) Release() {}

func (b *fakeBackend) BeginFrame() error {
	if b.beginFn != nil {
		if err := b.beginFn(); err != nil {
			return err
		}
	}
	b.frames++
	return nil
}

// testAssets writes a lines file and a 1x1 texture and returns a config pointing at them.
func testAssets(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	linesPath := filepath.Join(dir, "lines.json")
	require.NoError(t, os.WriteFile(linesPath, []byte(`{"line1": [[0,0,-2],[0.5,0,0],[0,0,6]], "line2": [[1,0,-2],[1,0,6]]}`), 0o644))

	texPath := filepath.Join(dir, "baked.png")
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	f, err := os.Create(texPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 800, 600
	cfg.Assets.Lines = linesPath
	cfg.Assets.Texture = texPath
	cfg.Assets.Model = filepath.Join(dir, "robot.glb")
	return cfg
}

func testModel() *loader.Model {
	tri := func() *geometry.Geometry {
		return geometry.NewGeometry("tri", []geometry.Vertex{
			{Position: [3]float32{-1, -1, 0}},
			{Position: [3]float32{1, -1, 0}},
			{Position: [3]float32{0, 1, 0}},
		}, []uint32{0, 1, 2})
	}
	root := scene.NewNode("robot")
	root.Add(
		scene.NewNode("Glow", scene.WithMesh(tri(), nil)),
		scene.NewNode("Cube008", scene.WithMesh(tri(), nil), scene.WithPosition([3]float32{0, 2.5, 0})),
	)
	return &loader.Model{Name: "robot", Root: root, MeshCount: 2}
}

func newTestEngine(t *testing.T, cfg config.Config, b *fakeBackend, ticks <-chan time.Time) *engine {
	t.Helper()
	l := loader.NewLoader(loader.WithWorkers(1), loader.WithModel(cfg.Assets.Model, testModel()))
	r := renderer.NewRenderer(b, renderer.WithSize(cfg.Window.Width, cfg.Window.Height, 1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e, err := NewEngine(ctx,
		WithConfig(cfg),
		WithRenderer(r),
		WithLoader(l),
		WithLoopOptions(loop.WithTicks(ticks)),
	)
	require.NoError(t, err)
	return e.(*engine)
}

// drive sends ticks until ctx is done.
func drive(ctx context.Context, ticks chan<- time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case ticks <- time.Now():
		}
	}
}

func TestResizeUpdatesRendererCameraAndDocument(t *testing.T) {
	cfg := testAssets(t)
	e := newTestEngine(t, cfg, &fakeBackend{}, make(chan time.Time))

	e.State().OnResize(800, 400, 3)

	w, h := e.Renderer().Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
	assert.Equal(t, 2.0, e.Renderer().PixelRatio())
	assert.Equal(t, float32(2), e.Stage().Camera().Aspect())
	assert.Equal(t, cfg.Document.Height-400, e.Document().MaxOffset())

	e.State().OnResize(0, 0, 1)
	w, h = e.Renderer().Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, float32(2), e.Stage().Camera().Aspect())
}

func TestKeysAndWheelScrollTheDocument(t *testing.T) {
	e := newTestEngine(t, testAssets(t), &fakeBackend{}, make(chan time.Time))

	e.onKeyDown(common.KeyDown)
	assert.Equal(t, 40.0, e.Document().Offset())

	e.onWheel(-1)
	assert.Equal(t, 140.0, e.Document().Offset())
	assert.Equal(t, 140.0, e.State().Snapshot().ScrollY)

	e.onKeyDown(common.KeyLeftShift)
	e.onWheel(-1)
	assert.Equal(t, 140.0, e.Document().Offset())
	e.onKeyUp(common.KeyLeftShift)

	e.onKeyDown(common.KeyHome)
	assert.Zero(t, e.Document().Offset())

	assert.False(t, e.Panel().Visible())
	e.onKeyDown(common.KeyH)
	assert.True(t, e.Panel().Visible())
}

func TestRunAttachesModelAsynchronously(t *testing.T) {
	cfg := testAssets(t)
	b := &fakeBackend{}
	ticks := make(chan time.Time)
	e := newTestEngine(t, cfg, b, ticks)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()
	go drive(ctx, ticks)

	select {
	case <-e.ModelReady():
	case <-ctx.Done():
		t.Fatal("model was never attached")
	}
	cancel()
	require.NoError(t, <-errCh)

	robot, err := e.Stage().Scene().FindByName("Cube008")
	require.NoError(t, err)
	assert.Same(t, e.Stage().RobotMaterial(), robot.Material())
	v, err := e.Stage().RobotMaterial().Uniforms().Get(material.UniformAdjustmentY)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), v)
	assert.Positive(t, b.frames)
}

func TestRunKeepsModelWhenRobotNodeIsMissing(t *testing.T) {
	cfg := testAssets(t)
	cfg.Model.RobotNode = "Missing"
	ticks := make(chan time.Time)
	e := newTestEngine(t, cfg, &fakeBackend{}, ticks)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()
	go drive(ctx, ticks)

	<-e.ModelReady()
	e.Quit()
	e.Quit()
	require.NoError(t, <-errCh)

	_, err := e.Stage().Scene().FindByName("Glow")
	assert.NoError(t, err)
}

func TestModelReadyClosesWhenLoopStopsBeforeAttach(t *testing.T) {
	e := newTestEngine(t, testAssets(t), &fakeBackend{}, make(chan time.Time))

	e.wg.Add(1)
	go e.handleModel(context.Background(), loader.Resolved(testModel(), nil))
	e.loop.Stop()

	select {
	case <-e.ModelReady():
	case <-time.After(2 * time.Second):
		t.Fatal("ModelReady never closed")
	}
	e.wg.Wait()
	_, err := e.Stage().Scene().FindByName("Cube008")
	assert.Error(t, err, "the model is never attached once the loop stopped")
	e.release()
}

func TestRunReturnsFrameError(t *testing.T) {
	boom := errors.New("device lost")
	b := &fakeBackend{beginFn: func() error { return boom }}
	ticks := make(chan time.Time)
	e := newTestEngine(t, testAssets(t), b, ticks)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go drive(ctx, ticks)

	err := e.Run(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestNewEngineFailsOnMissingLines(t *testing.T) {
	cfg := testAssets(t)
	cfg.Assets.Lines = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewEngine(context.Background(),
		WithConfig(cfg),
		WithRenderer(renderer.NewRenderer(&fakeBackend{})),
	)
	var loadErr *loader.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "lines", loadErr.Kind)
	assert.ErrorIs(t, err, ErrMissingAsset)
}

func TestNewEngineNamesMissingTextureDirectory(t *testing.T) {
	cfg := testAssets(t)
	dir := filepath.Join(t.TempDir(), "robot")
	cfg.Assets.Texture = filepath.Join(dir, "baked.jpg")

	_, err := NewEngine(context.Background(),
		WithConfig(cfg),
		WithRenderer(renderer.NewRenderer(&fakeBackend{})),
	)
	assert.ErrorIs(t, err, ErrMissingAsset)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, dir)
}

func TestNewEngineValidatesConfig(t *testing.T) {
	cfg := testAssets(t)
	cfg.Camera.Damping = 0

	_, err := NewEngine(context.Background(), WithConfig(cfg), WithRenderer(renderer.NewRenderer(&fakeBackend{})))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

// closingWindow records Close; every other method is inert.
type closingWindow struct {
	closed int
}

var _ window.Window = &closingWindow{}

func (w *closingWindow) SetResizeCallback(window.ResizeCallback) {}
func (w *closingWindow) SetScrollCallback(func(float64)) {}
func (w *closingWindow) SetKeyDownCallback(func(int)) {}
func (w *closingWindow) SetKeyUpCallback(func(int)) {}
func (w *closingWindow) SetMouseButtonCallback(window.MouseButtonCallback) {}
func (w *closingWindow) SetMouseMoveCallback(func(float64, float64)) {}
func (w *closingWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *closingWindow) IsRunning() bool { return w.closed == 0 }
func (w *closingWindow) Close() error { w.closed++; return nil }
func (w *closingWindow) ProcessMessages() bool { return w.closed == 0 }
func (w *closingWindow) Width() int { return 800 }
func (w *closingWindow) Height() int { return 600 }
func (w *closingWindow) PixelRatio() float64 { return 1 }

func TestNewEngineClosesWindowWhenRendererFails(t *testing.T) {
	cfg := testAssets(t)
	cfg.Assets.ShaderDir = t.TempDir()
	bad := filepath.Join(cfg.Assets.ShaderDir, shader.ProgramTubeFloor+".wgsl")
	require.NoError(t, os.WriteFile(bad, []byte("//@scrollbot:include camera object\n"), 0o644))

	w := &closingWindow{}
	_, err := NewEngine(context.Background(), WithConfig(cfg), WithWindow(w))
	require.Error(t, err)
	assert.Equal(t, 1, w.closed)
}

func TestNewEngineRequiresWindowOrRenderer(t *testing.T) {
	_, err := NewEngine(context.Background(), WithConfig(testAssets(t)))
	assert.Error(t, err)
}
