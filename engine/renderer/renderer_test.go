package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPass struct {
	opts  PassOptions
	draws []string
}

// recordingBackend records every call instead of talking to a GPU.
type recordingBackend struct {
	configures [][2]int
	present    []PresentMode
	frames     int
	passes     []recordedPass
	blooms     []BloomParams
	ended      int
	presented  int
	released   bool

	beginErr error
	drawErr  error
}

var _ RendererBackend = &recordingBackend{}

func (b *recordingBackend) ConfigureSurface(width, height int) error {
	b.configures = append(b.configures, [2]int{width, height})
	return nil
}

func (b *recordingBackend) SetPresentMode(mode PresentMode) {
	b.present = append(b.present, mode)
}

func (b *recordingBackend) BeginFrame() error {
	if b.beginErr != nil {
		return b.beginErr
	}
	b.frames++
	return nil
}

func (b *recordingBackend) BeginPass(opts PassOptions) error {
	b.passes = append(b.passes, recordedPass{opts: opts})
	return nil
}

func (b *recordingBackend) Draw(item DrawItem) error {
	if b.drawErr != nil {
		return b.drawErr
	}
	last := &b.passes[len(b.passes)-1]
	last.draws = append(last.draws, item.Name)
	return nil
}

func (b *recordingBackend) EndPass() {}

func (b *recordingBackend) Bloom(params BloomParams) error {
	b.blooms = append(b.blooms, params)
	return nil
}

func (b *recordingBackend) EndFrame() error {
	b.ended++
	return nil
}

func (b *recordingBackend) Present() { b.presented++ }

func (b *recordingBackend) Release() { b.released = true }

func triangle() *geometry.Geometry {
	return geometry.NewGeometry("tri", []geometry.Vertex{
		{Position: [3]float32{-1, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint32{0, 1, 2})
}

func meshNode(name string, transparent bool, layer int, pos [3]float32) *scene.Node {
	mat := material.NewShaderMaterial(name, shader.ProgramTubeFloor,
		[]string{material.UniformTime}, material.WithTransparent(transparent))
	n := scene.NewNode(name, scene.WithMesh(triangle(), mat), scene.WithPosition(pos))
	n.Layers().Set(layer)
	return n
}

func newTestCamera(layers ...int) camera.Camera {
	ctrl := camera.NewCameraController(camera.WithPosition(0, 0, 20))
	return camera.NewCamera(camera.WithController(ctrl), camera.WithLayers(layers...))
}

func newTestRenderer(t *testing.T) (Renderer, *recordingBackend) {
	t.Helper()
	b := &recordingBackend{}
	r := NewRenderer(b, WithSize(800, 600, 1))
	require.NoError(t, r.BeginFrame())
	return r, b
}

func TestPixelRatioIsCappedAndDrawingBufferScales(t *testing.T) {
	tests := []struct {
		name         string
		ratio        float64
		wantRatio    float64
		wantW, wantH int
	}{
		{"standard", 1, 1, 800, 600},
		{"retina", 2, 2, 1600, 1200},
		{"capped", 3, 2, 1600, 1200},
		{"fractional", 1.5, 1.5, 1200, 900},
		{"invalid", -1, 1, 800, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(&recordingBackend{})
			r.SetSize(800, 600)
			r.SetPixelRatio(tt.ratio)

			assert.Equal(t, tt.wantRatio, r.PixelRatio())
			w, h := r.Size()
			assert.Equal(t, 800, w)
			assert.Equal(t, 600, h)
			dw, dh := r.DrawingBufferSize()
			assert.Equal(t, tt.wantW, dw)
			assert.Equal(t, tt.wantH, dh)
		})
	}
}

func TestMaxPixelRatioOption(t *testing.T) {
	r := NewRenderer(&recordingBackend{}, WithMaxPixelRatio(1.25))
	r.SetPixelRatio(2)
	assert.Equal(t, 1.25, r.PixelRatio())
}

func TestBeginFrameReconfiguresOnlyOnChange(t *testing.T) {
	b := &recordingBackend{}
	r := NewRenderer(b, WithSize(800, 600, 2))

	for range 3 {
		require.NoError(t, r.BeginFrame())
		require.NoError(t, r.EndFrame())
	}
	assert.Equal(t, [][2]int{{1600, 1200}}, b.configures)

	r.SetSize(1024, 768)
	r.SetSize(1024, 768)
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())
	assert.Equal(t, [][2]int{{1600, 1200}, {2048, 1536}}, b.configures)
	assert.Equal(t, 4, b.presented)
}

func TestBeginFrameWithEmptySurface(t *testing.T) {
	b := &recordingBackend{}
	r := NewRenderer(b, WithSize(0, 600, 1))

	assert.ErrorIs(t, r.BeginFrame(), ErrSurfaceUnavailable)
	assert.Empty(t, b.configures)
	assert.ErrorIs(t, r.Render(scene.NewScene("s"), newTestCamera(scene.LayerBase)), ErrNoFrame)
}

func TestStaleSurfaceForcesReconfigure(t *testing.T) {
	b := &recordingBackend{}
	r := NewRenderer(b, WithSize(100, 100, 1))
	require.NoError(t, r.BeginFrame())
	require.NoError(t, r.EndFrame())

	b.beginErr = ErrSurfaceUnavailable
	assert.ErrorIs(t, r.BeginFrame(), ErrSurfaceUnavailable)

	b.beginErr = nil
	require.NoError(t, r.BeginFrame())
	assert.Len(t, b.configures, 2)
}

func TestPresentModeIsForwarded(t *testing.T) {
	b := &recordingBackend{}
	r := NewRenderer(b, WithSize(10, 10, 1), WithPresentMode(PresentModeUncapped))
	assert.Equal(t, []PresentMode{PresentModeUncapped}, b.present)

	r.SetPresentMode(PresentModeVSync)
	require.NoError(t, r.BeginFrame())
	assert.Equal(t, []PresentMode{PresentModeUncapped, PresentModeVSync}, b.present)
}

func TestRenderHonorsCameraLayers(t *testing.T) {
	s := scene.NewScene("s")
	s.Add(
		meshNode("base", false, scene.LayerBase, [3]float32{}),
		meshNode("bloom", false, scene.LayerBloom, [3]float32{}),
	)

	r, b := newTestRenderer(t)
	cam := newTestCamera(scene.LayerBloom)
	require.NoError(t, r.RenderTo(TargetOffscreen, s, cam))

	cam.Layers().Set(scene.LayerBase)
	require.NoError(t, r.Render(s, cam))

	require.Len(t, b.passes, 2)
	assert.Equal(t, []string{"bloom"}, b.passes[0].draws)
	assert.Equal(t, []string{"base"}, b.passes[1].draws)
}

func TestTwoPassClearSemantics(t *testing.T) {
	s := scene.NewScene("s")
	s.SetBackground([4]float32{0.1, 0.2, 0.3, 1})
	s.Add(meshNode("base", false, scene.LayerBase, [3]float32{}))

	r, b := newTestRenderer(t)
	r.SetAutoClear(false)
	composer := NewBloomComposer(r, DefaultBloomParams())

	cam := newTestCamera(scene.LayerBloom)
	require.NoError(t, composer.Render(s, cam))
	r.ClearDepth()
	cam.Layers().Set(scene.LayerBase)
	require.NoError(t, r.Render(s, cam))
	require.NoError(t, r.EndFrame())

	require.Len(t, b.passes, 2)
	off := b.passes[0].opts
	assert.Equal(t, TargetOffscreen, off.Target)
	assert.True(t, off.ClearColor)
	assert.True(t, off.ClearDepth)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, off.Color, "composite shows the offscreen clear as background")

	screen := b.passes[1].opts
	assert.Equal(t, TargetScreen, screen.Target)
	assert.False(t, screen.ClearColor)
	assert.True(t, screen.ClearDepth)

	assert.Equal(t, []BloomParams{DefaultBloomParams()}, b.blooms)
	assert.Equal(t, 1, b.ended)
}

func TestAutoClearUsesSceneBackground(t *testing.T) {
	s := scene.NewScene("s")
	s.SetBackground([4]float32{0.1, 0.2, 0.3, 1})

	r, b := newTestRenderer(t)
	require.NoError(t, r.Render(s, newTestCamera(scene.LayerBase)))

	require.Len(t, b.passes, 1)
	assert.True(t, b.passes[0].opts.ClearColor)
	assert.True(t, b.passes[0].opts.ClearDepth)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, b.passes[0].opts.Color)
}

func TestClearDepthIsConsumedOnce(t *testing.T) {
	s := scene.NewScene("s")
	r, b := newTestRenderer(t)
	r.SetAutoClear(false)
	cam := newTestCamera(scene.LayerBase)

	r.ClearDepth()
	require.NoError(t, r.Render(s, cam))
	require.NoError(t, r.Render(s, cam))

	require.Len(t, b.passes, 2)
	assert.True(t, b.passes[0].opts.ClearDepth)
	assert.False(t, b.passes[1].opts.ClearDepth)
}

func TestDrawListOrdersTransparentFarToNear(t *testing.T) {
	s := scene.NewScene("s")
	s.Add(
		meshNode("near", true, scene.LayerBase, [3]float32{0, 0, 5}),
		meshNode("opaque", false, scene.LayerBase, [3]float32{}),
		meshNode("far", true, scene.LayerBase, [3]float32{0, 0, -5}),
	)

	items := CollectDrawList(s, newTestCamera(scene.LayerBase))
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"opaque", "far", "near"}, names)
}

func TestDrawListCullsOutsideFrustumAndHidden(t *testing.T) {
	s := scene.NewScene("s")
	behind := meshNode("behind", false, scene.LayerBase, [3]float32{0, 0, 100})
	hidden := meshNode("hidden", false, scene.LayerBase, [3]float32{})
	hidden.SetVisible(false)
	s.Add(behind, hidden, meshNode("visible", false, scene.LayerBase, [3]float32{}))

	items := CollectDrawList(s, newTestCamera(scene.LayerBase))
	require.Len(t, items, 1)
	assert.Equal(t, "visible", items[0].Name)
}

func TestDrawErrorIsWrapped(t *testing.T) {
	s := scene.NewScene("s")
	s.Add(meshNode("base", false, scene.LayerBase, [3]float32{}))

	r, b := newTestRenderer(t)
	boom := errors.New("boom")
	b.drawErr = boom
	err := r.Render(s, newTestCamera(scene.LayerBase))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"base"`)
}

func TestEndFrameWithoutBegin(t *testing.T) {
	r := NewRenderer(&recordingBackend{})
	assert.ErrorIs(t, r.EndFrame(), ErrNoFrame)
	assert.ErrorIs(t, r.ApplyBloom(DefaultBloomParams()), ErrNoFrame)
}

func TestBloomComposerParams(t *testing.T) {
	c := NewBloomComposer(NewRenderer(&recordingBackend{}), DefaultBloomParams())
	c.SetParams(BloomParams{Strength: 2})
	assert.Equal(t, BloomParams{Strength: 2}, c.Params())
}
