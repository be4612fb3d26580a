package renderer

import (
	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
)

// BloomComposer renders a scene into the offscreen target and composites it with an
// unreal-style bloom onto the screen. Only nodes on the camera's enabled layers contribute.
type BloomComposer struct {
	renderer Renderer
	params   BloomParams
}

// NewBloomComposer creates a composer drawing through the given renderer.
//
// Parameters:
//   - r: the renderer that owns the offscreen and bloom targets
//   - params: the initial bloom parameters
//
// Returns:
//   - *BloomComposer: the new composer
func NewBloomComposer(r Renderer, params BloomParams) *BloomComposer {
	return &BloomComposer{renderer: r, params: params}
}

// Render draws the scene offscreen and then runs the bright, blur and composite passes.
//
// Parameters:
//   - s: the scene to draw
//   - cam: the camera to draw from
//
// Returns:
//   - error: an error from either stage
func (b *BloomComposer) Render(s *scene.Scene, cam camera.Camera) error {
	if err := b.renderer.RenderTo(TargetOffscreen, s, cam); err != nil {
		return err
	}
	return b.renderer.ApplyBloom(b.params)
}

// SetParams replaces the bloom parameters used by the next Render.
func (b *BloomComposer) SetParams(params BloomParams) {
	b.params = params
}

// Params returns the current bloom parameters.
func (b *BloomComposer) Params() BloomParams {
	return b.params
}
