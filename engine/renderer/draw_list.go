package renderer

import (
	"sort"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
)

// CollectDrawList walks the visible part of the scene and returns the draw items the camera
// can see: nodes that carry a mesh and a material, share at least one layer with the camera,
// and whose bounding sphere intersects the view frustum.
//
// Opaque items keep scene order and come first. Transparent items follow, sorted far to near.
//
// Parameters:
//   - s: the scene to walk
//   - cam: the camera providing layers and the view-projection matrix
//
// Returns:
//   - []DrawItem: the ordered draw list
func CollectDrawList(s *scene.Scene, cam camera.Camera) []DrawItem {
	viewProj := cam.ViewProjectionMatrix()
	frustum := common.ExtractFrustum(viewProj[:])
	camLayers := *cam.Layers()
	eye := cam.Position()

	var opaque, transparent []DrawItem
	var depth []float32

	s.TraverseVisible(func(n *scene.Node) {
		if n.Mesh() == nil || n.Material() == nil {
			return
		}
		if !n.Layers().Test(camLayers) {
			return
		}

		world := n.WorldMatrix()
		center, radius := n.Mesh().BoundingSphere()
		wc := common.TransformPoint(world[:], center)
		if !frustum.IntersectsSphere(wc, radius*common.MaxScale(world[:])) {
			return
		}

		item := DrawItem{
			NodeID:   n.ID(),
			Name:     n.Name(),
			Geometry: n.Mesh(),
			Material: n.Material(),
			Model:    world,
		}
		if !n.Material().Transparent() {
			opaque = append(opaque, item)
			return
		}
		dx, dy, dz := wc[0]-eye[0], wc[1]-eye[1], wc[2]-eye[2]
		transparent = append(transparent, item)
		depth = append(depth, dx*dx+dy*dy+dz*dz)
	})

	if len(transparent) > 1 {
		order := make([]int, len(transparent))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return depth[order[a]] > depth[order[b]] })
		sorted := make([]DrawItem, len(order))
		for i, idx := range order {
			sorted[i] = transparent[idx]
		}
		transparent = sorted
	}
	return append(opaque, transparent...)
}
