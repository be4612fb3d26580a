package loader

import (
	"errors"

	"github.com/Carmen-Shannon/scrollbot/engine/scene"
)

// ErrCompressedPrimitive is returned when a KHR_draco_mesh_compression primitive cannot be decoded.
var ErrCompressedPrimitive = errors.New("loader: cannot decode draco-compressed primitive")

// Model is an imported model: a node hierarchy ready to be added to a scene.
// Mesh nodes carry geometry and no material; materials are assigned when the model is attached.
type Model struct {
	// Name is the model name taken from the scene or file.
	Name string
	// Root is the model root. Its children are the top-level nodes of the model's scene.
	Root *scene.Node
	// MeshCount is the number of nodes that received geometry.
	MeshCount int
	// Warnings lists non-fatal problems such as primitives without geometry.
	Warnings []error
}
