package scene

// Scene is the root of the graph. It is a plain node with a background color for the clear pass.
type Scene struct {
	*Node
	background [4]float32
}

// NewScene creates an empty scene with a black, opaque background.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - *Scene: the new scene
func NewScene(name string) *Scene {
	return &Scene{
		Node:       NewNode(name),
		background: [4]float32{0, 0, 0, 1},
	}
}

// Background returns the clear color.
func (s *Scene) Background() [4]float32 {
	return s.background
}

// SetBackground sets the clear color.
func (s *Scene) SetBackground(c [4]float32) {
	s.background = c
}

// MeshCount counts the nodes in the graph that carry geometry.
func (s *Scene) MeshCount() int {
	count := 0
	s.Traverse(func(n *Node) {
		if n.mesh != nil {
			count++
		}
	})
	return count
}
