package scene

import (
	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/google/uuid"
)

// Node is one element of the scene graph: a transform, a layer mask and an optional mesh with its material.
// Nodes are owned by the frame loop goroutine and are not safe for concurrent mutation.
type Node struct {
	id       uuid.UUID
	name     string
	position [3]float32
	rotation [4]float32
	scale    [3]float32
	layers   Layers
	visible  bool
	mesh     *geometry.Geometry
	material material.Material
	parent   *Node
	children []*Node
}

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(*Node)

// WithPosition sets the node's local translation.
func WithPosition(p [3]float32) NodeBuilderOption {
	return func(n *Node) {
		n.position = p
	}
}

// WithRotation sets the node's local rotation as a unit quaternion (x, y, z, w).
func WithRotation(q [4]float32) NodeBuilderOption {
	return func(n *Node) {
		n.rotation = q
	}
}

// WithScale sets the node's local scale.
func WithScale(s [3]float32) NodeBuilderOption {
	return func(n *Node) {
		n.scale = s
	}
}

// WithMesh attaches geometry and the material it is drawn with.
//
// Parameters:
//   - mesh: the geometry
//   - mat: the material
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMesh(mesh *geometry.Geometry, mat material.Material) NodeBuilderOption {
	return func(n *Node) {
		n.mesh = mesh
		n.material = mat
	}
}

// NewNode creates a visible node on the base layer with an identity transform.
//
// Parameters:
//   - name: the node name used by FindByName
//   - options: functional options to configure the node
//
// Returns:
//   - *Node: the new node
func NewNode(name string, options ...NodeBuilderOption) *Node {
	n := &Node{
		id:       uuid.New(),
		name:     name,
		rotation: [4]float32{0, 0, 0, 1},
		scale:    [3]float32{1, 1, 1},
		layers:   NewLayers(),
		visible:  true,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *Node) ID() uuid.UUID { return n.id }

func (n *Node) Name() string { return n.name }

func (n *Node) Position() [3]float32 { return n.position }

func (n *Node) SetPosition(p [3]float32) { n.position = p }

func (n *Node) Rotation() [4]float32 { return n.rotation }

func (n *Node) SetRotation(q [4]float32) { n.rotation = q }

func (n *Node) Scale() [3]float32 { return n.scale }

func (n *Node) SetScale(s [3]float32) { n.scale = s }

// Layers returns the node's layer mask for in-place mutation.
func (n *Node) Layers() *Layers { return &n.layers }

func (n *Node) Visible() bool { return n.visible }

func (n *Node) SetVisible(v bool) { n.visible = v }

func (n *Node) Mesh() *geometry.Geometry { return n.mesh }

func (n *Node) Material() material.Material { return n.material }

// SetMaterial swaps the material used to draw the node's mesh.
func (n *Node) SetMaterial(m material.Material) { n.material = m }

func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list, in insertion order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Add attaches children to this node, detaching each from any previous parent first.
//
// Parameters:
//   - children: the nodes to attach
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child. Removing a node that is not a child is a no-op.
//
// Parameters:
//   - child: the node to detach
//
// Returns:
//   - bool: true if the child was found and removed
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Traverse calls fn for this node and every descendant, depth first, parents before children.
//
// Parameters:
//   - fn: the visitor
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseVisible is Traverse restricted to visible subtrees.
//
// Parameters:
//   - fn: the visitor
func (n *Node) TraverseVisible(fn func(*Node)) {
	if !n.visible {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.TraverseVisible(fn)
	}
}

// FindByName searches this node and its descendants for the first node with the given name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - *Node: the matching node
//   - error: *NodeNotFoundError if no descendant carries that name
func (n *Node) FindByName(name string) (*Node, error) {
	if found := n.findByName(name); found != nil {
		return found, nil
	}
	return nil, &NodeNotFoundError{Name: name, Root: n.name}
}

func (n *Node) findByName(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.findByName(name); found != nil {
			return found
		}
	}
	return nil
}

// LocalMatrix composes the node's translation, rotation and scale into a column-major matrix.
//
// Returns:
//   - [16]float32: the local transform
func (n *Node) LocalMatrix() [16]float32 {
	var m [16]float32
	common.ComposeMatrix(m[:], n.position, n.rotation, n.scale)
	return m
}

// WorldMatrix multiplies the local matrices from the root down to this node.
//
// Returns:
//   - [16]float32: the world transform
func (n *Node) WorldMatrix() [16]float32 {
	local := n.LocalMatrix()
	if n.parent == nil {
		return local
	}
	parent := n.parent.WorldMatrix()
	var out [16]float32
	common.Mul4(out[:], parent[:], local[:])
	return out
}
