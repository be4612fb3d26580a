package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayersDefaultsToBase(t *testing.T) {
	l := NewLayers()
	assert.True(t, l.IsEnabled(LayerBase))
	assert.False(t, l.IsEnabled(LayerBloom))
	assert.Equal(t, uint32(1), l.Mask())
}

func TestLayersTest(t *testing.T) {
	tests := []struct {
		name   string
		node   func(*Layers)
		camera func(*Layers)
		want   bool
	}{
		{"bloom node, bloom camera", func(l *Layers) { l.Set(LayerBloom) }, func(l *Layers) { l.Set(LayerBloom) }, true},
		{"bloom node, base camera", func(l *Layers) { l.Set(LayerBloom) }, func(l *Layers) { l.Set(LayerBase) }, false},
		{"base node, bloom camera", func(l *Layers) { l.Set(LayerBase) }, func(l *Layers) { l.Set(LayerBloom) }, false},
		{"bloom node, all layers", func(l *Layers) { l.Set(LayerBloom) }, func(l *Layers) { l.EnableAll() }, true},
		{"both layers, base camera", func(l *Layers) { l.Enable(LayerBloom) }, func(l *Layers) { l.Set(LayerBase) }, true},
		{"disabled node", func(l *Layers) { l.Disable(LayerBase) }, func(l *Layers) { l.EnableAll() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, cam := NewLayers(), NewLayers()
			tt.node(&node)
			tt.camera(&cam)
			assert.Equal(t, tt.want, node.Test(cam))
		})
	}
}

func TestLayersOutOfRangeIgnored(t *testing.T) {
	l := NewLayers()
	l.Enable(40)
	l.Enable(-1)
	assert.Equal(t, uint32(1), l.Mask())
}

func TestNodeAddReparents(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	child := NewNode("child")

	a.Add(child)
	b.Add(child)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, b, child.Parent())
}

func TestFindByName(t *testing.T) {
	s := NewScene("root")
	model := NewNode("model")
	robot := NewNode("Cube008", WithPosition([3]float32{0, 2.5, 0}))
	model.Add(NewNode("Cube001"), robot)
	s.Add(model)

	found, err := s.FindByName("Cube008")
	require.NoError(t, err)
	assert.Same(t, robot, found)
	assert.Equal(t, float32(2.5), found.Position()[1])

	_, err = model.FindByName("Cube999")
	var notFound *NodeNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Cube999", notFound.Name)
	assert.Equal(t, "model", notFound.Root)
}

func TestTraverseVisibleSkipsHiddenSubtrees(t *testing.T) {
	root := NewNode("root")
	hidden := NewNode("hidden")
	hidden.Add(NewNode("grandchild"))
	hidden.SetVisible(false)
	root.Add(hidden, NewNode("shown"))

	var all, visible []string
	root.Traverse(func(n *Node) { all = append(all, n.Name()) })
	root.TraverseVisible(func(n *Node) { visible = append(visible, n.Name()) })

	assert.Equal(t, []string{"root", "hidden", "grandchild", "shown"}, all)
	assert.Equal(t, []string{"root", "shown"}, visible)
}

func TestWorldMatrixComposesParents(t *testing.T) {
	parent := NewNode("parent", WithPosition([3]float32{1, 0, 0}), WithScale([3]float32{2, 2, 2}))
	child := NewNode("child", WithPosition([3]float32{0, 3, 0}))
	parent.Add(child)

	m := child.WorldMatrix()
	assert.InDelta(t, 1, m[12], 1e-6)
	assert.InDelta(t, 6, m[13], 1e-6)
	assert.InDelta(t, 2, m[0], 1e-6)
}
