package stage

import (
	"errors"

	"github.com/Carmen-Shannon/scrollbot/engine/loader"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
)

// ErrRobotWithoutMesh is returned when the robot child exists but no node under it carries geometry.
var ErrRobotWithoutMesh = errors.New("stage: robot node has no mesh")

// AttachModel adds a loaded model to the scene.
//
// Every mesh gets the baked material. The model root's children are partitioned by index: the
// bloom child (and its subtree) goes on the bloom layer only, every other child on the base layer
// only. The child named by the robot node option gets the robot material, and its Y position
// becomes uAdjustmentY.
//
// A missing robot child is reported as *scene.NodeNotFoundError. The model is still added with
// the baked material only. A robot child without any mesh is reported as ErrRobotWithoutMesh
// after uAdjustmentY has been set.
//
// Parameters:
//   - m: the loaded model
//
// Returns:
//   - error: *scene.NodeNotFoundError if the robot child is missing, ErrRobotWithoutMesh, or a uniform error
func (s *Stage) AttachModel(m *loader.Model) error {
	if s.model != nil {
		s.scene.Remove(s.model.Root)
	}

	m.Root.Traverse(func(n *scene.Node) {
		if n.Mesh() != nil {
			n.SetMaterial(s.bakedMaterial)
		}
	})

	for i, child := range m.Root.Children() {
		layer := scene.LayerBase
		if i == s.bloomChildIndex {
			layer = scene.LayerBloom
		}
		child.Traverse(func(n *scene.Node) {
			n.Layers().Set(layer)
		})
	}

	s.scene.Add(m.Root)
	s.model = m

	robot := findChild(m.Root, s.robotNode)
	if robot == nil {
		return &scene.NodeNotFoundError{Name: s.robotNode, Root: m.Name}
	}
	meshes := 0
	robot.Traverse(func(n *scene.Node) {
		if n.Mesh() != nil {
			n.SetMaterial(s.robotMaterial)
			meshes++
		}
	})
	s.adjustmentY = robot.Position()[1]
	if err := s.robotMaterial.Uniforms().Set(material.UniformAdjustmentY, s.adjustmentY); err != nil {
		return err
	}
	if meshes == 0 {
		return ErrRobotWithoutMesh
	}
	return nil
}

// findChild looks up a direct child by name.
func findChild(n *scene.Node, name string) *scene.Node {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
