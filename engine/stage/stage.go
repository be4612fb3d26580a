// Package stage owns the scroll-reactive scene: the two tubes, the model, their materials and
// the per-frame uniform update and render.
package stage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/camera"
	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/input"
	"github.com/Carmen-Shannon/scrollbot/engine/loader"
	"github.com/Carmen-Shannon/scrollbot/engine/loop"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/material"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
)

const (
	// DefaultRobotNode is the name of the model child that receives the robot material.
	DefaultRobotNode = "Cube008"
	// DefaultBloomChildIndex is the index of the model child placed on the bloom layer.
	DefaultBloomChildIndex = 0
)

// Stats is a read-only view of the stage state for the debug panel.
type Stats struct {
	Elapsed        float32
	ReactiveLength float32
	LineLength     float32
	AdjustmentY    float32
	Bloom          bool
	ModelAttached  bool
	Meshes         int
}

// Stage is the scene plus everything updated per frame. All methods must be called from the
// frame loop goroutine.
type Stage struct {
	logger   *slog.Logger
	scene    *scene.Scene
	camera   camera.Camera
	renderer renderer.Renderer
	composer *renderer.BloomComposer

	tubeMaterial  material.Material
	robotMaterial material.Material
	bakedMaterial material.Material
	tubes         []*scene.Node

	lineLength     float32
	reactiveLength float32
	elapsed        float32
	heightInvalid  bool

	bloom           bool
	bloomParams     renderer.BloomParams
	robotNode       string
	bloomChildIndex int
	tubeOptions     geometry.TubeOptions
	background      [4]float32

	model       *loader.Model
	adjustmentY float32
}

// NewStage builds the scene: two tubes along the lines, sharing the tube-floor material.
// The line length is taken from line1 once and never changes afterwards.
//
// Parameters:
//   - lines: the line data
//   - baked: the baked color texture applied to the model
//   - r: the renderer to draw with
//   - cam: the camera to draw from
//   - options: functional options to configure the stage
//
// Returns:
//   - *Stage: the new stage
//   - error: an error if a tube cannot be built
func NewStage(lines *loader.Lines, baked *common.TextureStagingData, r renderer.Renderer, cam camera.Camera, options ...StageBuilderOption) (*Stage, error) {
	if err := lines.Validate(); err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	s := &Stage{
		logger:          slog.Default(),
		scene:           scene.NewScene("scrollbot"),
		camera:          cam,
		renderer:        r,
		bloomParams:     renderer.DefaultBloomParams(),
		robotNode:       DefaultRobotNode,
		bloomChildIndex: DefaultBloomChildIndex,
		tubeOptions:     geometry.DefaultTubeOptions(),
		background:      [4]float32{0, 0, 0, 1},
		lineLength:      lines.Line1.Length(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.scene.SetBackground(s.background)
	s.composer = renderer.NewBloomComposer(r, s.bloomParams)
	s.SetBloom(s.bloom)

	s.tubeMaterial = material.NewShaderMaterial("tubeFloor", shader.ProgramTubeFloor,
		[]string{material.UniformTime, material.UniformReactiveLength, material.UniformLineLength},
		material.WithTransparent(true),
	)
	s.robotMaterial = material.NewShaderMaterial("robot", shader.ProgramRobot,
		[]string{material.UniformTime, material.UniformReactiveLength, material.UniformLineLength, material.UniformAdjustmentY},
		material.WithTransparent(true),
	)
	s.bakedMaterial = material.NewBasicMaterial("baked", baked)

	for i, line := range []loader.Polyline{lines.Line1, lines.Line2} {
		curve, err := geometry.NewCatmullRomCurve(line.Points(), geometry.WithCurveType(geometry.CurveCentripetal))
		if err != nil {
			return nil, fmt.Errorf("stage: line%d: %w", i+1, err)
		}
		name := fmt.Sprintf("tube%d", i+1)
		tube := scene.NewNode(name, scene.WithMesh(geometry.NewTubeGeometry(name, curve, s.tubeOptions), s.tubeMaterial))
		s.tubes = append(s.tubes, tube)
		s.scene.Add(tube)
	}
	return s, nil
}

// Scene returns the scene graph.
func (s *Stage) Scene() *scene.Scene { return s.scene }

// Camera returns the camera.
func (s *Stage) Camera() camera.Camera { return s.camera }

// TubeMaterial returns the material shared by both tubes.
func (s *Stage) TubeMaterial() material.Material { return s.tubeMaterial }

// RobotMaterial returns the material of the robot node.
func (s *Stage) RobotMaterial() material.Material { return s.robotMaterial }

// LineLength returns lastZ - firstZ of line1.
func (s *Stage) LineLength() float32 { return s.lineLength }

// ReactiveLength returns the last valid reactive length.
func (s *Stage) ReactiveLength() float32 { return s.reactiveLength }

// Bloom reports whether frames use the two-pass bloom composite.
func (s *Stage) Bloom() bool { return s.bloom }

// SetBloom switches between the single-pass and the two-pass bloom render.
//
// Parameters:
//   - enabled: true for the two-pass bloom composite
func (s *Stage) SetBloom(enabled bool) {
	s.bloom = enabled
	// The composite overwrites the screen, so the base pass must keep its color.
	s.renderer.SetAutoClear(!enabled)
}

// SetBloomParams replaces the bloom parameters.
func (s *Stage) SetBloomParams(params renderer.BloomParams) {
	s.bloomParams = params
	s.composer.SetParams(params)
}

// Stats returns a snapshot of the stage state.
func (s *Stage) Stats() Stats {
	return Stats{
		Elapsed:        s.elapsed,
		ReactiveLength: s.reactiveLength,
		LineLength:     s.lineLength,
		AdjustmentY:    s.adjustmentY,
		Bloom:          s.bloom,
		ModelAttached:  s.model != nil,
		Meshes:         s.scene.MeshCount(),
	}
}

// Frame runs one update followed by one render.
//
// Parameters:
//   - snap: the input state for this frame
//   - f: the frame timing
//
// Returns:
//   - error: an update or render failure
func (s *Stage) Frame(snap input.Snapshot, f loop.Frame) error {
	if err := s.Update(snap, f); err != nil {
		return err
	}
	return s.Render()
}

// Update writes the time and scroll uniforms into both shader materials and advances the controls.
// An invalid document height keeps the previous reactive length and is logged once per change.
//
// Parameters:
//   - snap: the input state for this frame
//   - f: the frame timing
//
// Returns:
//   - error: a uniform write failure
func (s *Stage) Update(snap input.Snapshot, f loop.Frame) error {
	s.elapsed = float32(f.Elapsed.Seconds())

	rl, err := ReactiveLength(snap.ScrollY, snap.ClientHeight)
	switch {
	case err != nil && !s.heightInvalid:
		s.heightInvalid = true
		s.logger.Warn("keeping last reactive length", "scrollY", snap.ScrollY, "clientHeight", snap.ClientHeight, "error", err)
	case err == nil:
		if s.heightInvalid {
			s.heightInvalid = false
			s.logger.Info("document metrics valid again", "clientHeight", snap.ClientHeight)
		}
		s.reactiveLength = rl
	}

	for _, m := range []material.Material{s.tubeMaterial, s.robotMaterial} {
		u := m.Uniforms()
		if err := errors.Join(
			u.Set(material.UniformTime, s.elapsed),
			u.Set(material.UniformReactiveLength, s.reactiveLength),
			u.Set(material.UniformLineLength, s.lineLength),
		); err != nil {
			return fmt.Errorf("stage: update uniforms: %w", err)
		}
	}

	s.camera.Update()
	return nil
}

// Render issues exactly one frame. Single-pass draws every layer with a clear. Two-pass
// draws the bloom layer through the bloom composer, then clears depth only and draws the base
// layer on top.
//
// Returns:
//   - error: a render failure; an unavailable surface skips the frame and is not an error
func (s *Stage) Render() error {
	if err := s.renderer.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrSurfaceUnavailable) {
			return nil
		}
		return fmt.Errorf("stage: begin frame: %w", err)
	}

	layers := s.camera.Layers()
	saved := *layers
	defer func() { *layers = saved }()

	if s.bloom {
		layers.Set(scene.LayerBloom)
		if err := s.composer.Render(s.scene, s.camera); err != nil {
			return s.abort(fmt.Errorf("stage: bloom pass: %w", err))
		}
		s.renderer.ClearDepth()
		layers.Set(scene.LayerBase)
	} else {
		layers.EnableAll()
	}
	if err := s.renderer.Render(s.scene, s.camera); err != nil {
		return s.abort(fmt.Errorf("stage: base pass: %w", err))
	}
	return s.renderer.EndFrame()
}

// abort closes the open frame so the renderer is not left mid-frame.
func (s *Stage) abort(err error) error {
	if endErr := s.renderer.EndFrame(); endErr != nil {
		return errors.Join(err, endErr)
	}
	return err
}
