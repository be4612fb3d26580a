package stage

import (
	"log/slog"

	"github.com/Carmen-Shannon/scrollbot/engine/geometry"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer"
)

// StageBuilderOption is a functional option for configuring a Stage.
type StageBuilderOption func(*Stage)

// WithLogger sets the logger for configuration and metric warnings.
func WithLogger(logger *slog.Logger) StageBuilderOption {
	return func(s *Stage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRobotNode sets the name of the model child that receives the robot material.
//
// Parameters:
//   - name: the child name
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithRobotNode(name string) StageBuilderOption {
	return func(s *Stage) {
		if name != "" {
			s.robotNode = name
		}
	}
}

// WithBloomChildIndex sets which model child is placed on the bloom layer.
// A negative index puts every child on the base layer.
//
// Parameters:
//   - index: the child index
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithBloomChildIndex(index int) StageBuilderOption {
	return func(s *Stage) {
		s.bloomChildIndex = index
	}
}

// WithBloom enables the two-pass bloom render with the given parameters.
// The parameters are used as given; a zero threshold blooms every lit pixel.
//
// Parameters:
//   - enabled: true to start in two-pass mode
//   - params: the bloom parameters
//
// Returns:
//   - StageBuilderOption: option function to apply
func WithBloom(enabled bool, params renderer.BloomParams) StageBuilderOption {
	return func(s *Stage) {
		s.bloom = enabled
		s.bloomParams = params
	}
}

// WithTubeOptions overrides the tube cross-section and sampling.
func WithTubeOptions(opts geometry.TubeOptions) StageBuilderOption {
	return func(s *Stage) {
		s.tubeOptions = opts
	}
}

// WithBackground sets the scene clear color.
func WithBackground(color [4]float32) StageBuilderOption {
	return func(s *Stage) {
		s.background = color
	}
}
