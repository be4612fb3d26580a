package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrEmptyPolyline is returned when a line in the line data has no points.
var ErrEmptyPolyline = errors.New("loader: polyline has no points")

// Polyline is an ordered list of 3D points.
type Polyline [][3]float32

// Points converts the polyline to vectors for curve construction.
func (p Polyline) Points() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(p))
	for i, v := range p {
		out[i] = mgl32.Vec3(v)
	}
	return out
}

// Length returns lastZ - firstZ. It is 0 for an empty polyline.
func (p Polyline) Length() float32 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1][2] - p[0][2]
}

// Lines is the decoded line data file.
type Lines struct {
	Line1 Polyline `json:"line1"`
	Line2 Polyline `json:"line2"`
}

// Validate checks that both lines have at least one point.
func (l *Lines) Validate() error {
	if len(l.Line1) == 0 {
		return fmt.Errorf("line1: %w", ErrEmptyPolyline)
	}
	if len(l.Line2) == 0 {
		return fmt.Errorf("line2: %w", ErrEmptyPolyline)
	}
	return nil
}

// ParseLines decodes and validates line data.
//
// Parameters:
//   - data: the JSON document {"line1": [[x,y,z],...], "line2": [...]}
//
// Returns:
//   - *Lines: the decoded lines
//   - error: a decode or validation error
func ParseLines(data []byte) (*Lines, error) {
	var l Lines
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func readLines(path string) (*Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLines(data)
}
