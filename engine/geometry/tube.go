package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// frenetEpsilon is the minimum cross-product length treated as a change in tangent direction.
const frenetEpsilon = 1e-4

// TubeOptions describes the cross-section and sampling of a tube extruded along a curve.
type TubeOptions struct {
	// TubularSegments is the number of segments along the curve.
	TubularSegments int
	// Radius is the tube radius.
	Radius float32
	// RadialSegments is the number of segments around the circumference.
	RadialSegments int
	// Closed makes the last ring reuse the first ring's position and frame.
	Closed bool
}

// DefaultTubeOptions returns the tube settings used for the scroll lines.
func DefaultTubeOptions() TubeOptions {
	return TubeOptions{
		TubularSegments: 100,
		Radius:          0.05,
		RadialSegments:  8,
		Closed:          true,
	}
}

// FrenetFrames holds one tangent, normal and binormal per sample along a curve.
type FrenetFrames struct {
	Tangents  []mgl32.Vec3
	Normals   []mgl32.Vec3
	Binormals []mgl32.Vec3
}

// ComputeFrenetFrames computes parallel-transport frames at segments+1 evenly spaced arc-length samples.
// When closed is set the frames are twisted gradually so the last frame matches the first.
//
// Parameters:
//   - c: the curve to sample
//   - segments: the number of segments
//   - closed: whether to correct twist so the frames close up
//
// Returns:
//   - FrenetFrames: the computed frames
func ComputeFrenetFrames(c *CatmullRomCurve, segments int, closed bool) FrenetFrames {
	f := FrenetFrames{
		Tangents:  make([]mgl32.Vec3, segments+1),
		Normals:   make([]mgl32.Vec3, segments+1),
		Binormals: make([]mgl32.Vec3, segments+1),
	}
	for i := 0; i <= segments; i++ {
		f.Tangents[i] = c.TangentAt(float32(i) / float32(segments))
	}

	// Initial normal: the axis least aligned with the first tangent.
	t0 := f.Tangents[0]
	axis := mgl32.Vec3{1, 0, 0}
	smallest := math32.Abs(t0[0])
	if a := math32.Abs(t0[1]); a <= smallest {
		smallest = a
		axis = mgl32.Vec3{0, 1, 0}
	}
	if a := math32.Abs(t0[2]); a <= smallest {
		axis = mgl32.Vec3{0, 0, 1}
	}
	v := t0.Cross(axis).Normalize()
	f.Normals[0] = t0.Cross(v)
	f.Binormals[0] = t0.Cross(f.Normals[0])

	for i := 1; i <= segments; i++ {
		f.Normals[i] = f.Normals[i-1]
		f.Binormals[i] = f.Binormals[i-1]

		v := f.Tangents[i-1].Cross(f.Tangents[i])
		if v.Len() > frenetEpsilon {
			theta := math32.Acos(clampUnit(f.Tangents[i-1].Dot(f.Tangents[i])))
			f.Normals[i] = mgl32.QuatRotate(theta, v.Normalize()).Rotate(f.Normals[i])
		}
		f.Binormals[i] = f.Tangents[i].Cross(f.Normals[i])
	}

	if closed {
		theta := math32.Acos(clampUnit(f.Normals[0].Dot(f.Normals[segments]))) / float32(segments)
		if f.Tangents[0].Dot(f.Normals[0].Cross(f.Normals[segments])) > 0 {
			theta = -theta
		}
		for i := 1; i <= segments; i++ {
			f.Normals[i] = mgl32.QuatRotate(theta*float32(i), f.Tangents[i]).Rotate(f.Normals[i])
			f.Binormals[i] = f.Tangents[i].Cross(f.Normals[i])
		}
	}
	return f
}

// NewTubeGeometry extrudes a circular cross-section along a curve.
// The result has (TubularSegments+1)*(RadialSegments+1) vertices so UV seams stay sharp.
//
// Parameters:
//   - label: a debug label for the geometry
//   - path: the curve to follow
//   - opts: the tube options
//
// Returns:
//   - *Geometry: the generated mesh
func NewTubeGeometry(label string, path *CatmullRomCurve, opts TubeOptions) *Geometry {
	tubular := max(opts.TubularSegments, 1)
	radial := max(opts.RadialSegments, 3)
	frames := ComputeFrenetFrames(path, tubular, opts.Closed)

	vertices := make([]Vertex, 0, (tubular+1)*(radial+1))
	ring := func(i int) {
		p := path.PointAt(float32(i) / float32(tubular))
		n, b := frames.Normals[i], frames.Binormals[i]
		for j := 0; j <= radial; j++ {
			angle := float32(j) / float32(radial) * 2 * math32.Pi
			sin := math32.Sin(angle)
			cos := -math32.Cos(angle)
			normal := n.Mul(cos).Add(b.Mul(sin)).Normalize()
			pos := p.Add(normal.Mul(opts.Radius))
			vertices = append(vertices, Vertex{
				Position: [3]float32{pos[0], pos[1], pos[2]},
				Normal:   [3]float32{normal[0], normal[1], normal[2]},
			})
		}
	}
	for i := 0; i < tubular; i++ {
		ring(i)
	}
	if opts.Closed {
		ring(0)
	} else {
		ring(tubular)
	}

	for i := 0; i <= tubular; i++ {
		for j := 0; j <= radial; j++ {
			vertices[i*(radial+1)+j].UV = [2]float32{float32(i) / float32(tubular), float32(j) / float32(radial)}
		}
	}

	indices := make([]uint32, 0, tubular*radial*6)
	stride := uint32(radial + 1)
	for j := uint32(1); j <= uint32(tubular); j++ {
		for i := uint32(1); i <= uint32(radial); i++ {
			a := stride*(j-1) + (i - 1)
			b := stride*j + (i - 1)
			c := stride*j + i
			d := stride*(j-1) + i
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return NewGeometry(label, vertices, indices)
}

func clampUnit(v float32) float32 {
	return math32.Max(-1, math32.Min(1, v))
}
