package common

import (
	"math"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six planes of a view frustum, oriented so the positive half-space is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// frustumRows pairs each plane with the clip-space row it is combined with and the sign of that row.
// Row 3 (w) is always the base; near uses row 2 alone because WebGPU depth is [0, 1].
var frustumRows = [6]struct {
	row  int
	sign float32
}{
	{0, 1}, {0, -1}, // left, right
	{1, 1}, {1, -1}, // bottom, top
	{2, 0}, {2, -1}, // near, far
}

// ExtractFrustum extracts frustum planes from a column-major view-projection matrix
// using the Gribb/Hartmann method.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: 16 float32 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj []float32) Frustum {
	var f Frustum
	// element (row r, column c) lives at index c*4 + r
	at := func(r, c int) float32 { return viewProj[c*4+r] }

	for i, fr := range frustumRows {
		p := &f.Planes[i]
		for c := 0; c < 3; c++ {
			if fr.sign == 0 {
				p.Normal[c] = at(fr.row, c)
			} else {
				p.Normal[c] = at(3, c) + fr.sign*at(fr.row, c)
			}
		}
		if fr.sign == 0 {
			p.Distance = at(fr.row, 3)
		} else {
			p.Distance = at(3, 3) + fr.sign*at(fr.row, 3)
		}

		length := float32(math.Sqrt(float64(p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2])))
		if length > 0 {
			p.Normal[0] /= length
			p.Normal[1] /= length
			p.Normal[2] /= length
			p.Distance /= length
		}
	}
	return f
}

// IntersectsSphere reports whether a bounding sphere is at least partially inside the frustum.
//
// Parameters:
//   - center: world-space sphere center
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere lies entirely outside one of the planes
func (f *Frustum) IntersectsSphere(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		d := p.Normal[0]*center[0] + p.Normal[1]*center[1] + p.Normal[2]*center[2] + p.Distance
		if d < -radius {
			return false
		}
	}
	return true
}
