package geometry

import (
	"errors"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoPoints is returned when a curve is built from an empty point list.
var ErrNoPoints = errors.New("curve requires at least one point")

// CurveType selects the Catmull-Rom knot parameterization.
type CurveType int

const (
	// CurveCentripetal uses alpha = 0.5; it avoids cusps and self-intersections within a segment.
	CurveCentripetal CurveType = iota
	// CurveChordal uses alpha = 1.
	CurveChordal
	// CurveUniform is the classic uniform Catmull-Rom spline with a tension parameter.
	CurveUniform
)

// arcLengthDivisions is the sampling density used to build the arc-length table.
const arcLengthDivisions = 200

// tangentDelta is the parameter step used for finite-difference tangents.
const tangentDelta = 1e-4

// CatmullRomCurve is a smooth 3D curve that passes through every control point.
type CatmullRomCurve struct {
	points    []mgl32.Vec3
	closed    bool
	curveType CurveType
	tension   float32

	lengths []float32
}

// CurveBuilderOption is a functional option applied to a CatmullRomCurve during construction.
type CurveBuilderOption func(*CatmullRomCurve)

// WithClosed joins the last control point back to the first.
func WithClosed(closed bool) CurveBuilderOption {
	return func(c *CatmullRomCurve) {
		c.closed = closed
	}
}

// WithCurveType sets the knot parameterization. The default is CurveCentripetal.
func WithCurveType(t CurveType) CurveBuilderOption {
	return func(c *CatmullRomCurve) {
		c.curveType = t
	}
}

// WithTension sets the tension used by CurveUniform. The default is 0.5.
func WithTension(tension float32) CurveBuilderOption {
	return func(c *CatmullRomCurve) {
		c.tension = tension
	}
}

// NewCatmullRomCurve creates a curve through the given control points.
//
// Parameters:
//   - points: the control points, at least one
//   - options: functional options to configure the curve
//
// Returns:
//   - *CatmullRomCurve: the new curve
//   - error: ErrNoPoints if points is empty
func NewCatmullRomCurve(points []mgl32.Vec3, options ...CurveBuilderOption) (*CatmullRomCurve, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	c := &CatmullRomCurve{
		points:    append([]mgl32.Vec3(nil), points...),
		curveType: CurveCentripetal,
		tension:   0.5,
	}
	for _, opt := range options {
		opt(c)
	}
	c.lengths = c.computeLengths(arcLengthDivisions)
	return c, nil
}

// Closed reports whether the curve loops back to its first point.
func (c *CatmullRomCurve) Closed() bool { return c.closed }

// Point returns the point at parameter t in [0, 1]. The parameter is uniform per segment,
// not per unit length; use PointAt for arc-length parameterization.
func (c *CatmullRomCurve) Point(t float32) mgl32.Vec3 {
	pts := c.points
	l := len(pts)
	if l == 1 {
		return pts[0]
	}

	segments := l - 1
	if c.closed {
		segments = l
	}
	p := float32(segments) * t
	idx := int(math32.Floor(p))
	weight := p - float32(idx)

	if c.closed {
		idx = ((idx % l) + l) % l
	} else if idx >= l-1 {
		idx = l - 2
		weight = 1
	} else if idx < 0 {
		idx = 0
		weight = 0
	}

	var p0, p3 mgl32.Vec3
	if c.closed || idx > 0 {
		p0 = pts[(idx-1+l)%l]
	} else {
		p0 = pts[0].Sub(pts[1]).Add(pts[0])
	}
	p1 := pts[idx%l]
	p2 := pts[(idx+1)%l]
	if c.closed || idx+2 < l {
		p3 = pts[(idx+2)%l]
	} else {
		p3 = pts[l-1].Sub(pts[l-2]).Add(pts[l-1])
	}

	var out mgl32.Vec3
	switch c.curveType {
	case CurveUniform:
		for i := 0; i < 3; i++ {
			out[i] = uniformCubic(p0[i], p1[i], p2[i], p3[i], c.tension).eval(weight)
		}
	default:
		pow := float32(0.25)
		if c.curveType == CurveChordal {
			pow = 0.5
		}
		dt0 := math32.Pow(distSq(p0, p1), pow)
		dt1 := math32.Pow(distSq(p1, p2), pow)
		dt2 := math32.Pow(distSq(p2, p3), pow)
		if dt1 < 1e-4 {
			dt1 = 1
		}
		if dt0 < 1e-4 {
			dt0 = dt1
		}
		if dt2 < 1e-4 {
			dt2 = dt1
		}
		for i := 0; i < 3; i++ {
			out[i] = nonUniformCubic(p0[i], p1[i], p2[i], p3[i], dt0, dt1, dt2).eval(weight)
		}
	}
	return out
}

// Tangent returns the unit tangent at parameter t, estimated by finite differences.
func (c *CatmullRomCurve) Tangent(t float32) mgl32.Vec3 {
	t1 := math32.Max(0, t-tangentDelta)
	t2 := math32.Min(1, t+tangentDelta)
	d := c.Point(t2).Sub(c.Point(t1))
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return d.Normalize()
}

// PointAt returns the point at normalized arc length u in [0, 1].
func (c *CatmullRomCurve) PointAt(u float32) mgl32.Vec3 {
	return c.Point(c.uToT(u))
}

// TangentAt returns the unit tangent at normalized arc length u in [0, 1].
func (c *CatmullRomCurve) TangentAt(u float32) mgl32.Vec3 {
	return c.Tangent(c.uToT(u))
}

// Length returns the approximate arc length of the curve.
func (c *CatmullRomCurve) Length() float32 {
	return c.lengths[len(c.lengths)-1]
}

// computeLengths samples the curve and returns the cumulative chord lengths.
func (c *CatmullRomCurve) computeLengths(divisions int) []float32 {
	lengths := make([]float32, divisions+1)
	prev := c.Point(0)
	var sum float32
	for i := 1; i <= divisions; i++ {
		cur := c.Point(float32(i) / float32(divisions))
		sum += cur.Sub(prev).Len()
		lengths[i] = sum
		prev = cur
	}
	return lengths
}

// uToT maps normalized arc length to the curve parameter using the cumulative length table.
func (c *CatmullRomCurve) uToT(u float32) float32 {
	n := len(c.lengths)
	total := c.lengths[n-1]
	if total == 0 {
		return u
	}
	target := u * total

	i := sort.Search(n, func(k int) bool { return c.lengths[k] >= target })
	if i == 0 {
		return 0
	}
	if i >= n {
		return 1
	}
	before := c.lengths[i-1]
	segment := c.lengths[i] - before
	fraction := float32(0)
	if segment > 0 {
		fraction = (target - before) / segment
	}
	return (float32(i-1) + fraction) / float32(n-1)
}

// cubic holds the coefficients of c0 + c1*t + c2*t^2 + c3*t^3.
type cubic struct {
	c0, c1, c2, c3 float32
}

func (p cubic) eval(t float32) float32 {
	t2 := t * t
	return p.c0 + p.c1*t + p.c2*t2 + p.c3*t2*t
}

// hermite builds the cubic with endpoint values x0, x1 and endpoint tangents t0, t1.
func hermite(x0, x1, t0, t1 float32) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func uniformCubic(x0, x1, x2, x3, tension float32) cubic {
	return hermite(x1, x2, tension*(x2-x0), tension*(x3-x1))
}

// nonUniformCubic computes tangents for a non-uniform knot sequence and rescales them to [0, 1].
func nonUniformCubic(x0, x1, x2, x3, dt0, dt1, dt2 float32) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	return hermite(x1, x2, t1*dt1, t2*dt1)
}

func distSq(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}
