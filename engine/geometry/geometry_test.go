package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePoints() []mgl32.Vec3 {
	return []mgl32.Vec3{
		{0, 0, -4},
		{1, 0.5, -1},
		{-1, 0, 2},
		{0, 1, 6},
	}
}

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v vs %v", i, want, got)
	}
}

func TestCatmullRomCurveRejectsEmpty(t *testing.T) {
	_, err := NewCatmullRomCurve(nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestCatmullRomCurvePassesThroughControlPoints(t *testing.T) {
	pts := samplePoints()
	for _, ct := range []CurveType{CurveCentripetal, CurveChordal, CurveUniform} {
		c, err := NewCatmullRomCurve(pts, WithCurveType(ct))
		require.NoError(t, err)

		assertVecNear(t, pts[0], c.Point(0))
		assertVecNear(t, pts[3], c.Point(1))
		for i := range pts {
			assertVecNear(t, pts[i], c.Point(float32(i)/3))
		}
	}
}

func TestCatmullRomCurveClosedWrapsToStart(t *testing.T) {
	pts := samplePoints()
	c, err := NewCatmullRomCurve(pts, WithClosed(true))
	require.NoError(t, err)
	assertVecNear(t, pts[0], c.Point(1))
	assertVecNear(t, pts[2], c.Point(0.5))
}

func TestCatmullRomCurveSinglePoint(t *testing.T) {
	c, err := NewCatmullRomCurve([]mgl32.Vec3{{1, 2, 3}})
	require.NoError(t, err)
	assertVecNear(t, mgl32.Vec3{1, 2, 3}, c.Point(0.7))
	assert.Zero(t, c.Length())
}

func TestCatmullRomCurveArcLength(t *testing.T) {
	c, err := NewCatmullRomCurve([]mgl32.Vec3{{0, 0, 0}, {0, 0, 5}, {0, 0, 10}})
	require.NoError(t, err)

	assert.InDelta(t, 10, c.Length(), 1e-3)
	assertVecNear(t, mgl32.Vec3{0, 0, 2.5}, c.PointAt(0.25))
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.TangentAt(0.5))
}

func TestTubeGeometryCounts(t *testing.T) {
	c, err := NewCatmullRomCurve(samplePoints())
	require.NoError(t, err)

	opts := DefaultTubeOptions()
	g := NewTubeGeometry("line", c, opts)

	assert.Equal(t, (opts.TubularSegments+1)*(opts.RadialSegments+1), g.VertexCount())
	assert.Equal(t, opts.TubularSegments*opts.RadialSegments*6, g.IndexCount())
	for _, idx := range g.Indices() {
		require.Less(t, int(idx), g.VertexCount())
	}
	assert.Len(t, g.VertexBytes(), g.VertexCount()*int(VertexStride))
	assert.Len(t, g.IndexBytes(), g.IndexCount()*4)
}

func TestTubeGeometryClosedLastRingMatchesFirst(t *testing.T) {
	c, err := NewCatmullRomCurve(samplePoints())
	require.NoError(t, err)

	opts := TubeOptions{TubularSegments: 20, Radius: 0.1, RadialSegments: 6, Closed: true}
	g := NewTubeGeometry("line", c, opts)
	v := g.Vertices()
	ring := opts.RadialSegments + 1
	last := opts.TubularSegments * ring
	for j := 0; j < ring; j++ {
		assert.Equal(t, v[j].Position, v[last+j].Position)
	}
	assert.Equal(t, [2]float32{1, 0}, v[last].UV)
}

func TestTubeGeometryRadius(t *testing.T) {
	c, err := NewCatmullRomCurve([]mgl32.Vec3{{0, 0, 0}, {0, 0, 10}})
	require.NoError(t, err)

	opts := TubeOptions{TubularSegments: 4, Radius: 0.5, RadialSegments: 8}
	g := NewTubeGeometry("straight", c, opts)
	for _, v := range g.Vertices() {
		r := mgl32.Vec2{v.Position[0], v.Position[1]}.Len()
		assert.InDelta(t, 0.5, r, 1e-4)
	}

	center, radius := g.BoundingSphere()
	assert.InDelta(t, 5, center[2], 1e-3)
	assert.GreaterOrEqual(t, radius, float32(5))
}

func TestFrenetFramesAreOrthonormal(t *testing.T) {
	c, err := NewCatmullRomCurve(samplePoints())
	require.NoError(t, err)

	f := ComputeFrenetFrames(c, 32, false)
	for i := range f.Tangents {
		assert.InDelta(t, 1, f.Normals[i].Len(), 1e-3)
		assert.InDelta(t, 0, f.Normals[i].Dot(f.Tangents[i]), 1e-2)
		assert.InDelta(t, 0, f.Binormals[i].Dot(f.Normals[i]), 1e-3)
	}
}
