package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPositionDerivesSphericalCoordinates(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 10))

	assert.InDelta(t, 10, cc.Radius(), 1e-5)
	assert.InDelta(t, 0, cc.Azimuth(), 1e-5)
	assert.InDelta(t, 0, cc.Elevation(), 1e-5)

	x, y, z := cc.Position()
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 10, z, 1e-5)
}

func TestDampedRotationDecaysGeometrically(t *testing.T) {
	const factor = 0.05
	cc := NewCameraController(WithPosition(0, 0, 10), WithDampingFactor(factor))
	cc.OrbitRight()

	var steps []float32
	prev := cc.Azimuth()
	for range 10 {
		require.True(t, cc.Update())
		cur := cc.Azimuth()
		steps = append(steps, cur-prev)
		prev = cur
	}

	require.Greater(t, steps[0], float32(0))
	for i := 1; i < len(steps); i++ {
		assert.InDelta(t, 1-factor, steps[i]/steps[i-1], 1e-4)
	}
}

func TestDampedRotationSettles(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 10), WithDampingFactor(0.5))
	cc.Rotate(10, 0)

	moved := 0
	for range 200 {
		if cc.Update() {
			moved++
		}
	}
	assert.Less(t, moved, 200)
	assert.False(t, cc.Update())
}

func TestDampingFactorOneAppliesImmediately(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 10), WithDampingFactor(1), WithOrbitSpeed(0.2))
	cc.OrbitLeft()
	cc.Update()
	assert.InDelta(t, -0.2, cc.Azimuth(), 1e-6)
	assert.False(t, cc.Update())
}

func TestZoomIsClampedToRadiusBounds(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 10), WithRadiusBounds(5, 20))

	cc.Zoom(100)
	cc.Update()
	assert.InDelta(t, 5, cc.Radius(), 1e-5)

	cc.Zoom(-100)
	cc.Update()
	assert.InDelta(t, 20, cc.Radius(), 1e-5)
}

func TestElevationIsClamped(t *testing.T) {
	cc := NewCameraController(
		WithPosition(0, 0, 10),
		WithDampingFactor(1),
		WithElevationBounds(-0.5, 0.5),
	)
	cc.Rotate(0, 1e6)
	cc.Update()
	assert.InDelta(t, 0.5, cc.Elevation(), 1e-6)
}

func TestPanMovesTargetAndPositionTogether(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 10), WithDampingFactor(1), WithPanSpeed(1))
	cc.PanRight(2)
	cc.Update()

	tx, ty, tz := cc.Target()
	assert.InDelta(t, 2, tx, 1e-5)
	assert.InDelta(t, 0, ty, 1e-5)
	assert.InDelta(t, 0, tz, 1e-5)

	x, _, z := cc.Position()
	assert.InDelta(t, 2, x, 1e-5)
	assert.InDelta(t, 10, z, 1e-5)
}

func TestSetTargetKeepsSphericalOffset(t *testing.T) {
	cc := NewCameraController(WithPosition(0, 0, 10))
	cc.SetTarget(1, 2, 3)
	x, y, z := cc.Position()
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, 2, y, 1e-5)
	assert.InDelta(t, 13, z, 1e-5)
	assert.InDelta(t, math32.Sqrt(100), cc.Radius(), 1e-5)
}
