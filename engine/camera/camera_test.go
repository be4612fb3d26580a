package camera

import (
	"testing"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/scene"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.InDelta(t, math32.Pi/4, c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(1000), c.Far())
	assert.True(t, c.Layers().IsEnabled(scene.LayerBase))
	assert.False(t, c.Layers().IsEnabled(scene.LayerBloom))
	assert.Equal(t, [3]float32{}, c.Position())
}

func TestCameraWithLayers(t *testing.T) {
	c := NewCamera(WithLayers(scene.LayerBloom))
	assert.False(t, c.Layers().IsEnabled(scene.LayerBase))
	assert.True(t, c.Layers().IsEnabled(scene.LayerBloom))
}

func TestCameraSetAspectIgnoresDegenerateValues(t *testing.T) {
	c := NewCamera()

	c.SetAspect(16.0 / 9.0)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)

	for _, bad := range []float32{0, -1, math32.NaN(), math32.Inf(1)} {
		c.SetAspect(bad)
		assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)
	}
}

func TestCameraViewProjectionProjectsTarget(t *testing.T) {
	ctrl := NewCameraController(WithPosition(50.25383781964611, 25.86425160640591, 59.24067475534197))
	c := NewCamera(WithController(ctrl), WithAspect(1.5))

	vp := c.ViewProjectionMatrix()
	// The target is at the origin, so it lands in the center of clip space.
	clip := common.TransformPoint(vp[:], [3]float32{})
	w := vp[15]
	require.Greater(t, w, float32(0))
	assert.InDelta(t, 0, clip[0]/w, 1e-4)
	assert.InDelta(t, 0, clip[1]/w, 1e-4)

	pos := c.Position()
	assert.InDelta(t, 50.2538, pos[0], 1e-3)
	assert.InDelta(t, 25.8643, pos[1], 1e-3)
	assert.InDelta(t, 59.2407, pos[2], 1e-3)
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	u := GPUCameraUniform{CameraPosition: [3]float32{1, 2, 3}}
	u.ViewProj[0] = 1

	buf := u.Marshal()
	require.Len(t, buf, GPUCameraUniformSize)
	assert.Equal(t, common.Float32sToBytes(1, 2, 3, 1), buf[64:])
}
