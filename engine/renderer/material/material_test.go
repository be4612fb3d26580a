package material

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/scrollbot/common"
	"github.com/Carmen-Shannon/scrollbot/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSetSetAndGet(t *testing.T) {
	u := NewUniformSet("tube", UniformTime, UniformReactiveLength, UniformLineLength)

	require.NoError(t, u.Set(UniformReactiveLength, 37.5))
	v, err := u.Get(UniformReactiveLength)
	require.NoError(t, err)
	assert.Equal(t, float32(37.5), v)
	assert.True(t, u.Has(UniformTime))
	assert.False(t, u.Has(UniformAdjustmentY))
	assert.Equal(t, []string{UniformTime, UniformReactiveLength, UniformLineLength}, u.Names())
}

func TestUniformSetUnknownName(t *testing.T) {
	u := NewUniformSet("tube", UniformTime)

	err := u.Set(UniformAdjustmentY, 1)
	var unknown *UnknownUniformError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "tube", unknown.Material)
	assert.Equal(t, UniformAdjustmentY, unknown.Name)

	_, err = u.Get("uMissing")
	assert.Error(t, err)
}

func TestUniformSetMarshalPadsToSixteenBytes(t *testing.T) {
	u := NewUniformSet("tube", UniformTime, UniformReactiveLength, UniformLineLength)
	require.NoError(t, u.Set(UniformTime, 1))

	buf := u.Marshal()
	require.Len(t, buf, 16)
	assert.Equal(t, common.Float32sToBytes(1, 0, 0, 0), buf)

	robot := NewUniformSet("robot", UniformTime, UniformReactiveLength, UniformLineLength, UniformAdjustmentY, "uExtra")
	assert.Equal(t, 32, robot.Size())
}

func TestShaderMaterialDefaults(t *testing.T) {
	m := NewShaderMaterial("robot", shader.ProgramRobot,
		[]string{UniformTime, UniformAdjustmentY},
		WithTransparent(true),
	)

	assert.Equal(t, shader.ProgramRobot, m.Program())
	assert.True(t, m.Transparent())
	assert.True(t, m.DepthWrite())
	assert.Equal(t, SideFront, m.Side())
	assert.Nil(t, m.Texture())
	require.NotNil(t, m.Uniforms())
	assert.True(t, m.Uniforms().Has(UniformAdjustmentY))
}

func TestBasicMaterial(t *testing.T) {
	tex := &common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1, SRGB: true}
	m := NewBasicMaterial("baked", tex, WithSide(SideDouble), WithColor([4]float32{1, 0, 0, 1}))

	assert.Equal(t, shader.ProgramBaked, m.Program())
	assert.Same(t, tex, m.Texture())
	assert.Nil(t, m.Uniforms())
	assert.False(t, m.Transparent())
	assert.Equal(t, SideDouble, m.Side())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, m.Color())
}
