package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeMatrixIdentityRotation(t *testing.T) {
	var m [16]float32
	ComposeMatrix(m[:], [3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{2, 2, 2})

	p := TransformPoint(m[:], [3]float32{1, 1, 1})
	assert.Equal(t, [3]float32{3, 4, 5}, p)
	assert.InDelta(t, 2, MaxScale(m[:]), 1e-6)
}

func TestComposeMatrixQuarterTurnY(t *testing.T) {
	var m [16]float32
	s := float32(math.Sin(math.Pi / 4))
	ComposeMatrix(m[:], [3]float32{}, [4]float32{0, s, 0, s}, [3]float32{1, 1, 1})

	p := TransformPoint(m[:], [3]float32{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, -1, p[2], 1e-6)
}

func TestMul4AppliesRightOperandFirst(t *testing.T) {
	var tr, sc, m [16]float32
	ComposeMatrix(tr[:], [3]float32{1, 0, 0}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	ComposeMatrix(sc[:], [3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{3, 3, 3})

	Mul4(m[:], tr[:], sc[:])
	assert.Equal(t, [3]float32{4, 3, 3}, TransformPoint(m[:], [3]float32{1, 1, 1}))

	Mul4(m[:], sc[:], tr[:])
	assert.Equal(t, [3]float32{6, 3, 3}, TransformPoint(m[:], [3]float32{1, 1, 1}))
}

func TestLookAtMapsTargetOntoNegativeZ(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)

	p := TransformPoint(view[:], [3]float32{0, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, -10, p[2], 1e-6)

	up := TransformPoint(view[:], [3]float32{0, 1, 10})
	assert.InDelta(t, 1, up[1], 1e-6)
}

func TestFrustumIntersectsSphere(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)
	Perspective(proj[:], math.Pi/4, 1, 0.1, 100)
	Mul4(vp[:], proj[:], view[:])

	f := ExtractFrustum(vp[:])
	assert.True(t, f.IntersectsSphere([3]float32{0, 0, 0}, 1))
	assert.False(t, f.IntersectsSphere([3]float32{0, 0, 50}, 1), "behind the camera")
	assert.False(t, f.IntersectsSphere([3]float32{0, 0, -200}, 1), "past the far plane")
	assert.True(t, f.IntersectsSphere([3]float32{0, 0, -95}, 10), "straddling the far plane")
}

func TestFloat32sToBytes(t *testing.T) {
	b := Float32sToBytes(1, -2)
	require.Len(t, b, 8)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, b[:4])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0xc0}, b[4:])
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 2.0, Clamp(3.0, 0, 2))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 2))
	assert.Equal(t, 0, Clamp(-4, 0, 2))
}

func TestImageTextureDecode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	tex := &ImageTexture{Data: buf.Bytes(), SRGB: true}
	staged, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, "image/png", tex.MimeType)
	assert.Equal(t, uint32(1), staged.Width)
	assert.Equal(t, uint32(2), staged.Height)
	assert.True(t, staged.SRGB)
	assert.Equal(t, byte(255), staged.Pixels[0], "first row stays red without flip")

	flipped := &ImageTexture{Data: buf.Bytes(), FlipY: true}
	staged, err = flipped.Decode()
	require.NoError(t, err)
	assert.Equal(t, byte(0), staged.Pixels[0])
	assert.Equal(t, byte(255), staged.Pixels[2], "first row becomes blue with flip")
}

func TestImageTextureDecodeRejectsNonImage(t *testing.T) {
	tex := &ImageTexture{Data: []byte("definitely not an image")}
	_, err := tex.Decode()
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
