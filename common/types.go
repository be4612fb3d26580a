// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when texture bytes are not a decodable image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the pixel data in RGBA format, 4 bytes per pixel, row-major from the first stored row.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// SRGB marks the pixels as sRGB-encoded color data, uploaded into an *Srgb texture format
	// so sampling returns linear values.
	SRGB bool
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// ImageTexture is a 2D image source for a texture, either held in memory or read from disk.
type ImageTexture struct {
	// Path is the file path for external textures (empty when Data is set).
	Path string

	// Data contains raw encoded image bytes (JPEG/PNG/WebP).
	Data []byte

	// FlipY flips rows vertically during decode. Textures authored for glTF UV space keep this false.
	FlipY bool

	// SRGB marks the image as display-encoded color.
	SRGB bool

	// MimeType is the sniffed content type, populated after Decode.
	MimeType string
}

// Decode decodes the texture to raw RGBA pixel data.
// The format is detected from the content rather than the file extension.
//
// Returns:
//   - TextureStagingData: the decoded pixels ready for GPU upload
//   - error: error if the file cannot be read or the format is not a supported image
func (t *ImageTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, errors.New("texture is nil")
	}

	data := t.Data
	if len(data) == 0 {
		if t.Path == "" {
			return TextureStagingData{}, errors.New("texture has neither data nor path")
		}
		raw, err := os.ReadFile(t.Path)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to read texture file %s: %w", t.Path, err)
		}
		data = raw
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return TextureStagingData{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, t.describe())
	}
	t.MimeType = kind.MIME.Value

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode %s (%s): %w", t.describe(), t.MimeType, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	if t.FlipY {
		flipRows(rgba.Pix, rgba.Stride, bounds.Dy())
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		SRGB:   t.SRGB,
	}, nil
}

func (t *ImageTexture) describe() string {
	if t.Path != "" {
		return t.Path
	}
	return "embedded image"
}

// flipRows reverses the row order of a tightly packed pixel buffer in place.
func flipRows(pix []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
