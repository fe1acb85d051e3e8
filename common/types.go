package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds decoded RGBA8 pixel data for a texture awaiting GPU upload.
type TextureStagingData struct {
	// Pixels is raw RGBA8 pixel data, rows ordered bottom to top for GL upload.
	Pixels []byte

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32
}

// FilterMode selects texel filtering for a sampler.
type FilterMode int

const (
	// FilterLinear interpolates between texels.
	FilterLinear FilterMode = iota

	// FilterNearest picks the closest texel.
	FilterNearest
)

// WrapMode selects how out-of-range texture coordinates are resolved.
type WrapMode int

const (
	// WrapRepeat tiles the texture.
	WrapRepeat WrapMode = iota

	// WrapClampToEdge clamps coordinates to the edge texels.
	WrapClampToEdge

	// WrapMirroredRepeat tiles the texture, mirroring every other tile.
	WrapMirroredRepeat
)

// SamplerStagingData holds sampler configuration extracted from a material description.
type SamplerStagingData struct {
	WrapU, WrapV         WrapMode
	MagFilter, MinFilter FilterMode
	Mipmaps              bool
}

// ImportedMaterial is a format-agnostic material description. Texture paths are
// resolved and decoded by the loader.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the RGBA base color factor.
	BaseColor [4]float32

	// Metallic is the metallic factor in [0, 1].
	Metallic float32

	// Roughness is the roughness factor in [0, 1].
	Roughness float32

	// Transparent routes the material into the blended sub-pass.
	Transparent bool

	// DoubleSided disables back-face culling in color passes.
	DoubleSided bool

	// DiffuseTexturePath is the file path of the base color texture.
	DiffuseTexturePath string

	// NormalTexturePath is the file path of the normal map.
	NormalTexturePath string

	// MetallicTexturePath is the file path of the metallic-roughness texture.
	MetallicTexturePath string

	// DiffuseTexture is the decoded base color texture.
	DiffuseTexture *ImportedTexture

	// NormalTexture is the decoded normal map.
	NormalTexture *ImportedTexture

	// MetallicRoughnessTexture is the decoded metallic-roughness texture.
	MetallicRoughnessTexture *ImportedTexture
}

// ImportedTexture represents texture data from a file path or an in-memory buffer.
type ImportedTexture struct {
	// Name is the texture identifier.
	Name string

	// Path is the file path, used when Data is empty.
	Path string

	// Data is the encoded image bytes.
	Data []byte

	// Width is set by Decode.
	Width int

	// Height is set by Decode.
	Height int

	// SamplerData is the sampler configuration, nil for defaults.
	SamplerData *SamplerStagingData
}

// Decode decodes the image (PNG, JPEG, BMP or WebP) into RGBA8 pixels flipped
// vertically, because GL texture coordinates start at the bottom-left.
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: error if the texture is nil, has no source, or cannot be decoded
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return TextureStagingData{}, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	flipped := transform.FlipV(rgba)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return TextureStagingData{
		Pixels: flipped.Pix,
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}, nil
}
