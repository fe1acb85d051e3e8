package material

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// Texture owns one GPU texture object. Materials that share a texture (copies made by
// Material.Copy) each hold a reference; the GPU object is deleted when the last
// reference is released.
type Texture struct {
	name   string
	device gpu.Device
	handle gpu.Texture
	target uint32
	desc   gpu.TextureDesc
	refs   int
}

// NewTexture uploads decoded RGBA8 pixels as a 2D texture.
//
// Parameters:
//   - device: the device to upload to
//   - name: a label for diagnostics
//   - staging: the decoded pixels
//   - sampler: sampler settings, nil for linear filtering with repeat wrapping
//
// Returns:
//   - *Texture: the texture holding one reference
func NewTexture(device gpu.Device, name string, staging common.TextureStagingData, sampler *common.SamplerStagingData) *Texture {
	s := common.Coalesce(sampler, &common.SamplerStagingData{})
	desc := gpu.TextureDesc{
		Width:          int32(staging.Width),
		Height:         int32(staging.Height),
		InternalFormat: gpu.InternalRGBA8,
		Format:         gpu.FormatRGBA,
		Type:           gpu.TypeUnsignedByte,
		MinFilter:      filter(s.MinFilter, s.Mipmaps),
		MagFilter:      filter(s.MagFilter, false),
		WrapS:          wrap(s.WrapU),
		WrapT:          wrap(s.WrapV),
		Mipmaps:        s.Mipmaps,
	}
	return newTexture(device, name, gpu.Texture2D, desc, staging.Pixels)
}

// NewFloatTexture creates an RGBA32F texture with nearest filtering, used for data
// textures such as skin joint matrices.
//
// Parameters:
//   - device: the device to upload to
//   - name: a label for diagnostics
//   - width: the width in texels
//   - height: the height in texels
//   - data: width*height*4 floats, or nil to allocate uninitialized storage
//
// Returns:
//   - *Texture: the texture holding one reference
func NewFloatTexture(device gpu.Device, name string, width, height int32, data []float32) *Texture {
	desc := gpu.TextureDesc{
		Width:          width,
		Height:         height,
		InternalFormat: gpu.InternalRGBA32F,
		Format:         gpu.FormatRGBA,
		Type:           gpu.TypeFloat,
		MinFilter:      gpu.FilterNearest,
		MagFilter:      gpu.FilterNearest,
		WrapS:          gpu.WrapClampToEdge,
		WrapT:          gpu.WrapClampToEdge,
	}
	var pixels []byte
	if data != nil {
		pixels = common.SliceToBytes(data)
	}
	return newTexture(device, name, gpu.Texture2D, desc, pixels)
}

// NewDepthTexture creates a depth texture for use as a shadow map attachment.
//
// Parameters:
//   - device: the device to upload to
//   - name: a label for diagnostics
//   - size: the width and height in texels
//
// Returns:
//   - *Texture: the texture holding one reference
func NewDepthTexture(device gpu.Device, name string, size int32) *Texture {
	desc := gpu.TextureDesc{
		Width:          size,
		Height:         size,
		InternalFormat: gpu.InternalDepth24,
		Format:         gpu.FormatDepthComponent,
		Type:           gpu.TypeFloat,
		MinFilter:      gpu.FilterLinear,
		MagFilter:      gpu.FilterLinear,
		WrapS:          gpu.WrapClampToEdge,
		WrapT:          gpu.WrapClampToEdge,
	}
	return newTexture(device, name, gpu.Texture2D, desc, nil)
}

func newTexture(device gpu.Device, name string, target uint32, desc gpu.TextureDesc, pixels []byte) *Texture {
	t := &Texture{
		name:   name,
		device: device,
		handle: device.CreateTexture(),
		target: target,
		desc:   desc,
		refs:   1,
	}
	device.TexImage2D(t.handle, desc, pixels)
	return t
}

// Name returns the diagnostic label.
func (t *Texture) Name() string {
	return t.name
}

// Handle returns the GPU texture, zero once released.
func (t *Texture) Handle() gpu.Texture {
	return t.handle
}

// Size returns the texture dimensions in texels.
func (t *Texture) Size() (int32, int32) {
	return t.desc.Width, t.desc.Height
}

// Update re-uploads the full image with the original format.
//
// Parameters:
//   - pixels: the new image data
func (t *Texture) Update(pixels []byte) {
	if t.handle == 0 {
		return
	}
	t.device.TexImage2D(t.handle, t.desc, pixels)
}

// UpdateFloats is Update for float textures.
//
// Parameters:
//   - data: the new texel data
func (t *Texture) UpdateFloats(data []float32) {
	t.Update(common.SliceToBytes(data))
}

// Bind makes the texture current on a texture unit.
//
// Parameters:
//   - unit: the zero-based texture unit
func (t *Texture) Bind(unit uint32) {
	t.device.ActiveTexture(unit)
	t.device.BindTexture(t.target, t.handle)
}

// Retain adds a reference.
//
// Returns:
//   - *Texture: t, for chaining
func (t *Texture) Retain() *Texture {
	t.refs++
	return t
}

// Release drops a reference and deletes the GPU texture when none remain.
func (t *Texture) Release() {
	if t.refs == 0 {
		return
	}
	t.refs--
	if t.refs == 0 {
		t.device.DeleteTexture(t.handle)
		t.handle = 0
	}
}

func filter(f common.FilterMode, mipmaps bool) int32 {
	switch {
	case f == common.FilterNearest:
		return gpu.FilterNearest
	case mipmaps:
		return gpu.FilterLinearMipmapLinear
	default:
		return gpu.FilterLinear
	}
}

func wrap(w common.WrapMode) int32 {
	switch w {
	case common.WrapClampToEdge:
		return gpu.WrapClampToEdge
	case common.WrapMirroredRepeat:
		return gpu.WrapMirroredRepeat
	default:
		return gpu.WrapRepeat
	}
}
