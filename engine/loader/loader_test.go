package loader

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// twoRows is a 1x2 image, red on top and blue below.
func twoRows() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, red)
	img.Set(0, 1, blue)
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, twoRows()))
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pngBytes(t), 0o644))
	return path
}

func writeBMP(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, twoRows()))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newProgram(t *testing.T, dev *gputest.Device) program.ProgramContainer {
	t.Helper()
	p, err := program.NewProgramContainer(dev, []program.Source{
		{Name: "lit.vert", Stage: gpu.StageVertex},
		{Name: "lit.frag", Stage: gpu.StageFragment},
	})
	require.NoError(t, err)
	return p
}

func TestLoadTexturesDecodesAndFlips(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	l := NewLoader(dev, WithWorkers(2))

	paths := []string{writePNG(t, dir, "a.png"), writeBMP(t, dir, "b.bmp")}
	textures, err := l.LoadTextures(context.Background(), paths...)
	require.NoError(t, err)
	require.Len(t, textures, 2)

	for i, tex := range textures {
		require.NotNil(t, tex)
		assert.Equal(t, paths[i], tex.Name())
		w, h := tex.Size()
		assert.Equal(t, int32(1), w)
		assert.Equal(t, int32(2), h)

		pixels := dev.TexturePixels[tex.Handle()]
		require.Len(t, pixels, 8)
		assert.Equal(t, []byte{0, 0, 255, 255}, pixels[:4], "the bottom row is uploaded first")
		assert.Equal(t, []byte{255, 0, 0, 255}, pixels[4:])
	}
	assert.Equal(t, 2, dev.Count("CreateTexture"))
}

func TestLoadTexturesCachesByPath(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	l := NewLoader(dev)
	path := writePNG(t, dir, "a.png")

	first, err := l.LoadTextures(context.Background(), path, path)
	require.NoError(t, err)
	assert.Same(t, first[0], first[1])
	assert.Equal(t, 1, dev.Count("CreateTexture"))

	again, err := l.LoadTextures(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, first[0], again[0])
	assert.Equal(t, 1, dev.Count("CreateTexture"))
	assert.Same(t, first[0], l.Get(path))
	assert.Len(t, l.Textures(), 1)
}

func TestLoadTexturesKeepsGoodFilesOnError(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	l := NewLoader(dev)
	good := writePNG(t, dir, "good.png")
	missing := filepath.Join(dir, "missing.png")

	textures, err := l.LoadTextures(context.Background(), missing, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
	assert.Nil(t, textures[0])
	assert.NotNil(t, textures[1])
	assert.Nil(t, l.Get(missing))
}

func TestLoadTexturesCancelled(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	l := NewLoader(dev)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	textures, err := l.LoadTextures(ctx, writePNG(t, dir, "a.png"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, textures)
	assert.Zero(t, dev.Count("CreateTexture"))
}

func TestLoadTexturesUsesDefaultSampler(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	nearest := common.SamplerStagingData{
		WrapU:     common.WrapClampToEdge,
		WrapV:     common.WrapClampToEdge,
		MagFilter: common.FilterNearest,
		MinFilter: common.FilterNearest,
	}
	l := NewLoader(dev, WithSampler(nearest))

	textures, err := l.LoadTextures(context.Background(), writePNG(t, dir, "a.png"))
	require.NoError(t, err)

	ref := material.NewTexture(dev, "ref", common.TextureStagingData{Pixels: make([]byte, 8), Width: 1, Height: 2}, &nearest)
	assert.Equal(t, dev.Textures[ref.Handle()], dev.Textures[textures[0].Handle()])
}

func TestBuildMaterial(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	dev.QueueProgram(gputest.ProgramSpec{Uniforms: []gpu.ActiveVariable{
		{Name: "baseColor", Location: 1, Type: gpu.TypeFloatVec4},
		{Name: AlbedoUniform, Location: 2, Type: gpu.TypeSampler2D},
		{Name: NormalMapUniform, Location: 3, Type: gpu.TypeSampler2D},
		{Name: MetallicUniform, Location: 4, Type: gpu.TypeFloat},
	}})
	p := newProgram(t, dev)

	l := NewLoader(dev)
	albedo := writePNG(t, dir, "stone.png")
	m, err := l.BuildMaterial(context.Background(), p, common.ImportedMaterial{
		Name:               "stone",
		Metallic:           0.25,
		Roughness:          0.5,
		DoubleSided:        true,
		DiffuseTexturePath: albedo,
		NormalTexture:      &common.ImportedTexture{Name: "stone/normal", Data: pngBytes(t)},
	})
	require.NoError(t, err)

	assert.Equal(t, "stone", m.Name())
	assert.True(t, m.DoubleSided())
	assert.True(t, m.IsOpaque())
	assert.Same(t, l.Get(albedo), m.Texture(AlbedoUniform))
	assert.Same(t, l.Get("stone/normal"), m.Texture(NormalMapUniform))
	assert.Nil(t, m.Texture(MetallicRoughnessUniform))

	u, ok := m.Uniform(material.BaseColorUniform)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1, 1, 1}, u.Values)
	u, ok = m.Uniform(MetallicUniform)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25}, u.Values)
	_, ok = m.Uniform(RoughnessUniform)
	assert.False(t, ok, "the program declares no roughness uniform")
}

func TestReleaseKeepsTexturesHeldByMaterials(t *testing.T) {
	dir := t.TempDir()
	dev := gputest.NewDevice()
	dev.QueueProgram(gputest.ProgramSpec{Uniforms: []gpu.ActiveVariable{
		{Name: AlbedoUniform, Location: 2, Type: gpu.TypeSampler2D},
	}})
	p := newProgram(t, dev)

	l := NewLoader(dev)
	m, err := l.BuildMaterial(context.Background(), p, common.ImportedMaterial{
		Name:               "stone",
		DiffuseTexturePath: writePNG(t, dir, "stone.png"),
	})
	require.NoError(t, err)

	l.Release()
	assert.Empty(t, l.Textures())
	assert.Zero(t, dev.Deleted["texture"])

	m.Release()
	assert.Equal(t, 1, dev.Deleted["texture"])
}
