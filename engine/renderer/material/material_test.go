package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	locBaseColor  int32 = 1
	locAlbedo     int32 = 2
	locNormalMap  int32 = 3
	locProjection int32 = 10
	locView       int32 = 11
	locInvView    int32 = 12
	locTime       int32 = 13
	locLightCount int32 = 14
	locLightPos   int32 = 15
	locSunDir     int32 = 16
)

type testCamera struct {
	proj, view mgl32.Mat4
}

func (c testCamera) ProjectionMatrix() mgl32.Mat4 { return c.proj }
func (c testCamera) ViewMatrix() mgl32.Mat4 { return c.view }
func (c testCamera) InverseViewMatrix() mgl32.Mat4 { return c.view.Inv() }
func (c testCamera) Position() mgl32.Vec3 { return mgl32.Vec3{0, 0, 5} }
func (c testCamera) Layer() uint32 { return 1 }

func litSpec(withBlock bool) gputest.ProgramSpec {
	spec := gputest.ProgramSpec{
		Uniforms: []gpu.ActiveVariable{
			{Name: "baseColor", Location: locBaseColor, Type: gpu.TypeFloatVec4},
			{Name: "albedo", Location: locAlbedo, Type: gpu.TypeSampler2D},
			{Name: "normalMap", Location: locNormalMap, Type: gpu.TypeSampler2D},
			{Name: "time", Location: locTime, Type: gpu.TypeFloat},
			{Name: "lightCount", Location: locLightCount, Type: gpu.TypeInt},
			{Name: "lightPositions[0]", Location: locLightPos, Size: light.MaxLights, Type: gpu.TypeFloatVec3},
			{Name: "sunDirection", Location: locSunDir, Type: gpu.TypeFloatVec3},
		},
	}
	if withBlock {
		spec.Blocks = []gputest.Block{{Name: SharedPerSceneBlock, Size: 192, Members: []gputest.BlockMember{
			{Name: "projectionMatrix", Type: gpu.TypeFloatMat4},
			{Name: "viewMatrix", Type: gpu.TypeFloatMat4, Offset: 64},
			{Name: "inverseViewMatrix", Type: gpu.TypeFloatMat4, Offset: 128},
		}}}
	} else {
		spec.Uniforms = append(spec.Uniforms,
			gpu.ActiveVariable{Name: "projectionMatrix", Location: locProjection, Type: gpu.TypeFloatMat4},
			gpu.ActiveVariable{Name: "viewMatrix", Location: locView, Type: gpu.TypeFloatMat4},
			gpu.ActiveVariable{Name: "inverseViewMatrix", Location: locInvView, Type: gpu.TypeFloatMat4},
		)
	}
	return spec
}

func newProgram(t *testing.T, dev *gputest.Device, spec gputest.ProgramSpec) program.ProgramContainer {
	t.Helper()
	dev.QueueProgram(spec)
	p, err := program.NewProgramContainer(dev, []program.Source{
		{Name: "lit.vert", Stage: gpu.StageVertex},
		{Name: "lit.frag", Stage: gpu.StageFragment},
	})
	require.NoError(t, err)
	return p
}

func newTestTexture(dev *gputest.Device, name string) *Texture {
	return NewTexture(dev, name, common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2}, nil)
}

func TestSetUniformInfersKindFromProgram(t *testing.T) {
	dev := gputest.NewDevice()
	m := NewMaterial(newProgram(t, dev, litSpec(false)), WithName("stone"))

	assert.True(t, m.SetUniform("baseColor", 1, 0, 0, 1))
	u, ok := m.Uniform("baseColor")
	require.True(t, ok)
	assert.Equal(t, program.KindVec4, u.Kind)

	assert.True(t, m.SetUniform("baseColor", 0, 1, 0, 1))
	assert.Equal(t, []float32{0, 1, 0, 1}, u.Values, "existing entries are updated in place")

	assert.False(t, m.SetUniform("roughness", 0.5), "uniform absent from program and dictionary")
	_, ok = m.Uniform("roughness")
	assert.False(t, ok)
}

func TestTexturesBindAtOffsetUnits(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, litSpec(false))
	albedo := newTestTexture(dev, "albedo")
	normal := newTestTexture(dev, "normal")
	m := NewMaterial(p, WithTexture("albedo", albedo), WithTexture("normalMap", normal))

	dev.UseProgram(p.Handle())
	m.BindUniforms(nil)

	assert.Equal(t, albedo.Handle(), dev.BoundTextures[MaterialTextureUnitOffset])
	assert.Equal(t, normal.Handle(), dev.BoundTextures[MaterialTextureUnitOffset+1])

	v, _ := dev.Uniform(p.Handle(), locAlbedo)
	assert.Equal(t, []float32{float32(MaterialTextureUnitOffset)}, v)
	v, _ = dev.Uniform(p.Handle(), locNormalMap)
	assert.Equal(t, []float32{float32(MaterialTextureUnitOffset + 1)}, v)

	u, _ := m.Uniform("normalMap")
	assert.True(t, u.IsTexture)
	assert.Equal(t, []float32{1}, u.Values, "the dictionary keeps the local index")
}

func TestSetTextureReplacesInPlace(t *testing.T) {
	dev := gputest.NewDevice()
	first := newTestTexture(dev, "a")
	second := newTestTexture(dev, "b")
	m := NewMaterial(newProgram(t, dev, litSpec(false)), WithTexture("albedo", first))

	m.SetTexture("albedo", second)
	assert.Len(t, m.Textures(), 1)
	assert.Same(t, second, m.Texture("albedo"))

	first.Release()
	assert.Equal(t, 1, dev.Deleted["texture"], "replaced texture lost the material reference")

	m.Release()
	assert.Equal(t, 1, dev.Deleted["texture"], "caller still holds second")
	second.Release()
	assert.Equal(t, 2, dev.Deleted["texture"])
}

func TestFallbackBindsProjectionBeforeView(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, litSpec(false))
	m := NewMaterial(p)
	cam := testCamera{proj: mgl32.Perspective(1, 1, 0.1, 100), view: mgl32.Translate3D(0, 0, -5)}

	dev.UseProgram(p.Handle())
	dev.Reset()
	m.BindUniforms(&FrameState{Camera: cam, SharedPerScene: true, Time: 2.5})

	calls := dev.Named("UniformMatrix4fv")
	require.Len(t, calls, 3)
	assert.Equal(t, []any{locProjection, locView, locInvView}, []any{calls[0].Args[0], calls[1].Args[0], calls[2].Args[0]})

	tv, _ := dev.Uniform(p.Handle(), locTime)
	assert.Equal(t, []float32{2.5}, tv)
}

func TestSharedBlockReplacesMatrixUniforms(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, litSpec(true))
	m := NewMaterial(p)

	dev.UseProgram(p.Handle())
	dev.Reset()
	m.BindUniforms(&FrameState{Camera: testCamera{}, SharedPerScene: true})

	assert.Zero(t, dev.Count("UniformMatrix4fv"))
	assert.Equal(t, SharedPerSceneBinding, dev.BlockBindings[p.Handle()][0])
}

func TestBindFrameLights(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, litSpec(false))
	m := NewMaterial(p)

	env := light.NewEnvironment(
		light.NewLight(light.LightTypeDirectional, light.WithDirection(mgl32.Vec3{0, -1, 0})),
		light.NewLight(light.LightTypePoint, light.WithPosition(mgl32.Vec3{1, 2, 3})),
	)
	var lights light.Uniforms
	env.Pack(&lights)

	dev.UseProgram(p.Handle())
	m.BindUniforms(&FrameState{Lights: &lights})

	count, _ := dev.Uniform(p.Handle(), locLightCount)
	assert.Equal(t, []float32{1}, count)
	pos, _ := dev.Uniform(p.Handle(), locLightPos)
	assert.Equal(t, []float32{1, 2, 3}, pos)
	sun, _ := dev.Uniform(p.Handle(), locSunDir)
	assert.Equal(t, []float32{0, -1, 0}, sun)
}

func TestRetargetSkipsAbsentUniforms(t *testing.T) {
	dev := gputest.NewDevice()
	lit := newProgram(t, dev, litSpec(false))
	depth := newProgram(t, dev, gputest.ProgramSpec{})
	m := NewMaterial(lit, WithBaseColor([4]float32{1, 1, 1, 1}))

	m.SetProgram(depth)
	dev.UseProgram(depth.Handle())
	dev.Reset()
	m.BindUniforms(nil)
	assert.Zero(t, dev.Count("Uniform4fv"))

	m.SetProgram(lit)
	dev.UseProgram(lit.Handle())
	m.BindUniforms(nil)
	assert.Equal(t, 1, dev.Count("Uniform4fv"), "dictionary survived the retarget")
}

func TestIsOpaque(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, litSpec(false))

	assert.True(t, NewMaterial(p).IsOpaque())
	assert.True(t, NewMaterial(p, WithBaseColor([4]float32{1, 1, 1, 1})).IsOpaque())
	assert.False(t, NewMaterial(p, WithBaseColor([4]float32{1, 1, 1, 0.5})).IsOpaque())
	assert.False(t, NewMaterial(p, WithTransparent(true)).IsOpaque())
}

func TestCopyIsIndependent(t *testing.T) {
	dev := gputest.NewDevice()
	tex := newTestTexture(dev, "albedo")
	m := NewMaterial(newProgram(t, dev, litSpec(false)),
		WithBaseColor([4]float32{1, 1, 1, 1}),
		WithTexture("albedo", tex),
		WithShadowDoubleSided(true),
	)
	tex.Release()

	c := m.Copy()
	c.SetUniform("baseColor", 0, 0, 0, 1)
	orig, _ := m.Uniform("baseColor")
	assert.Equal(t, []float32{1, 1, 1, 1}, orig.Values)
	assert.True(t, c.ShadowDoubleSided())
	assert.Same(t, m.Program(), c.Program())

	m.Release()
	assert.Zero(t, dev.Deleted["texture"], "the copy still references the texture")
	c.Release()
	assert.Equal(t, 1, dev.Deleted["texture"])
}

func TestNewMaterialRequiresProgram(t *testing.T) {
	assert.PanicsWithValue(t, "material: NewMaterial requires a ProgramContainer", func() {
		NewMaterial(nil)
	})
}

func TestFloatTextureUpload(t *testing.T) {
	dev := gputest.NewDevice()
	tex := NewFloatTexture(dev, "joints", 4, 2, make([]float32, 32))
	desc := dev.Textures[tex.Handle()]
	assert.Equal(t, gpu.InternalRGBA32F, desc.InternalFormat)
	assert.Len(t, dev.TexturePixels[tex.Handle()], 128)

	tex.UpdateFloats(make([]float32, 32))
	assert.Equal(t, 2, dev.Count("TexImage2D"))

	w, h := tex.Size()
	assert.Equal(t, int32(4), w)
	assert.Equal(t, int32(2), h)
}
