package program

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu/gputest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sources() []Source {
	return []Source{
		{Name: "basic.vert", Stage: gpu.StageVertex, Code: "void main() {}"},
		{Name: "basic.frag", Stage: gpu.StageFragment, Code: "void main() {}"},
	}
}

func sceneProgramSpec() gputest.ProgramSpec {
	return gputest.ProgramSpec{
		Attributes: []gpu.ActiveVariable{
			{Name: "position", Location: 0, Type: gpu.TypeFloatVec3},
			{Name: "uv", Location: 2, Type: gpu.TypeFloatVec2},
		},
		Uniforms: []gpu.ActiveVariable{
			{Name: "modelMatrix", Location: 4, Type: gpu.TypeFloatMat4},
			{Name: "baseColor", Location: 5, Type: gpu.TypeFloatVec4},
			{Name: "albedo", Location: 6, Type: gpu.TypeSampler2D},
			{Name: "lightPositions[0]", Location: 7, Size: 8, Type: gpu.TypeFloatVec3},
		},
		Blocks: []gputest.Block{{
			Name: "sharedPerScene",
			Size: 208,
			Members: []gputest.BlockMember{
				{Name: "projectionMatrix", Type: gpu.TypeFloatMat4, Offset: 0},
				{Name: "viewMatrix", Type: gpu.TypeFloatMat4, Offset: 64},
				{Name: "inverseViewMatrix", Type: gpu.TypeFloatMat4, Offset: 128},
				{Name: "shadowBias", Type: gpu.TypeFloat, Offset: 192},
			},
		}},
	}
}

func TestIntrospectionCachesAttributesUniformsAndBlocks(t *testing.T) {
	dev := gputest.NewDevice()
	dev.QueueProgram(sceneProgramSpec())

	p, err := NewProgramContainer(dev, sources())
	require.NoError(t, err)

	uv, ok := p.Attribute("uv")
	require.True(t, ok)
	assert.Equal(t, uint32(2), uv.Location)

	color, ok := p.Uniform("baseColor")
	require.True(t, ok)
	assert.Equal(t, KindVec4, color.Kind)

	albedo, _ := p.Uniform("albedo")
	assert.True(t, albedo.Kind.IsSampler())

	arr, ok := p.Uniform("lightPositions")
	require.True(t, ok, "array uniforms resolve without the [0] suffix")
	assert.Equal(t, int32(8), arr.Size)

	_, ok = p.Uniform("viewMatrix")
	assert.False(t, ok, "block members are not plain uniforms")

	blk, ok := p.UniformBlock("sharedPerScene")
	require.True(t, ok)
	assert.Equal(t, int32(208), blk.Size)
	assert.Equal(t, []string{"projectionMatrix", "viewMatrix", "inverseViewMatrix", "shadowBias"}, blk.MemberNames)
	assert.Equal(t, []int32{0, 64, 128, 192}, blk.MemberOffsets)

	off, ok := blk.Offset("viewMatrix")
	assert.True(t, ok)
	assert.Equal(t, int32(64), off)

	assert.Equal(t, "basic.vert", p.Name())
	assert.Equal(t, 2, dev.Deleted["shader"], "shaders are deleted once linked")
}

func TestLinkFailureCombinesLogs(t *testing.T) {
	dev := gputest.NewDevice()
	dev.CompileFailures["broken"] = "0:1: 'broken' : undeclared identifier"
	dev.QueueProgram(gputest.ProgramSpec{LinkFails: true, LinkLog: "fragment shader not compiled"})

	srcs := sources()
	srcs[1].Code = "void main() { broken; }"

	_, err := NewProgramContainer(dev, srcs, WithName("lit"))
	require.Error(t, err)

	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "lit", linkErr.Program)
	assert.Contains(t, err.Error(), "fragment shader not compiled")
	assert.Contains(t, err.Error(), "basic.frag")
	assert.Contains(t, err.Error(), "undeclared identifier")
}

func TestCompileFailureFailsEvenIfDriverLinks(t *testing.T) {
	dev := gputest.NewDevice()
	dev.CompileFailures["oops"] = "syntax error"

	srcs := sources()
	srcs[0].Code = "oops"

	_, err := NewProgramContainer(dev, srcs)
	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, 1, dev.Deleted["program"])
}

func TestRelinkFailureKeepsPreviousProgram(t *testing.T) {
	dev := gputest.NewDevice()
	dev.QueueProgram(sceneProgramSpec())
	p, err := NewProgramContainer(dev, sources())
	require.NoError(t, err)
	before := p.Handle()

	dev.QueueProgram(gputest.ProgramSpec{LinkFails: true, LinkLog: "boom"})
	require.Error(t, p.Relink(sources()...))

	assert.Equal(t, before, p.Handle())
	_, ok := p.Uniform("baseColor")
	assert.True(t, ok)
}

func TestRelinkReintrospects(t *testing.T) {
	dev := gputest.NewDevice()
	dev.QueueProgram(sceneProgramSpec())
	p, err := NewProgramContainer(dev, sources())
	require.NoError(t, err)
	before := p.Handle()

	dev.QueueProgram(gputest.ProgramSpec{Uniforms: []gpu.ActiveVariable{{Name: "tint", Type: gpu.TypeFloatVec3}}})
	require.NoError(t, p.Relink(sources()...))

	assert.NotEqual(t, before, p.Handle())
	_, ok := p.Uniform("baseColor")
	assert.False(t, ok)
	tint, ok := p.Uniform("tint")
	assert.True(t, ok)
	assert.Equal(t, KindVec3, tint.Kind)
}

func TestKindSettersReachDevice(t *testing.T) {
	dev := gputest.NewDevice()
	dev.QueueProgram(sceneProgramSpec())
	p, err := NewProgramContainer(dev, sources())
	require.NoError(t, err)
	dev.UseProgram(p.Handle())

	assert.True(t, p.Set("baseColor", KindVec4, []float32{1, 0.5, 0.25, 1}))
	assert.True(t, p.Set("albedo", KindSampler2D, []float32{4}))
	assert.True(t, p.SetMat4("modelMatrix", mgl32.Translate3D(1, 2, 3)))
	assert.False(t, p.Set("missing", KindFloat, []float32{1}))

	assert.Equal(t, 1, dev.Count("Uniform4fv"))
	assert.Equal(t, 1, dev.Count("Uniform1iv"))
	model, _ := dev.Uniform(p.Handle(), 4)
	assert.Equal(t, float32(3), model[14])
	unit, _ := dev.Uniform(p.Handle(), 6)
	assert.Equal(t, []float32{4}, unit)
}

func TestBlockBindingAppliedOnceAfterLink(t *testing.T) {
	dev := gputest.NewDevice()
	dev.QueueProgram(sceneProgramSpec())
	p, err := NewProgramContainer(dev, sources(), WithBlockBinding("sharedPerScene", 0), WithBlockBinding("unused", 3))
	require.NoError(t, err)

	assert.Equal(t, 1, dev.Count("UniformBlockBinding"))
	assert.True(t, p.BindBlock("sharedPerScene", 0))
	assert.Equal(t, 1, dev.Count("UniformBlockBinding"))
	assert.True(t, p.BindBlock("sharedPerScene", 1))
	assert.Equal(t, 2, dev.Count("UniformBlockBinding"))
	assert.False(t, p.BindBlock("unused", 3))
}

func TestUniformKindTable(t *testing.T) {
	assert.Equal(t, KindMat3, KindFromGLType(gpu.TypeFloatMat3))
	assert.Equal(t, KindUnknown, KindFromGLType(gpu.TypeFloatMat2))
	assert.Equal(t, 16, KindMat4.Components())
	assert.Equal(t, "samplerCube", KindSamplerCube.String())
	assert.False(t, KindVec3.IsSampler())
}
