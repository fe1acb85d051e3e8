package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const locModel int32 = 20

var sources = []program.Source{
	{Name: "mesh.vert", Stage: gpu.StageVertex},
	{Name: "mesh.frag", Stage: gpu.StageFragment},
}

func meshSpec(attributes ...string) gputest.ProgramSpec {
	spec := gputest.ProgramSpec{
		Uniforms: []gpu.ActiveVariable{
			{Name: ModelMatrixUniform, Location: locModel, Type: gpu.TypeFloatMat4},
			{Name: "baseColor", Type: gpu.TypeFloatVec4},
		},
	}
	for _, a := range attributes {
		spec.Attributes = append(spec.Attributes, gpu.ActiveVariable{Name: a, Type: gpu.TypeFloatVec3})
	}
	return spec
}

func newProgram(t *testing.T, dev *gputest.Device, spec gputest.ProgramSpec) program.ProgramContainer {
	t.Helper()
	dev.QueueProgram(spec)
	p, err := program.NewProgramContainer(dev, sources)
	require.NoError(t, err)
	return p
}

func triangle(dev gpu.Device, indexed bool) *MeshData {
	attrs := []VertexAttribute{
		Float32Attribute(AttrPosition, 3, []float32{0, 0, 0, 1, 0, 0, 0, 2, 0}),
		Float32Attribute(AttrNormal, 3, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}),
	}
	var indices []uint32
	if indexed {
		indices = []uint32{0, 1, 2}
	}
	return NewMeshData(dev, attrs, indices, WithName("triangle"))
}

func TestMeshDataBoundsAndBuffers(t *testing.T) {
	dev := gputest.NewDevice()
	m := triangle(dev, true)

	assert.Equal(t, mgl32.Vec3{0, 0, 0}, m.Bounds().Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 0}, m.Bounds().Max)
	assert.Equal(t, int32(3), m.VertexCount())
	assert.True(t, m.Indexed())
	assert.Equal(t, 3, dev.Count("CreateBuffer"), "two attributes and the index buffer")

	m.Release()
	assert.Equal(t, 3, dev.Deleted["buffer"])
}

func TestNewMeshDataRequiresPositions(t *testing.T) {
	dev := gputest.NewDevice()
	assert.PanicsWithValue(t, "model: NewMeshData requires a position attribute", func() {
		NewMeshData(dev, []VertexAttribute{Float32Attribute(AttrNormal, 3, []float32{0, 0, 1})}, nil)
	})
}

func TestVertexArrayCachedPerProgram(t *testing.T) {
	dev := gputest.NewDevice()
	lit := newProgram(t, dev, meshSpec(AttrPosition, AttrNormal))
	depth := newProgram(t, dev, meshSpec(AttrPosition))
	m := triangle(dev, false)

	first := m.VertexArray(lit)
	assert.Equal(t, first, m.VertexArray(lit))
	assert.Equal(t, 2, dev.Count("EnableVertexAttrib"))

	other := m.VertexArray(depth)
	assert.NotEqual(t, first, other)
	assert.Equal(t, 3, dev.Count("EnableVertexAttrib"), "depth program only declares position")
	assert.Equal(t, 2, dev.Count("CreateVertexArray"))
}

func TestVertexArrayRebuiltAfterRelink(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	m := triangle(dev, false)

	before := m.VertexArray(p)
	dev.QueueProgram(meshSpec(AttrPosition, AttrNormal))
	require.NoError(t, p.Relink(sources...))

	after := m.VertexArray(p)
	assert.NotEqual(t, before, after)
	assert.Equal(t, 1, dev.Deleted["vertexArray"])
}

func TestRenderSplitsOpaqueAndAlpha(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	solid := triangle(dev, true)
	glass := triangle(dev, false)
	r := NewMeshRenderer(
		Pair{Material: material.NewMaterial(p), Mesh: solid},
		Pair{Material: material.NewMaterial(p, material.WithBaseColor([4]float32{1, 1, 1, 0.5})), Mesh: glass},
	)
	model := mgl32.Translate3D(1, 2, 3)

	assert.Equal(t, 1, r.Render(&material.FrameState{}, model, model, true))
	require.Len(t, dev.Draws, 1)
	assert.True(t, dev.Draws[0].Indexed)

	v, _ := dev.Uniform(p.Handle(), locModel)
	assert.Equal(t, model[:], v)

	dev.Reset()
	assert.Equal(t, 1, r.Render(&material.FrameState{}, model, model, false))
	require.Len(t, dev.Draws, 1)
	assert.False(t, dev.Draws[0].Indexed)
}

func TestShadowPassUsesShadowCullPolicy(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	mesh := triangle(dev, true)
	r := NewMeshRenderer(Pair{Material: material.NewMaterial(p, material.WithShadowDoubleSided(true)), Mesh: mesh})

	r.Render(&material.FrameState{}, mgl32.Ident4(), mgl32.Ident4(), true)
	r.Render(&material.FrameState{ShadowPass: true}, mgl32.Ident4(), mgl32.Ident4(), true)

	require.Len(t, dev.Draws, 2)
	assert.True(t, dev.Draws[0].Cull, "color pass culls back faces")
	assert.False(t, dev.Draws[1].Cull, "shadow pass draws both faces")
}

func TestNewMeshRendererPanicsOnNilMaterial(t *testing.T) {
	dev := gputest.NewDevice()
	assert.PanicsWithValue(t, "model: mesh renderer requires a Material", func() {
		NewMeshRenderer(Pair{Mesh: triangle(dev, false)})
	})
}

func TestCopySharesMeshes(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	mesh := triangle(dev, true)
	r := NewMeshRenderer(Pair{Material: material.NewMaterial(p), Mesh: mesh})
	mesh.Release()

	c := r.Copy()
	assert.Same(t, r.Meshes()[0], c.Meshes()[0])
	assert.NotSame(t, r.Materials()[0], c.Materials()[0])

	r.Release()
	assert.Zero(t, dev.Deleted["buffer"])
	c.Release()
	assert.Equal(t, 3, dev.Deleted["buffer"])
}

func TestInstancesUploadLazily(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition, AttrInstanceMatrix, AttrInstanceColor))
	r := NewMeshInstanceRenderer(dev, Pair{Material: material.NewMaterial(p), Mesh: triangle(dev, true)})

	assert.Zero(t, r.Render(&material.FrameState{}, mgl32.Ident4(), mgl32.Ident4(), true), "no instances, no draw")

	dev.Reset()
	a := r.AddInstance(mgl32.Translate3D(1, 0, 0))
	r.AddInstance(mgl32.Translate3D(2, 0, 0), mgl32.Vec4{1, 0, 0, 1})
	r.UpdateInstance(a, mgl32.Translate3D(3, 0, 0))
	assert.Zero(t, dev.Count("BufferData"), "edits stay on the CPU")

	r.Render(&material.FrameState{}, mgl32.Ident4(), mgl32.Ident4(), true)
	assert.Equal(t, 2, dev.Count("BufferData"), "one matrix and one color upload")
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, int32(2), dev.Draws[0].Instances)
	assert.Equal(t, 5, dev.Count("VertexAttribDivisor"), "four matrix columns and the color")

	dev.Reset()
	r.Render(&material.FrameState{}, mgl32.Ident4(), mgl32.Ident4(), true)
	assert.Zero(t, dev.Count("BufferData"))
	assert.Zero(t, dev.Count("CreateVertexArray"))
}

func TestRemoveInstanceSwapsLast(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	r := NewMeshInstanceRenderer(dev, Pair{Material: material.NewMaterial(p), Mesh: triangle(dev, false)})

	a := r.AddInstance(mgl32.Translate3D(1, 0, 0))
	b := r.AddInstance(mgl32.Translate3D(2, 0, 0))
	c := r.AddInstance(mgl32.Translate3D(3, 0, 0))

	assert.True(t, r.RemoveInstance(a))
	assert.False(t, r.RemoveInstance(a))
	assert.Equal(t, 2, r.InstanceCount())

	m, ok := r.InstanceMatrix(c)
	require.True(t, ok)
	assert.Equal(t, mgl32.Translate3D(3, 0, 0), m)
	assert.True(t, r.UpdateInstance(c, mgl32.Translate3D(4, 0, 0)))
	m, _ = r.InstanceMatrix(b)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), m)

	// c moved into a's slot
	assert.Equal(t, []mgl32.Mat4{mgl32.Translate3D(4, 0, 0), mgl32.Translate3D(2, 0, 0)}, r.InstanceMatrices())
}

func TestForeignInstanceHandlePanics(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	one := NewMeshInstanceRenderer(dev, Pair{Material: material.NewMaterial(p), Mesh: triangle(dev, false)})
	two := NewMeshInstanceRenderer(dev, Pair{Material: material.NewMaterial(p), Mesh: triangle(dev, false)})

	h := one.AddInstance(mgl32.Ident4())
	assert.PanicsWithValue(t, "model: instance handle belongs to another renderer", func() {
		two.RemoveInstance(h)
	})
}

func TestSkinUpdatesOncePerFrame(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	root := transform.NewTransform(nil)
	joint := transform.NewTransform(nil, transform.WithPosition(mgl32.Vec3{0, 1, 0}))
	root.Attach(joint)
	skin := animator.NewSkin([]transform.Transform{joint}, []mgl32.Mat4{mgl32.Ident4()}, root)
	r := NewSkinnedMeshRenderer(dev, skin, Pair{Material: material.NewMaterial(p), Mesh: triangle(dev, true)})

	frame := &material.FrameState{FrameID: 7}
	r.Render(frame, mgl32.Ident4(), mgl32.Ident4(), true)
	r.Render(frame, mgl32.Ident4(), mgl32.Ident4(), false)
	assert.Equal(t, 1, dev.Count("TexImage2D"), "second sub-pass reuses the joint texture")
	require.NotNil(t, skin.Texture())
	assert.Equal(t, skin.Texture().Handle(), dev.BoundTextures[material.UnitJointTexture])
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), skin.JointMatrix(0))

	frame.FrameID++
	r.Render(frame, mgl32.Ident4(), mgl32.Ident4(), true)
	assert.Equal(t, 2, dev.Count("TexImage2D"))
}

func TestSkinnedCopyHasOwnSkin(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev, meshSpec(AttrPosition))
	joint := transform.NewTransform(nil)
	skin := animator.NewSkin([]transform.Transform{joint}, []mgl32.Mat4{mgl32.Ident4()}, nil)
	r := NewSkinnedMeshRenderer(dev, skin, Pair{Material: material.NewMaterial(p), Mesh: triangle(dev, true)})

	c, ok := r.Copy().(SkinnedRenderer)
	require.True(t, ok)
	assert.NotSame(t, skin, c.Skin())
	assert.Same(t, joint, c.Skin().Joints()[0])
}
