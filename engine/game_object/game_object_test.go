package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
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

type testCamera struct {
	layer uint32
}

func (c testCamera) ProjectionMatrix() mgl32.Mat4 { return mgl32.Perspective(1, 1, 0.1, 100) }
func (c testCamera) ViewMatrix() mgl32.Mat4 { return mgl32.Ident4() }
func (c testCamera) InverseViewMatrix() mgl32.Mat4 { return mgl32.Ident4() }
func (c testCamera) Position() mgl32.Vec3 { return mgl32.Vec3{} }
func (c testCamera) Layer() uint32 { return c.layer }

type counter struct {
	BaseComponent
	updates int
}

func (c *counter) Update(dt float32) { c.updates++ }

type tagged struct {
	BaseComponent
	Speed float32
	Tags  []string
}

func (t *tagged) DeepCopyable() bool { return true }

type shared struct {
	BaseComponent
}

func newProgram(t *testing.T, dev *gputest.Device) program.ProgramContainer {
	t.Helper()
	dev.QueueProgram(gputest.ProgramSpec{
		Attributes: []gpu.ActiveVariable{{Name: model.AttrPosition, Type: gpu.TypeFloatVec3}},
		Uniforms:   []gpu.ActiveVariable{{Name: model.ModelMatrixUniform, Type: gpu.TypeFloatMat4}},
	})
	p, err := program.NewProgramContainer(dev, []program.Source{
		{Name: "unlit.vert", Stage: gpu.StageVertex},
		{Name: "unlit.frag", Stage: gpu.StageFragment},
	})
	require.NoError(t, err)
	return p
}

func newMesh(dev gpu.Device) *model.MeshData {
	return model.NewMeshData(dev, []model.VertexAttribute{
		model.Float32Attribute(model.AttrPosition, 3, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}),
	}, nil)
}

func newRenderer(t *testing.T, dev *gputest.Device, p program.ProgramContainer) model.MeshRenderer {
	t.Helper()
	mesh := newMesh(dev)
	defer mesh.Release()
	return model.NewMeshRenderer(model.Pair{Material: material.NewMaterial(p), Mesh: mesh})
}

// tree builds root -> (a -> (a1, a2), b).
func tree() (root, a, a1, a2, b GameObject) {
	a1 = NewGameObject(WithName("a1"))
	a2 = NewGameObject(WithName("a2"))
	a = NewGameObject(WithName("a"), WithChildren(a1, a2))
	b = NewGameObject(WithName("b"))
	root = NewGameObject(WithName("root"), WithChildren(a, b))
	return
}

func names(visit func(func(GameObject))) []string {
	var out []string
	visit(func(g GameObject) { out = append(out, g.Name()) })
	return out
}

func TestAddChildRejectsParentedChild(t *testing.T) {
	root, a, _, _, _ := tree()
	other := NewGameObject()

	got, err := other.AddChild(a)
	assert.ErrorIs(t, err, ErrAlreadyParented)
	assert.Nil(t, got)
	assert.Same(t, root, a.Parent())
}

func TestAddChildRejectsCycle(t *testing.T) {
	root, a, _, _, _ := tree()
	root.RemoveChild(a)
	_, _ = a.AddChild(NewGameObject())
	assert.PanicsWithValue(t, "game_object: AddChild would create a cycle", func() {
		a.Children()[2].AddChild(a)
	})
}

func TestSetParentMovesTransform(t *testing.T) {
	_, a, a1, _, b := tree()
	b.Transform().SetPosition(mgl32.Vec3{10, 0, 0})

	a1.SetParent(b)
	assert.Same(t, b, a1.Parent())
	assert.Len(t, a.Children(), 1)
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, a1.Transform().WorldPosition())

	a1.SetParent(nil)
	assert.Nil(t, a1.Parent())
	assert.Nil(t, a1.Transform().Parent())
	assert.Equal(t, mgl32.Vec3{}, a1.Transform().WorldPosition())
}

func TestTraverseOrder(t *testing.T) {
	root, _, _, _, _ := tree()
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names(root.Traverse))

	gated := names(func(fn func(GameObject)) {
		root.TraverseCondition(fn, func(g GameObject) bool { return g.Name() != "a" })
	})
	assert.Equal(t, []string{"root", "b"}, gated, "a is gated before fn runs on it")
}

func TestHierarchyPathRoundTrip(t *testing.T) {
	root, a, _, a2, _ := tree()

	path, ok := a2.HierarchyPath(root)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, path)
	assert.Same(t, a2, root.ChildFromHierarchyPath(path))

	path, ok = a2.HierarchyPath(a)
	require.True(t, ok)
	assert.Equal(t, []int{1}, path)

	path, ok = root.HierarchyPath(root)
	require.True(t, ok)
	assert.Empty(t, path)

	_, ok = root.HierarchyPath(a2)
	assert.False(t, ok)
	assert.Nil(t, root.ChildFromHierarchyPath([]int{0, 5}))
}

func TestFindIsPreOrder(t *testing.T) {
	root, a, _, _, _ := tree()
	dup := NewGameObject(WithName("b"))
	_, err := a.AddChild(dup)
	require.NoError(t, err)

	assert.Same(t, dup, root.Find("b"), "a's subtree is visited before root's second child")
	assert.Nil(t, root.Find("missing"))
}

func TestDeleteKeepsGPUResources(t *testing.T) {
	dev := gputest.NewDevice()
	root, a, a1, _, _ := tree()
	a1.SetMeshRenderer(newRenderer(t, dev, newProgram(t, dev)))

	a.Delete()
	assert.False(t, a.Alive())
	assert.False(t, a1.Alive())
	assert.True(t, root.Alive())
	assert.Nil(t, root.Find("a"))
	assert.Zero(t, dev.Deleted["buffer"])

	a.Cleanup()
	assert.Equal(t, 1, dev.Deleted["buffer"])
	assert.Nil(t, a1.MeshRenderer())
}

func TestUpdateSkipsInactiveSubtree(t *testing.T) {
	root, a, a1, _, b := tree()
	ca, ca1, cb := &counter{}, &counter{}, &counter{}
	a.AddComponent(ca)
	a1.AddComponent(ca1)
	b.AddComponent(cb)
	assert.Same(t, a, ca.GameObject())

	a.SetActive(false)
	root.Update(0.016)
	assert.Zero(t, ca.updates)
	assert.Zero(t, ca1.updates)
	assert.Equal(t, 1, cb.updates)
}

func TestUpdateAdvancesAnimation(t *testing.T) {
	target := NewGameObject()
	clip := animator.NewClip("slide", &animator.Channel{
		Target: target.Transform(),
		PositionKeys: []animator.VectorKeyframe{
			{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
			{Time: 1, Value: mgl32.Vec3{2, 0, 0}},
		},
	})
	holder := NewGameObject(
		WithAnimationController(animator.NewAnimationController(animator.WithClips(clip), animator.WithAutoplay("slide"))),
		WithChildren(target),
	)

	holder.Update(0.5)
	assert.InDelta(t, 1, target.Transform().Position().X(), 1e-5)
}

func TestRenderFiltering(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev)
	root, a, a1, a2, b := tree()
	for _, g := range []GameObject{root, a, a1, a2, b} {
		g.SetMeshRenderer(newRenderer(t, dev, p))
	}
	frame := &material.FrameState{Camera: testCamera{layer: LayerDefault}}
	opaque := RenderSettings{Pass: PassOpaque | PassAlpha}

	assert.Equal(t, 5, root.Render(frame, opaque))

	a.SetVisible(false)
	assert.Equal(t, 2, root.Render(frame, opaque), "invisible a hides its subtree")
	a.SetVisible(true)

	a.SetLayer(2)
	assert.Equal(t, 4, root.Render(frame, opaque), "layer mismatch skips only a's mesh")
	a.SetLayer(LayerDefault)

	b.SetCastShadows(false)
	assert.Equal(t, 4, root.Render(frame, RenderSettings{Pass: PassShadows}))
}

func TestRenderFrustumCull(t *testing.T) {
	dev := gputest.NewDevice()
	g := NewGameObject(WithMeshRenderer(newRenderer(t, dev, newProgram(t, dev))))
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	frustum := common.ExtractFrustum(mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100).Mul4(view))
	frame := &material.FrameState{Frustum: &frustum}
	settings := RenderSettings{Pass: PassOpaque}

	assert.Equal(t, 1, g.Render(frame, settings))
	g.Transform().SetPosition(mgl32.Vec3{0, 0, 50})
	assert.Zero(t, g.Render(frame, settings), "behind the camera")
	assert.Equal(t, 1, g.Render(frame, RenderSettings{Pass: PassShadows}), "shadow passes never cull")
}

func TestMaterialOverrideIsRestored(t *testing.T) {
	dev := gputest.NewDevice()
	lit := newProgram(t, dev)
	depth := newProgram(t, dev)
	g := NewGameObject(WithMeshRenderer(newRenderer(t, dev, lit)))

	g.Render(&material.FrameState{}, RenderSettings{Pass: PassShadows, MaterialOverride: depth})
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, depth.Handle(), dev.Draws[0].Program)
	assert.Same(t, lit, g.MeshRenderer().Materials()[0].Program())
}

func TestPrevModelMatrixRollsPerFrame(t *testing.T) {
	g := NewGameObject(WithPosition(mgl32.Vec3{1, 0, 0}))
	opaque := RenderSettings{Pass: PassOpaque}

	g.Render(&material.FrameState{FrameID: 1}, opaque)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), g.PrevModelMatrix())

	g.Transform().SetPosition(mgl32.Vec3{2, 0, 0})
	g.Render(&material.FrameState{FrameID: 1, ShadowPass: true}, RenderSettings{Pass: PassShadows})
	g.Render(&material.FrameState{FrameID: 2}, opaque)
	g.Render(&material.FrameState{FrameID: 2}, RenderSettings{Pass: PassAlpha})
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), g.PrevModelMatrix(), "both sub-passes of frame 2 see frame 1")

	g.Render(&material.FrameState{FrameID: 3}, opaque)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), g.PrevModelMatrix())
}

func TestCopyRetargetsSkinAndChannels(t *testing.T) {
	dev := gputest.NewDevice()
	p := newProgram(t, dev)
	outside := NewGameObject(WithName("outside"))

	hips := NewGameObject(WithName("hips"), WithPosition(mgl32.Vec3{0, 1, 0}))
	armature := NewGameObject(WithName("armature"), WithChildren(hips))
	skin := animator.NewSkin(
		[]transform.Transform{hips.Transform(), outside.Transform()},
		[]mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4()},
		armature.Transform(),
	)
	mesh := newMesh(dev)
	body := NewGameObject(WithName("body"), WithMeshRenderer(
		model.NewSkinnedMeshRenderer(dev, skin, model.Pair{Material: material.NewMaterial(p), Mesh: mesh}),
	))
	mesh.Release()
	clip := animator.NewClip("idle", &animator.Channel{
		Target:       hips.Transform(),
		PositionKeys: []animator.VectorKeyframe{{Time: 0, Value: mgl32.Vec3{0, 1, 0}}},
	})
	character := NewGameObject(
		WithName("character"),
		WithAnimationController(animator.NewAnimationController(animator.WithClips(clip))),
		WithChildren(armature, body),
	)

	dup := character.Copy()
	newHips := dup.Find("hips")
	require.NotNil(t, newHips)
	assert.NotSame(t, hips, newHips)
	assert.NotEqual(t, hips.ID(), newHips.ID())

	newSkin := dup.Find("body").MeshRenderer().(model.SkinnedRenderer).Skin()
	assert.Same(t, newHips.Transform(), newSkin.Joints()[0])
	assert.Same(t, outside.Transform(), newSkin.Joints()[1], "joints outside the subtree are kept")
	assert.Same(t, dup.Find("armature").Transform(), newSkin.Root())
	assert.Same(t, hips.Transform(), skin.Joints()[0], "the original skin is untouched")

	assert.Same(t, newHips.Transform(), dup.AnimationController().Channels()[0].Target)
	assert.Same(t, hips.Transform(), character.AnimationController().Channels()[0].Target)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, newHips.Transform().Position())
	assert.Nil(t, dup.Parent())
}

func TestCopyComponentsAndCustomData(t *testing.T) {
	deep := &tagged{Speed: 3, Tags: []string{"enemy"}}
	same := &shared{}
	g := NewGameObject(WithComponents(deep, same), WithCustomData("hp", 10))

	c := g.Copy()
	comps := c.Components()
	require.Len(t, comps, 2)

	dup, ok := comps[0].(*tagged)
	require.True(t, ok)
	assert.NotSame(t, deep, dup)
	assert.Equal(t, float32(3), dup.Speed)
	dup.Tags[0] = "ally"
	assert.Equal(t, "enemy", deep.Tags[0])
	assert.Same(t, c, dup.GameObject())

	assert.Same(t, same, comps[1], "components without a copy are shared")

	c.CustomData()["hp"] = 5
	assert.Equal(t, 10, g.CustomData()["hp"])
}
