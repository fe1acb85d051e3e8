package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5, msgAndArgs...)
}

func assertMatNear(t *testing.T, want, got mgl32.Mat4, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5, msgAndArgs...)
}

func slide(target transform.Transform, name string, to mgl32.Vec3) *Clip {
	return NewClip(name, &Channel{
		Target: target,
		PositionKeys: []VectorKeyframe{
			{Time: 0, Value: mgl32.Vec3{}},
			{Time: 2, Value: to},
		},
	})
}

func TestChannelSampleInterpolatesAndClamps(t *testing.T) {
	ch := &Channel{
		PositionKeys: []VectorKeyframe{{Time: 1, Value: mgl32.Vec3{0, 0, 0}}, {Time: 3, Value: mgl32.Vec3{4, 0, 0}}},
		RotationKeys: []QuaternionKeyframe{
			{Time: 0, Value: mgl32.QuatIdent()},
			{Time: 2, Value: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})},
		},
	}

	p := ch.Sample(2)
	assertVecNear(t, mgl32.Vec3{2, 0, 0}, p.Position)
	assertMatNear(t, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}).Mat4(), p.Rotation.Mat4())
	assert.Zero(t, p.Mask&maskScale)

	assertVecNear(t, mgl32.Vec3{}, ch.Sample(0).Position)
	assertVecNear(t, mgl32.Vec3{4, 0, 0}, ch.Sample(10).Position)

	half := ch.Sample(1).Rotation
	assertMatNear(t, mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0}).Mat4(), half.Mat4())
}

func TestControllerLoopsAndClamps(t *testing.T) {
	node := transform.NewTransform(nil)
	a := NewAnimationController(WithClips(slide(node, "walk", mgl32.Vec3{2, 0, 0})))
	require.Equal(t, float32(2), a.Clip("walk").Duration)

	require.True(t, a.Play("walk", true))
	a.Update(2.5)
	assert.InDelta(t, 0.5, a.Time(), 1e-5)
	assertVecNear(t, mgl32.Vec3{0.5, 0, 0}, node.Position())

	a.Play("walk", false)
	a.Update(5)
	assert.Equal(t, float32(2), a.Time())
	assertVecNear(t, mgl32.Vec3{2, 0, 0}, node.Position())

	assert.False(t, a.Play("run", true))
}

func TestControllerBlend(t *testing.T) {
	node := transform.NewTransform(nil)
	a := NewAnimationController(
		WithClips(
			NewClip("idle", &Channel{Target: node, PositionKeys: []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{0, 0, 0}}}}),
			NewClip("raise", &Channel{Target: node, PositionKeys: []VectorKeyframe{{Time: 0, Value: mgl32.Vec3{0, 4, 0}}}}),
		),
		WithAutoplay("idle"),
	)
	assert.Equal(t, "idle", a.Playing())

	require.True(t, a.BlendTo("raise", 1))
	a.Update(0.25)
	assert.True(t, a.IsBlending())
	assert.InDelta(t, 0.25, a.BlendProgress(), 1e-6)
	assertVecNear(t, mgl32.Vec3{0, 1, 0}, node.Position())

	a.Update(1)
	assert.False(t, a.IsBlending())
	assert.Equal(t, "raise", a.Playing())
	assertVecNear(t, mgl32.Vec3{0, 4, 0}, node.Position())
}

func TestControllerCopyRetargets(t *testing.T) {
	oldNode := transform.NewTransform(nil)
	newNode := transform.NewTransform(nil)
	a := NewAnimationController(WithClips(slide(oldNode, "walk", mgl32.Vec3{2, 0, 0})), WithAutoplay("walk"))
	a.Update(0.5)

	c := a.Copy()
	assert.Equal(t, "walk", c.Playing())
	assert.Equal(t, a.Time(), c.Time())
	require.Len(t, c.Channels(), 1)
	assert.Same(t, oldNode, c.Channels()[0].Target)

	c.SetChannelTarget(0, newNode)
	assert.Same(t, newNode, c.Channels()[0].Target)
	assert.Same(t, oldNode, a.Channels()[0].Target, "the original keeps its targets")

	c.Update(0.5)
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, newNode.Position())
	assert.Panics(t, func() { c.SetChannelTarget(3, newNode) })
}

func TestSkinUpdateUploadsRelativeJointMatrices(t *testing.T) {
	dev := gputest.NewDevice()
	root := transform.NewTransform(nil, transform.WithPosition(mgl32.Vec3{10, 0, 0}))
	hip := transform.NewTransform(nil, transform.WithPosition(mgl32.Vec3{0, 1, 0}))
	knee := transform.NewTransform(nil, transform.WithPosition(mgl32.Vec3{0, -0.5, 0}))
	root.Attach(hip)
	hip.Attach(knee)

	inv := []mgl32.Mat4{mgl32.Translate3D(0, -1, 0), mgl32.Translate3D(0, -0.5, 0)}
	skin := NewSkin([]transform.Transform{hip, knee}, inv, root)

	skin.Update(dev)
	require.NotNil(t, skin.Texture())
	w, h := skin.Texture().Size()
	assert.Equal(t, int32(TexelsPerJoint), w)
	assert.Equal(t, int32(2), h)

	assertMatNear(t, mgl32.Ident4(), skin.JointMatrix(0), "bind pose cancels the inverse bind matrix")
	assertMatNear(t, mgl32.Ident4(), skin.JointMatrix(1))

	knee.SetPosition(mgl32.Vec3{0, -0.5, 1})
	skin.Update(dev)
	assert.Equal(t, 2, dev.Count("TexImage2D"), "the texture is reused")
	assertMatNear(t, mgl32.Translate3D(0, 0, 1), skin.JointMatrix(1))

	skin.Release()
	assert.Equal(t, 1, dev.Deleted["texture"])
}

func TestSkinSetJointsKeepsCount(t *testing.T) {
	j := transform.NewTransform(nil)
	skin := NewSkin([]transform.Transform{j}, []mgl32.Mat4{mgl32.Ident4()}, nil)
	c := skin.Copy()

	other := transform.NewTransform(nil)
	c.SetJoints([]transform.Transform{other})
	assert.Same(t, other, c.Joints()[0])
	assert.Same(t, j, skin.Joints()[0])
	assert.Panics(t, func() { c.SetJoints(nil) })
}
