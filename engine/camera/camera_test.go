package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4, "want %v got %v", want, got)
}

func assertMatNear(t *testing.T, want, got mgl32.Mat4, delta float64) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, "want %v\ngot  %v", want, got)
}

func TestDefaultCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera()

	assertVecNear(t, mgl32.Vec3{}, c.Position())
	assert.Equal(t, LayerAll, c.Layer())

	// a point in front of the camera lands at negative view z
	p := common.TransformPoint(c.ViewMatrix(), mgl32.Vec3{0, 0, -5})
	assertVecNear(t, mgl32.Vec3{0, 0, -5}, p)
}

func TestInverseViewRecoversPosition(t *testing.T) {
	c := NewCamera(WithLookAt(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{}))

	assertVecNear(t, mgl32.Vec3{3, 4, 5}, common.Translation(c.InverseViewMatrix()))
	id := c.ViewMatrix().Mul4(c.InverseViewMatrix())
	assertMatNear(t, mgl32.Ident4(), id, 1e-4)
}

func TestViewProjectionAndFrustum(t *testing.T) {
	c := NewCamera(WithAspect(16.0/9.0), WithNear(0.5), WithFar(50))

	want := c.ProjectionMatrix().Mul4(c.ViewMatrix())
	assertMatNear(t, want, c.ViewProjectionMatrix(), 1e-5)

	inFront := common.NewAABB(mgl32.Vec3{-1, -1, -11}, mgl32.Vec3{1, 1, -9})
	behind := common.NewAABB(mgl32.Vec3{-1, -1, 9}, mgl32.Vec3{1, 1, 11})
	tooFar := common.NewAABB(mgl32.Vec3{-1, -1, -70}, mgl32.Vec3{1, 1, -60})
	assert.True(t, c.Frustum().IntersectsAABB(inFront))
	assert.False(t, c.Frustum().IntersectsAABB(behind))
	assert.False(t, c.Frustum().IntersectsAABB(tooFar))
}

func TestSetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(2))
	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestUpdateFollowsController(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(10), WithElevation(0), WithAzimuth(0))
	c := NewCamera(WithController(ctrl))

	assertVecNear(t, mgl32.Vec3{0, 0, 10}, c.Position())

	ctrl.SetTarget(mgl32.Vec3{1, 0, 0})
	c.Update()
	assertVecNear(t, mgl32.Vec3{1, 0, 10}, c.Position())
}

func TestOrbitClampsRadiusAndElevation(t *testing.T) {
	ctrl := NewOrbitController(WithRadiusBounds(2, 20), WithElevationBounds(0, 1))

	ctrl.SetRadius(100)
	assert.Equal(t, float32(20), ctrl.Radius())
	ctrl.Zoom(100)
	assert.Equal(t, float32(2), ctrl.Radius())

	ctrl.SetElevation(3)
	assert.Equal(t, float32(1), ctrl.Elevation())
	ctrl.SetElevation(-3)
	assert.Equal(t, float32(0), ctrl.Elevation())
}

func TestOrbitPanPreservesOffset(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(5), WithElevation(0))
	offset := ctrl.Position().Sub(ctrl.Target())

	ctrl.PanRight(2)
	ctrl.PanUp(1)

	assertVecNear(t, offset, ctrl.Position().Sub(ctrl.Target()))
	assertVecNear(t, mgl32.Vec3{2, 1, 0}, ctrl.Target())
}

func TestFirstPersonAxes(t *testing.T) {
	fp := NewFirstPersonController()
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, fp.Forward())
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, fp.Right())

	fp.SetYawPitch(mgl32.DegToRad(90), 0)
	assertVecNear(t, mgl32.Vec3{1, 0, 0}, fp.Forward())
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, fp.Right())
}

func TestFirstPersonPitchClamp(t *testing.T) {
	fp := NewFirstPersonController(WithMaxPitch(1), WithLookSensitivity(1))

	fp.Look(0, -10)
	assert.Equal(t, float32(1), fp.Pitch())
	fp.Look(0, 20)
	assert.Equal(t, float32(-1), fp.Pitch())
}

func TestFirstPersonMoveStaysOnGround(t *testing.T) {
	fp := NewFirstPersonController(WithYawPitch(0, mgl32.DegToRad(45)))

	fp.Move(2, 1, 0)
	assertVecNear(t, mgl32.Vec3{1, 0, -2}, fp.Position())

	c := NewCamera(WithController(fp))
	require.NotNil(t, c.Controller())
	look := fp.Target().Sub(fp.Position())
	assert.InDelta(t, 1, look.Len(), 1e-4)
	assert.Greater(t, look.Y(), float32(0))
}
