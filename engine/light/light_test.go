package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, got mgl32.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5, msgAndArgs...)
}

func TestNewLightDefaultsAndOptions(t *testing.T) {
	l := NewLight(LightTypeSpot,
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithDirection(mgl32.Vec3{0, 0, -4}),
		WithSpotCone(0, 90),
	)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, l.Position())
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, l.Direction())
	inner, outer := l.Cones()
	assert.InDelta(t, 1, inner, 1e-6)
	assert.InDelta(t, 0, outer, 1e-6)
	assert.True(t, l.Enabled())

	l.SetDirection(mgl32.Vec3{})
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, l.Direction(), "zero direction is ignored")
}

func TestEnvironmentPack(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithDirection(mgl32.Vec3{0, -1, -1}), WithIntensity(3))
	lamp := NewLight(LightTypePoint, WithPosition(mgl32.Vec3{4, 5, 6}), WithColor(mgl32.Vec3{1, 0.5, 0}), WithIntensity(2), WithRange(7))
	off := NewLight(LightTypePoint, WithEnabled(false))

	env := NewEnvironment(sun, off, lamp)
	env.SetAmbient(mgl32.Vec3{0.2, 0.2, 0.3})

	var u Uniforms
	env.Pack(&u)

	assert.Equal(t, float32(3), u.SunIntensity)
	assertVecNear(t, mgl32.Vec3{0, -1, -1}.Normalize(), u.SunDirection)
	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.3}, u.AmbientColor)
	require.Equal(t, int32(1), u.Count)
	assert.Equal(t, []float32{4, 5, 6}, u.Positions[0:3])
	assert.Equal(t, []float32{2, 1, 0}, u.Colors[0:3])
	assert.Equal(t, float32(7), u.Ranges[0])
}

func TestEnvironmentPackCapsAndSunless(t *testing.T) {
	env := NewEnvironment()
	for i := 0; i < MaxLights+4; i++ {
		env.Add(NewLight(LightTypePoint))
	}
	var u Uniforms
	env.Pack(&u)
	assert.Equal(t, int32(MaxLights), u.Count)
	assert.Zero(t, u.SunIntensity)
	assert.Nil(t, env.Sun())
}

func TestEnvironmentAddRemove(t *testing.T) {
	l := NewLight(LightTypePoint)
	env := NewEnvironment()
	env.Add(l)
	env.Add(l)
	assert.Len(t, env.Lights(), 1)
	assert.True(t, env.Remove(l))
	assert.False(t, env.Remove(l))
}

func TestSunViewProjectionCentersTarget(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithDirection(mgl32.Vec3{0, -1, 0}))
	center := mgl32.Vec3{10, 0, -3}
	m := SunViewProjection(sun, center, DefaultShadowHalfExtent, DefaultShadowNear, DefaultShadowFar)

	clip := m.Mul4x1(center.Vec4(1))
	assert.InDelta(t, 0, clip.X(), 1e-4)
	assert.InDelta(t, 0, clip.Y(), 1e-4)
	assert.True(t, clip.Z() > -1 && clip.Z() < 1)
}
