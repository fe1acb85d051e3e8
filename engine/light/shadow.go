package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture. Scenes use this as their initial value but can override it
// via the WithShadowMapResolution builder option.
const ShadowMapResolution = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum. Controls how much of the scene
// around the camera center is captured in the shadow map.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// DefaultShadowNormalBiasScale is the multiplier applied to the shadow map
// texel world-size to compute the normal-offset bias. Higher values push
// the shadow sample point further along the surface normal, reducing
// self-shadowing on concave geometry at the cost of slight shadow
// detachment from contact points. Typical values are 2.0–4.0.
const DefaultShadowNormalBiasScale float32 = 3.0

// SunViewProjection returns the orthographic light-space matrix used to render and
// sample the directional shadow map. The frustum is centered on center and looks
// along the sun direction.
//
// Parameters:
//   - sun: the directional light
//   - center: the world-space point the shadow map is centered on
//   - halfExtent: the orthographic half-width in world units
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - mgl32.Mat4: projection * view for the light
func SunViewProjection(sun Light, center mgl32.Vec3, halfExtent, near, far float32) mgl32.Mat4 {
	view, proj := SunViewAndProjection(sun, center, halfExtent, near, far)
	return proj.Mul4(view)
}

// SunViewAndProjection returns the two factors of SunViewProjection separately, for
// programs that take the view and projection as distinct uniforms.
//
// Returns:
//   - view: the light's look-at matrix
//   - proj: the orthographic projection
func SunViewAndProjection(sun Light, center mgl32.Vec3, halfExtent, near, far float32) (view, proj mgl32.Mat4) {
	dir := sun.Direction()
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir.Dot(up)) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	eye := center.Sub(dir.Mul(far * 0.5))
	view = mgl32.LookAtV(eye, center, up)
	proj = mgl32.Ortho(-halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
	return view, proj
}
