package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"

	"github.com/go-gl/mathgl/mgl32"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithShadowProgram enables the shadow pass. The program replaces every material's
// program while shadow casters are drawn into the depth map, and is registered like
// any other program so it is relinked when its sources change.
//
// Parameters:
//   - p: the depth-only program
//   - shaders: the shaders it was linked from
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow program option to a renderer
func WithShadowProgram(p program.ProgramContainer, shaders ...shader.Shader) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowProgram = p
		r.RegisterProgram(p, shaders...)
	}
}

// WithShadowMapResolution sets the width and height of the shadow depth texture.
//
// Parameters:
//   - resolution: texels per side
//
// Returns:
//   - RendererBuilderOption: a function that applies the resolution option to a renderer
func WithShadowMapResolution(resolution int32) RendererBuilderOption {
	return func(r *renderer) {
		if resolution > 0 {
			r.shadow.resolution = resolution
		}
	}
}

// WithShadowFrustum sets the orthographic extent of the sun's shadow frustum.
//
// Parameters:
//   - halfExtent: half-width in world units around the main camera
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - RendererBuilderOption: a function that applies the frustum option to a renderer
func WithShadowFrustum(halfExtent, near, far float32) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowHalfExtent = halfExtent
		r.shadowNear = near
		r.shadowFar = far
	}
}

// WithShadowBias sets the depth bias written to the sharedPerScene block.
//
// Parameters:
//   - bias: constant depth bias
//
// Returns:
//   - RendererBuilderOption: a function that applies the bias option to a renderer
func WithShadowBias(bias float32) RendererBuilderOption {
	return func(r *renderer) {
		r.shadowBias = bias
	}
}

// WithSize sets the initial default framebuffer size.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.Resize(width, height)
	}
}

// WithDownscaledTarget sets the framebuffer and divisor used for passes flagged
// PassDownscaled. The viewport is the framebuffer size divided by factor.
//
// Parameters:
//   - fb: the reduced-resolution target, 0 for the default framebuffer
//   - factor: the resolution divisor, at least 1
//
// Returns:
//   - RendererBuilderOption: a function that applies the downscale option to a renderer
func WithDownscaledTarget(fb gpu.Framebuffer, factor int32) RendererBuilderOption {
	return func(r *renderer) {
		r.downscaledTarget = fb
		r.downscale = max(factor, 1)
	}
}

// WithClearColor sets the color the main camera pass clears to.
//
// Parameters:
//   - c: RGBA clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c mgl32.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithClock replaces the source of the frame time, seconds since the renderer started
// by default.
//
// Parameters:
//   - clock: returns the current time in seconds
//
// Returns:
//   - RendererBuilderOption: a function that applies the clock option to a renderer
func WithClock(clock func() float32) RendererBuilderOption {
	return func(r *renderer) {
		r.clock = clock
	}
}
