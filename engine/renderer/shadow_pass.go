package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"

	"github.com/go-gl/mathgl/mgl32"
)

// lightCamera is the sun seen as a camera for the shadow pass.
type lightCamera struct {
	view, proj, inverse mgl32.Mat4
	position            mgl32.Vec3
}

var _ material.Camera = &lightCamera{}

func newLightCamera(sun light.Light, center mgl32.Vec3, halfExtent, near, far float32) *lightCamera {
	view, proj := light.SunViewAndProjection(sun, center, halfExtent, near, far)
	c := &lightCamera{view: view, proj: proj}
	common.InvertTo(&c.inverse, &c.view)
	c.position = common.Translation(c.inverse)
	return c
}

func (c *lightCamera) ProjectionMatrix() mgl32.Mat4 { return c.proj }
func (c *lightCamera) ViewMatrix() mgl32.Mat4 { return c.view }
func (c *lightCamera) InverseViewMatrix() mgl32.Mat4 { return c.inverse }
func (c *lightCamera) Position() mgl32.Vec3 { return c.position }
func (c *lightCamera) Layer() uint32 { return camera.LayerAll }

// shadowTarget is the depth texture and framebuffer the shadow pass renders into.
// Both are created on first use.
type shadowTarget struct {
	resolution  int32
	depth       *material.Texture
	framebuffer gpu.Framebuffer

	// failed is set once creation failed so the pass is not retried every frame.
	failed bool
}

func (s *shadowTarget) ensure(device gpu.Device) error {
	if s.framebuffer != 0 || s.failed {
		return nil
	}
	s.depth = material.NewDepthTexture(device, "shadowMap", s.resolution)
	fb, err := device.CreateFramebuffer(s.depth.Handle())
	if err != nil {
		s.failed = true
		s.depth.Release()
		s.depth = nil
		return fmt.Errorf("renderer: create shadow framebuffer: %w", err)
	}
	s.framebuffer = fb
	return nil
}

func (s *shadowTarget) usable() bool {
	return s.framebuffer != 0
}

func (s *shadowTarget) release(device gpu.Device) {
	if s.framebuffer != 0 {
		device.DeleteFramebuffer(s.framebuffer)
		s.framebuffer = 0
	}
	if s.depth != nil {
		s.depth.Release()
		s.depth = nil
	}
}
