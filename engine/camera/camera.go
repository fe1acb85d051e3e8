package camera

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"

	"github.com/go-gl/mathgl/mgl32"
)

// LayerAll makes a camera see every GameObject layer.
const LayerAll uint32 = 0xFFFFFFFF

type cameraImpl struct {
	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32
	layer  uint32

	position             mgl32.Vec3
	viewMatrix           mgl32.Mat4
	inverseViewMatrix    mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
	frustum              common.Frustum

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices
// from an attached CameraController each frame via Update().
type Camera interface {
	material.Camera

	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the view frustum planes for the current matrices.
	//
	// Returns:
	//   - *common.Frustum: the frustum, owned by the camera and refreshed by Update
	Frustum() *common.Frustum

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position/target from controller and recomputes matrices.
	// Should be called once per frame before rendering.
	// If no controller is attached, only the projection is recomputed.
	Update()

	// SetUp sets the camera's up vector.
	SetUp(up mgl32.Vec3)

	// SetFov sets the field of view in radians and recomputes matrices.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio and recomputes matrices. Non-positive values are
	// ignored, which happens when a window is minimized.
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	SetFar(far float32)

	// SetLayer sets the layer bitmask the camera renders.
	//
	// Parameters:
	//   - layer: bitmask matched against GameObject.Layer
	SetLayer(layer uint32)

	// SetController attaches a controller. Pass nil to detach.
	SetController(ctrl CameraController)

	// LookAt places a camera without a controller. The matrices are recomputed
	// immediately.
	//
	// Parameters:
	//   - eye: world-space camera position
	//   - target: world-space look-at point
	LookAt(eye, target mgl32.Vec3)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera looking down -Z from the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(45),
		aspect: 1,
		near:   0.1,
		far:    100,
		layer:  LayerAll,
	}
	c.lookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})

	for _, option := range options {
		option(c)
	}

	c.Update()
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) Layer() uint32 {
	return c.layer
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.position
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	return c.viewMatrix
}

func (c *cameraImpl) InverseViewMatrix() mgl32.Mat4 {
	return c.inverseViewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() *common.Frustum {
	return &c.frustum
}

func (c *cameraImpl) Controller() CameraController {
	return c.controller
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.up = up
	c.Update()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetNear(near float32) {
	c.near = near
	c.updateProjection()
}

func (c *cameraImpl) SetFar(far float32) {
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) SetLayer(layer uint32) {
	c.layer = layer
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.controller = ctrl
}

func (c *cameraImpl) LookAt(eye, target mgl32.Vec3) {
	c.lookAt(eye, target)
	c.updateProjection()
}

func (c *cameraImpl) Update() {
	if c.controller != nil {
		c.lookAt(c.controller.Position(), c.controller.Target())
	}
	c.updateProjection()
}

// lookAt rebuilds the view and inverse view matrices. A target equal to the eye keeps
// the previous orientation.
func (c *cameraImpl) lookAt(eye, target mgl32.Vec3) {
	c.position = eye
	if target.Sub(eye).Len() < 1e-8 {
		target = eye.Add(common.TransformDirection(c.inverseViewMatrix, mgl32.Vec3{0, 0, -1}))
	}
	c.viewMatrix = mgl32.LookAtV(eye, target, c.up)
	common.InvertTo(&c.inverseViewMatrix, &c.viewMatrix)
}

// updateProjection recalculates the projection, view-projection and frustum.
func (c *cameraImpl) updateProjection() {
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	common.Mul4To(&c.viewProjectionMatrix, &c.projectionMatrix, &c.viewMatrix)
	c.frustum = common.ExtractFrustum(c.viewProjectionMatrix)
}
