package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// orbitControllerImpl keeps spherical coordinates around a target. Orbit methods
// modify the angles and recompute position; pan methods translate both position and
// target along local camera axes, preserving the orbit relationship.
type orbitControllerImpl struct {
	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates an orbit controller with defaults suited to a scene a
// few dozen units across.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	cc := &orbitControllerImpl{
		radius:    10,
		elevation: math32.Pi / 6,

		minRadius:    0.5,
		maxRadius:    500,
		minElevation: -math32.Pi/2 + 0.1,
		maxElevation: math32.Pi/2 - 0.1,

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        1,
		panSpeed:         1,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Must be called whenever radius, azimuth, elevation, or target changes.
func (cc *orbitControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

// localAxes computes the camera's local axes consistent with the LookAt matrix.
// If position and target coincide, all returned vectors are zero.
func (cc *orbitControllerImpl) localAxes() (right, up, forward mgl32.Vec3) {
	backward := cc.position.Sub(cc.target)
	if backward.Len() < 1e-8 {
		return
	}
	backward = backward.Normalize()

	right = worldUp.Cross(backward)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = backward.Cross(right)
	forward = backward.Mul(-1)
	return
}

func (cc *orbitControllerImpl) pan(axis mgl32.Vec3, delta float32) {
	offset := axis.Mul(delta * cc.panSpeed)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *orbitControllerImpl) Position() mgl32.Vec3 {
	return cc.position
}

func (cc *orbitControllerImpl) Target() mgl32.Vec3 {
	return cc.target
}

func (cc *orbitControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.target = target
	cc.updatePosition()
}

func (cc *orbitControllerImpl) Zoom(delta float32) {
	cc.SetRadius(cc.radius - delta*cc.zoomSpeed)
}

func (cc *orbitControllerImpl) Orbit(dx, dy float32) {
	cc.azimuth -= dx * cc.mouseSensitivity
	cc.SetElevation(cc.elevation + dy*cc.mouseSensitivity)
}

func (cc *orbitControllerImpl) OrbitLeft() {
	cc.azimuth -= cc.orbitSpeed
	cc.updatePosition()
}

func (cc *orbitControllerImpl) OrbitRight() {
	cc.azimuth += cc.orbitSpeed
	cc.updatePosition()
}

func (cc *orbitControllerImpl) OrbitUp() {
	cc.SetElevation(cc.elevation + cc.orbitSpeed)
}

func (cc *orbitControllerImpl) OrbitDown() {
	cc.SetElevation(cc.elevation - cc.orbitSpeed)
}

func (cc *orbitControllerImpl) Radius() float32 {
	return cc.radius
}

func (cc *orbitControllerImpl) SetRadius(radius float32) {
	cc.radius = mgl32.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *orbitControllerImpl) Azimuth() float32 {
	return cc.azimuth
}

func (cc *orbitControllerImpl) SetAzimuth(azimuth float32) {
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *orbitControllerImpl) Elevation() float32 {
	return cc.elevation
}

func (cc *orbitControllerImpl) SetElevation(elevation float32) {
	cc.elevation = mgl32.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *orbitControllerImpl) PanRight(delta float32) {
	right, _, _ := cc.localAxes()
	cc.pan(right, delta)
}

func (cc *orbitControllerImpl) PanUp(delta float32) {
	_, up, _ := cc.localAxes()
	cc.pan(up, delta)
}

func (cc *orbitControllerImpl) PanForward(delta float32) {
	_, _, forward := cc.localAxes()
	cc.pan(forward, delta)
}

// firstPersonControllerImpl looks from position along the direction given by yaw and
// pitch.
type firstPersonControllerImpl struct {
	position mgl32.Vec3
	yaw      float32
	pitch    float32

	maxPitch    float32
	sensitivity float32
}

var _ FirstPersonController = &firstPersonControllerImpl{}

// NewFirstPersonController creates a yaw/pitch controller at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - FirstPersonController: the newly created controller
func NewFirstPersonController(options ...FirstPersonControllerOption) FirstPersonController {
	fp := &firstPersonControllerImpl{
		maxPitch:    mgl32.DegToRad(89),
		sensitivity: 0.002,
	}
	for _, option := range options {
		option(fp)
	}
	fp.pitch = mgl32.Clamp(fp.pitch, -fp.maxPitch, fp.maxPitch)
	return fp
}

func (fp *firstPersonControllerImpl) Position() mgl32.Vec3 {
	return fp.position
}

func (fp *firstPersonControllerImpl) Target() mgl32.Vec3 {
	return fp.position.Add(fp.Forward())
}

func (fp *firstPersonControllerImpl) SetPosition(position mgl32.Vec3) {
	fp.position = position
}

func (fp *firstPersonControllerImpl) Yaw() float32 {
	return fp.yaw
}

func (fp *firstPersonControllerImpl) Pitch() float32 {
	return fp.pitch
}

func (fp *firstPersonControllerImpl) SetYawPitch(yaw, pitch float32) {
	fp.yaw = math32.Remainder(yaw, 2*math32.Pi)
	fp.pitch = mgl32.Clamp(pitch, -fp.maxPitch, fp.maxPitch)
}

func (fp *firstPersonControllerImpl) Look(dx, dy float32) {
	fp.SetYawPitch(fp.yaw+dx*fp.sensitivity, fp.pitch-dy*fp.sensitivity)
}

func (fp *firstPersonControllerImpl) Forward() mgl32.Vec3 {
	sinYaw, cosYaw := math32.Sincos(fp.yaw)
	sinPitch, cosPitch := math32.Sincos(fp.pitch)
	return mgl32.Vec3{sinYaw * cosPitch, sinPitch, -cosYaw * cosPitch}
}

func (fp *firstPersonControllerImpl) FlatForward() mgl32.Vec3 {
	sinYaw, cosYaw := math32.Sincos(fp.yaw)
	return mgl32.Vec3{sinYaw, 0, -cosYaw}
}

func (fp *firstPersonControllerImpl) Right() mgl32.Vec3 {
	sinYaw, cosYaw := math32.Sincos(fp.yaw)
	return mgl32.Vec3{cosYaw, 0, sinYaw}
}

func (fp *firstPersonControllerImpl) Move(forward, right, up float32) {
	fp.position = fp.position.
		Add(fp.FlatForward().Mul(forward)).
		Add(fp.Right().Mul(right)).
		Add(worldUp.Mul(up))
}
