package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns a camera's positional state. The camera reads position and
// target from its controller on every Update and derives the view matrix from them.
type CameraController interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the world-space look-at point.
	Target() mgl32.Vec3
}

// OrbitController orbits a pivot using spherical coordinates (radius, azimuth,
// elevation) and pans along the camera's local axes without changing the orbit angles.
// Panning shifts both position and target by the same offset.
type OrbitController interface {
	CameraController

	// SetTarget sets the pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Zoom adjusts the orbit radius. Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// Orbit rotates around the pivot by a mouse drag, scaled by MouseSensitivity.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels
	//   - dy: vertical drag in pixels
	Orbit(dx, dy float32)

	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Radius returns the current orbit radius (distance from target).
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	SetRadius(radius float32)

	// Azimuth returns the current horizontal angle around the Y axis in radians.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle directly and recomputes position.
	SetAzimuth(azimuth float32)

	// Elevation returns the current vertical angle from the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the vertical angle directly, clamped to min/max bounds.
	SetElevation(elevation float32)

	// PanRight translates the camera along its local right axis.
	// Positive delta moves right, negative moves left.
	PanRight(delta float32)

	// PanUp translates the camera along its local up axis.
	PanUp(delta float32)

	// PanForward translates the camera along its local forward axis (dolly).
	// Positive delta moves toward the target, negative moves away.
	PanForward(delta float32)
}

// FirstPersonController looks around with yaw and pitch from a free position. It is
// what a player controller drives: the player sets the eye position and the mouse
// turns the view.
type FirstPersonController interface {
	CameraController

	// SetPosition moves the eye.
	//
	// Parameters:
	//   - position: world-space eye position
	SetPosition(position mgl32.Vec3)

	// Yaw returns the rotation around world up in radians. Zero looks down -Z.
	Yaw() float32

	// Pitch returns the vertical look angle in radians, positive looking up.
	Pitch() float32

	// SetYawPitch sets both angles directly. Pitch is clamped.
	SetYawPitch(yaw, pitch float32)

	// Look turns the view by a mouse delta scaled by the controller's sensitivity.
	//
	// Parameters:
	//   - dx: horizontal mouse movement, positive turns right
	//   - dy: vertical mouse movement, positive looks down
	Look(dx, dy float32)

	// Forward returns the unit look direction.
	Forward() mgl32.Vec3

	// FlatForward returns the look direction projected onto the ground plane. It is the
	// walking direction for a player.
	FlatForward() mgl32.Vec3

	// Right returns the unit right vector on the ground plane.
	Right() mgl32.Vec3

	// Move translates the eye along the flat forward, right and world up axes.
	//
	// Parameters:
	//   - forward, right, up: distances along each axis
	Move(forward, right, up float32)
}
