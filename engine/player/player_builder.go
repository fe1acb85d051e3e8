package player

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"

	"github.com/go-gl/mathgl/mgl32"
)

// PlayerBuilderOption is a functional option applied to a player during construction via NewPlayer.
type PlayerBuilderOption func(*player)

// WithPosition sets the starting feet position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - PlayerBuilderOption: a function that applies the position option to a player
func WithPosition(p mgl32.Vec3) PlayerBuilderOption {
	return func(pl *player) {
		pl.position = p
	}
}

// WithCapsule sets the collision shape.
//
// Parameters:
//   - radius: the hemisphere radius
//   - height: the total height, at least twice the radius
//
// Returns:
//   - PlayerBuilderOption: a function that applies the capsule option to a player
func WithCapsule(radius, height float32) PlayerBuilderOption {
	return func(p *player) {
		p.radius = radius
		p.height = height
	}
}

// WithEyeHeight sets how far above the feet the attached view sits.
//
// Parameters:
//   - h: the eye height
//
// Returns:
//   - PlayerBuilderOption: a function that applies the eye height option to a player
func WithEyeHeight(h float32) PlayerBuilderOption {
	return func(p *player) {
		p.eyeHeight = h
	}
}

// WithGravity sets the vertical acceleration, negative for down.
//
// Parameters:
//   - g: units per second squared
//
// Returns:
//   - PlayerBuilderOption: a function that applies the gravity option to a player
func WithGravity(g float32) PlayerBuilderOption {
	return func(p *player) {
		p.gravity = g
	}
}

// WithMoveSpeed sets the speed MoveInput scales its axes by.
//
// Parameters:
//   - speed: units per second
//
// Returns:
//   - PlayerBuilderOption: a function that applies the speed option to a player
func WithMoveSpeed(speed float32) PlayerBuilderOption {
	return func(p *player) {
		p.moveSpeed = speed
	}
}

// WithJumpSpeed sets the upward velocity of a jump.
//
// Parameters:
//   - speed: units per second
//
// Returns:
//   - PlayerBuilderOption: a function that applies the jump option to a player
func WithJumpSpeed(speed float32) PlayerBuilderOption {
	return func(p *player) {
		p.jumpSpeed = speed
	}
}

// WithAirControl sets the fraction of the wish velocity applied per step while airborne.
//
// Parameters:
//   - control: 0 for none, 1 for full ground control
//
// Returns:
//   - PlayerBuilderOption: a function that applies the air control option to a player
func WithAirControl(control float32) PlayerBuilderOption {
	return func(p *player) {
		p.airControl = max(control, 0)
	}
}

// WithResolution sets the collision resolution parameters.
//
// Parameters:
//   - iterations: resolution passes per step, at least 1
//   - groundDot: minimum normal.y of a ground contact
//   - snapDot: minimum normal.y of a contact resolved along world up
//
// Returns:
//   - PlayerBuilderOption: a function that applies the resolution option to a player
func WithResolution(iterations int, groundDot, snapDot float32) PlayerBuilderOption {
	return func(p *player) {
		p.iterations = max(iterations, 1)
		p.groundDot = groundDot
		p.snapDot = snapDot
	}
}

// WithView attaches a first-person controller that follows the eye and gives
// MoveInput its axes.
//
// Parameters:
//   - view: the controller, usually the one of the main camera
//
// Returns:
//   - PlayerBuilderOption: a function that applies the view option to a player
func WithView(view camera.FirstPersonController) PlayerBuilderOption {
	return func(p *player) {
		p.view = view
	}
}
