// Package player implements a first-person capsule character that walks on the static
// collision geometry of a physics engine.
//
// Every step integrates gravity and the requested movement, then resolves overlap in a
// fixed number of passes: the triangles near the capsule are queried, and each contact
// pushes the capsule out and removes the velocity pointing into the surface. Contacts
// whose normal is close enough to world up count as ground. Near-flat ground is
// treated as pure up while resolving so the capsule does not creep down gentle slopes.
package player

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/physics"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for the collision resolution.
const (
	DefaultIterations = 3
	DefaultGroundDot  = 0.7
	DefaultSnapDot    = 0.85
)

var worldUp = mgl32.Vec3{0, 1, 0}

// player is the implementation of the Player interface.
type player struct {
	position mgl32.Vec3
	velocity mgl32.Vec3
	wish     mgl32.Vec3

	radius    float32
	height    float32
	eyeHeight float32

	gravity    float32
	moveSpeed  float32
	jumpSpeed  float32
	airControl float32

	iterations int
	groundDot  float32
	snapDot    float32

	grounded      bool
	groundNormal  mgl32.Vec3
	jumpRequested bool
	contacts      []physics.Contact

	view camera.FirstPersonController
}

// Player is a capsule standing on its feet position. The capsule spans Height from the
// feet with hemispheres of Radius at both ends.
type Player interface {
	physics.Body

	// Position returns the feet position.
	Position() mgl32.Vec3

	// SetPosition teleports the player and clears its ground state.
	SetPosition(p mgl32.Vec3)

	// Velocity returns the current velocity in units per second.
	Velocity() mgl32.Vec3

	// SetVelocity replaces the current velocity.
	SetVelocity(v mgl32.Vec3)

	// Move sets the horizontal velocity the player wants, in units per second. The y
	// component is ignored. It stays in effect until the next call.
	//
	// Parameters:
	//   - wish: the desired velocity
	Move(wish mgl32.Vec3)

	// MoveInput sets the wish velocity from input axes relative to the attached view,
	// or to -Z forward and +X right without one. The axes are scaled by the move speed
	// and their combined length is clamped to 1.
	//
	// Parameters:
	//   - forward: -1 to 1 along the view direction
	//   - right: -1 to 1 across it
	MoveInput(forward, right float32)

	// Jump requests a jump on the next step.
	//
	// Returns:
	//   - bool: false if the player is not on the ground
	Jump() bool

	// Grounded reports whether the last step touched ground.
	Grounded() bool

	// GroundNormal returns the normal of the last ground contact, world up before any.
	GroundNormal() mgl32.Vec3

	// Contacts returns the contacts resolved during the last step.
	Contacts() []physics.Contact

	// Capsule returns the collision shape at the current position.
	Capsule() physics.Capsule

	// Eye returns the position of the eye, EyeHeight above the feet.
	Eye() mgl32.Vec3
}

var _ Player = &player{}

// NewPlayer creates a player at the origin.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Player: the player
func NewPlayer(options ...PlayerBuilderOption) Player {
	p := &player{
		radius:       0.4,
		height:       1.8,
		eyeHeight:    1.6,
		gravity:      -9.81,
		moveSpeed:    5,
		jumpSpeed:    5,
		airControl:   0.1,
		iterations:   DefaultIterations,
		groundDot:    DefaultGroundDot,
		snapDot:      DefaultSnapDot,
		groundNormal: worldUp,
	}
	for _, option := range options {
		option(p)
	}
	if p.height < 2*p.radius {
		panic("player: height must be at least twice the radius")
	}
	p.syncView()
	return p
}

func (p *player) Position() mgl32.Vec3 {
	return p.position
}

func (p *player) SetPosition(pos mgl32.Vec3) {
	p.position = pos
	p.grounded = false
	p.groundNormal = worldUp
	p.syncView()
}

func (p *player) Velocity() mgl32.Vec3 {
	return p.velocity
}

func (p *player) SetVelocity(v mgl32.Vec3) {
	p.velocity = v
}

func (p *player) Move(wish mgl32.Vec3) {
	p.wish = mgl32.Vec3{wish[0], 0, wish[2]}
}

func (p *player) MoveInput(forward, right float32) {
	fwd, side := mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 0}
	if p.view != nil {
		fwd, side = p.view.FlatForward(), p.view.Right()
	}
	dir := fwd.Mul(forward).Add(side.Mul(right))
	if l := dir.Len(); l > 1 {
		dir = dir.Mul(1 / l)
	}
	p.Move(dir.Mul(p.moveSpeed))
}

func (p *player) Jump() bool {
	if !p.grounded {
		return false
	}
	p.jumpRequested = true
	return true
}

func (p *player) Grounded() bool {
	return p.grounded
}

func (p *player) GroundNormal() mgl32.Vec3 {
	return p.groundNormal
}

func (p *player) Contacts() []physics.Contact {
	return p.contacts
}

func (p *player) Capsule() physics.Capsule {
	return physics.Capsule{
		A:      p.position.Add(mgl32.Vec3{0, p.radius, 0}),
		B:      p.position.Add(mgl32.Vec3{0, p.height - p.radius, 0}),
		Radius: p.radius,
	}
}

func (p *player) Eye() mgl32.Vec3 {
	return p.position.Add(mgl32.Vec3{0, p.eyeHeight, 0})
}

func (p *player) Step(dt float32, world physics.World) {
	p.accelerate(dt)
	p.position = p.position.Add(p.velocity.Mul(dt))
	p.resolve(world)
	p.syncView()
}

// accelerate applies the wish velocity, the jump request and gravity.
func (p *player) accelerate(dt float32) {
	if p.grounded {
		p.velocity[0], p.velocity[2] = p.wish[0], p.wish[2]
	} else {
		a := math32.Min(p.airControl, 1)
		p.velocity[0] += (p.wish[0] - p.velocity[0]) * a
		p.velocity[2] += (p.wish[2] - p.velocity[2]) * a
	}
	if p.jumpRequested && p.grounded {
		p.velocity[1] = p.jumpSpeed
	}
	p.jumpRequested = false
	p.velocity[1] += p.gravity * dt
}

func (p *player) resolve(world physics.World) {
	p.grounded = false
	p.contacts = p.contacts[:0]

	for range p.iterations {
		capsule := p.Capsule()
		candidates := world.QueryAABB(capsule.Bounds())
		touched := false
		for _, tri := range candidates {
			contact, ok := physics.CapsuleTriangle(capsule, tri)
			if !ok {
				continue
			}
			touched = true
			p.contacts = append(p.contacts, contact)

			up := contact.Normal.Dot(worldUp)
			if up > p.groundDot {
				p.grounded = true
				p.groundNormal = contact.Normal
			}

			// the push along slide must clear contact.Depth along the contact normal
			slide, push := contact.Normal, contact.Depth
			// near-flat contacts push straight up, so gravity on a gentle slope has no
			// sideways component left and the capsule stays put
			if up > p.snapDot {
				slide, push = worldUp, contact.Depth/up
			}
			p.position = p.position.Add(slide.Mul(push))
			if vn := p.velocity.Dot(slide); vn < 0 {
				p.velocity = p.velocity.Sub(slide.Mul(vn))
			}
			capsule = p.Capsule()
		}
		if !touched {
			break
		}
	}
	// grounded bodies never carry downward speed into the next step
	if p.grounded && p.velocity[1] < 0 {
		p.velocity[1] = 0
	}
}

func (p *player) syncView() {
	if p.view != nil {
		p.view.SetPosition(p.Eye())
	}
}
