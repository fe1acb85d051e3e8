package light

import "github.com/go-gl/mathgl/mgl32"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional has a direction but no position. The first enabled
	// directional light of an Environment is its sun.
	LightTypeDirectional LightType = iota

	// LightTypePoint emits in all directions from a position, attenuating up to its range.
	LightTypePoint

	// LightTypeSpot emits in a cone from a position along a direction.
	LightTypeSpot
)

type lightImpl struct {
	lightType    LightType
	position     mgl32.Vec3
	direction    mgl32.Vec3
	color        mgl32.Vec3
	intensity    float32
	lightRange   float32
	innerCone    float32 // cos(inner half-angle)
	outerCone    float32 // cos(outer half-angle)
	enabled      bool
	castsShadows bool
}

// Light is a scene light source. Lights are owned by an Environment, which packs the
// enabled ones into uniform arrays once per frame.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position. Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - mgl32.Vec3: the direction
	Direction() mgl32.Vec3

	// Color returns the RGB color.
	//
	// Returns:
	//   - mgl32.Vec3: the color
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Range returns the attenuation cutoff distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range
	Range() float32

	// Cones returns the cosines of the inner and outer spot half-angles.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	//   - float32: cos(outer half-angle)
	Cones() (float32, float32)

	// Enabled reports whether the light contributes to rendering.
	Enabled() bool

	// CastsShadows reports whether the light renders a shadow map. Only the sun does.
	CastsShadows() bool

	SetPosition(p mgl32.Vec3)

	// SetDirection stores d normalized. A zero vector leaves the direction unchanged.
	//
	// Parameters:
	//   - d: the new direction
	SetDirection(d mgl32.Vec3)

	SetColor(c mgl32.Vec3)
	SetIntensity(intensity float32)
	SetRange(lightRange float32)
	SetEnabled(enabled bool)
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a Light of the given type.
//
// Parameters:
//   - lightType: the kind of light
//   - opts: functional options for the light
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  cosDeg(25),
		outerCone:  cosDeg(35),
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Cones() (float32, float32) {
	return l.innerCone, l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	if d.Len() == 0 {
		return
	}
	l.direction = d.Normalize()
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
