package light

import "github.com/go-gl/mathgl/mgl32"

// MaxLights is the length of the point/spot light uniform arrays. Lights past this
// count are skipped when packing, in registration order.
const MaxLights = 16

// Uniforms is the packed, per-frame form of an Environment, laid out the way the lit
// programs declare their light arrays.
type Uniforms struct {
	SunDirection mgl32.Vec3
	SunColor     mgl32.Vec3

	// SunIntensity is zero when the environment has no enabled directional light.
	SunIntensity float32

	AmbientColor mgl32.Vec3

	// Count is the number of valid entries in the arrays below.
	Count int32

	// Positions holds xyz per light.
	Positions [MaxLights * 3]float32

	// Colors holds color premultiplied by intensity per light.
	Colors [MaxLights * 3]float32

	// Ranges holds the attenuation cutoff per light.
	Ranges [MaxLights]float32
}

// Environment is the set of lights of a scene plus its ambient term.
type Environment struct {
	ambient mgl32.Vec3
	lights  []Light
}

// NewEnvironment creates an Environment with a dim grey ambient term.
//
// Parameters:
//   - lights: initial lights in registration order
//
// Returns:
//   - *Environment: the new environment
func NewEnvironment(lights ...Light) *Environment {
	return &Environment{
		ambient: mgl32.Vec3{0.1, 0.1, 0.1},
		lights:  append([]Light(nil), lights...),
	}
}

// Ambient returns the ambient color.
func (e *Environment) Ambient() mgl32.Vec3 {
	return e.ambient
}

// SetAmbient sets the ambient color.
func (e *Environment) SetAmbient(c mgl32.Vec3) {
	e.ambient = c
}

// Add registers a light. Adding the same light twice is a no-op.
//
// Parameters:
//   - l: the light to add
func (e *Environment) Add(l Light) {
	for _, existing := range e.lights {
		if existing == l {
			return
		}
	}
	e.lights = append(e.lights, l)
}

// Remove unregisters a light.
//
// Parameters:
//   - l: the light to remove
//
// Returns:
//   - bool: false if the light was not registered
func (e *Environment) Remove(l Light) bool {
	for i, existing := range e.lights {
		if existing == l {
			e.lights = append(e.lights[:i], e.lights[i+1:]...)
			return true
		}
	}
	return false
}

// Lights returns the registered lights in registration order.
func (e *Environment) Lights() []Light {
	return e.lights
}

// Sun returns the first enabled directional light, or nil.
func (e *Environment) Sun() Light {
	for _, l := range e.lights {
		if l.Enabled() && l.Type() == LightTypeDirectional {
			return l
		}
	}
	return nil
}

// Pack writes the environment into out. Disabled lights are skipped; directional
// lights only feed the sun fields.
//
// Parameters:
//   - out: the destination, fully overwritten
func (e *Environment) Pack(out *Uniforms) {
	*out = Uniforms{AmbientColor: e.ambient, SunDirection: mgl32.Vec3{0, -1, 0}}
	if sun := e.Sun(); sun != nil {
		out.SunDirection = sun.Direction()
		out.SunColor = sun.Color()
		out.SunIntensity = sun.Intensity()
	}
	for _, l := range e.lights {
		if !l.Enabled() || l.Type() == LightTypeDirectional {
			continue
		}
		if out.Count == MaxLights {
			break
		}
		i := int(out.Count) * 3
		p, c := l.Position(), l.Color().Mul(l.Intensity())
		copy(out.Positions[i:i+3], p[:])
		copy(out.Colors[i:i+3], c[:])
		out.Ranges[out.Count] = l.Range()
		out.Count++
	}
}
