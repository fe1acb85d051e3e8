package program

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// UniformKind is the closed set of uniform types the binding layer can set. Each kind
// has exactly one setter, chosen once when the uniform is introspected.
type UniformKind int

const (
	KindUnknown UniformKind = iota
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindInt
	KindIVec2
	KindIVec3
	KindIVec4
	KindBool
	KindMat3
	KindMat4
	KindSampler2D
	KindSamplerCube
	KindSampler2DShadow
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindFloat:           "float",
	KindVec2:            "vec2",
	KindVec3:            "vec3",
	KindVec4:            "vec4",
	KindInt:             "int",
	KindIVec2:           "ivec2",
	KindIVec3:           "ivec3",
	KindIVec4:           "ivec4",
	KindBool:            "bool",
	KindMat3:            "mat3",
	KindMat4:            "mat4",
	KindSampler2D:       "sampler2D",
	KindSamplerCube:     "samplerCube",
	KindSampler2DShadow: "sampler2DShadow",
}

func (k UniformKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// KindFromGLType maps a GL type enum reported by introspection to a UniformKind.
//
// Parameters:
//   - t: the GL type enum
//
// Returns:
//   - UniformKind: the matching kind, KindUnknown for types the engine never sets
func KindFromGLType(t uint32) UniformKind {
	switch t {
	case gpu.TypeFloat:
		return KindFloat
	case gpu.TypeFloatVec2:
		return KindVec2
	case gpu.TypeFloatVec3:
		return KindVec3
	case gpu.TypeFloatVec4:
		return KindVec4
	case gpu.TypeInt:
		return KindInt
	case gpu.TypeIntVec2:
		return KindIVec2
	case gpu.TypeIntVec3:
		return KindIVec3
	case gpu.TypeIntVec4:
		return KindIVec4
	case gpu.TypeBool:
		return KindBool
	case gpu.TypeFloatMat3:
		return KindMat3
	case gpu.TypeFloatMat4:
		return KindMat4
	case gpu.TypeSampler2D:
		return KindSampler2D
	case gpu.TypeSamplerCube:
		return KindSamplerCube
	case gpu.TypeSampler2DShadow:
		return KindSampler2DShadow
	default:
		return KindUnknown
	}
}

// IsSampler reports whether the kind denotes a texture unit.
func (k UniformKind) IsSampler() bool {
	return k == KindSampler2D || k == KindSamplerCube || k == KindSampler2DShadow
}

// Components returns the number of scalar values one element of the kind takes.
func (k UniformKind) Components() int {
	switch k {
	case KindFloat, KindInt, KindBool, KindSampler2D, KindSamplerCube, KindSampler2DShadow:
		return 1
	case KindVec2, KindIVec2:
		return 2
	case KindVec3, KindIVec3:
		return 3
	case KindVec4, KindIVec4:
		return 4
	case KindMat3:
		return 9
	case KindMat4:
		return 16
	default:
		return 0
	}
}

// setter uploads values for one uniform location. Integer kinds truncate the values.
type setter func(d gpu.Device, location int32, values []float32)

func intSetter(set func(d gpu.Device, location int32, v []int32)) setter {
	return func(d gpu.Device, location int32, values []float32) {
		iv := make([]int32, len(values))
		for i, v := range values {
			iv[i] = int32(v)
		}
		set(d, location, iv)
	}
}

var setters = [...]setter{
	KindUnknown: func(gpu.Device, int32, []float32) {},
	KindFloat:   gpu.Device.Uniform1fv,
	KindVec2:    gpu.Device.Uniform2fv,
	KindVec3:    gpu.Device.Uniform3fv,
	KindVec4:    gpu.Device.Uniform4fv,
	KindInt:     intSetter(gpu.Device.Uniform1iv),
	KindIVec2:   intSetter(gpu.Device.Uniform2iv),
	KindIVec3:   intSetter(gpu.Device.Uniform3iv),
	KindIVec4:   intSetter(gpu.Device.Uniform4iv),
	KindBool:    intSetter(gpu.Device.Uniform1iv),
	KindMat3:    gpu.Device.UniformMatrix3fv,
	KindMat4:    gpu.Device.UniformMatrix4fv,

	KindSampler2D:       intSetter(gpu.Device.Uniform1iv),
	KindSamplerCube:     intSetter(gpu.Device.Uniform1iv),
	KindSampler2DShadow: intSetter(gpu.Device.Uniform1iv),
}

// setter returns the setter for k.
func (k UniformKind) setter() setter {
	if k < 0 || int(k) >= len(setters) {
		return setters[KindUnknown]
	}
	return setters[k]
}
