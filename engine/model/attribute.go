package model

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
)

// Vertex attribute names shared by mesh data and programs.
const (
	AttrPosition = "position"
	AttrNormal   = "normal"
	AttrTangent  = "tangent"
	AttrUV       = "uv"
	AttrColor    = "color"
	AttrJoints   = "joints"
	AttrWeights  = "weights"

	// AttrInstanceMatrix is a mat4 attribute occupying four consecutive locations.
	AttrInstanceMatrix = "instanceMatrix"
	AttrInstanceColor  = "instanceColor"
)

// VertexAttribute is CPU-side data for one vertex attribute, one element of Components
// values per vertex.
type VertexAttribute struct {
	Name       string
	Components int32
	Type       uint32
	Normalized bool
	Data       []byte

	// Count is the number of vertices described.
	Count int32

	// floats keeps float data addressable for bounds and physics.
	floats []float32
}

// Float32Attribute creates a float attribute.
//
// Parameters:
//   - name: the attribute name
//   - components: values per vertex (1-4)
//   - data: tightly packed values
//
// Returns:
//   - VertexAttribute: the attribute
func Float32Attribute(name string, components int32, data []float32) VertexAttribute {
	return VertexAttribute{
		Name:       name,
		Components: components,
		Type:       gpu.TypeFloat,
		Data:       common.SliceToBytes(data),
		Count:      int32(len(data)) / components,
		floats:     data,
	}
}

// Uint16Attribute creates an integer attribute, such as joint indices.
//
// Parameters:
//   - name: the attribute name
//   - components: values per vertex (1-4)
//   - data: tightly packed values
//
// Returns:
//   - VertexAttribute: the attribute
func Uint16Attribute(name string, components int32, data []uint16) VertexAttribute {
	return VertexAttribute{
		Name:       name,
		Components: components,
		Type:       gpu.TypeUnsignedShort,
		Data:       common.SliceToBytes(data),
		Count:      int32(len(data)) / components,
	}
}
