package transform

import (
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformBuilderOption is a functional option for configuring a Transform during construction.
type TransformBuilderOption func(*transform)

// WithPosition sets the initial local position.
//
// Parameters:
//   - p: the local translation
//
// Returns:
//   - TransformBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) TransformBuilderOption {
	return func(t *transform) {
		t.position = p
		t.matrixDirty = true
	}
}

// WithRotation sets the initial local rotation.
//
// Parameters:
//   - q: the local rotation
//
// Returns:
//   - TransformBuilderOption: functional option to set the rotation
func WithRotation(q mgl32.Quat) TransformBuilderOption {
	return func(t *transform) {
		t.rotation = q
		t.matrixDirty = true
	}
}

// WithScale sets the initial local scale.
//
// Parameters:
//   - s: the per-axis scale
//
// Returns:
//   - TransformBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) TransformBuilderOption {
	return func(t *transform) {
		t.scale = s
		t.matrixDirty = true
	}
}

// WithMatrix sets the initial local matrix, decomposing it into position, rotation and scale.
//
// Parameters:
//   - m: the local matrix
//
// Returns:
//   - TransformBuilderOption: functional option to set the matrix
func WithMatrix(m mgl32.Mat4) TransformBuilderOption {
	return func(t *transform) {
		t.position, t.rotation, t.scale = common.DecomposeTRS(m)
		t.matrix = m
		t.matrixDirty = false
	}
}
