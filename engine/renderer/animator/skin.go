package animator

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/go-gl/mathgl/mgl32"
)

// TexelsPerJoint is the width of the joint texture: one RGBA32F texel per matrix column.
const TexelsPerJoint = 4

// Skin binds a skinned mesh to its joints. Joint matrices are uploaded as a float
// texture, one row per joint, so skinned programs are not limited by uniform array sizes.
type Skin struct {
	joints      []transform.Transform
	inverseBind []mgl32.Mat4
	root        transform.Transform

	matrices []float32
	texture  *material.Texture
}

// NewSkin creates a skin. joints and inverseBind must have the same length.
//
// Parameters:
//   - joints: the joint transforms in the order the vertex joint indices use
//   - inverseBind: the inverse bind matrix of each joint
//   - root: the transform joint matrices are expressed relative to, nil for world space
//
// Returns:
//   - *Skin: the new skin
func NewSkin(joints []transform.Transform, inverseBind []mgl32.Mat4, root transform.Transform) *Skin {
	if len(joints) != len(inverseBind) {
		panic("animator: NewSkin requires one inverse bind matrix per joint")
	}
	return &Skin{
		joints:      append([]transform.Transform(nil), joints...),
		inverseBind: append([]mgl32.Mat4(nil), inverseBind...),
		root:        root,
		matrices:    make([]float32, 16*len(joints)),
	}
}

// Joints returns the joint transforms.
func (s *Skin) Joints() []transform.Transform {
	return s.joints
}

// SetJoints replaces the joint list, keeping the inverse bind matrices.
//
// Parameters:
//   - joints: the new joints, same length as the current list
func (s *Skin) SetJoints(joints []transform.Transform) {
	if len(joints) != len(s.joints) {
		panic("animator: SetJoints must keep the joint count")
	}
	copy(s.joints, joints)
}

// Root returns the skin root, nil for world space.
func (s *Skin) Root() transform.Transform {
	return s.root
}

// SetRoot sets the skin root.
func (s *Skin) SetRoot(root transform.Transform) {
	s.root = root
}

// JointMatrix returns the last computed matrix of joint i.
func (s *Skin) JointMatrix(i int) mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], s.matrices[i*16:(i+1)*16])
	return m
}

// Texture returns the joint texture, nil before the first Update.
func (s *Skin) Texture() *material.Texture {
	return s.texture
}

// Update recomputes joint.WorldMatrixRelativeTo(root) * inverseBind for every joint and
// uploads the result, creating the joint texture on first use.
//
// Parameters:
//   - device: the device owning the joint texture
func (s *Skin) Update(device gpu.Device) {
	for i, j := range s.joints {
		m := j.WorldMatrixRelativeTo(s.root).Mul4(s.inverseBind[i])
		copy(s.matrices[i*16:(i+1)*16], m[:])
	}
	if len(s.joints) == 0 {
		return
	}
	if s.texture == nil {
		s.texture = material.NewFloatTexture(device, "joints", TexelsPerJoint, int32(len(s.joints)), s.matrices)
		return
	}
	s.texture.UpdateFloats(s.matrices)
}

// Copy returns a skin with the same joints, root and inverse bind matrices and no
// joint texture.
func (s *Skin) Copy() *Skin {
	return NewSkin(s.joints, s.inverseBind, s.root)
}

// Release deletes the joint texture.
func (s *Skin) Release() {
	if s.texture != nil {
		s.texture.Release()
		s.texture = nil
	}
}
