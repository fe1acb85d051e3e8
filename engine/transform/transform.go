package transform

import (
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
)

type transform struct {
	owner any

	parent   *transform
	children []*transform

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	matrix      mgl32.Mat4
	worldMatrix mgl32.Mat4

	matrixDirty      bool
	worldMatrixDirty bool
}

// Transform holds the local TRS state of one scene node together with lazily cached
// local and world matrices.
//
// Two dirty flags guard the caches. Changing position, rotation or scale marks the local
// matrix of this node stale; any change to a node marks the world matrix of the node and
// of its entire subtree stale, because world matrices are cached downward from the root.
// Reading LocalMatrix or WorldMatrix recomputes only what is stale.
//
// Tree edges are maintained by the owning GameObject through Attach and Detach; a
// Transform never links itself.
type Transform interface {
	// Owner returns the object this transform belongs to (normally a GameObject).
	//
	// Returns:
	//   - any: the owner passed to NewTransform, or nil
	Owner() any

	// Parent returns the parent transform, or nil for a root.
	//
	// Returns:
	//   - Transform: the parent or nil
	Parent() Transform

	// Children returns the child transforms in insertion order.
	// The returned slice is a copy.
	//
	// Returns:
	//   - []Transform: the children
	Children() []Transform

	// Attach links child under this transform at the end of the child list and marks the
	// child subtree's world matrices stale. The caller guarantees child has no parent.
	//
	// Parameters:
	//   - child: the transform to attach
	Attach(child Transform)

	// Detach unlinks child from this transform and marks the child subtree stale.
	//
	// Parameters:
	//   - child: the transform to detach
	//
	// Returns:
	//   - bool: false if child was not a direct child
	Detach(child Transform) bool

	// Position returns the local position.
	//
	// Returns:
	//   - mgl32.Vec3: the local translation
	Position() mgl32.Vec3

	// Rotation returns the local rotation.
	//
	// Returns:
	//   - mgl32.Quat: the local rotation quaternion
	Rotation() mgl32.Quat

	// Scale returns the local scale.
	//
	// Returns:
	//   - mgl32.Vec3: the per-axis local scale
	Scale() mgl32.Vec3

	// SetPosition sets the local position, marking the local matrix stale and the subtree's
	// world matrices stale.
	//
	// Parameters:
	//   - p: the new local translation
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the local rotation with the same invalidation as SetPosition.
	//
	// Parameters:
	//   - q: the new local rotation
	SetRotation(q mgl32.Quat)

	// SetRotationMatrix sets the local rotation from a raw rotation block. The quaternion
	// is re-derived with common.QuatFromRotationMatrix so the two representations agree.
	//
	// Parameters:
	//   - m: an orthonormal rotation matrix
	SetRotationMatrix(m mgl32.Mat3)

	// RotationMatrix returns the rotation block derived from the current quaternion.
	//
	// Returns:
	//   - mgl32.Mat3: the rotation matrix
	RotationMatrix() mgl32.Mat3

	// SetScale sets the local scale with the same invalidation as SetPosition.
	//
	// Parameters:
	//   - s: the new per-axis scale
	SetScale(s mgl32.Vec3)

	// LocalMatrix returns T * R * S, recomputing it first if stale.
	//
	// Returns:
	//   - mgl32.Mat4: the local matrix
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns parent.WorldMatrix() * LocalMatrix(), or LocalMatrix() for a
	// root, recomputing it first if stale.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	WorldMatrix() mgl32.Mat4

	// WorldMatrixRelativeTo returns the matrix taking this node's local space into the
	// local space of root. When root is not an ancestor the result is computed from
	// world matrices as inverse(root.World) * World. A nil root equals WorldMatrix.
	//
	// Parameters:
	//   - root: the reference ancestor
	//
	// Returns:
	//   - mgl32.Mat4: the relative matrix
	WorldMatrixRelativeTo(root Transform) mgl32.Mat4

	// WorldPosition returns the translation of the world matrix.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space position
	WorldPosition() mgl32.Vec3

	// SetMatrix stores m as the local matrix and decomposes it into position, rotation and
	// scale. The decomposition does not model shear; the stored matrix is kept verbatim
	// until the next TRS mutation rebuilds it from the decomposed values.
	//
	// Parameters:
	//   - m: the new local matrix
	SetMatrix(m mgl32.Mat4)

	// SetWorldMatrix sets the local matrix to inverse(parent.WorldMatrix()) * m so that the
	// resulting world matrix equals m.
	//
	// Parameters:
	//   - m: the desired world matrix
	SetWorldMatrix(m mgl32.Mat4)

	// MatrixDirty reports whether the cached local matrix is stale.
	//
	// Returns:
	//   - bool: true if LocalMatrix will recompute
	MatrixDirty() bool

	// WorldMatrixDirty reports whether the cached world matrix is stale.
	//
	// Returns:
	//   - bool: true if WorldMatrix will recompute
	WorldMatrixDirty() bool
}

var _ Transform = &transform{}

// NewTransform creates an identity transform owned by owner.
//
// Parameters:
//   - owner: the object that owns this transform (may be nil)
//   - options: functional options applied after the identity defaults
//
// Returns:
//   - Transform: the new transform
func NewTransform(owner any, options ...TransformBuilderOption) Transform {
	t := &transform{
		owner:            owner,
		rotation:         mgl32.QuatIdent(),
		scale:            mgl32.Vec3{1, 1, 1},
		matrix:           mgl32.Ident4(),
		worldMatrix:      mgl32.Ident4(),
		matrixDirty:      true,
		worldMatrixDirty: true,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *transform) Owner() any {
	return t.owner
}

func (t *transform) Parent() Transform {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *transform) Children() []Transform {
	out := make([]Transform, len(t.children))
	for i, c := range t.children {
		out[i] = c
	}
	return out
}

func (t *transform) Attach(child Transform) {
	c := child.(*transform)
	c.parent = t
	t.children = append(t.children, c)
	c.markWorldDirty()
}

func (t *transform) Detach(child Transform) bool {
	c, ok := child.(*transform)
	if !ok {
		return false
	}
	for i, existing := range t.children {
		if existing == c {
			t.children = append(t.children[:i], t.children[i+1:]...)
			c.parent = nil
			c.markWorldDirty()
			return true
		}
	}
	return false
}

func (t *transform) Position() mgl32.Vec3 {
	return t.position
}

func (t *transform) Rotation() mgl32.Quat {
	return t.rotation
}

func (t *transform) Scale() mgl32.Vec3 {
	return t.scale
}

func (t *transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.markLocalDirty()
}

func (t *transform) SetRotation(q mgl32.Quat) {
	t.rotation = q
	t.markLocalDirty()
}

func (t *transform) SetRotationMatrix(m mgl32.Mat3) {
	t.rotation = common.QuatFromRotationMatrix(m)
	t.markLocalDirty()
}

func (t *transform) RotationMatrix() mgl32.Mat3 {
	return t.rotation.Mat4().Mat3()
}

func (t *transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.markLocalDirty()
}

func (t *transform) LocalMatrix() mgl32.Mat4 {
	if t.matrixDirty {
		common.ComposeTRSTo(&t.matrix, t.position, t.rotation, t.scale)
		t.matrixDirty = false
	}
	return t.matrix
}

func (t *transform) WorldMatrix() mgl32.Mat4 {
	if t.worldMatrixDirty {
		local := t.LocalMatrix()
		if t.parent == nil {
			t.worldMatrix = local
		} else {
			parentWorld := t.parent.WorldMatrix()
			common.Mul4To(&t.worldMatrix, &parentWorld, &local)
		}
		t.worldMatrixDirty = false
	}
	return t.worldMatrix
}

func (t *transform) WorldMatrixRelativeTo(root Transform) mgl32.Mat4 {
	if root == nil {
		return t.WorldMatrix()
	}
	r, _ := root.(*transform)
	m := mgl32.Ident4()
	for n := t; n != nil; n = n.parent {
		if n == r {
			return m
		}
		local := n.LocalMatrix()
		common.Mul4To(&m, &local, &m)
	}
	rootInv := root.WorldMatrix().Inv()
	world := t.WorldMatrix()
	common.Mul4To(&m, &rootInv, &world)
	return m
}

func (t *transform) WorldPosition() mgl32.Vec3 {
	return common.Translation(t.WorldMatrix())
}

func (t *transform) SetMatrix(m mgl32.Mat4) {
	t.position, t.rotation, t.scale = common.DecomposeTRS(m)
	t.matrix = m
	t.matrixDirty = false
	t.markWorldDirty()
}

func (t *transform) SetWorldMatrix(m mgl32.Mat4) {
	if t.parent == nil {
		t.SetMatrix(m)
		return
	}
	parentInv := t.parent.WorldMatrix().Inv()
	var local mgl32.Mat4
	common.Mul4To(&local, &parentInv, &m)
	t.SetMatrix(local)
}

func (t *transform) MatrixDirty() bool {
	return t.matrixDirty
}

func (t *transform) WorldMatrixDirty() bool {
	return t.worldMatrixDirty
}

// markLocalDirty invalidates the local matrix of this node and the world matrices of
// its subtree.
func (t *transform) markLocalDirty() {
	t.matrixDirty = true
	t.markWorldDirty()
}

// markWorldDirty invalidates the world matrix of t and every descendant.
// A node whose world matrix is already stale has a stale subtree: a descendant can only
// be recomputed after its ancestors are, so the walk stops there.
func (t *transform) markWorldDirty() {
	if t.worldMatrixDirty {
		return
	}
	t.worldMatrixDirty = true
	for _, c := range t.children {
		c.markWorldDirty()
	}
}
