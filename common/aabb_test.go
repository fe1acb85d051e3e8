package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAABBExtendFromEmpty(t *testing.T) {
	b := EmptyAABB()
	assert.False(t, b.Valid())

	b.Extend(mgl32.Vec3{1, -2, 3})
	b.Extend(mgl32.Vec3{-1, 4, 0})

	assert.True(t, b.Valid())
	assert.Equal(t, mgl32.Vec3{-1, -2, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 4, 3}, b.Max)
}

func TestAABBApproxTransformIsConservative(t *testing.T) {
	b := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	m := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))

	b.ApproxTransform(m)

	for i := 0; i < 8; i++ {
		p := TransformPoint(m, NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}).Corner(i))
		assert.True(t, b.Expanded(1e-5).ContainsPoint(p))
	}
	assert.InDelta(t, 10, b.Center()[0], 1e-5)
	assert.InDelta(t, 2*1.41421356, b.Size()[0], 1e-4)
}

func TestAABBOctantsPartitionParent(t *testing.T) {
	b := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	assert.Equal(t, NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{0, 0, 0}), b.Octant(0))
	assert.Equal(t, NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), b.Octant(7))
	assert.Equal(t, NewAABB(mgl32.Vec3{0, -1, -1}, mgl32.Vec3{1, 0, 0}), b.Octant(1))

	for i := 0; i < 8; i++ {
		assert.True(t, b.Contains(b.Octant(i)))
	}
}

func TestAABBIntersectsAndContains(t *testing.T) {
	a := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2})
	touching := NewAABB(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{3, 1, 1})
	apart := NewAABB(mgl32.Vec3{2.1, 0, 0}, mgl32.Vec3{3, 1, 1})
	inner := NewAABB(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 1, 1})

	assert.True(t, a.Intersects(touching))
	assert.False(t, a.Intersects(apart))
	assert.True(t, a.Contains(inner))
	assert.False(t, inner.Contains(a))
}
