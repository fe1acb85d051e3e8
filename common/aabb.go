package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. Min is the bottom-left-back corner and
// Max the top-right-front corner; a valid box has Min <= Max on every axis.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB creates a box from two corners, ordering the components so the result is valid.
//
// Parameters:
//   - a, b: any two opposite corners
//
// Returns:
//   - AABB: the box spanning both corners
func NewAABB(a, b mgl32.Vec3) AABB {
	var box AABB
	for i := 0; i < 3; i++ {
		box.Min[i] = min(a[i], b[i])
		box.Max[i] = max(a[i], b[i])
	}
	return box
}

// EmptyAABB returns an inverted box that any call to Extend will replace.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Extend grows the box in place so that it contains p.
func (b *AABB) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// ExtendAABB grows the box in place so that it contains o.
func (b *AABB) ExtendAABB(o AABB) {
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// ApproxTransform replaces the box in place with the bounds of its eight corners after
// transformation by m. The result is conservative: it may be larger than the tight
// bounds of the transformed geometry but never smaller.
//
// Parameters:
//   - m: the affine transform to apply
func (b *AABB) ApproxTransform(m mgl32.Mat4) {
	if !b.Valid() {
		return
	}
	src := *b
	*b = EmptyAABB()
	var p mgl32.Vec3
	for i := 0; i < 8; i++ {
		TransformPointTo(&p, &m, src.Corner(i))
		b.Extend(p)
	}
}

// Transformed is the allocating form of ApproxTransform.
func (b AABB) Transformed(m mgl32.Mat4) AABB {
	b.ApproxTransform(m)
	return b
}

// Corner returns corner i, where bit 0 selects Max.X, bit 1 Max.Y and bit 2 Max.Z.
func (b AABB) Corner(i int) mgl32.Vec3 {
	c := b.Min
	if i&1 != 0 {
		c[0] = b.Max[0]
	}
	if i&2 != 0 {
		c[1] = b.Max[1]
	}
	if i&4 != 0 {
		c[2] = b.Max[2]
	}
	return c
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Octant returns the i-th of the eight equal sub-boxes, with the same bit layout as Corner.
func (b AABB) Octant(i int) AABB {
	c := b.Center()
	o := AABB{Min: b.Min, Max: c}
	for axis := 0; axis < 3; axis++ {
		if i&(1<<axis) != 0 {
			o.Min[axis] = c[axis]
			o.Max[axis] = b.Max[axis]
		}
	}
	return o
}

// Expanded returns the box grown by d on every side.
func (b AABB) Expanded(d float32) AABB {
	e := mgl32.Vec3{d, d, d}
	return AABB{Min: b.Min.Sub(e), Max: b.Max.Add(e)}
}

// ContainsPoint reports whether p lies inside or on the box.
func (b AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Contains reports whether o lies entirely inside b.
func (b AABB) Contains(o AABB) bool {
	return b.ContainsPoint(o.Min) && b.ContainsPoint(o.Max)
}

// Intersects reports whether the two boxes overlap or touch.
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}
