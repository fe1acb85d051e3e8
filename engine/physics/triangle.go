package physics

import (
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is three world-space vertices in counter-clockwise order.
type Triangle [3]mgl32.Vec3

// Bounds returns the smallest box containing the triangle.
func (t Triangle) Bounds() common.AABB {
	b := common.NewAABB(t[0], t[1])
	b.Extend(t[2])
	return b
}

// Normal returns the unit face normal, or the zero vector for a degenerate triangle.
func (t Triangle) Normal() mgl32.Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if n.Len() < epsilon {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// Transformed returns the triangle with every vertex moved by m.
func (t Triangle) Transformed(m mgl32.Mat4) Triangle {
	return Triangle{
		common.TransformPoint(m, t[0]),
		common.TransformPoint(m, t[1]),
		common.TransformPoint(m, t[2]),
	}
}
