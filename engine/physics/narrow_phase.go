package physics

import (
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// epsilon is the tolerance below which determinants, lengths and ray parameters are
// treated as zero.
const epsilon = 1e-6

// Capsule is a segment from A to B swept by a sphere of Radius.
type Capsule struct {
	A, B   mgl32.Vec3
	Radius float32
}

// Bounds returns the smallest box containing the capsule.
func (c Capsule) Bounds() common.AABB {
	return common.NewAABB(c.A, c.B).Expanded(c.Radius)
}

// Contact describes how to separate a shape from a triangle.
type Contact struct {
	// Normal is the unit direction that moves the shape out of the triangle.
	Normal mgl32.Vec3

	// Depth is how far the shape must move along Normal to stop touching.
	Depth float32

	// Point is the point on the triangle closest to the shape.
	Point mgl32.Vec3
}

// RayAABB intersects a ray with a box using the slab method.
//
// Parameters:
//   - origin: the ray origin
//   - dir: the ray direction, need not be normalized
//   - box: the box
//
// Returns:
//   - float32: the entry parameter, negative when origin is inside the box
//   - float32: the exit parameter
//   - bool: false when the ray misses, the box is behind it, or dir is zero
func RayAABB(origin, dir mgl32.Vec3, box common.AABB) (float32, float32, bool) {
	if dir.Len() < epsilon {
		return 0, 0, false
	}
	tmin, tmax := math32.Inf(-1), math32.Inf(1)
	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < epsilon {
			if origin[i] < box.Min[i] || origin[i] > box.Max[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (box.Min[i] - origin[i]) * inv
		t2 := (box.Max[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}
	if tmax < 0 || tmin > tmax {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// RayTriangle intersects a ray with a triangle (Möller–Trumbore). Both faces are hit.
//
// Parameters:
//   - origin: the ray origin
//   - dir: the ray direction; with a unit direction the parameter is a distance
//   - tri: the triangle
//
// Returns:
//   - mgl32.Vec3: the hit point
//   - float32: the ray parameter of the hit
//   - bool: false for a miss, a hit behind the origin, or a ray parallel to the triangle
func RayTriangle(origin, dir mgl32.Vec3, tri Triangle) (mgl32.Vec3, float32, bool) {
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < epsilon {
		return mgl32.Vec3{}, 0, false
	}
	inv := 1 / det

	s := origin.Sub(tri[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return mgl32.Vec3{}, 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return mgl32.Vec3{}, 0, false
	}
	t := e2.Dot(q) * inv
	if t <= epsilon {
		return mgl32.Vec3{}, 0, false
	}
	return origin.Add(dir.Mul(t)), t, true
}

// ClosestPointOnTriangle returns the point of tri nearest to p, by Voronoi region.
func ClosestPointOnTriangle(p mgl32.Vec3, tri Triangle) mgl32.Vec3 {
	a, b, c := tri[0], tri[1], tri[2]
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)

	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).Mul((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	return a.Add(ab.Mul(vb * denom)).Add(ac.Mul(vc * denom))
}

// ClosestSegmentSegment returns the closest points between segments p1-q1 and p2-q2.
// Degenerate segments are treated as points.
//
// Returns:
//   - mgl32.Vec3: the point on p1-q1
//   - mgl32.Vec3: the point on p2-q2
func ClosestSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	d1, d2 := q1.Sub(p1), q2.Sub(p2)
	r := p1.Sub(p2)
	a, e := d1.Dot(d1), d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	switch {
	case a <= epsilon && e <= epsilon:
		return p1, p2
	case a <= epsilon:
		t = mgl32.Clamp(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= epsilon {
			s = mgl32.Clamp(-c/a, 0, 1)
			break
		}
		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > epsilon {
			s = mgl32.Clamp((b*f-c*e)/denom, 0, 1)
		}
		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = mgl32.Clamp(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = mgl32.Clamp((b-c)/a, 0, 1)
		}
	}
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// closestSegmentTriangle returns the closest points between segment p-q and tri.
func closestSegmentTriangle(p, q mgl32.Vec3, tri Triangle) (mgl32.Vec3, mgl32.Vec3) {
	// a segment piercing the face touches it at the crossing point
	n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
	dp, dq := p.Sub(tri[0]).Dot(n), q.Sub(tri[0]).Dot(n)
	if dp*dq < 0 {
		x := p.Add(q.Sub(p).Mul(dp / (dp - dq)))
		if onTri := ClosestPointOnTriangle(x, tri); onTri.Sub(x).Len() < epsilon {
			return x, onTri
		}
	}

	bestSeg, bestTri := p, ClosestPointOnTriangle(p, tri)
	best := bestSeg.Sub(bestTri).LenSqr()
	consider := func(s, t mgl32.Vec3) {
		if d := s.Sub(t).LenSqr(); d < best {
			best, bestSeg, bestTri = d, s, t
		}
	}
	consider(q, ClosestPointOnTriangle(q, tri))
	for i := 0; i < 3; i++ {
		consider(ClosestSegmentSegment(p, q, tri[i], tri[(i+1)%3]))
	}
	return bestSeg, bestTri
}

// CapsuleTriangle tests a capsule against a triangle.
//
// When the capsule axis touches the triangle the separation direction is the face
// normal turned toward the capsule center, and the depth clears the axis endpoint
// deepest behind the face.
//
// Parameters:
//   - c: the capsule
//   - tri: the triangle
//
// Returns:
//   - Contact: the separation, zero when there is no contact
//   - bool: false when the capsule does not reach the triangle or tri is degenerate
func CapsuleTriangle(c Capsule, tri Triangle) (Contact, bool) {
	onSeg, onTri := closestSegmentTriangle(c.A, c.B, tri)
	delta := onSeg.Sub(onTri)
	dist := delta.Len()
	if dist >= c.Radius {
		return Contact{}, false
	}
	if dist > epsilon {
		return Contact{Normal: delta.Mul(1 / dist), Depth: c.Radius - dist, Point: onTri}, true
	}

	n := tri.Normal()
	if n == (mgl32.Vec3{}) {
		return Contact{}, false
	}
	center := c.A.Add(c.B).Mul(0.5)
	if center.Sub(tri[0]).Dot(n) < 0 {
		n = n.Mul(-1)
	}
	deepest := math32.Min(c.A.Sub(tri[0]).Dot(n), c.B.Sub(tri[0]).Dot(n))
	return Contact{Normal: n, Depth: c.Radius - deepest, Point: onTri}, true
}

// AABBTriangle reports whether a box and a triangle overlap, by the separating axis
// test over the box axes, the triangle normal and their nine edge cross products.
// Touching counts as overlap.
func AABBTriangle(box common.AABB, tri Triangle) bool {
	center := box.Center()
	half := box.Size().Mul(0.5)
	v := [3]mgl32.Vec3{tri[0].Sub(center), tri[1].Sub(center), tri[2].Sub(center)}
	edges := [3]mgl32.Vec3{v[1].Sub(v[0]), v[2].Sub(v[1]), v[0].Sub(v[2])}

	separated := func(axis mgl32.Vec3) bool {
		if axis.LenSqr() < epsilon*epsilon {
			return false
		}
		p0, p1, p2 := v[0].Dot(axis), v[1].Dot(axis), v[2].Dot(axis)
		r := half[0]*math32.Abs(axis[0]) + half[1]*math32.Abs(axis[1]) + half[2]*math32.Abs(axis[2])
		return math32.Min(p0, math32.Min(p1, p2)) > r || math32.Max(p0, math32.Max(p1, p2)) < -r
	}

	boxAxes := [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for _, a := range boxAxes {
		for _, e := range edges {
			if separated(a.Cross(e)) {
				return false
			}
		}
	}
	for _, a := range boxAxes {
		if separated(a) {
			return false
		}
	}
	return !separated(edges[0].Cross(edges[1]))
}
