package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mul4To multiplies two 4x4 matrices and stores the result in out.
// out may alias a or b.
//
// Parameters:
//   - out: destination matrix
//   - a: left-hand matrix
//   - b: right-hand matrix
func Mul4To(out *mgl32.Mat4, a, b *mgl32.Mat4) {
	var r mgl32.Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			r[col*4+row] = a[row]*b[col*4] +
				a[4+row]*b[col*4+1] +
				a[8+row]*b[col*4+2] +
				a[12+row]*b[col*4+3]
		}
	}
	*out = r
}

// TransformPointTo transforms p by the affine matrix m (w = 1) and stores the result in out.
//
// Parameters:
//   - out: destination vector
//   - m: the transform
//   - p: the point
func TransformPointTo(out *mgl32.Vec3, m *mgl32.Mat4, p mgl32.Vec3) {
	x := m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12]
	y := m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13]
	z := m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14]
	out[0], out[1], out[2] = x, y, z
}

// TransformPoint is the allocating form of TransformPointTo.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	TransformPointTo(&out, &m, p)
	return out
}

// TransformDirection transforms d by the upper 3x3 of m (w = 0).
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	}
}

// Translation returns the translation column of m.
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// ComposeTRSTo builds T * R * S into out.
//
// Parameters:
//   - out: destination matrix
//   - t: translation
//   - r: rotation quaternion, expected to be unit length
//   - s: per-axis scale
func ComposeTRSTo(out *mgl32.Mat4, t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) {
	x, y, z, w := r.V[0], r.V[1], r.V[2], r.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	out[0] = (1 - (yy + zz)) * s[0]
	out[1] = (xy + wz) * s[0]
	out[2] = (xz - wy) * s[0]
	out[3] = 0

	out[4] = (xy - wz) * s[1]
	out[5] = (1 - (xx + zz)) * s[1]
	out[6] = (yz + wx) * s[1]
	out[7] = 0

	out[8] = (xz + wy) * s[2]
	out[9] = (yz - wx) * s[2]
	out[10] = (1 - (xx + yy)) * s[2]
	out[11] = 0

	out[12] = t[0]
	out[13] = t[1]
	out[14] = t[2]
	out[15] = 1
}

// ComposeTRS is the allocating form of ComposeTRSTo.
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	var m mgl32.Mat4
	ComposeTRSTo(&m, t, r, s)
	return m
}

// DecomposeTRS splits an affine matrix into translation, rotation and scale.
// Scale is the length of each basis column; a negative determinant flips the X scale.
// Shear is not represented: a sheared matrix decomposes to the nearest TRS and
// ComposeTRS of the result will not reproduce it exactly.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - t: translation
//   - r: rotation derived with QuatFromRotationMatrix
//   - s: scale
func DecomposeTRS(m mgl32.Mat4) (t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) {
	t = mgl32.Vec3{m[12], m[13], m[14]}

	sx := mgl32.Vec3{m[0], m[1], m[2]}.Len()
	sy := mgl32.Vec3{m[4], m[5], m[6]}.Len()
	sz := mgl32.Vec3{m[8], m[9], m[10]}.Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}
	s = mgl32.Vec3{sx, sy, sz}

	var rot mgl32.Mat3
	inv := [3]float32{safeInv(sx), safeInv(sy), safeInv(sz)}
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			rot[col*3+row] = m[col*4+row] * inv[col]
		}
	}
	r = QuatFromRotationMatrix(rot)
	return t, r, s
}

// QuatFromRotationMatrix converts a pure rotation matrix into a unit quaternion.
// This is the single conversion used everywhere a rotation block is turned back
// into a quaternion, so repeated round trips do not drift between methods.
//
// Parameters:
//   - m: a column-major orthonormal 3x3 rotation
//
// Returns:
//   - mgl32.Quat: the normalized rotation quaternion
func QuatFromRotationMatrix(m mgl32.Mat3) mgl32.Quat {
	m00, m01, m02 := m[0], m[3], m[6]
	m10, m11, m12 := m[1], m[4], m[7]
	m20, m21, m22 := m[2], m[5], m[8]

	var q mgl32.Quat
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / float32(math.Sqrt(float64(trace+1)))
		q.W = 0.25 / s
		q.V = mgl32.Vec3{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * float32(math.Sqrt(float64(1+m00-m11-m22)))
		q.W = (m21 - m12) / s
		q.V = mgl32.Vec3{0.25 * s, (m01 + m10) / s, (m02 + m20) / s}
	case m11 > m22:
		s := 2 * float32(math.Sqrt(float64(1+m11-m00-m22)))
		q.W = (m02 - m20) / s
		q.V = mgl32.Vec3{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s}
	default:
		s := 2 * float32(math.Sqrt(float64(1+m22-m00-m11)))
		q.W = (m10 - m01) / s
		q.V = mgl32.Vec3{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s}
	}
	return q.Normalize()
}

// InvertTo writes the inverse of m into out. A singular matrix yields the zero matrix,
// matching mgl32.Mat4.Inv.
func InvertTo(out *mgl32.Mat4, m *mgl32.Mat4) {
	*out = m.Inv()
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
