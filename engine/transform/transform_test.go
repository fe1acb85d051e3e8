package transform

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatrixNear(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-4, "want %v\ngot  %v", want, got)
}

// chain builds root -> child -> grandchild with the given local positions.
func chain(positions ...mgl32.Vec3) []Transform {
	out := make([]Transform, len(positions))
	for i, p := range positions {
		out[i] = NewTransform(nil, WithPosition(p))
		if i > 0 {
			out[i-1].Attach(out[i])
		}
	}
	return out
}

func TestRootWorldEqualsLocal(t *testing.T) {
	tr := NewTransform(nil, WithPosition(mgl32.Vec3{1, 2, 3}), WithScale(mgl32.Vec3{2, 2, 2}))
	assertMatrixNear(t, tr.LocalMatrix(), tr.WorldMatrix())
}

func TestGrandchildFollowsRootMove(t *testing.T) {
	nodes := chain(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	r, g := nodes[0], nodes[2]

	// prime every cache
	_ = g.WorldMatrix()
	require.False(t, g.WorldMatrixDirty())

	r.SetPosition(mgl32.Vec3{5, 0, 0})

	assert.True(t, g.WorldMatrixDirty())
	assert.False(t, g.MatrixDirty())
	assert.Equal(t, mgl32.Vec3{6, 1, 0}, g.WorldPosition())
}

func TestSetterMarksOnlyOwnLocalMatrix(t *testing.T) {
	nodes := chain(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	_ = nodes[1].WorldMatrix()

	nodes[0].SetScale(mgl32.Vec3{2, 2, 2})

	assert.True(t, nodes[0].MatrixDirty())
	assert.True(t, nodes[0].WorldMatrixDirty())
	assert.False(t, nodes[1].MatrixDirty())
	assert.True(t, nodes[1].WorldMatrixDirty())
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, nodes[1].WorldPosition())
}

func TestWorldMatrixNeverStaleAfterMutations(t *testing.T) {
	nodes := chain(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 0, 3}, mgl32.Vec3{1, 1, 1})
	mutations := []func(){
		func() { nodes[0].SetRotation(mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0})) },
		func() { nodes[2].SetScale(mgl32.Vec3{1, 3, 1}) },
		func() { nodes[1].SetMatrix(mgl32.Translate3D(-2, 0, 1).Mul4(mgl32.HomogRotate3DX(1))) },
		func() { nodes[0].SetPosition(mgl32.Vec3{0, -7, 0}) },
		func() { nodes[3].SetWorldMatrix(mgl32.Translate3D(9, 9, 9)) },
		func() { nodes[1].SetRotationMatrix(mgl32.Rotate3DZ(0.3)) },
	}
	for step, mutate := range mutations {
		mutate()
		for i := range nodes {
			want := nodes[i].LocalMatrix()
			if i > 0 {
				want = nodes[i-1].WorldMatrix().Mul4(want)
			}
			assertMatrixNear(t, want, nodes[i].WorldMatrix())
		}
		// partial reads between mutations must not hide later invalidations
		if step%2 == 0 {
			_ = nodes[1].WorldMatrix()
		}
	}
}

func TestSetWorldMatrixResolvesAgainstParent(t *testing.T) {
	nodes := chain(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{})
	nodes[0].SetRotation(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))

	target := mgl32.Translate3D(1, 2, 3)
	nodes[1].SetWorldMatrix(target)

	assertMatrixNear(t, target, nodes[1].WorldMatrix())
}

func TestSetMatrixDecomposes(t *testing.T) {
	tr := NewTransform(nil)
	q := mgl32.QuatRotate(0.9, mgl32.Vec3{1, 0, 0})
	tr.SetMatrix(mgl32.Translate3D(1, 2, 3).Mul4(q.Mat4()).Mul4(mgl32.Scale3D(2, 2, 2)))

	pos, scale := tr.Position(), tr.Scale()
	assert.InDeltaSlice(t, []float32{1, 2, 3}, pos[:], 1e-5)
	assert.InDeltaSlice(t, []float32{2, 2, 2}, scale[:], 1e-5)
	// q and -q are the same rotation
	assertMatrixNear(t, q.Mat4(), tr.Rotation().Mat4())
}

func TestSetRotationMatrixRederivesQuaternion(t *testing.T) {
	tr := NewTransform(nil)
	rot := mgl32.Rotate3DY(1.2)
	tr.SetRotationMatrix(rot)

	assertMatrixNear(t, rot.Mat4(), tr.LocalMatrix())
	got := tr.RotationMatrix()
	assert.InDeltaSlice(t, rot[:], got[:], 1e-5)
}

func TestDetachMakesNodeARoot(t *testing.T) {
	nodes := chain(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{1, 0, 0})
	_ = nodes[1].WorldMatrix()

	require.True(t, nodes[0].Detach(nodes[1]))
	assert.Nil(t, nodes[1].Parent())
	assert.Empty(t, nodes[0].Children())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, nodes[1].WorldPosition())
	assert.False(t, nodes[0].Detach(nodes[1]))
}

func TestWorldMatrixRelativeTo(t *testing.T) {
	nodes := chain(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})

	rel := nodes[2].WorldMatrixRelativeTo(nodes[0])
	assertMatrixNear(t, mgl32.Translate3D(1, 1, 0), rel)

	// a cousin as reference falls back to world-space composition
	other := NewTransform(nil, WithPosition(mgl32.Vec3{100, 0, 0}))
	assertMatrixNear(t, mgl32.Translate3D(1, 1, 0), nodes[2].WorldMatrixRelativeTo(other))

	assertMatrixNear(t, nodes[2].WorldMatrix(), nodes[2].WorldMatrixRelativeTo(nil))
}
