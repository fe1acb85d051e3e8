package physics

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBody struct {
	steps []float32
	seen  int
}

func (b *recordingBody) Step(dt float32, world World) {
	b.steps = append(b.steps, dt)
	b.seen = len(world.QueryAABB(common.NewAABB(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10})))
}

// quad is two triangles covering [-1,1]x[-1,1] at z=0.
var quadPositions = []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0}
var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

func TestRaycastHitsNearestFirst(t *testing.T) {
	e := NewPhysicsEngine(WithBuildWorkers(2))
	near := e.AddMesh(quadPositions, quadIndices, mgl32.Translate3D(0, 0, 1))
	far := e.AddMesh(quadPositions, quadIndices, mgl32.Ident4())
	require.NoError(t, e.Build(context.Background()))

	res := e.Raycast(mgl32.Vec3{0.2, 0.3, 5}, mgl32.Vec3{0, 0, -10})
	require.NotNil(t, res.FirstHit)
	require.Len(t, res.AllHits, 2)
	assert.Equal(t, near, res.FirstHit.Mesh)
	assert.InDelta(t, 4, res.FirstHit.Distance, 1e-5)
	assertVec(t, mgl32.Vec3{0.2, 0.3, 1}, res.FirstHit.Point)
	assertVec(t, mgl32.Vec3{0, 0, 1}, res.FirstHit.Normal)
	assert.Equal(t, far, res.AllHits[1].Mesh)
	assert.InDelta(t, 5, res.AllHits[1].Distance, 1e-5)
}

func TestRaycastSingleTriangle(t *testing.T) {
	e := NewPhysicsEngine(WithMaxDepth(1))
	e.AddTriangles([]Triangle{{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}})
	require.NoError(t, e.Build(context.Background()))

	res := e.Raycast(mgl32.Vec3{0.2, 0.2, 5}, mgl32.Vec3{0, 0, -1})
	require.NotNil(t, res.FirstHit)
	assert.InDelta(t, 5, res.FirstHit.Distance, 1e-5)
}

func TestRaycastNormalFacesRay(t *testing.T) {
	e := NewPhysicsEngine()
	e.AddMesh(quadPositions, quadIndices, mgl32.Ident4())
	require.NoError(t, e.Build(context.Background()))

	res := e.Raycast(mgl32.Vec3{0, 0.5, -3}, mgl32.Vec3{0, 0, 1})
	require.NotNil(t, res.FirstHit)
	assertVec(t, mgl32.Vec3{0, 0, -1}, res.FirstHit.Normal)
}

func TestRaycastMisses(t *testing.T) {
	e := NewPhysicsEngine()
	e.AddMesh(quadPositions, quadIndices, mgl32.Ident4())

	// not built yet
	assert.Nil(t, e.Raycast(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}).FirstHit)

	require.NoError(t, e.Build(context.Background()))
	assert.Empty(t, e.Raycast(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}).AllHits)
	assert.Nil(t, e.Raycast(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{0, 0, -1}).FirstHit)
	assert.Nil(t, e.Raycast(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}).FirstHit)
}

func TestBuildHonorsCancellation(t *testing.T) {
	e := NewPhysicsEngine()
	mesh := e.AddMesh(quadPositions, quadIndices, mgl32.Ident4())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Build(ctx), context.Canceled)
	assert.Nil(t, e.Octree(mesh))

	require.NoError(t, e.Build(context.Background()))
	require.NotNil(t, e.Octree(mesh))
	assert.Equal(t, 2, e.Octree(mesh).Count())
	assert.Nil(t, e.Octree(7))
}

func TestAddMeshWithoutIndices(t *testing.T) {
	e := NewPhysicsEngine()
	mesh := e.AddMesh([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, nil, mgl32.Translate3D(3, 0, 0))
	require.NoError(t, e.Build(context.Background()))

	assert.Equal(t, 1, e.MeshCount())
	got := e.QueryAABB(common.NewAABB(mgl32.Vec3{2.5, -1, -1}, mgl32.Vec3{4, 1, 1}))
	require.Len(t, got, 1)
	assertVec(t, mgl32.Vec3{4, 0, 0}, got[0][1])
	assert.Equal(t, mesh, e.Raycast(mgl32.Vec3{3.2, 0.2, 1}, mgl32.Vec3{0, 0, -1}).FirstHit.Mesh)

	assert.Empty(t, e.QueryAABB(common.NewAABB(mgl32.Vec3{-5, -5, -5}, mgl32.Vec3{-4, -4, -4})))
}

func TestAddMeshPanics(t *testing.T) {
	e := NewPhysicsEngine()
	assert.PanicsWithValue(t, "physics: AddMesh positions must hold xyz triples", func() {
		e.AddMesh([]float32{0, 0}, nil, mgl32.Ident4())
	})
	assert.PanicsWithValue(t, "physics: AddMesh indices must hold whole triangles", func() {
		e.AddMesh(quadPositions, []uint32{0, 1}, mgl32.Ident4())
	})
	assert.PanicsWithValue(t, "physics: AddMesh index 9 out of range for 4 vertices", func() {
		e.AddMesh(quadPositions, []uint32{0, 1, 9}, mgl32.Ident4())
	})
}

func TestStepDrivesBodies(t *testing.T) {
	e := NewPhysicsEngine()
	e.AddMesh(quadPositions, quadIndices, mgl32.Ident4())
	require.NoError(t, e.Build(context.Background()))

	a, b := &recordingBody{}, &recordingBody{}
	e.AddBody(a)
	e.AddBody(b)
	e.Step(0.016)
	assert.True(t, e.RemoveBody(a))
	assert.False(t, e.RemoveBody(a))
	e.Step(0.032)

	assert.Equal(t, []float32{0.016}, a.steps)
	assert.Equal(t, []float32{0.016, 0.032}, b.steps)
	assert.Equal(t, 2, b.seen)
}
