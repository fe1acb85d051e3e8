package physics

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
)

// Hit is one ray hit against collision geometry.
type Hit struct {
	Point mgl32.Vec3

	// Normal is the face normal turned toward the ray origin.
	Normal mgl32.Vec3

	// Distance is measured along the normalized ray direction.
	Distance float32

	// Mesh is the index returned by AddMesh for the mesh hit.
	Mesh     int
	Triangle Triangle
}

// RaycastResult holds every hit of a ray, nearest first.
type RaycastResult struct {
	// FirstHit is the nearest entry of AllHits, nil when nothing was hit.
	FirstHit *Hit
	AllHits  []Hit
}

// World is the read side of the physics engine handed to bodies while they step.
type World interface {
	// Raycast casts a ray against every built mesh.
	//
	// Parameters:
	//   - origin: the ray origin
	//   - dir: the ray direction; it is normalized, and a zero direction hits nothing
	//
	// Returns:
	//   - RaycastResult: all hits sorted by distance
	Raycast(origin, dir mgl32.Vec3) RaycastResult

	// QueryAABB returns the candidate triangles of every built mesh near box.
	//
	// Parameters:
	//   - box: the query volume
	//
	// Returns:
	//   - []Triangle: triangles stored in octree nodes touching box
	QueryAABB(box common.AABB) []Triangle
}

// Body is anything moved by the physics step, such as a player controller.
type Body interface {
	// Step advances the body by dt seconds against world.
	Step(dt float32, world World)
}

type collisionMesh struct {
	triangles []Triangle
	bounds    common.AABB
	tree      Octree
}

// physicsEngine is the implementation of the PhysicsEngine interface.
type physicsEngine struct {
	meshes []*collisionMesh
	bodies []Body

	maxDepth int
	padding  float32
	workers  int
	pool     worker.DynamicWorkerPool
}

// PhysicsEngine owns static collision meshes, each indexed by its own octree, and the
// bodies stepped against them.
//
// Meshes are added and built during scene setup. Queries only see meshes that have
// been built; a mesh added after Build is invisible until the next Build.
type PhysicsEngine interface {
	World

	// AddMesh adds a static collision mesh. The triangles are moved into world space by
	// matrix when added.
	//
	// Parameters:
	//   - positions: xyz vertex positions
	//   - indices: triangle vertex indices, nil for consecutive triples
	//   - matrix: the mesh world matrix
	//
	// Returns:
	//   - int: the mesh index reported by hits
	AddMesh(positions []float32, indices []uint32, matrix mgl32.Mat4) int

	// AddTriangles adds a static collision mesh from world-space triangles.
	//
	// Parameters:
	//   - triangles: the triangles
	//
	// Returns:
	//   - int: the mesh index reported by hits
	AddTriangles(triangles []Triangle) int

	// Build creates the octree of every mesh not yet built, one mesh per worker task.
	//
	// Parameters:
	//   - ctx: cancels the meshes not started yet
	//
	// Returns:
	//   - error: ctx.Err() if cancelled; cancelled meshes stay unbuilt
	Build(ctx context.Context) error

	// Octree returns the index of a built mesh.
	//
	// Parameters:
	//   - mesh: an index returned by AddMesh or AddTriangles
	//
	// Returns:
	//   - Octree: the tree, nil if the mesh is not built or has no triangles
	Octree(mesh int) Octree

	// MeshCount returns the number of meshes added.
	MeshCount() int

	// AddBody registers a body for Step.
	AddBody(b Body)

	// RemoveBody unregisters a body.
	//
	// Returns:
	//   - bool: false if b was not registered
	RemoveBody(b Body) bool

	// Step advances every body in registration order.
	//
	// Parameters:
	//   - dt: the fixed step in seconds
	Step(dt float32)
}

var _ PhysicsEngine = &physicsEngine{}

// NewPhysicsEngine creates an engine with no meshes.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - PhysicsEngine: the engine
func NewPhysicsEngine(options ...PhysicsEngineBuilderOption) PhysicsEngine {
	e := &physicsEngine{
		maxDepth: 6,
		padding:  0.01,
		workers:  runtime.NumCPU(),
	}
	for _, option := range options {
		option(e)
	}
	e.pool = worker.NewDynamicWorkerPool(e.workers, 64, 1*time.Second)
	return e
}

func (e *physicsEngine) AddMesh(positions []float32, indices []uint32, matrix mgl32.Mat4) int {
	if len(positions)%3 != 0 {
		panic("physics: AddMesh positions must hold xyz triples")
	}
	vertexCount := uint32(len(positions) / 3)
	vertex := func(i uint32) mgl32.Vec3 {
		if i >= vertexCount {
			panic(fmt.Sprintf("physics: AddMesh index %d out of range for %d vertices", i, vertexCount))
		}
		p := mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
		return common.TransformPoint(matrix, p)
	}

	var triangles []Triangle
	if indices == nil {
		if vertexCount%3 != 0 {
			panic("physics: AddMesh without indices needs whole triangles")
		}
		for i := uint32(0); i < vertexCount; i += 3 {
			triangles = append(triangles, Triangle{vertex(i), vertex(i + 1), vertex(i + 2)})
		}
	} else {
		if len(indices)%3 != 0 {
			panic("physics: AddMesh indices must hold whole triangles")
		}
		for i := 0; i < len(indices); i += 3 {
			triangles = append(triangles, Triangle{vertex(indices[i]), vertex(indices[i+1]), vertex(indices[i+2])})
		}
	}
	return e.AddTriangles(triangles)
}

func (e *physicsEngine) AddTriangles(triangles []Triangle) int {
	m := &collisionMesh{triangles: triangles, bounds: common.EmptyAABB()}
	for _, t := range triangles {
		m.bounds.ExtendAABB(t.Bounds())
	}
	e.meshes = append(e.meshes, m)
	return len(e.meshes) - 1
}

func (e *physicsEngine) Build(ctx context.Context) error {
	var wg sync.WaitGroup
	// meshes built by an earlier Build keep their tree
	for i, m := range e.meshes {
		if m.tree != nil || len(m.triangles) == 0 {
			continue
		}
		wg.Add(1)
		mesh := m
		e.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				// tasks still queued after cancellation finish without building
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				tree := NewOctree(mesh.bounds.Expanded(e.padding), e.maxDepth)
				for _, t := range mesh.triangles {
					tree.AddTriangle(t)
				}
				// each task writes only its own mesh
				mesh.tree = tree
				return tree.Count(), nil
			},
		})
	}
	wg.Wait()
	return ctx.Err()
}

func (e *physicsEngine) Octree(mesh int) Octree {
	if mesh < 0 || mesh >= len(e.meshes) {
		return nil
	}
	return e.meshes[mesh].tree
}

func (e *physicsEngine) MeshCount() int {
	return len(e.meshes)
}

func (e *physicsEngine) Raycast(origin, dir mgl32.Vec3) RaycastResult {
	if dir.Len() < epsilon {
		return RaycastResult{}
	}
	dir = dir.Normalize()

	var hits []Hit
	for i, m := range e.meshes {
		if m.tree == nil {
			continue
		}
		for _, tri := range m.tree.Query(origin, dir) {
			point, t, ok := RayTriangle(origin, dir, tri)
			if !ok {
				continue
			}
			n := tri.Normal()
			if n.Dot(dir) > 0 {
				n = n.Mul(-1)
			}
			hits = append(hits, Hit{Point: point, Normal: n, Distance: t, Mesh: i, Triangle: tri})
		}
	}
	if len(hits) == 0 {
		return RaycastResult{}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return RaycastResult{FirstHit: &hits[0], AllHits: hits}
}

func (e *physicsEngine) QueryAABB(box common.AABB) []Triangle {
	var out []Triangle
	for _, m := range e.meshes {
		if m.tree == nil || !m.tree.Bounds().Intersects(box) {
			continue
		}
		out = append(out, m.tree.QueryAABB(box)...)
	}
	return out
}

func (e *physicsEngine) AddBody(b Body) {
	e.bodies = append(e.bodies, b)
}

func (e *physicsEngine) RemoveBody(b Body) bool {
	for i, body := range e.bodies {
		if body == b {
			e.bodies = slices.Delete(e.bodies, i, i+1)
			return true
		}
	}
	return false
}

func (e *physicsEngine) Step(dt float32) {
	for _, b := range e.bodies {
		b.Step(dt, e)
	}
}
