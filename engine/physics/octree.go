package physics

import (
	"github.com/Carmen-Shannon/oxy-gl/common"

	"github.com/go-gl/mathgl/mgl32"
)

// octreeNode is a box, its triangles and up to eight children created on first use.
type octreeNode struct {
	bounds   common.AABB
	items    []Triangle
	children *[8]octreeNode
}

// octree is the implementation of the Octree interface.
type octree struct {
	root     octreeNode
	maxDepth int
	count    int
}

// Octree is a static spatial index over triangles. A triangle is stored exactly once,
// in the deepest node whose box contains it whole; triangles straddling a split stay
// at the parent. Nodes below maxDepth-1 are never created.
//
// The tree is built once and only read afterwards. It is not safe to add triangles
// while another goroutine queries.
type Octree interface {
	// Bounds returns the box of the root node.
	//
	// Returns:
	//   - common.AABB: the root box
	Bounds() common.AABB

	// MaxDepth returns the number of levels the tree may grow to, the root included.
	//
	// Returns:
	//   - int: the depth limit
	MaxDepth() int

	// AddTriangle inserts tri. The root takes any triangle overlapping its box, even in
	// part; deeper nodes take only triangles they contain whole.
	//
	// Parameters:
	//   - tri: the triangle
	//
	// Returns:
	//   - bool: false if tri does not touch the root box
	AddTriangle(tri Triangle) bool

	// Query returns every triangle stored in a node whose box the ray crosses. The
	// result is a candidate list for narrow-phase tests, not a list of hits.
	//
	// Parameters:
	//   - origin: the ray origin
	//   - dir: the ray direction, need not be normalized
	//
	// Returns:
	//   - []Triangle: the candidates, nil for a zero direction
	Query(origin, dir mgl32.Vec3) []Triangle

	// QueryAABB returns every triangle stored in a node whose box touches box.
	//
	// Parameters:
	//   - box: the query volume
	//
	// Returns:
	//   - []Triangle: the candidates
	QueryAABB(box common.AABB) []Triangle

	// Walk visits every created node depth first, parents before children.
	//
	// Parameters:
	//   - fn: receives the node box, its depth (root is 0) and its triangles
	Walk(fn func(bounds common.AABB, depth int, items []Triangle))

	// Count returns the number of triangles stored.
	//
	// Returns:
	//   - int: the triangle count
	Count() int
}

var _ Octree = &octree{}

// NewOctree creates an empty octree.
//
// Parameters:
//   - bounds: the root box
//   - maxDepth: the number of levels, at least 1
//
// Returns:
//   - Octree: the empty tree
func NewOctree(bounds common.AABB, maxDepth int) Octree {
	if !bounds.Valid() {
		panic("physics: NewOctree requires a valid box")
	}
	return &octree{
		root:     octreeNode{bounds: bounds},
		maxDepth: max(maxDepth, 1),
	}
}

func (o *octree) Bounds() common.AABB {
	return o.root.bounds
}

func (o *octree) MaxDepth() int {
	return o.maxDepth
}

func (o *octree) Count() int {
	return o.count
}

func (o *octree) AddTriangle(tri Triangle) bool {
	if !AABBTriangle(o.root.bounds, tri) {
		return false
	}
	o.root.insert(tri, tri.Bounds(), 0, o.maxDepth)
	o.count++
	return true
}

func (n *octreeNode) insert(tri Triangle, triBounds common.AABB, depth, maxDepth int) {
	if depth+1 < maxDepth {
		if n.children == nil {
			n.children = new([8]octreeNode)
			for i := range n.children {
				n.children[i].bounds = n.bounds.Octant(i)
			}
		}
		for i := range n.children {
			child := &n.children[i]
			if child.bounds.Contains(triBounds) {
				child.insert(tri, triBounds, depth+1, maxDepth)
				return
			}
		}
	}
	n.items = append(n.items, tri)
}

func (o *octree) Query(origin, dir mgl32.Vec3) []Triangle {
	if dir.Len() < epsilon {
		return nil
	}
	var out []Triangle
	o.root.query(origin, dir, &out)
	return out
}

func (n *octreeNode) query(origin, dir mgl32.Vec3, out *[]Triangle) {
	if _, _, ok := RayAABB(origin, dir, n.bounds); !ok {
		return
	}
	*out = append(*out, n.items...)
	if n.children == nil {
		return
	}
	for i := range n.children {
		n.children[i].query(origin, dir, out)
	}
}

func (o *octree) QueryAABB(box common.AABB) []Triangle {
	var out []Triangle
	o.root.queryAABB(box, &out)
	return out
}

func (n *octreeNode) queryAABB(box common.AABB, out *[]Triangle) {
	if !n.bounds.Intersects(box) {
		return
	}
	*out = append(*out, n.items...)
	if n.children == nil {
		return
	}
	for i := range n.children {
		n.children[i].queryAABB(box, out)
	}
}

func (o *octree) Walk(fn func(bounds common.AABB, depth int, items []Triangle)) {
	o.root.walk(0, fn)
}

func (n *octreeNode) walk(depth int, fn func(bounds common.AABB, depth int, items []Triangle)) {
	fn(n.bounds, depth, n.items)
	if n.children == nil {
		return
	}
	for i := range n.children {
		n.children[i].walk(depth+1, fn)
	}
}
