package game_object

import (
	"errors"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/go-gl/mathgl/mgl32"
)

// LayerDefault is the layer of a new GameObject.
const LayerDefault uint32 = 1

// ErrAlreadyParented is returned by AddChild when the child already has a parent.
var ErrAlreadyParented = errors.New("game_object: child already has a parent")

var nextID atomic.Uint64

type gameObject struct {
	id    uint64
	name  string
	alive bool

	visible        bool
	active         bool
	castShadows    bool
	receiveShadows bool
	layer          uint32
	customData     map[string]any

	transform        transform.Transform
	transformOptions []transform.TransformBuilderOption
	parent           *gameObject
	children         []*gameObject
	pendingChildren  []GameObject

	meshRenderer  model.MeshRenderer
	controller    animator.AnimationController
	components    []Component
	attachedLight light.Light

	prevModelMatrix mgl32.Mat4
	lastModelMatrix mgl32.Mat4
	renderedFrame   uint64
	rendered        bool
}

// GameObject is a node of the scene graph. It owns a Transform, an optional mesh
// renderer, an optional animation controller and a list of components, and links to its
// parent and children. Structure is edited only through AddChild, SetParent,
// RemoveChild and Delete, which keep the transform tree in step.
//
// Deleting or removing a node never frees GPU resources; Cleanup does that explicitly.
type GameObject interface {
	// ID returns the process-unique identifier assigned at construction.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Alive reports whether Delete has not been called on the object or an ancestor.
	Alive() bool

	Name() string
	SetName(name string)

	// Visible reports whether the object and its subtree are rendered.
	Visible() bool
	SetVisible(visible bool)

	// Active reports whether the object and its subtree are updated.
	Active() bool
	SetActive(active bool)

	CastShadows() bool
	SetCastShadows(cast bool)
	ReceiveShadows() bool
	SetReceiveShadows(receive bool)

	// Layer is the bitmask matched against the camera layer.
	Layer() uint32
	SetLayer(layer uint32)

	// CustomData returns the free-form key/value map of the object.
	//
	// Returns:
	//   - map[string]any: the live map
	CustomData() map[string]any

	// Transform returns the object's transform.
	//
	// Returns:
	//   - transform.Transform: the transform, owned by the object
	Transform() transform.Transform

	// Parent returns the parent, or nil for a root.
	Parent() GameObject

	// Children returns the children in insertion order. The slice is a copy.
	Children() []GameObject

	// AddChild appends child to the children of the object.
	//
	// Parameters:
	//   - child: the object to attach; it must have no parent
	//
	// Returns:
	//   - GameObject: child, nil on error
	//   - error: ErrAlreadyParented if child has a parent
	AddChild(child GameObject) (GameObject, error)

	// SetParent moves the object under p, detaching it from its current parent first.
	//
	// Parameters:
	//   - p: the new parent, nil to detach
	SetParent(p GameObject)

	// RemoveChild detaches child from the object.
	//
	// Parameters:
	//   - child: the object to detach
	//
	// Returns:
	//   - bool: false if child is not a child of the object
	RemoveChild(child GameObject) bool

	// Delete detaches the object from its parent and marks its subtree dead. GPU
	// resources are not released.
	Delete()

	// Cleanup releases the mesh renderers of the object and its whole subtree.
	Cleanup()

	// Traverse visits the object and then every descendant in pre-order.
	//
	// Parameters:
	//   - fn: the visitor; the tree must not be mutated during the traversal
	Traverse(fn func(GameObject))

	// TraverseCondition is Traverse that recurses into a child only when predicate
	// holds for it. fn always runs on the node being visited.
	//
	// Parameters:
	//   - fn: the visitor
	//   - predicate: the recursion gate
	TraverseCondition(fn func(GameObject), predicate func(GameObject) bool)

	// Find returns the first object named name in pre-order, starting with the object
	// itself.
	//
	// Parameters:
	//   - name: the name to match
	//
	// Returns:
	//   - GameObject: the match, or nil
	Find(name string) GameObject

	// HierarchyPath returns the child indices leading from root down to the object.
	//
	// Parameters:
	//   - root: an ancestor of the object, or the object itself
	//
	// Returns:
	//   - []int: the path, empty when root is the object
	//   - bool: false if root is not an ancestor
	HierarchyPath(root GameObject) ([]int, bool)

	// ChildFromHierarchyPath follows child indices down from the object.
	//
	// Parameters:
	//   - path: the indices, as produced by HierarchyPath
	//
	// Returns:
	//   - GameObject: the object at the end of the path, or nil if an index is out of range
	ChildFromHierarchyPath(path []int) GameObject

	MeshRenderer() model.MeshRenderer
	// SetMeshRenderer replaces the mesh renderer. The previous renderer is not released.
	SetMeshRenderer(r model.MeshRenderer)

	AnimationController() animator.AnimationController
	SetAnimationController(c animator.AnimationController)

	// Components returns the attached components in attachment order.
	Components() []Component

	// AddComponent attaches c and sets its owner.
	AddComponent(c Component)

	// RemoveComponent detaches c and clears its owner.
	//
	// Returns:
	//   - bool: false if c is not attached
	RemoveComponent(c Component) bool

	// Light returns the light following the object, or nil.
	Light() light.Light

	// SetLight attaches a light whose position the scene syncs from the object's world
	// position each frame. Pass nil to detach.
	SetLight(l light.Light)

	// PrevModelMatrix returns the world matrix the object had in the previous frame.
	PrevModelMatrix() mgl32.Mat4

	// Update runs the Updatable components, advances the animation controller, then
	// updates the children. Inactive objects skip their subtree.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	Update(dt float32)

	// Render draws the object and its subtree for one pass. Invisible objects skip their
	// subtree. Within a visible object, the mesh is skipped on shadow passes when the
	// object does not cast shadows, and when its layer does not match the camera layer;
	// children are still visited.
	//
	// Parameters:
	//   - frame: the pass state, including the camera
	//   - settings: the pass bitmask and optional material override
	//
	// Returns:
	//   - int: the number of draw calls issued
	Render(frame *material.FrameState, settings RenderSettings) int

	// Copy deep-copies the object and its subtree. Skin joints and animation channel
	// targets pointing into the subtree are retargeted onto the copy.
	//
	// Returns:
	//   - GameObject: the unparented copy
	Copy() GameObject
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	return newGameObject(options...)
}

func newGameObject(options ...GameObjectBuilderOption) *gameObject {
	obj := &gameObject{
		id:             nextID.Add(1),
		alive:          true,
		visible:        true,
		active:         true,
		castShadows:    true,
		receiveShadows: true,
		layer:          LayerDefault,
		customData:     make(map[string]any),
	}
	for _, option := range options {
		option(obj)
	}
	obj.transform = transform.NewTransform(obj, obj.transformOptions...)
	obj.transformOptions = nil
	obj.prevModelMatrix = obj.transform.WorldMatrix()
	for _, c := range obj.components {
		c.SetGameObject(obj)
	}
	for _, c := range obj.pendingChildren {
		if _, err := obj.AddChild(c); err != nil {
			panic(err)
		}
	}
	obj.pendingChildren = nil
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Alive() bool {
	return g.alive
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) SetName(name string) {
	g.name = name
}

func (g *gameObject) Visible() bool {
	return g.visible
}

func (g *gameObject) SetVisible(visible bool) {
	g.visible = visible
}

func (g *gameObject) Active() bool {
	return g.active
}

func (g *gameObject) SetActive(active bool) {
	g.active = active
}

func (g *gameObject) CastShadows() bool {
	return g.castShadows
}

func (g *gameObject) SetCastShadows(cast bool) {
	g.castShadows = cast
}

func (g *gameObject) ReceiveShadows() bool {
	return g.receiveShadows
}

func (g *gameObject) SetReceiveShadows(receive bool) {
	g.receiveShadows = receive
}

func (g *gameObject) Layer() uint32 {
	return g.layer
}

func (g *gameObject) SetLayer(layer uint32) {
	g.layer = layer
}

func (g *gameObject) CustomData() map[string]any {
	return g.customData
}

func (g *gameObject) Transform() transform.Transform {
	return g.transform
}

func (g *gameObject) Parent() GameObject {
	if g.parent == nil {
		return nil
	}
	return g.parent
}

func (g *gameObject) Children() []GameObject {
	out := make([]GameObject, len(g.children))
	for i, c := range g.children {
		out[i] = c
	}
	return out
}

func (g *gameObject) AddChild(child GameObject) (GameObject, error) {
	c := asGameObject(child)
	if c.parent != nil {
		return nil, ErrAlreadyParented
	}
	for n := g; n != nil; n = n.parent {
		if n == c {
			panic("game_object: AddChild would create a cycle")
		}
	}
	c.parent = g
	g.children = append(g.children, c)
	g.transform.Attach(c.transform)
	return child, nil
}

func (g *gameObject) SetParent(p GameObject) {
	if g.parent != nil {
		g.parent.RemoveChild(g)
	}
	if p == nil {
		return
	}
	if _, err := p.AddChild(g); err != nil {
		panic(err)
	}
}

func (g *gameObject) RemoveChild(child GameObject) bool {
	c, ok := child.(*gameObject)
	if !ok {
		return false
	}
	for i, existing := range g.children {
		if existing == c {
			g.children = append(g.children[:i], g.children[i+1:]...)
			c.parent = nil
			g.transform.Detach(c.transform)
			return true
		}
	}
	return false
}

func (g *gameObject) Delete() {
	if g.parent != nil {
		g.parent.RemoveChild(g)
	}
	g.Traverse(func(n GameObject) {
		n.(*gameObject).alive = false
	})
}

func (g *gameObject) Cleanup() {
	g.Traverse(func(n GameObject) {
		o := n.(*gameObject)
		if o.meshRenderer != nil {
			o.meshRenderer.Release()
			o.meshRenderer = nil
		}
	})
}

func (g *gameObject) Traverse(fn func(GameObject)) {
	fn(g)
	for _, c := range g.children {
		c.Traverse(fn)
	}
}

func (g *gameObject) TraverseCondition(fn func(GameObject), predicate func(GameObject) bool) {
	fn(g)
	for _, c := range g.children {
		if predicate(c) {
			c.TraverseCondition(fn, predicate)
		}
	}
}

func (g *gameObject) Find(name string) GameObject {
	if g.name == name {
		return g
	}
	for _, c := range g.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

func (g *gameObject) HierarchyPath(root GameObject) ([]int, bool) {
	r, ok := root.(*gameObject)
	if !ok {
		return nil, false
	}
	var reversed []int
	n := g
	for n != r {
		p := n.parent
		if p == nil {
			return nil, false
		}
		reversed = append(reversed, p.indexOf(n))
		n = p
	}
	path := make([]int, len(reversed))
	for i, idx := range reversed {
		path[len(reversed)-1-i] = idx
	}
	return path, true
}

func (g *gameObject) ChildFromHierarchyPath(path []int) GameObject {
	n := g
	for _, idx := range path {
		if idx < 0 || idx >= len(n.children) {
			return nil
		}
		n = n.children[idx]
	}
	return n
}

func (g *gameObject) indexOf(child *gameObject) int {
	for i, c := range g.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (g *gameObject) MeshRenderer() model.MeshRenderer {
	return g.meshRenderer
}

func (g *gameObject) SetMeshRenderer(r model.MeshRenderer) {
	g.meshRenderer = r
}

func (g *gameObject) AnimationController() animator.AnimationController {
	return g.controller
}

func (g *gameObject) SetAnimationController(c animator.AnimationController) {
	g.controller = c
}

func (g *gameObject) Components() []Component {
	return g.components
}

func (g *gameObject) AddComponent(c Component) {
	g.components = append(g.components, c)
	c.SetGameObject(g)
}

func (g *gameObject) RemoveComponent(c Component) bool {
	for i, existing := range g.components {
		if existing == c {
			g.components = append(g.components[:i], g.components[i+1:]...)
			c.SetGameObject(nil)
			return true
		}
	}
	return false
}

func (g *gameObject) Light() light.Light {
	return g.attachedLight
}

func (g *gameObject) SetLight(l light.Light) {
	g.attachedLight = l
}

func (g *gameObject) PrevModelMatrix() mgl32.Mat4 {
	return g.prevModelMatrix
}

func (g *gameObject) Update(dt float32) {
	if !g.active {
		return
	}
	for _, c := range g.components {
		if u, ok := c.(Updatable); ok {
			u.Update(dt)
		}
	}
	if g.controller != nil {
		g.controller.Update(dt)
	}
	for _, c := range g.children {
		c.Update(dt)
	}
}

func (g *gameObject) Render(frame *material.FrameState, settings RenderSettings) int {
	if frame == nil {
		panic("game_object: Render requires a FrameState")
	}
	if !g.visible {
		return 0
	}

	shadow := settings.Pass.Has(PassShadows)
	world := g.transform.WorldMatrix()
	if !shadow {
		g.rollModelMatrix(frame.FrameID, world)
	}

	draws := 0
	if g.drawsIn(frame, shadow) {
		if g.meshRenderer != nil && !g.culled(frame, shadow, world) {
			draws += g.renderMesh(frame, settings, shadow, world)
		}
		for _, c := range g.components {
			if r, ok := c.(Renderable); ok {
				draws += r.Render(frame, settings)
			}
		}
	}

	for _, c := range g.children {
		draws += c.Render(frame, settings)
	}
	return draws
}

// rollModelMatrix makes last frame's world matrix the previous model matrix once per
// frame, so the opaque and alpha sub-passes of one frame agree on it.
func (g *gameObject) rollModelMatrix(frameID uint64, world mgl32.Mat4) {
	if g.rendered && frameID == g.renderedFrame {
		return
	}
	if g.rendered {
		g.prevModelMatrix = g.lastModelMatrix
	} else {
		g.prevModelMatrix = world
	}
	g.lastModelMatrix = world
	g.renderedFrame = frameID
	g.rendered = true
}

func (g *gameObject) drawsIn(frame *material.FrameState, shadow bool) bool {
	if shadow && !g.castShadows {
		return false
	}
	if frame.Camera != nil && frame.Camera.Layer()&g.layer == 0 {
		return false
	}
	return true
}

func (g *gameObject) culled(frame *material.FrameState, shadow bool, world mgl32.Mat4) bool {
	if shadow || frame.Frustum == nil {
		return false
	}
	bounds := g.meshRenderer.Bounds()
	if !bounds.Valid() {
		return false
	}
	return !frame.Frustum.IntersectsAABB(bounds.Transformed(world))
}

func (g *gameObject) renderMesh(frame *material.FrameState, settings RenderSettings, shadow bool, world mgl32.Mat4) int {
	if settings.MaterialOverride != nil {
		restore := swapPrograms(g.meshRenderer.Materials(), settings.MaterialOverride)
		defer restore()
	}

	prev := g.prevModelMatrix
	if shadow {
		return g.meshRenderer.Render(frame, world, prev, true)
	}
	draws := 0
	if settings.Pass.Has(PassOpaque) {
		draws += g.meshRenderer.Render(frame, world, prev, true)
	}
	if settings.Pass.Has(PassAlpha) {
		draws += g.meshRenderer.Render(frame, world, prev, false)
	}
	return draws
}

func swapPrograms(materials []material.Material, override program.ProgramContainer) func() {
	saved := make([]program.ProgramContainer, len(materials))
	for i, m := range materials {
		saved[i] = m.Program()
		m.SetProgram(override)
	}
	return func() {
		for i, m := range materials {
			m.SetProgram(saved[i])
		}
	}
}

func asGameObject(g GameObject) *gameObject {
	o, ok := g.(*gameObject)
	if !ok {
		panic("game_object: foreign GameObject implementation")
	}
	return o
}
