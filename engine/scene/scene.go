package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/physics"
	"github.com/Carmen-Shannon/oxy-gl/engine/player"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoCamera is returned by Render when the scene has no main camera.
var ErrNoCamera = errors.New("scene: no main camera")

// Scene owns one scene graph together with what simulates and lights it: the light
// environment, the static collision world and the players walking in it. Objects are
// registered by ID when added under the root; lights attached to objects are kept in
// the environment and follow their object's world position.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently updated and rendered.
	Active() bool

	// SetActive sets whether the scene is updated and rendered.
	SetActive(active bool)

	// Root returns the scene graph root. It is never nil.
	Root() game_object.GameObject

	// Add attaches obj under the root and registers its subtree.
	//
	// Parameters:
	//   - obj: an object without a parent
	//
	// Returns:
	//   - uint64: the object ID
	//   - error: game_object.ErrAlreadyParented if obj has a parent
	Add(obj game_object.GameObject) (uint64, error)

	// Get returns a registered object by ID, or nil.
	Get(id uint64) game_object.GameObject

	// Find returns the first object named name below the root, or nil.
	Find(name string) game_object.GameObject

	// Remove detaches a registered object and unregisters its subtree and lights. GPU
	// resources are not released.
	//
	// Returns:
	//   - bool: false if id is not registered
	Remove(id uint64) bool

	// Clear removes every object and releases their mesh renderers.
	Clear()

	// Count returns the number of registered objects.
	Count() int

	// Lights returns the light environment the renderer packs each frame.
	Lights() *light.Environment

	// AddLight registers a light not attached to any object, such as the sun.
	AddLight(l light.Light)

	// RemoveLight unregisters a free light.
	RemoveLight(l light.Light) bool

	// Camera returns the main camera, nil before one is set.
	Camera() camera.Camera

	// SetCamera sets the main camera.
	SetCamera(cam camera.Camera)

	// AddCamera appends a secondary camera drawn after the main one.
	AddCamera(cam camera.Camera)

	// RemoveCamera removes a secondary camera.
	RemoveCamera(cam camera.Camera) bool

	// Cameras returns the secondary cameras in draw order.
	Cameras() []camera.Camera

	// Resize updates the aspect ratio of every camera.
	//
	// Parameters:
	//   - width: the framebuffer width in pixels
	//   - height: the framebuffer height in pixels
	Resize(width, height int)

	// Physics returns the collision world of the scene.
	Physics() physics.PhysicsEngine

	// AddCollider adds the meshes of obj and its subtree to the collision world, baked
	// with their current world matrices. An instanced renderer adds each mesh once per
	// live instance. Build must run before they are queried.
	//
	// Parameters:
	//   - obj: the object whose mesh renderers provide the triangles
	//
	// Returns:
	//   - []int: the physics mesh ids, in traversal order
	AddCollider(obj game_object.GameObject) []int

	// Build indexes every collider added since the last Build.
	//
	// Parameters:
	//   - ctx: cancels indexing that has not started yet
	//
	// Returns:
	//   - error: ctx.Err() when cancelled
	Build(ctx context.Context) error

	// AddPlayer registers a player stepped by FixedUpdate.
	AddPlayer(p player.Player)

	// RemovePlayer unregisters a player.
	RemovePlayer(p player.Player) bool

	// Players returns the registered players in registration order.
	Players() []player.Player

	// FixedUpdate advances every player against the collision world by one fixed step.
	//
	// Parameters:
	//   - dt: the fixed step in seconds
	FixedUpdate(dt float32)

	// Update advances the scene graph by dt, syncs object lights from their world
	// positions and recomputes the camera matrices. Inactive scenes do nothing.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	Update(dt float32)

	// Time returns the seconds the scene has been updated for.
	Time() float32

	// Render draws the scene through r with the main and secondary cameras.
	//
	// Parameters:
	//   - r: the renderer
	//   - settings: pass selection and material override
	//
	// Returns:
	//   - renderer.FrameStats: what the frame did
	//   - error: ErrNoCamera without a main camera, or the renderer error
	Render(r renderer.Renderer, settings game_object.RenderSettings) (renderer.FrameStats, error)
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.RWMutex

	name   string
	active bool

	root     game_object.GameObject
	registry map[uint64]game_object.GameObject

	env          *light.Environment
	objectLights map[light.Light]bool

	mainCamera camera.Camera
	cameras    []camera.Camera

	physics physics.PhysicsEngine
	players []player.Player

	time float32
}

var _ Scene = &scene{}

// NewScene creates an active scene with an empty root.
//
// Parameters:
//   - name: the scene identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:         name,
		active:       true,
		root:         game_object.NewGameObject(game_object.WithName(name)),
		registry:     make(map[uint64]game_object.GameObject),
		env:          light.NewEnvironment(),
		objectLights: make(map[light.Light]bool),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.physics == nil {
		s.physics = physics.NewPhysicsEngine()
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Root() game_object.GameObject {
	return s.root
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.root.AddChild(obj); err != nil {
		return 0, fmt.Errorf("scene: add %q: %w", obj.Name(), err)
	}
	obj.Traverse(func(o game_object.GameObject) {
		s.registry[o.ID()] = o
	})
	s.syncLights()
	return obj.ID(), nil
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Find(name string) game_object.GameObject {
	for _, child := range s.root.Children() {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.registry[id]
	if !ok {
		return false
	}
	s.remove(obj)
	return true
}

// remove detaches obj and drops its subtree from the registry and the environment.
func (s *scene) remove(obj game_object.GameObject) {
	obj.SetParent(nil)
	obj.Traverse(func(o game_object.GameObject) {
		delete(s.registry, o.ID())
		if l := o.Light(); l != nil && s.objectLights[l] {
			delete(s.objectLights, l)
			s.env.Remove(l)
		}
	})
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, child := range s.root.Children() {
		s.remove(child)
		child.Cleanup()
	}
	s.registry = make(map[uint64]game_object.GameObject)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Lights() *light.Environment {
	return s.env
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Add(l)
}

func (s *scene) RemoveLight(l light.Light) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objectLights, l)
	return s.env.Remove(l)
}

// syncLights moves object lights to their object's world position, registers lights
// attached since the last sync and drops the ones detached. The caller holds mu.
func (s *scene) syncLights() {
	seen := make(map[light.Light]bool, len(s.objectLights))
	s.root.Traverse(func(o game_object.GameObject) {
		l := o.Light()
		if l == nil {
			return
		}
		seen[l] = true
		l.SetPosition(o.Transform().WorldPosition())
		if !s.objectLights[l] {
			s.objectLights[l] = true
			s.env.Add(l)
		}
	})
	for l := range s.objectLights {
		if !seen[l] {
			delete(s.objectLights, l)
			s.env.Remove(l)
		}
	}
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mainCamera
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mainCamera = cam
}

func (s *scene) AddCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras = append(s.cameras, cam)
}

func (s *scene) RemoveCamera(cam camera.Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return true
		}
	}
	return false
}

func (s *scene) Cameras() []camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]camera.Camera(nil), s.cameras...)
}

func (s *scene) Resize(width, height int) {
	if height <= 0 {
		return
	}
	aspect := float32(width) / float32(height)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mainCamera != nil {
		s.mainCamera.SetAspect(aspect)
	}
	for _, c := range s.cameras {
		c.SetAspect(aspect)
	}
}

func (s *scene) Physics() physics.PhysicsEngine {
	return s.physics
}

func (s *scene) AddCollider(obj game_object.GameObject) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	obj.Traverse(func(o game_object.GameObject) {
		mr := o.MeshRenderer()
		if mr == nil {
			return
		}
		world := o.Transform().WorldMatrix()
		placements := []mgl32.Mat4{world}
		if ir, ok := mr.(model.MeshInstanceRenderer); ok {
			// instance matrices apply before the node's world matrix, as in the draw
			placements = placements[:0]
			for _, inst := range ir.InstanceMatrices() {
				placements = append(placements, world.Mul4(inst))
			}
		}
		for _, m := range mr.Meshes() {
			if len(m.Positions()) == 0 {
				continue
			}
			for _, placement := range placements {
				ids = append(ids, s.physics.AddMesh(m.Positions(), m.Indices(), placement))
			}
		}
	})
	return ids
}

func (s *scene) Build(ctx context.Context) error {
	return s.physics.Build(ctx)
}

func (s *scene) AddPlayer(p player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, p)
	s.physics.AddBody(p)
}

func (s *scene) RemovePlayer(p player.Player) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.players {
		if existing == p {
			s.players = append(s.players[:i], s.players[i+1:]...)
			s.physics.RemoveBody(p)
			return true
		}
	}
	return false
}

func (s *scene) Players() []player.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]player.Player(nil), s.players...)
}

func (s *scene) FixedUpdate(dt float32) {
	if !s.Active() {
		return
	}
	s.physics.Step(dt)
}

func (s *scene) Update(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.time += dt
	s.root.Update(dt)
	s.syncLights()
	if s.mainCamera != nil {
		s.mainCamera.Update()
	}
	for _, c := range s.cameras {
		c.Update()
	}
}

func (s *scene) Time() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

func (s *scene) Render(r renderer.Renderer, settings game_object.RenderSettings) (renderer.FrameStats, error) {
	s.mu.RLock()
	main, secondary := s.mainCamera, append([]camera.Camera(nil), s.cameras...)
	s.mu.RUnlock()
	if main == nil {
		return renderer.FrameStats{}, ErrNoCamera
	}
	r.SetScene(s.root, s.env)
	return r.Render(main, secondary, settings)
}
