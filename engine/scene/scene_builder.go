package scene

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/physics"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for updating and rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects under the root. Objects that already have a parent
// are skipped.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if _, err := s.root.AddChild(obj); err != nil {
				continue
			}
			obj.Traverse(func(o game_object.GameObject) {
				s.registry[o.ID()] = o
			})
		}
		s.syncLights()
	}
}

// WithCamera sets the main camera.
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.mainCamera = cam
	}
}

// WithLights registers free lights such as the sun.
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			s.env.Add(l)
		}
	}
}

// WithAmbient sets the ambient color of the light environment.
func WithAmbient(c mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.env.SetAmbient(c)
	}
}

// WithPhysics replaces the default collision world, for instance with one configured
// for a deeper octree.
//
// Parameters:
//   - engine: the physics engine
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPhysics(engine physics.PhysicsEngine) SceneBuilderOption {
	return func(s *scene) {
		s.physics = engine
	}
}
