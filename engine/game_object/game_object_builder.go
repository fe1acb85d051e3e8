package game_object

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the name of the GameObject.
//
// Parameters:
//   - name: the name used by Find
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithVisible sets whether the GameObject and its subtree are rendered.
//
// Parameters:
//   - visible: false to skip the subtree when rendering
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Visible state
func WithVisible(visible bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.visible = visible
	}
}

// WithActive sets whether the GameObject and its subtree are updated.
//
// Parameters:
//   - active: false to skip the subtree when updating
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Active state
func WithActive(active bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.active = active
	}
}

// WithShadows sets the shadow flags of the GameObject.
//
// Parameters:
//   - cast: whether the mesh is drawn into the shadow map
//   - receive: whether the mesh samples the shadow map
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the shadow flags
func WithShadows(cast, receive bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.castShadows = cast
		obj.receiveShadows = receive
	}
}

// WithLayer sets the layer bitmask of the GameObject.
//
// Parameters:
//   - layer: the bitmask matched against the camera layer
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the layer
func WithLayer(layer uint32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.layer = layer
	}
}

// WithCustomData sets one custom data entry.
//
// Parameters:
//   - key: the entry key
//   - value: the entry value
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the entry
func WithCustomData(key string, value any) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.customData[key] = value
	}
}

// WithPosition sets the initial local position.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return WithTransform(transform.WithPosition(p))
}

// WithRotation sets the initial local rotation.
//
// Parameters:
//   - q: the rotation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(q mgl32.Quat) GameObjectBuilderOption {
	return WithTransform(transform.WithRotation(q))
}

// WithScale sets the initial local scale.
//
// Parameters:
//   - s: the scale
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return WithTransform(transform.WithScale(s))
}

// WithTransform passes options through to the GameObject's Transform.
//
// Parameters:
//   - options: the transform options, applied in order
//
// Returns:
//   - GameObjectBuilderOption: functional option to configure the transform
func WithTransform(options ...transform.TransformBuilderOption) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transformOptions = append(obj.transformOptions, options...)
	}
}

// WithMeshRenderer sets the mesh renderer of the GameObject.
//
// Parameters:
//   - r: the renderer; the object releases it in Cleanup
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the mesh renderer
func WithMeshRenderer(r model.MeshRenderer) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.meshRenderer = r
	}
}

// WithAnimationController sets the animation controller of the GameObject.
//
// Parameters:
//   - c: the controller
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the controller
func WithAnimationController(c animator.AnimationController) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.controller = c
	}
}

// WithComponents attaches components in order.
//
// Parameters:
//   - components: the components to attach
//
// Returns:
//   - GameObjectBuilderOption: functional option to attach the components
func WithComponents(components ...Component) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.components = append(obj.components, components...)
	}
}

// WithLight attaches a Light to the GameObject. When added to a scene, the
// scene will automatically sync the light's position from the object's
// transform each frame.
//
// Parameters:
//   - l: the Light to attach
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the attached light
func WithLight(l light.Light) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.attachedLight = l
	}
}

// WithChildren attaches children in order. Children that already have a parent panic.
//
// Parameters:
//   - children: the objects to attach
//
// Returns:
//   - GameObjectBuilderOption: functional option to attach the children
func WithChildren(children ...GameObject) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.pendingChildren = append(obj.pendingChildren, children...)
	}
}
