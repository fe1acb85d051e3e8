package game_object

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"

// Component is behavior attached to a GameObject. What a component does each frame is
// declared by the capability interfaces it implements in addition to this one.
type Component interface {
	// GameObject returns the object the component is attached to.
	//
	// Returns:
	//   - GameObject: the owner, nil when detached
	GameObject() GameObject

	// SetGameObject is called when the component is attached to or detached from an object.
	//
	// Parameters:
	//   - g: the new owner, nil on detach
	SetGameObject(g GameObject)
}

// Updatable components run during GameObject.Update, before the node's animation.
type Updatable interface {
	Update(dt float32)
}

// Renderable components draw during GameObject.Render after the node's mesh.
type Renderable interface {
	// Render draws the component for one pass.
	//
	// Returns:
	//   - int: the number of draw calls issued
	Render(frame *material.FrameState, settings RenderSettings) int
}

// Copyable components provide their own copy for GameObject.Copy.
type Copyable interface {
	Copy() Component
}

// DeepCopyable components without a Copy method opt into a reflective deep copy of
// their exported fields. Components implementing neither interface are shared between
// a GameObject and its copies.
type DeepCopyable interface {
	DeepCopyable() bool
}

// BaseComponent implements Component and is meant to be embedded.
type BaseComponent struct {
	owner GameObject
}

var _ Component = &BaseComponent{}

func (b *BaseComponent) GameObject() GameObject {
	return b.owner
}

func (b *BaseComponent) SetGameObject(g GameObject) {
	b.owner = g
}
