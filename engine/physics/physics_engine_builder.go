package physics

// PhysicsEngineBuilderOption is a functional option applied to a physics engine during construction via NewPhysicsEngine.
type PhysicsEngineBuilderOption func(*physicsEngine)

// WithMaxDepth sets the number of levels each mesh octree may grow to.
//
// Parameters:
//   - depth: levels including the root, at least 1
//
// Returns:
//   - PhysicsEngineBuilderOption: a function that applies the depth option to an engine
func WithMaxDepth(depth int) PhysicsEngineBuilderOption {
	return func(e *physicsEngine) {
		e.maxDepth = max(depth, 1)
	}
}

// WithPadding sets how far each octree root box extends past its mesh bounds.
//
// Parameters:
//   - padding: the margin in world units
//
// Returns:
//   - PhysicsEngineBuilderOption: a function that applies the padding option to an engine
func WithPadding(padding float32) PhysicsEngineBuilderOption {
	return func(e *physicsEngine) {
		e.padding = max(padding, 0)
	}
}

// WithBuildWorkers sets how many workers Build uses.
//
// Parameters:
//   - workers: the pool size, at least 1
//
// Returns:
//   - PhysicsEngineBuilderOption: a function that applies the worker option to an engine
func WithBuildWorkers(workers int) PhysicsEngineBuilderOption {
	return func(e *physicsEngine) {
		e.workers = max(workers, 1)
	}
}
