package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/events"
	"github.com/Carmen-Shannon/oxy-gl/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrHalted is returned by Run when the loop stopped because the graphics context was lost.
var ErrHalted = fmt.Errorf("engine: halted: %w", gpu.ErrContextLost)

// engine implements the Engine interface.
// Runs the whole frame on the thread owning the graphics context.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	queue    events.Queue
	watcher  shader.Watcher
	logger   *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	fixedStep   time.Duration
	maxSubSteps int
	accumulator time.Duration

	now       func() time.Time
	lastFrame time.Time

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	settings       game_object.RenderSettings

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	halted      bool
	quit        bool
	unsubscribe []func()
}

// Engine is the main entry point for the engine.
// One Frame polls the window, drains the event queue, advances physics in fixed steps,
// updates the active scenes, renders the lowest active scene with a camera, and swaps.
// Every method must be called from the thread that created the window.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer that draws the scenes.
	Renderer() renderer.Renderer

	// Queue returns the event queue shared by the window, the renderer and the watcher.
	Queue() events.Queue

	// Watcher returns the shader file watcher, nil when hot reload is off.
	Watcher() shader.Watcher

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the fixed physics step rate in steps per second.
	// The tick callback and the scenes' FixedUpdate run at this rate.
	//
	// Parameters:
	//   - fps: target steps per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetMaxSubSteps bounds the fixed steps of one frame. Time beyond the bound is
	// dropped so a stall does not snowball.
	//
	// Parameters:
	//   - n: the step limit (defaults to 5 if <= 0)
	SetMaxSubSteps(n int)

	// SetTickCallback registers the function called each fixed step, before the scenes step.
	// Use this for game logic and input processing.
	//
	// Parameters:
	//   - callback: function receiving the fixed step in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each frame after rendering and
	// before the swap.
	//
	// Parameters:
	//   - callback: function receiving the frame time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// SetRenderSettings sets the pass selection and material override of every frame.
	SetRenderSettings(settings game_object.RenderSettings)

	// AddScene registers a scene at the given key.
	// Active scenes are updated in ascending key order; the lowest active scene with a
	// camera is drawn.
	//
	// Parameters:
	//   - key: the order key (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes by key.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Frame runs one iteration of the loop.
	//
	// Returns:
	//   - bool: false once the loop should stop
	Frame() bool

	// Run calls Frame until the window closes, Quit is called or the context is lost.
	//
	// Returns:
	//   - error: ErrHalted after a context loss, nil otherwise
	Run() error

	// Halted reports whether a context loss stopped the loop.
	Halted() bool

	// Quit asks the loop to stop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close stops the watcher, releases the renderer and destroys the window.
	//
	// Returns:
	//   - error: the joined close errors
	Close() error
}

var _ Engine = &engine{}

// New creates the window, the OpenGL device, the renderer and, with hot reload on,
// the shader watcher from a configuration.
//
// Parameters:
//   - cfg: the engine configuration
//   - options: functional options applied after the configuration
//
// Returns:
//   - Engine: the engine
//   - error: error if the window, the GL bindings or the watcher cannot be created
func New(cfg config.EngineConfig, options ...EngineBuilderOption) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	queue := events.NewQueue()
	win, err := window.NewWindow(queue, window.WithConfig(cfg.Window))
	if err != nil {
		return nil, err
	}
	device, version, err := gpu.NewGLDevice()
	if err != nil {
		win.Close()
		return nil, err
	}
	major, minor := win.ContextVersion()
	slog.Info("engine: graphics context ready", "version", version, "context", fmt.Sprintf("%d.%d", major, minor))

	r := renderer.NewRenderer(device, queue,
		renderer.WithSize(win.Width(), win.Height()),
		renderer.WithClearColor(mgl32.Vec4(cfg.Renderer.ClearColor)),
		renderer.WithShadowMapResolution(cfg.Renderer.ShadowMapResolution),
		renderer.WithShadowBias(cfg.Renderer.ShadowBias),
		renderer.WithClock(func() float32 { return float32(win.Time()) }),
	)

	base := []EngineBuilderOption{WithLoop(cfg.Loop)}
	if cfg.Shaders.HotReload {
		w, err := shader.NewWatcher(queue)
		if err != nil {
			r.Release()
			win.Close()
			return nil, err
		}
		base = append(base, WithWatcher(w))
	}
	return NewEngine(win, r, queue, append(base, options...)...), nil
}

// NewEngine creates an Engine around an existing window and renderer.
// The queue must be the one the window and renderer publish to.
//
// Parameters:
//   - win: the window
//   - r: the renderer
//   - queue: the shared event queue
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(win window.Window, r renderer.Renderer, queue events.Queue, options ...EngineBuilderOption) Engine {
	if win == nil || r == nil || queue == nil {
		panic("engine: NewEngine requires a window, a renderer and an event queue")
	}
	e := &engine{
		window:      win,
		renderer:    r,
		queue:       queue,
		logger:      slog.Default(),
		scenes:      make(map[int]scene.Scene),
		profiler:    profiler.NewProfiler(),
		fixedStep:   time.Second / 60,
		maxSubSteps: 5,
		now:         time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	e.unsubscribe = append(e.unsubscribe,
		queue.Subscribe(events.KindResize, func(ev events.Event) {
			size, ok := ev.Payload.(events.Resize)
			if !ok {
				return
			}
			e.renderer.Resize(size.Width, size.Height)
			for _, s := range e.scenes {
				s.Resize(size.Width, size.Height)
			}
		}),
		queue.Subscribe(events.KindClose, func(events.Event) {
			e.Quit()
		}),
		queue.Subscribe(events.KindContextLost, func(events.Event) {
			e.halt()
		}),
		queue.Subscribe(events.KindError, func(ev events.Event) {
			if p, ok := ev.Payload.(events.Error); ok {
				e.logger.Error("engine: subsystem error", "source", p.Source, "err", p.Err)
			}
		}),
		queue.Subscribe(events.KindFallbackVersion, func(ev events.Event) {
			if p, ok := ev.Payload.(events.FallbackVersion); ok {
				e.logger.Warn("engine: running on a fallback context", "requested", p.Requested, "actual", p.Actual)
			}
		}),
	)

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Queue() events.Queue {
	return e.queue
}

func (e *engine) Watcher() shader.Watcher {
	return e.watcher
}

func (e *engine) halt() {
	if !e.halted {
		e.logger.Error("engine: graphics context lost, halting")
	}
	e.halted = true
}

func (e *engine) Frame() bool {
	if e.halted || e.quit {
		return false
	}
	start := e.now()
	var dt time.Duration
	if !e.lastFrame.IsZero() {
		dt = start.Sub(e.lastFrame)
	}
	e.lastFrame = start

	e.window.PollEvents()
	e.queue.Drain(nil)
	if e.halted {
		return false
	}

	active := e.activeScenes()
	steps := e.fixedUpdate(dt, active)

	frameDt := float32(dt.Seconds())
	for _, s := range active {
		s.Update(frameDt)
	}

	stats, err := e.render(active)
	if errors.Is(err, gpu.ErrContextLost) {
		e.halt()
		return false
	}
	if err != nil {
		e.logger.Error("engine: render failed", "err", err)
	}

	if e.renderCallback != nil {
		e.renderCallback(frameDt)
	}
	e.window.SwapBuffers()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(profiler.Sample{
			DrawCalls:           stats.DrawCalls,
			ShadowDrawCalls:     stats.ShadowDrawCalls,
			SkippedStateChanges: stats.SkippedStateChanges,
			PhysicsSteps:        steps,
		})
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}

	return !e.quit && !e.window.ShouldClose()
}

// fixedUpdate consumes the accumulated time in fixed steps and returns how many ran.
func (e *engine) fixedUpdate(dt time.Duration, active []scene.Scene) int {
	e.accumulator += dt
	step := float32(e.fixedStep.Seconds())
	steps := 0
	for e.accumulator >= e.fixedStep {
		if steps == e.maxSubSteps {
			// keep only the partial step; the rest of the backlog is dropped, not replayed
			e.logger.Debug("engine: dropping physics backlog", "backlog", e.accumulator)
			e.accumulator %= e.fixedStep
			break
		}
		if e.tickCallback != nil {
			e.tickCallback(step)
		}
		for _, s := range active {
			s.FixedUpdate(step)
		}
		// every step sees the same dt, slow frames only change how many run
		e.accumulator -= e.fixedStep
		steps++
	}
	return steps
}

func (e *engine) render(active []scene.Scene) (renderer.FrameStats, error) {
	for _, s := range active {
		if s.Camera() == nil {
			continue
		}
		return s.Render(e.renderer, e.settings)
	}
	return renderer.FrameStats{}, nil
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) Run() error {
	for e.Frame() {
	}
	if e.halted {
		return ErrHalted
	}
	return nil
}

func (e *engine) Halted() bool {
	return e.halted
}

// Quit asks the loop to stop after the current frame.
func (e *engine) Quit() {
	if e.quit {
		return
	}
	e.quit = true
	e.window.SetShouldClose(true)
}

func (e *engine) Close() error {
	for _, unsubscribe := range e.unsubscribe {
		unsubscribe()
	}
	e.unsubscribe = nil

	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
		e.watcher = nil
	}
	e.renderer.Release()
	errs = append(errs, e.window.Close())
	return errors.Join(errs...)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.fixedStep = tickDuration(fps)
}

func (e *engine) SetMaxSubSteps(n int) {
	if n <= 0 {
		n = 5
	}
	e.maxSubSteps = n
}

// SetTickCallback registers the function called each fixed step.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameLimit(fps)
}

func (e *engine) SetRenderSettings(settings game_object.RenderSettings) {
	e.settings = settings
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
	s.Resize(e.window.Width(), e.window.Height())
}

func (e *engine) RemoveScene(key int) {
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameLimit(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
