package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/events"
	"github.com/Carmen-Shannon/oxy-gl/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gl/engine/light"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameStats summarizes one Render call.
type FrameStats struct {
	FrameID uint64

	// DrawCalls counts draws of the opaque and alpha passes of every camera.
	DrawCalls int

	// ShadowDrawCalls counts draws into the shadow map.
	ShadowDrawCalls int

	// SkippedStateChanges counts program, vertex array and fixed-function changes the
	// state cache dropped as redundant.
	SkippedStateChanges int
}

// registeredProgram pairs a program with the shader files it is built from.
type registeredProgram struct {
	program program.ProgramContainer
	shaders []shader.Shader
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	device *gpu.StateCache
	queue  events.Queue

	root   game_object.GameObject
	lights *light.Environment

	programs []registeredProgram
	shared   sharedPerScene

	shadow           shadowTarget
	shadowProgram    program.ProgramContainer
	shadowHalfExtent float32
	shadowNear       float32
	shadowFar        float32
	shadowBias       float32
	shadowMatrix     mgl32.Mat4
	hasShadowMatrix  bool

	width, height    int32
	downscale        int32
	downscaledTarget gpu.Framebuffer
	clearColor       mgl32.Vec4

	clock    func() float32
	frameID  uint64
	prevView map[material.Camera]mgl32.Mat4
	uniforms light.Uniforms

	unsubscribe func()
	lost        bool
}

// Renderer draws a scene graph through the GPU binding layer. One Render call is one
// frame: the shadow map first, then for the main camera and every secondary camera an
// opaque sub-pass followed by a blended alpha sub-pass.
//
// All methods must be called from the thread owning the graphics context.
type Renderer interface {
	// Device returns the state-caching device every program, mesh and texture of the
	// scene must be created with. Calls that bypass it are not tracked by the cache.
	//
	// Returns:
	//   - *gpu.StateCache: the renderer's device
	Device() *gpu.StateCache

	// SetScene selects what Render draws.
	//
	// Parameters:
	//   - root: the scene graph root
	//   - lights: the light environment, nil for an unlit scene
	SetScene(root game_object.GameObject, lights *light.Environment)

	// RegisterProgram makes a program known to the renderer. Its shaders are relinked
	// when a file they depend on changes, and the program's sharedPerScene block layout
	// is used for the per-scene uniform buffer. Programs linked from in-memory sources
	// can be registered without shaders.
	//
	// Parameters:
	//   - p: the program
	//   - shaders: the shaders the program was linked from, in link order
	RegisterProgram(p program.ProgramContainer, shaders ...shader.Shader)

	// Relink reloads and relinks every registered program depending on path. Failures
	// keep the previous program and are published as error events.
	//
	// Parameters:
	//   - path: the changed file
	//
	// Returns:
	//   - int: the number of programs relinked successfully
	Relink(path string) int

	// Resize sets the size of the default framebuffer in pixels.
	//
	// Parameters:
	//   - width: the new width
	//   - height: the new height
	Resize(width, height int)

	// Render draws one frame.
	//
	// Parameters:
	//   - main: the primary camera; its pass clears color and depth
	//   - secondary: cameras drawn after main over the same target, each after a depth clear
	//   - settings: pass selection and material override; a zero Pass means PassScene
	//
	// Returns:
	//   - FrameStats: what the frame did
	//   - error: gpu.ErrContextLost once the context is gone
	Render(main camera.Camera, secondary []camera.Camera, settings game_object.RenderSettings) (FrameStats, error)

	// ShadowMap returns the shadow depth texture, nil until a shadow pass ran.
	//
	// Returns:
	//   - *material.Texture: the depth texture or nil
	ShadowMap() *material.Texture

	// FrameID returns the id of the last rendered frame, zero before the first.
	//
	// Returns:
	//   - uint64: the frame id
	FrameID() uint64

	// Release frees the renderer's GPU objects and releases registered programs.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer on device. A device that is not already a
// *gpu.StateCache is wrapped in one.
//
// Parameters:
//   - device: the graphics device
//   - queue: the event queue for lifecycle events and shader changes, may be nil
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(device gpu.Device, queue events.Queue, options ...RendererBuilderOption) Renderer {
	cache, ok := device.(*gpu.StateCache)
	if !ok {
		cache = gpu.NewStateCache(device)
	}

	start := time.Now()
	r := &renderer{
		device:           cache,
		queue:            queue,
		shadow:           shadowTarget{resolution: light.ShadowMapResolution},
		shadowHalfExtent: light.DefaultShadowHalfExtent,
		shadowNear:       light.DefaultShadowNear,
		shadowFar:        light.DefaultShadowFar,
		shadowBias:       light.DefaultShadowBias,
		width:            1,
		height:           1,
		downscale:        2,
		clearColor:       mgl32.Vec4{0, 0, 0, 1},
		clock:            func() float32 { return float32(time.Since(start).Seconds()) },
		prevView:         make(map[material.Camera]mgl32.Mat4),
	}
	r.shared.device = cache

	for _, opt := range options {
		opt(r)
	}

	if queue != nil {
		r.unsubscribe = queue.Subscribe(events.KindShaderChanged, func(ev events.Event) {
			if sc, ok := ev.Payload.(events.ShaderChanged); ok {
				r.Relink(sc.Path)
			}
		})
	}
	return r
}

func (r *renderer) Device() *gpu.StateCache {
	return r.device
}

func (r *renderer) SetScene(root game_object.GameObject, lights *light.Environment) {
	r.root = root
	r.lights = lights
}

func (r *renderer) RegisterProgram(p program.ProgramContainer, shaders ...shader.Shader) {
	r.programs = append(r.programs, registeredProgram{program: p, shaders: shaders})
	r.shared.adopt(p)
}

func (r *renderer) Relink(path string) int {
	relinked := 0
	for _, rp := range r.programs {
		affected := false
		for _, s := range rp.shaders {
			if s.DependsOn(path) {
				affected = true
				break
			}
		}
		if !affected {
			continue
		}

		if err := r.relink(rp); err != nil {
			slog.Warn("renderer: relink failed, keeping previous program", "program", rp.program.Name(), "error", err)
			r.publish(events.Event{Kind: events.KindError, Payload: events.Error{Source: "renderer", Err: err}})
			continue
		}
		r.shared.relinked(rp.program)
		relinked++
	}
	return relinked
}

func (r *renderer) relink(rp registeredProgram) error {
	sources := make([]program.Source, 0, len(rp.shaders))
	for _, s := range rp.shaders {
		if err := s.Reload(); err != nil {
			return fmt.Errorf("reload %s: %w", s.Key(), err)
		}
		sources = append(sources, s.ProgramSource())
	}
	return rp.program.Relink(sources...)
}

func (r *renderer) Resize(width, height int) {
	r.width = int32(max(width, 1))
	r.height = int32(max(height, 1))
}

func (r *renderer) ShadowMap() *material.Texture {
	return r.shadow.depth
}

func (r *renderer) FrameID() uint64 {
	return r.frameID
}

func (r *renderer) Render(main camera.Camera, secondary []camera.Camera, settings game_object.RenderSettings) (FrameStats, error) {
	if r.lost {
		return FrameStats{FrameID: r.frameID}, gpu.ErrContextLost
	}
	if main == nil {
		panic("renderer: Render requires a camera")
	}

	r.frameID++
	stats := FrameStats{FrameID: r.frameID}
	skipped := r.device.Skipped
	now := r.clock()

	pass := settings.Pass
	if pass&(game_object.PassShadows|game_object.PassOpaque|game_object.PassAlpha) == 0 {
		pass |= game_object.PassScene
	}

	var lights *light.Uniforms
	if r.lights != nil {
		r.lights.Pack(&r.uniforms)
		lights = &r.uniforms
	}

	cameras := append([]camera.Camera{main}, secondary...)
	for _, c := range cameras {
		c.Update()
	}

	base := material.FrameState{
		Time:    now,
		FrameID: r.frameID,
		Lights:  lights,
	}

	// the shadow map and its framebuffer are allocated once and redrawn in place
	if r.root != nil && pass.Has(game_object.PassShadows) {
		stats.ShadowDrawCalls = r.renderShadows(main, base)
	}
	if r.hasShadowMatrix && r.shadow.usable() {
		// a frame without a shadow pass samples the last shadow map drawn
		base.ShadowMatrix = r.shadowMatrix
		base.HasShadowMap = true
	}

	down := pass & game_object.PassDownscaled
	target, w, h := gpu.Framebuffer(0), r.width, r.height
	if pass.Has(game_object.PassDownscaled) {
		target = r.downscaledTarget
		w, h = max(w/r.downscale, 1), max(h/r.downscale, 1)
	}
	r.device.BindFramebuffer(target)
	r.device.Viewport(0, 0, w, h)
	if base.HasShadowMap {
		r.shadow.depth.Bind(material.UnitShadowMap)
	}

	// only the main camera clears color; secondary cameras draw over it with a fresh depth buffer
	next := make(map[material.Camera]mgl32.Mat4, len(cameras))
	for i, c := range cameras {
		cc := r.clearColor
		r.device.SetDepthWrite(true)
		r.device.Clear(cc[0], cc[1], cc[2], cc[3], i == 0, true)
		if r.root == nil {
			next[c] = c.ViewMatrix()
			continue
		}

		frame := base
		frame.Camera = c
		frame.Frustum = c.Frustum()
		frame.PrevViewMatrix = c.ViewMatrix()
		if prev, ok := r.prevView[c]; ok {
			frame.PrevViewMatrix = prev
		}
		r.shared.write(c, r.shadowBias, now)
		frame.SharedPerScene = r.shared.ready()

		if pass.Has(game_object.PassOpaque) {
			r.device.SetBlend(false)
			r.device.SetDepthWrite(true)
			stats.DrawCalls += r.root.Render(&frame, game_object.RenderSettings{
				Pass:             game_object.PassOpaque | down,
				MaterialOverride: settings.MaterialOverride,
			})
		}
		if pass.Has(game_object.PassAlpha) {
			r.device.SetBlend(true)
			r.device.SetDepthWrite(false)
			stats.DrawCalls += r.root.Render(&frame, game_object.RenderSettings{
				Pass:             game_object.PassAlpha | down,
				MaterialOverride: settings.MaterialOverride,
			})
			r.device.SetDepthWrite(true)
			r.device.SetBlend(false)
		}
		next[c] = c.ViewMatrix()
	}
	r.prevView = next

	stats.SkippedStateChanges = r.device.Skipped - skipped
	return stats, r.checkError()
}

// renderShadows draws shadow casters into the shadow map from the sun, centered on
// the main camera. It is skipped without a shadow program or a shadow-casting sun.
func (r *renderer) renderShadows(main camera.Camera, base material.FrameState) int {
	if r.shadowProgram == nil || r.lights == nil {
		return 0
	}
	sun := r.lights.Sun()
	if sun == nil || !sun.CastsShadows() {
		return 0
	}
	if err := r.shadow.ensure(r.device); err != nil {
		slog.Warn("renderer: shadows disabled", "error", err)
		r.publish(events.Event{Kind: events.KindError, Payload: events.Error{Source: "renderer", Err: err}})
		return 0
	}
	if !r.shadow.usable() {
		return 0
	}

	lc := newLightCamera(sun, main.Position(), r.shadowHalfExtent, r.shadowNear, r.shadowFar)

	r.device.BindFramebuffer(r.shadow.framebuffer)
	r.device.Viewport(0, 0, r.shadow.resolution, r.shadow.resolution)
	r.device.SetBlend(false)
	r.device.SetDepthWrite(true)
	r.device.Clear(0, 0, 0, 0, false, true)

	frame := base
	frame.Camera = lc
	frame.PrevViewMatrix = lc.view
	frame.ShadowPass = true
	r.shared.write(lc, r.shadowBias, base.Time)
	frame.SharedPerScene = r.shared.ready()

	draws := r.root.Render(&frame, game_object.RenderSettings{
		Pass:             game_object.PassShadows,
		MaterialOverride: r.shadowProgram,
	})

	r.shadowMatrix = lc.proj.Mul4(lc.view)
	r.hasShadowMatrix = true
	return draws
}

// checkError publishes driver errors. Context loss is published once and makes every
// later Render return immediately.
func (r *renderer) checkError() error {
	err := r.device.CheckError()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gpu.ErrContextLost):
		r.lost = true
		slog.Error("renderer: graphics context lost")
		r.publish(events.Event{Kind: events.KindContextLost})
		return err
	default:
		r.publish(events.Event{Kind: events.KindError, Payload: events.Error{Source: "renderer", Err: err}})
		return nil
	}
}

func (r *renderer) publish(ev events.Event) {
	if r.queue != nil {
		r.queue.Push(ev)
	}
}

func (r *renderer) Release() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.shadow.release(r.device)
	r.shared.release()
	for _, rp := range r.programs {
		rp.program.Release()
	}
	r.programs = nil
}
