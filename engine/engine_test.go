package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/events"
	"github.com/Carmen-Shannon/oxy-gl/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	polls, swaps int
	shouldClose  bool
	closed       bool
	onPoll       func()
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll()
	}
}

func (w *fakeWindow) SwapBuffers() { w.swaps++ }
func (w *fakeWindow) ShouldClose() bool { return w.shouldClose }
func (w *fakeWindow) SetShouldClose(close bool) { w.shouldClose = close }
func (w *fakeWindow) SetCursorCaptured(bool) {}
func (w *fakeWindow) ContextVersion() (int, int) { return 4, 1 }
func (w *fakeWindow) Time() float64 { return 0 }
func (w *fakeWindow) Close() error { w.closed = true; return nil }
func (w *fakeWindow) Width() int { return 800 }
func (w *fakeWindow) Height() int { return 600 }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	dev    *gputest.Device
	win    *fakeWindow
	queue  events.Queue
	r      renderer.Renderer
	engine Engine
}

func newFixture(options ...EngineBuilderOption) *fixture {
	f := &fixture{
		dev:   gputest.NewDevice(),
		win:   &fakeWindow{},
		queue: events.NewQueue(),
	}
	f.r = renderer.NewRenderer(f.dev, f.queue)
	f.engine = NewEngine(f.win, f.r, f.queue, options...)
	return f
}

// litScene returns a scene drawing one triangle in front of its camera.
func (f *fixture) litScene(t *testing.T) scene.Scene {
	t.Helper()
	f.dev.QueueProgram(gputest.ProgramSpec{
		Attributes: []gpu.ActiveVariable{{Name: model.AttrPosition, Type: gpu.TypeFloatVec3}},
		Uniforms:   []gpu.ActiveVariable{{Name: model.ModelMatrixUniform, Type: gpu.TypeFloatMat4}},
	})
	p, err := program.NewProgramContainer(f.r.Device(), []program.Source{
		{Name: "flat.vert", Stage: gpu.StageVertex},
		{Name: "flat.frag", Stage: gpu.StageFragment},
	})
	require.NoError(t, err)
	f.r.RegisterProgram(p)

	mesh := model.NewMeshData(f.r.Device(), []model.VertexAttribute{
		model.Float32Attribute(model.AttrPosition, 3, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}),
	}, nil)
	defer mesh.Release()
	obj := game_object.NewGameObject(game_object.WithMeshRenderer(
		model.NewMeshRenderer(model.Pair{Material: material.NewMaterial(p), Mesh: mesh}),
	))
	cam := camera.NewCamera(camera.WithLookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}))
	return scene.NewScene("level", scene.WithObjects(obj), scene.WithCamera(cam))
}

func TestFrameRunsFixedSteps(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	f := newFixture(WithClock(clock.now), WithTickRate(60))
	var steps []float32
	f.engine.SetTickCallback(func(dt float32) { steps = append(steps, dt) })

	require.True(t, f.engine.Frame())
	assert.Empty(t, steps, "the first frame has no elapsed time")

	clock.advance(50 * time.Millisecond)
	require.True(t, f.engine.Frame())
	require.Len(t, steps, 3)
	assert.InDelta(t, 1.0/60, steps[0], 1e-6)
	assert.Equal(t, 2, f.win.polls)
	assert.Equal(t, 2, f.win.swaps)
}

func TestFrameDropsBacklogPastMaxSubSteps(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	f := newFixture(WithClock(clock.now))
	f.engine.SetMaxSubSteps(2)
	ticks := 0
	f.engine.SetTickCallback(func(float32) { ticks++ })

	f.engine.Frame()
	clock.advance(time.Second)
	f.engine.Frame()
	assert.Equal(t, 2, ticks)

	f.engine.Frame()
	assert.Equal(t, 2, ticks, "the dropped backlog does not run later")
}

func TestFrameStepsActiveScenes(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	f := newFixture(WithClock(clock.now))
	active := scene.NewScene("active")
	paused := scene.NewScene("paused", scene.WithActive(false))
	f.engine.AddScene(0, paused)
	f.engine.AddScene(1, active)

	f.engine.Frame()
	clock.advance(100 * time.Millisecond)
	f.engine.Frame()
	assert.InDelta(t, 0.1, active.Time(), 1e-6)
	assert.Zero(t, paused.Time())
}

func TestFrameRendersLowestActiveSceneWithCamera(t *testing.T) {
	f := newFixture()
	s := f.litScene(t)
	f.engine.AddScene(5, scene.NewScene("no camera"))
	f.engine.AddScene(7, s)

	require.True(t, f.engine.Frame())
	assert.Equal(t, uint64(1), f.r.FrameID())
	assert.Len(t, f.dev.Draws, 1)
}

func TestResizeEventReachesScenes(t *testing.T) {
	f := newFixture()
	cam := camera.NewCamera()
	s := scene.NewScene("level", scene.WithCamera(cam))
	f.engine.AddScene(0, s)
	assert.InDelta(t, 800.0/600, cam.Aspect(), 1e-6)

	f.queue.Push(events.Event{Kind: events.KindResize, Payload: events.Resize{Width: 1000, Height: 500}})
	f.engine.Frame()
	assert.InDelta(t, 2, cam.Aspect(), 1e-6)
}

func TestCloseEventStopsTheLoop(t *testing.T) {
	f := newFixture()
	f.win.onPoll = func() {
		f.queue.Push(events.Event{Kind: events.KindClose})
	}

	assert.NoError(t, f.engine.Run())
	assert.Equal(t, 1, f.win.polls)
	assert.True(t, f.win.shouldClose)
	assert.False(t, f.engine.Halted())
}

func TestContextLossHalts(t *testing.T) {
	f := newFixture()
	f.engine.AddScene(0, f.litScene(t))
	require.True(t, f.engine.Frame())

	f.dev.LoseContext()
	assert.ErrorIs(t, f.engine.Run(), gpu.ErrContextLost)
	assert.True(t, f.engine.Halted())
	assert.False(t, f.engine.Frame())

	polls := f.win.polls
	f.engine.Frame()
	assert.Equal(t, polls, f.win.polls, "a halted engine does not poll")
}

func TestQuit(t *testing.T) {
	f := newFixture()
	frames := 0
	f.engine.SetRenderCallback(func(float32) {
		frames++
		if frames == 3 {
			f.engine.Quit()
		}
	})

	assert.NoError(t, f.engine.Run())
	assert.Equal(t, 3, frames)
}

func TestClose(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.engine.Close())
	assert.True(t, f.win.closed)

	// unsubscribed: a close event no longer stops the loop
	f.queue.Push(events.Event{Kind: events.KindClose})
	f.queue.Drain(nil)
	assert.False(t, f.win.shouldClose)
}
