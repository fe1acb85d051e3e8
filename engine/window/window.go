package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/events"
)

// FallbackMajor and FallbackMinor are the context version tried when the requested
// one cannot be created.
const (
	FallbackMajor = 3
	FallbackMinor = 3
)

// Window provides the platform window, its OpenGL context and input delivery.
// Input and window changes are pushed onto the event queue given to NewWindow; the
// frame loop drains them after PollEvents.
type Window interface {
	// PollEvents processes pending platform events without blocking.
	PollEvents()

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// ShouldClose reports whether the user or the engine asked to close the window.
	//
	// Returns:
	//   - bool: true once a close was requested
	ShouldClose() bool

	// SetShouldClose sets or clears the close request.
	//
	// Parameters:
	//   - close: the new request state
	SetShouldClose(close bool)

	// SetCursorCaptured hides the cursor and locks it to the window for mouse look.
	//
	// Parameters:
	//   - captured: true to capture, false to release
	SetCursorCaptured(captured bool)

	// ContextVersion returns the OpenGL version of the created context.
	//
	// Returns:
	//   - int: the major version
	//   - int: the minor version
	ContextVersion() (int, int)

	// Time returns the seconds elapsed since the window was created.
	//
	// Returns:
	//   - float64: the time in seconds
	Time() float64

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window is not open
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and the destination queue.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound the window size during resize.
	maxWidth, maxHeight int

	// minWidth and minHeight bound the window size during resize.
	minWidth, minHeight int

	// width and height are the current framebuffer size in pixels.
	width, height int

	// glMajor and glMinor are the requested context version until creation, then the
	// created one.
	glMajor, glMinor int

	vsync bool

	queue events.Queue

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any
}

var _ Window = &engineWindow{}

// NewWindow creates a window and makes its context current on the calling thread,
// which must stay the render thread for the life of the window.
//
// Parameters:
//   - queue: receives input and window events
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if neither the requested nor the fallback context can be created
func NewWindow(queue events.Queue, options ...WindowBuilderOption) (Window, error) {
	if queue == nil {
		panic("window: NewWindow requires an event queue")
	}
	w := &engineWindow{
		title:     "oxy-gl",
		maxWidth:  -1,
		maxHeight: -1,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		glMajor:   4,
		glMinor:   1,
		vsync:     true,
		queue:     queue,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

// contextVersions lists the versions to try, the requested one first.
func contextVersions(major, minor int) [][2]int {
	versions := [][2]int{{major, minor}}
	if major != FallbackMajor || minor != FallbackMinor {
		versions = append(versions, [2]int{FallbackMajor, FallbackMinor})
	}
	return versions
}

func (w *engineWindow) push(kind events.Kind, payload any) {
	w.queue.Push(events.Event{Kind: kind, Payload: payload})
}

func (w *engineWindow) PollEvents() {
	platformPollEvents(w)
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) ShouldClose() bool {
	return platformShouldClose(w)
}

func (w *engineWindow) SetShouldClose(close bool) {
	platformSetShouldClose(w, close)
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	platformSetCursorCaptured(w, captured)
}

func (w *engineWindow) ContextVersion() (int, int) {
	return w.glMajor, w.glMinor
}

func (w *engineWindow) Time() float64 {
	return platformTime()
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
