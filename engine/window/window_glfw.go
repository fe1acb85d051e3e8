package window

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gl/engine/events"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent *engineWindow
	window *glfw.Window
}

// newPlatformWindow creates the GLFW window and its core profile context, trying the
// requested version before the fallback, then registers the input callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	requested := fmt.Sprintf("%d.%d", w.glMajor, w.glMinor)
	var win *glfw.Window
	var errs []error
	for _, v := range contextVersions(w.glMajor, w.glMinor) {
		// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
		glfw.DefaultWindowHints()
		glfw.WindowHint(glfw.ContextVersionMajor, v[0])
		glfw.WindowHint(glfw.ContextVersionMinor, v[1])
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

		created, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("GL %d.%d: %w", v[0], v[1], err))
			continue
		}
		win = created
		w.glMajor, w.glMinor = v[0], v[1]
		break
	}
	if win == nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", errors.Join(errs...))
	}
	if actual := fmt.Sprintf("%d.%d", w.glMajor, w.glMinor); actual != requested {
		slog.Warn("window: context version fallback", "requested", requested, "actual", actual)
		w.push(events.KindFallbackVersion, events.FallbackVersion{Requested: requested, Actual: actual})
	}

	win.MakeContextCurrent()
	if w.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{
		parent: w,
		window: win,
	}
	w.internalWindow = gw

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		w.push(events.KindKey, events.Key{Code: int(key), Action: translateAction(action)})
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		w.push(events.KindMouseButton, events.MouseButton{Button: int(button), Action: translateAction(action)})
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.push(events.KindCursor, events.Cursor{X: xpos, Y: ypos})
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetScrollCallback
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.push(events.KindScroll, events.Scroll{X: xoff, Y: yoff})
	})

	win.SetCloseCallback(func(_ *glfw.Window) {
		w.push(events.KindClose, nil)
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		w.push(events.KindResize, events.Resize{Width: width, Height: height})
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	w.width, w.height = win.GetFramebufferSize()

	return nil
}

func translateAction(action glfw.Action) events.Action {
	switch action {
	case glfw.Press:
		return events.Press
	case glfw.Repeat:
		return events.Repeat
	}
	return events.Release
}

func platformWindow(w *engineWindow) *glfw.Window {
	if w.internalWindow == nil {
		return nil
	}
	return w.internalWindow.(*glfwWindow).window
}

// platformPollEvents runs the GLFW callbacks for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformPollEvents(w *engineWindow) {
	if platformWindow(w) != nil {
		glfw.PollEvents()
	}
}

func platformSwapBuffers(w *engineWindow) {
	if win := platformWindow(w); win != nil {
		win.SwapBuffers()
	}
}

// platformShouldClose returns true if the internal window is nil or GLFW reports ShouldClose.
func platformShouldClose(w *engineWindow) bool {
	win := platformWindow(w)
	return win == nil || win.ShouldClose()
}

func platformSetShouldClose(w *engineWindow, close bool) {
	if win := platformWindow(w); win != nil {
		win.SetShouldClose(close)
	}
}

func platformSetCursorCaptured(w *engineWindow, captured bool) {
	win := platformWindow(w)
	if win == nil {
		return
	}
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	win.SetInputMode(glfw.CursorMode, mode)
}

func platformTime() float64 {
	return glfw.GetTime()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
// Returns an error if the internal window has not been initialized.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: error if the window is not initialized
func platformCloseWindow(w *engineWindow) error {
	win := platformWindow(w)
	if win == nil {
		return fmt.Errorf("window is not initialized")
	}
	win.Destroy()
	w.internalWindow = nil
	glfw.Terminate()
	return nil
}
