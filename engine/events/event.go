package events

// Kind names an event type. Subscribers register per kind.
type Kind string

const (
	// KindError carries an Error payload for a recoverable failure reported by a subsystem.
	KindError Kind = "error"

	// KindContextLost is pushed once the graphics context is gone. The engine halts on it.
	KindContextLost Kind = "contextlost"

	// KindFallbackVersion carries a FallbackVersion payload when the window had to create
	// an older context than requested.
	KindFallbackVersion Kind = "fallbackVersion"

	// KindShaderChanged carries a ShaderChanged payload when a watched shader file changes.
	KindShaderChanged Kind = "shaderChanged"

	// KindResize carries a Resize payload with the new framebuffer size.
	KindResize Kind = "resize"

	// KindKey carries a Key payload.
	KindKey Kind = "key"

	// KindMouseButton carries a MouseButton payload.
	KindMouseButton Kind = "mouseButton"

	// KindCursor carries a Cursor payload with the pointer position.
	KindCursor Kind = "cursor"

	// KindScroll carries a Scroll payload.
	KindScroll Kind = "scroll"

	// KindClose is pushed when the user asks to close the window.
	KindClose Kind = "close"
)

// Event is one queued notification. Payload holds the kind-specific struct, nil for
// kinds without data.
type Event struct {
	Kind    Kind
	Payload any
}

// Error reports a failure by a subsystem that did not stop the frame.
type Error struct {
	Source string
	Err    error
}

// FallbackVersion reports the context version actually created.
type FallbackVersion struct {
	Requested string
	Actual    string
}

// ShaderChanged reports that the file at Path was written.
type ShaderChanged struct {
	Path string
}

// Resize reports a new framebuffer size in pixels.
type Resize struct {
	Width, Height int
}

// Action is the state change of a key or button.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

// Key reports a keyboard key transition. Code uses the common.Key* values.
type Key struct {
	Code   int
	Action Action
}

// MouseButton reports a mouse button transition. Button uses the common.MouseButton* values.
type MouseButton struct {
	Button int
	Action Action
}

// Cursor reports the pointer position in window coordinates.
type Cursor struct {
	X, Y float64
}

// Scroll reports a scroll wheel offset.
type Scroll struct {
	X, Y float64
}
