package noboiler

import "fmt"

// Event is a window or platform notification delivered to the run loop.
// Window events other than RedrawRequested and EventsCleared are offered to
// the input hook before default handling.
type Event interface {
	isEvent()
}

// CloseRequested is sent when the user asks to close the window.
type CloseRequested struct{}

// Resized carries the new physical size of the window surface.
type Resized struct {
	Width, Height uint32
}

// ScaleFactorChanged is sent when the window moves to a display with a
// different content scale. Width and Height are the resulting physical size.
type ScaleFactorChanged struct {
	Scale         float64
	Width, Height uint32
}

// RedrawRequested starts one redraw cycle.
type RedrawRequested struct{}

// EventsCleared is sent once every pending event in a batch was handled.
type EventsCleared struct{}

// Action is the state transition of a key or button.
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

func (a Action) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ModifierKey is a bit set of held modifier keys.
type ModifierKey int

const (
	ModShift ModifierKey = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Key is a keyboard key code. Values follow the GLFW key table.
type Key int

const (
	KeyUnknown Key = -1
	KeySpace   Key = 32
	KeyEscape  Key = 256
	KeyEnter   Key = 257
	KeyTab     Key = 258
	KeyRight   Key = 262
	KeyLeft    Key = 263
	KeyDown    Key = 264
	KeyUp      Key = 265
	KeyF11     Key = 300
)

// KeyInput is a key press, release or repeat.
type KeyInput struct {
	Key      Key
	Scancode int
	Action   Action
	Mods     ModifierKey
}

// CharInput is a unicode character produced by keyboard input.
type CharInput struct {
	Char rune
}

// MouseButtonInput is a mouse button press or release.
type MouseButtonInput struct {
	Button int
	Action Action
	Mods   ModifierKey
}

// CursorMoved reports the cursor position in window coordinates.
type CursorMoved struct {
	X, Y float64
}

// MouseWheel reports a scroll offset.
type MouseWheel struct {
	DX, DY float64
}

// Focused reports a change in input focus.
type Focused struct {
	Focused bool
}

func (CloseRequested) isEvent()     {}
func (Resized) isEvent()            {}
func (ScaleFactorChanged) isEvent() {}
func (RedrawRequested) isEvent()    {}
func (EventsCleared) isEvent()      {}
func (KeyInput) isEvent()           {}
func (CharInput) isEvent()          {}
func (MouseButtonInput) isEvent()   {}
func (CursorMoved) isEvent()        {}
func (MouseWheel) isEvent()         {}
func (Focused) isEvent()            {}
