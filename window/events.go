package window

import (
	"github.com/andewx/noboiler"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// eventQueue collects callback events between two WaitEvents calls. GLFW
// invokes callbacks on the main thread from inside WaitEvents and
// PollEvents, so it needs no locking.
type eventQueue struct {
	events []noboiler.Event
	redraw bool
}

// push appends ev. Consecutive resizes collapse into the latest one.
func (q *eventQueue) push(ev noboiler.Event) {
	if _, ok := ev.(noboiler.Resized); ok && len(q.events) > 0 {
		if _, last := q.events[len(q.events)-1].(noboiler.Resized); last {
			q.events[len(q.events)-1] = ev
			return
		}
	}
	q.events = append(q.events, ev)
}

// requestRedraw reports whether the request was new.
func (q *eventQueue) requestRedraw() bool {
	if q.redraw {
		return false
	}
	q.redraw = true
	return true
}

func (q *eventQueue) redrawPending() bool { return q.redraw }

func (q *eventQueue) drain() []noboiler.Event {
	out := q.events
	q.events = nil
	if q.redraw {
		q.redraw = false
		out = append(out, noboiler.RedrawRequested{})
	}
	return out
}

func keyOf(k glfw.Key) noboiler.Key {
	if k < 0 {
		return noboiler.KeyUnknown
	}
	return noboiler.Key(k)
}

func actionOf(a glfw.Action) noboiler.Action {
	switch a {
	case glfw.Press:
		return noboiler.Press
	case glfw.Repeat:
		return noboiler.Repeat
	}
	return noboiler.Release
}

func modsOf(mod glfw.ModifierKey) noboiler.ModifierKey {
	var m noboiler.ModifierKey
	if mod&glfw.ModShift != 0 {
		m |= noboiler.ModShift
	}
	if mod&glfw.ModControl != 0 {
		m |= noboiler.ModControl
	}
	if mod&glfw.ModAlt != 0 {
		m |= noboiler.ModAlt
	}
	if mod&glfw.ModSuper != 0 {
		m |= noboiler.ModSuper
	}
	return m
}

// buttonOf numbers buttons from 0 (left), 1 (right), 2 (middle).
func buttonOf(b glfw.MouseButton) int {
	return int(b)
}
