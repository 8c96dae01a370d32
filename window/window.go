// Package window opens a GLFW window without a client API and turns its
// callbacks into run loop events.
//
// GLFW must be driven from the main thread. Importing this package locks the
// main goroutine to it, so Init, New and every Window method must be called
// from main.
package window

import (
	"runtime"
	"unsafe"

	"github.com/andewx/noboiler"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	runtime.LockOSThread()
}

// Init initializes GLFW.
func Init() error {
	return errors.Wrap(glfw.Init(), "window: glfw init")
}

// Terminate destroys any remaining windows and releases GLFW.
func Terminate() {
	glfw.Terminate()
}

// VulkanProcAddr returns the vkGetInstanceProcAddr GLFW loaded. Init must
// have succeeded.
func VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// Options configures a new window.
type Options struct {
	Title     string
	Width     uint32
	Height    uint32
	Resizable bool
}

// Window is a GLFW window with no client API. It stays hidden until Show.
type Window struct {
	glw   *glfw.Window
	queue eventQueue
}

var _ noboiler.Window = (*Window)(nil)

// New creates a hidden window.
func New(opts Options) (*Window, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, errors.Errorf("window: invalid size %dx%d", opts.Width, opts.Height)
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, boolHint(opts.Resizable))

	glw, err := glfw.CreateWindow(int(opts.Width), int(opts.Height), opts.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "window: create")
	}
	w := &Window{glw: glw}
	w.setCallbacks()
	return w, nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func (w *Window) setCallbacks() {
	w.glw.SetCloseCallback(func(*glfw.Window) {
		w.queue.push(noboiler.CloseRequested{})
	})
	w.glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.queue.push(noboiler.Resized{Width: dimension(width), Height: dimension(height)})
	})
	w.glw.SetContentScaleCallback(func(gw *glfw.Window, x, _ float32) {
		width, height := gw.GetFramebufferSize()
		w.queue.push(noboiler.ScaleFactorChanged{
			Scale:  float64(x),
			Width:  dimension(width),
			Height: dimension(height),
		})
	})
	w.glw.SetRefreshCallback(func(*glfw.Window) {
		w.queue.requestRedraw()
	})
	w.glw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		w.queue.push(noboiler.KeyInput{
			Key:      keyOf(key),
			Scancode: scancode,
			Action:   actionOf(action),
			Mods:     modsOf(mods),
		})
	})
	w.glw.SetCharCallback(func(_ *glfw.Window, char rune) {
		w.queue.push(noboiler.CharInput{Char: char})
	})
	w.glw.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		w.queue.push(noboiler.MouseButtonInput{
			Button: buttonOf(button),
			Action: actionOf(action),
			Mods:   modsOf(mods),
		})
	})
	w.glw.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.queue.push(noboiler.CursorMoved{X: x, Y: y})
	})
	w.glw.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		w.queue.push(noboiler.MouseWheel{DX: dx, DY: dy})
	})
	w.glw.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.queue.push(noboiler.Focused{Focused: focused})
	})
}

func dimension(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// WaitEvents blocks until GLFW reports an event or a redraw is pending, then
// returns the queued events. A pending redraw is delivered last.
func (w *Window) WaitEvents() []noboiler.Event {
	if w.queue.redrawPending() {
		glfw.PollEvents()
	} else {
		glfw.WaitEvents()
	}
	return w.queue.drain()
}

// RequestRedraw schedules a RedrawRequested event and wakes WaitEvents.
func (w *Window) RequestRedraw() {
	if w.queue.requestRedraw() {
		glfw.PostEmptyEvent()
	}
}

func (w *Window) Show() {
	w.glw.Show()
}

// Size returns the framebuffer size in pixels.
func (w *Window) Size() (width, height uint32) {
	fw, fh := w.glw.GetFramebufferSize()
	return dimension(fw), dimension(fh)
}

func (w *Window) Destroy() {
	if w.glw == nil {
		return
	}
	w.glw.Destroy()
	w.glw = nil
}

// RequiredExtensions lists the instance extensions needed to create a
// surface for this window.
func (w *Window) RequiredExtensions() []string {
	return w.glw.GetRequiredInstanceExtensions()
}

// CreateSurface creates a presentation surface on instance.
func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.glw.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "window: create surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}
