package noboiler

import "log/slog"

// Window is the platform window that feeds the run loop with events.
type Window interface {
	// WaitEvents blocks until at least one event is available and returns
	// every pending event in arrival order.
	WaitEvents() []Event
	// RequestRedraw queues a single RedrawRequested event and wakes a
	// blocked WaitEvents.
	RequestRedraw()
	// Show makes the window visible.
	Show()
	// Size returns the current physical size of the drawable surface.
	Size() (width, height uint32)
	Destroy()
}

// PlatformOptions configures window and device creation.
type PlatformOptions struct {
	Title       string
	Width       uint32
	Height      uint32
	Resizable   bool
	PresentMode PresentMode
	AlphaMode   AlphaMode
	Validation  bool
	Logger      *slog.Logger
}

// Platform creates the hidden window and the device context bound to it.
type Platform interface {
	Open(opts PlatformOptions) (Window, DeviceContext, error)
	// Close releases platform-wide resources after the window and device
	// context were destroyed.
	Close()
}
