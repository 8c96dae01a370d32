package noboiler

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

// PresentMode controls how frames are queued for display.
type PresentMode int

const (
	// PresentModeFifo waits for vertical blank. Always supported.
	PresentModeFifo PresentMode = iota
	PresentModeFifoRelaxed
	// PresentModeImmediate presents without waiting and may tear.
	PresentModeImmediate
	PresentModeMailbox
)

var presentModeNames = map[PresentMode]string{
	PresentModeFifo:        "fifo",
	PresentModeFifoRelaxed: "fifo_relaxed",
	PresentModeImmediate:   "immediate",
	PresentModeMailbox:     "mailbox",
}

func (m PresentMode) String() string {
	if s, ok := presentModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("PresentMode(%d)", int(m))
}

func (m PresentMode) MarshalText() ([]byte, error) {
	s, ok := presentModeNames[m]
	if !ok {
		return nil, errors.Errorf("noboiler: unknown present mode %d", int(m))
	}
	return []byte(s), nil
}

func (m *PresentMode) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, s := range presentModeNames {
		if s == name {
			*m = mode
			return nil
		}
	}
	return errors.Errorf("noboiler: unknown present mode %q", text)
}

// AlphaMode selects how the compositor blends the surface with other windows.
type AlphaMode int

const (
	// AlphaModeAuto picks the first mode the surface supports.
	AlphaModeAuto AlphaMode = iota
	AlphaModeOpaque
	AlphaModePreMultiplied
	AlphaModePostMultiplied
	AlphaModeInherit
)

var alphaModeNames = map[AlphaMode]string{
	AlphaModeAuto:           "auto",
	AlphaModeOpaque:         "opaque",
	AlphaModePreMultiplied:  "premultiplied",
	AlphaModePostMultiplied: "postmultiplied",
	AlphaModeInherit:        "inherit",
}

func (m AlphaMode) String() string {
	if s, ok := alphaModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("AlphaMode(%d)", int(m))
}

func (m AlphaMode) MarshalText() ([]byte, error) {
	s, ok := alphaModeNames[m]
	if !ok {
		return nil, errors.Errorf("noboiler: unknown alpha mode %d", int(m))
	}
	return []byte(s), nil
}

func (m *AlphaMode) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, s := range alphaModeNames {
		if s == name {
			*m = mode
			return nil
		}
	}
	return errors.Errorf("noboiler: unknown alpha mode %q", text)
}

// SurfaceConfig is the negotiated configuration of the presentable surface.
type SurfaceConfig struct {
	Format      gputypes.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
	AlphaMode   AlphaMode
}

// CommandEncoder records GPU commands for one frame. Backends expose their
// concrete encoder type to render helpers.
type CommandEncoder interface {
	Label() string
}

// TextureView is an attachable view of a texture.
type TextureView interface {
	Size() (width, height uint32)
}

// Frame is the presentable target of one redraw cycle. It and everything it
// references are valid only for the duration of the render hook.
type Frame struct {
	Encoder CommandEncoder
	View    TextureView
	Width   uint32
	Height  uint32
}

// DeviceContext owns the graphics device, its queue and the configured
// surface. It is driven from a single goroutine.
type DeviceContext interface {
	// Config returns the current surface configuration.
	Config() SurfaceConfig
	// Reconfigure applies a new surface size. It is a no-op when either
	// dimension is zero and calling it twice with the same size leaves the
	// same configuration.
	Reconfigure(width, height uint32) error
	// AcquireFrame returns the next presentable frame with a fresh encoder,
	// or an error matching ErrTimeout, ErrOutdated, ErrLost or ErrOutOfMemory.
	AcquireFrame() (*Frame, error)
	// Submit finishes the frame's encoder and submits it to the queue.
	Submit(frame *Frame) error
	// Present hands the frame back to the surface for display.
	Present(frame *Frame) error
	// WaitIdle blocks until the device finished all submitted work.
	WaitIdle()
	Destroy()
}
