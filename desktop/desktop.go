// Package desktop opens GLFW windows backed by a Vulkan device context.
package desktop

import (
	"log/slog"
	"time"

	"github.com/andewx/noboiler"
	"github.com/andewx/noboiler/vulkan"
	"github.com/andewx/noboiler/window"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Platform is the desktop implementation of noboiler.Platform. It must be
// used from the main goroutine.
type Platform struct {
	// AcquireTimeout bounds the wait for a swapchain image. Zero selects
	// vulkan.DefaultAcquireTimeout.
	AcquireTimeout time.Duration

	inst        *vulkan.Instance
	initialized bool
}

var _ noboiler.Platform = (*Platform)(nil)

// New returns a desktop platform.
func New() *Platform {
	return &Platform{}
}

// NewApp returns an App running state on the desktop platform.
func NewApp[S any](state S) *noboiler.App[S] {
	return noboiler.NewApp(state).Platform(New())
}

// Open initializes GLFW and Vulkan, creates the hidden window, its surface
// and the device context.
func (p *Platform) Open(opts noboiler.PlatformOptions) (noboiler.Window, noboiler.DeviceContext, error) {
	log := noboiler.OrNop(opts.Logger)
	if err := p.init(); err != nil {
		return nil, nil, err
	}

	w, err := window.New(window.Options{
		Title:     opts.Title,
		Width:     opts.Width,
		Height:    opts.Height,
		Resizable: opts.Resizable,
	})
	if err != nil {
		return nil, nil, err
	}

	device, err := p.openDevice(w, opts, log)
	if err != nil {
		w.Destroy()
		return nil, nil, err
	}
	return w, device, nil
}

func (p *Platform) init() error {
	if p.initialized {
		return nil
	}
	if err := window.Init(); err != nil {
		return err
	}
	p.initialized = true
	vk.SetGetInstanceProcAddr(window.VulkanProcAddr())
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "desktop: vulkan loader")
	}
	return nil
}

func (p *Platform) openDevice(w *window.Window, opts noboiler.PlatformOptions, log *slog.Logger) (*vulkan.Context, error) {
	if p.inst == nil {
		inst, err := vulkan.NewInstance(vulkan.InstanceOptions{
			AppName:    opts.Title,
			Extensions: w.RequiredExtensions(),
			Validation: opts.Validation,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		p.inst = inst
	}

	surface, err := w.CreateSurface(p.inst.Handle())
	if err != nil {
		return nil, err
	}
	width, height := w.Size()
	return vulkan.NewContext(p.inst, surface, contextOptions(opts, width, height, p.AcquireTimeout, log))
}

// contextOptions sizes the surface from the framebuffer, which differs from
// the requested window size on high density displays.
func contextOptions(opts noboiler.PlatformOptions, width, height uint32, timeout time.Duration, log *slog.Logger) vulkan.ContextOptions {
	if width == 0 || height == 0 {
		width, height = opts.Width, opts.Height
	}
	return vulkan.ContextOptions{
		Width:          width,
		Height:         height,
		PresentMode:    opts.PresentMode,
		AlphaMode:      opts.AlphaMode,
		AcquireTimeout: timeout,
		Logger:         log,
	}
}

// Close destroys the Vulkan instance and terminates GLFW.
func (p *Platform) Close() {
	if p.inst != nil {
		p.inst.Destroy()
		p.inst = nil
	}
	if p.initialized {
		window.Terminate()
		p.initialized = false
	}
}
