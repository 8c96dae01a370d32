package vulkan

import (
	"log/slog"
	"time"

	"github.com/andewx/noboiler"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultAcquireTimeout bounds how long AcquireFrame waits for a swapchain
// image before reporting noboiler.ErrTimeout.
const DefaultAcquireTimeout = time.Second

// ContextOptions configures the device context.
type ContextOptions struct {
	// Width and Height are the initial surface size.
	Width, Height  uint32
	PresentMode    noboiler.PresentMode
	AlphaMode      noboiler.AlphaMode
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

// Releaser is anything owning device resources.
type Releaser interface {
	Destroy()
}

// Context is the Vulkan device context. It owns the logical device, its
// queues, the surface and the swapchain, and keeps a single frame in flight.
type Context struct {
	log     *slog.Logger
	opts    ContextOptions
	surface vk.Surface
	inst    *Instance
	gpu     *gpu
	cfg     noboiler.SurfaceConfig
	swap    swapchain

	fences   *FenceManager
	commands *CommandBufferManager

	acquireSem  vk.Semaphore
	releaseSems []vk.Semaphore
	// acquired is set while a swapchain image is held by a frame that was
	// not submitted yet.
	acquired         bool
	needsReconfigure bool
	releases         []Releaser

	passes       map[passKey]vk.RenderPass
	framebuffers map[framebufferKey]vk.Framebuffer

	encoder    *Encoder
	imageIndex uint32
}

var _ noboiler.DeviceContext = (*Context)(nil)

// NewContext opens a device able to present to surface and configures the
// surface. The context takes ownership of surface.
func NewContext(inst *Instance, surface vk.Surface, opts ContextOptions) (*Context, error) {
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = DefaultAcquireTimeout
	}
	c := &Context{
		log:          noboiler.OrNop(opts.Logger),
		opts:         opts,
		surface:      surface,
		inst:         inst,
		passes:       make(map[passKey]vk.RenderPass),
		framebuffers: make(map[framebufferKey]vk.Framebuffer),
	}
	g, err := openGPU(inst.Handle(), surface, c.log)
	if err != nil {
		vk.DestroySurface(inst.Handle(), surface, nil)
		return nil, err
	}
	c.gpu = g

	if err := c.init(); err != nil {
		c.Destroy()
		return nil, err
	}
	c.log.Info("vulkan: surface configured",
		"format", c.cfg.Format,
		"width", c.cfg.Width,
		"height", c.cfg.Height,
		"present_mode", c.cfg.PresentMode,
		"alpha_mode", c.cfg.AlphaMode)
	return c, nil
}

func (c *Context) init() error {
	if err := c.negotiate(); err != nil {
		return err
	}
	c.fences = NewFenceManager(c.gpu.device)
	commands, err := NewCommandBufferManager(c.gpu.device, vk.CommandBufferLevelPrimary, c.gpu.graphicsFamily)
	if err != nil {
		return errors.Wrap(err, "vulkan: create command pool")
	}
	c.commands = commands
	if c.acquireSem, err = c.newSemaphore(); err != nil {
		return err
	}
	return errors.Wrap(c.createSwapchain(c.opts.Width, c.opts.Height), "vulkan: create swapchain")
}

// ContextOf returns the Vulkan context behind the hook data.
func ContextOf(data *noboiler.AppData) (*Context, error) {
	c, ok := data.Device().(*Context)
	if !ok || c == nil {
		return nil, ErrNotVulkan
	}
	return c, nil
}

// Config returns the current surface configuration.
func (c *Context) Config() noboiler.SurfaceConfig {
	return c.cfg
}

// Device returns the logical device.
func (c *Context) Device() vk.Device {
	return c.gpu.device
}

// DepthFormat returns the packed depth stencil format depth textures use.
func (c *Context) DepthFormat() vk.Format {
	return c.gpu.depthFormat
}

// Reconfigure recreates the swapchain for the given size. Either dimension
// being zero leaves the surface as it is.
func (c *Context) Reconfigure(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if err := c.drain(); err != nil {
		return err
	}
	if err := c.resetAcquireSemaphore(); err != nil {
		return err
	}
	if err := c.createSwapchain(width, height); err != nil {
		return err
	}
	c.needsReconfigure = false
	return nil
}

// drain waits for all outstanding GPU work and runs pending releases.
func (c *Context) drain() error {
	if ret := vk.DeviceWaitIdle(c.gpu.device); isError(ret) {
		return frameError(ret, "wait idle")
	}
	if err := c.fences.Reset(); err != nil {
		return err
	}
	c.runReleases()
	c.commands.Reset()
	return nil
}

func (c *Context) runReleases() {
	for _, r := range c.releases {
		r.Destroy()
	}
	c.releases = nil
}

// AcquireFrame waits for the previous frame, acquires the next swapchain
// image and begins a command buffer for it.
func (c *Context) AcquireFrame() (*noboiler.Frame, error) {
	if c.needsReconfigure {
		if err := c.Reconfigure(c.cfg.Width, c.cfg.Height); err != nil {
			return nil, err
		}
	}
	if c.acquired {
		// The previous frame was dropped between acquire and submit.
		if err := c.drain(); err != nil {
			return nil, err
		}
		if err := c.resetAcquireSemaphore(); err != nil {
			return nil, err
		}
	}
	if c.swap.handle == vk.NullSwapchain {
		return nil, errors.Wrap(noboiler.ErrOutdated, "vulkan: no swapchain")
	}
	if err := c.fences.Reset(); err != nil {
		return nil, err
	}
	c.runReleases()
	c.commands.Reset()

	var index uint32
	ret := vk.AcquireNextImage(c.gpu.device, c.swap.handle, uint64(c.opts.AcquireTimeout.Nanoseconds()),
		c.acquireSem, vk.NullFence, &index)
	if err := frameError(ret, "acquire image"); err != nil {
		return nil, err
	}
	c.acquired = true
	c.imageIndex = index

	cmd, err := c.commands.NewCommandBuffer()
	if err != nil {
		return nil, err
	}
	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return nil, frameError(ret, "begin command buffer")
	}

	view := c.swap.views[index]
	view.layout = vk.ImageLayoutUndefined
	c.encoder = &Encoder{ctx: c, cmd: cmd, label: "Render Encoder", target: view}
	return &noboiler.Frame{
		Encoder: c.encoder,
		View:    view,
		Width:   c.swap.extent.Width,
		Height:  c.swap.extent.Height,
	}, nil
}

// Submit ends the frame's command buffer and submits it. A frame nothing was
// drawn into is cleared so the image can still be presented.
func (c *Context) Submit(frame *noboiler.Frame) error {
	enc, ok := frame.Encoder.(*Encoder)
	if !ok || enc != c.encoder {
		return ErrNotVulkan
	}
	c.releases = append(c.releases, enc.releases...)
	enc.releases = nil
	if enc.pass != nil {
		enc.pass.End()
	}
	if !enc.presentable {
		if err := enc.clearTarget(); err != nil {
			return err
		}
	}
	if ret := vk.EndCommandBuffer(enc.cmd); isError(ret) {
		return frameError(ret, "end command buffer")
	}

	fence, err := c.fences.NewFence()
	if err != nil {
		return err
	}
	ret := vk.QueueSubmit(c.gpu.graphicsQueue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.acquireSem},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{enc.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{c.releaseSems[c.imageIndex]},
	}}, fence)
	if isError(ret) {
		return frameError(ret, "queue submit")
	}
	c.acquired = false
	return nil
}

// Present queues the frame's image for display. A suboptimal swapchain is
// rebuilt before the next acquire.
func (c *Context) Present(frame *noboiler.Frame) error {
	if enc, ok := frame.Encoder.(*Encoder); !ok || enc != c.encoder {
		return ErrNotVulkan
	}
	c.encoder = nil
	ret := vk.QueuePresent(c.gpu.presentQueue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{c.releaseSems[c.imageIndex]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{c.swap.handle},
		PImageIndices:      []uint32{c.imageIndex},
	})
	if ret == vk.Suboptimal {
		c.needsReconfigure = true
	}
	return frameError(ret, "present")
}

// WaitIdle blocks until the device finished all submitted work.
func (c *Context) WaitIdle() {
	if c.gpu == nil || c.gpu.device == nil {
		return
	}
	if err := c.drain(); err != nil {
		c.log.Warn("vulkan: wait idle failed", "err", err)
	}
}

// Destroy releases the swapchain, the device and the surface. The instance
// stays with its owner.
func (c *Context) Destroy() {
	if c.gpu == nil {
		return
	}
	device := c.gpu.device
	vk.DeviceWaitIdle(device)
	if c.fences != nil {
		c.fences.Destroy()
	}
	c.runReleases()
	for _, fb := range c.framebuffers {
		vk.DestroyFramebuffer(device, fb, nil)
	}
	c.framebuffers = nil
	for _, pass := range c.passes {
		vk.DestroyRenderPass(device, pass, nil)
	}
	c.passes = nil
	c.destroySwapchain()
	c.destroySemaphores()
	if c.acquireSem != vk.NullSemaphore {
		vk.DestroySemaphore(device, c.acquireSem, nil)
		c.acquireSem = vk.NullSemaphore
	}
	if c.commands != nil {
		c.commands.Destroy()
	}
	c.gpu.destroy()
	c.gpu = nil
	if c.surface != vk.NullSurface {
		vk.DestroySurface(c.inst.Handle(), c.surface, nil)
		c.surface = vk.NullSurface
	}
}

func (c *Context) newSemaphore() (vk.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(c.gpu.device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if isError(ret) {
		return vk.NullSemaphore, frameError(ret, "create semaphore")
	}
	return sem, nil
}

// resetAcquireSemaphore replaces the acquire semaphore, which may be left
// signalled by a frame that never got submitted. The device must be idle.
func (c *Context) resetAcquireSemaphore() error {
	sem, err := c.newSemaphore()
	if err != nil {
		return err
	}
	if c.acquireSem != vk.NullSemaphore {
		vk.DestroySemaphore(c.gpu.device, c.acquireSem, nil)
	}
	c.acquireSem = sem
	c.acquired = false
	return nil
}

// createReleaseSemaphores keeps one render finished semaphore per swapchain
// image, since presentation of an image may still wait on its semaphore when
// the next frame is submitted.
func (c *Context) createReleaseSemaphores(n int) error {
	c.destroySemaphores()
	c.releaseSems = make([]vk.Semaphore, 0, n)
	for i := 0; i < n; i++ {
		sem, err := c.newSemaphore()
		if err != nil {
			return err
		}
		c.releaseSems = append(c.releaseSems, sem)
	}
	return nil
}

func (c *Context) destroySemaphores() {
	for _, sem := range c.releaseSems {
		vk.DestroySemaphore(c.gpu.device, sem, nil)
	}
	c.releaseSems = nil
}

// textureFormat resolves a texture format for this device. Depth24PlusStencil8
// maps to whichever packed depth format the adapter supports.
func (c *Context) textureFormat(f gputypes.TextureFormat) (vk.Format, error) {
	if f == gputypes.TextureFormatDepth24PlusStencil8 {
		return c.gpu.depthFormat, nil
	}
	return textureFormat(f)
}
