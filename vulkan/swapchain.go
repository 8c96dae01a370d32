package vulkan

import (
	"github.com/andewx/noboiler"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type swapchain struct {
	handle      vk.Swapchain
	format      vk.SurfaceFormat
	extent      vk.Extent2D
	presentMode vk.PresentMode
	alpha       vk.CompositeAlphaFlagBits
	views       []*TextureView
}

// clampExtent picks the swapchain extent. Most platforms dictate the extent
// through the current extent, others report MaxUint32 and let the
// requested size decide within the supported bounds.
func clampExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	caps.CurrentExtent.Deref()
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

// swapImageCount asks for one image more than the minimum so acquire does
// not wait on the driver. A zero maximum means unbounded.
func swapImageCount(caps vk.SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

func preTransform(caps vk.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

func surfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, newError(ret)
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	return formats, newError(ret)
}

func surfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, newError(ret)
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	return modes, newError(ret)
}

// negotiate chooses the surface format, present mode and composite alpha once
// at start-up. They stay fixed across reconfigures.
func (c *Context) negotiate() error {
	formats, err := surfaceFormats(c.gpu.physical, c.surface)
	if err != nil {
		return errors.Wrap(err, "vulkan: query surface formats")
	}
	format, err := pickSurfaceFormat(formats)
	if err != nil {
		return err
	}
	modes, err := surfacePresentModes(c.gpu.physical, c.surface)
	if err != nil {
		return errors.Wrap(err, "vulkan: query present modes")
	}
	mode, fellBack := pickPresentMode(c.opts.PresentMode, modes)
	if fellBack {
		c.log.Warn("vulkan: present mode unsupported, using fifo", "requested", c.opts.PresentMode)
	}

	var caps vk.SurfaceCapabilities
	if ret := vk.GetPhysicalDeviceSurfaceCapabilities(c.gpu.physical, c.surface, &caps); isError(ret) {
		return errors.Wrap(newError(ret), "vulkan: query surface capabilities")
	}
	caps.Deref()

	c.swap.format = format
	c.swap.presentMode = mode
	c.swap.alpha = pickCompositeAlpha(c.opts.AlphaMode, caps.SupportedCompositeAlpha)
	c.cfg = noboiler.SurfaceConfig{
		Format:      surfaceTextureFormat(format.Format),
		PresentMode: presentModeOf(mode),
		AlphaMode:   alphaModeOf(c.swap.alpha),
	}
	return nil
}

// createSwapchain builds a swapchain of the requested size, retiring the
// current one. The caller must ensure the device is idle. A surface whose
// current extent is zero, as with minimized windows, keeps the old swapchain.
func (c *Context) createSwapchain(width, height uint32) error {
	device := c.gpu.device

	var caps vk.SurfaceCapabilities
	if ret := vk.GetPhysicalDeviceSurfaceCapabilities(c.gpu.physical, c.surface, &caps); isError(ret) {
		return frameError(ret, "surface capabilities")
	}
	caps.Deref()
	extent := clampExtent(caps, width, height)
	if extent.Width == 0 || extent.Height == 0 {
		c.log.Debug("vulkan: surface has zero extent, keeping swapchain")
		return nil
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          c.surface,
		MinImageCount:    swapImageCount(caps),
		ImageFormat:      c.swap.format.Format,
		ImageColorSpace:  c.swap.format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform(caps),
		CompositeAlpha:   c.swap.alpha,
		PresentMode:      c.swap.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     c.swap.handle,
	}
	if c.gpu.separatePresent() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{c.gpu.graphicsFamily, c.gpu.presentFamily}
	}

	var handle vk.Swapchain
	if ret := vk.CreateSwapchain(device, &info, nil, &handle); isError(ret) {
		return frameError(ret, "create swapchain")
	}
	c.destroySwapchainViews()
	if c.swap.handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, c.swap.handle, nil)
	}
	c.swap.handle = handle
	c.swap.extent = extent

	var count uint32
	if ret := vk.GetSwapchainImages(device, handle, &count, nil); isError(ret) {
		return newError(ret)
	}
	images := make([]vk.Image, count)
	if ret := vk.GetSwapchainImages(device, handle, &count, images); isError(ret) {
		return newError(ret)
	}
	c.swap.views = make([]*TextureView, 0, count)
	for _, image := range images {
		view, err := createImageView(device, image, c.swap.format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		c.swap.views = append(c.swap.views, &TextureView{
			view:   view,
			image:  image,
			format: c.swap.format.Format,
			width:  extent.Width,
			height: extent.Height,
			aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			layout: vk.ImageLayoutUndefined,
			final:  vk.ImageLayoutPresentSrc,
		})
	}
	if err := c.createReleaseSemaphores(len(images)); err != nil {
		return err
	}

	c.cfg.Width, c.cfg.Height = extent.Width, extent.Height
	c.log.Debug("vulkan: swapchain created",
		"width", extent.Width,
		"height", extent.Height,
		"images", len(images))
	return nil
}

func (c *Context) destroySwapchainViews() {
	c.flushFramebuffers()
	for _, v := range c.swap.views {
		vk.DestroyImageView(c.gpu.device, v.view, nil)
	}
	c.swap.views = nil
}

func (c *Context) destroySwapchain() {
	c.destroySwapchainViews()
	if c.swap.handle != vk.NullSwapchain {
		vk.DestroySwapchain(c.gpu.device, c.swap.handle, nil)
		c.swap.handle = vk.NullSwapchain
	}
}
