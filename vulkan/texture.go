package vulkan

import (
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// TextureView is an attachable image view. It tracks the layout the image
// was left in so later passes can load its contents.
type TextureView struct {
	view   vk.ImageView
	image  vk.Image
	format vk.Format
	width  uint32
	height uint32
	aspect vk.ImageAspectFlags

	// layout is the image layout after the last pass that used the view.
	layout vk.ImageLayout
	// final is the layout a pass leaves the image in.
	final vk.ImageLayout
}

// Size returns the view extent in pixels.
func (v *TextureView) Size() (width, height uint32) {
	return v.width, v.height
}

// Handle returns the raw image view.
func (v *TextureView) Handle() vk.ImageView {
	return v.view
}

func (v *TextureView) isDepth() bool {
	return v.aspect&vk.ImageAspectFlags(vk.ImageAspectDepthBit) != 0
}

func createImageView(device vk.Device, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, newError(ret)
	}
	return view, nil
}

// Texture is a device local image with a single view, usable as a render
// pass attachment.
type Texture struct {
	ctx    *Context
	label  string
	memory vk.DeviceMemory
	view   TextureView
}

// DepthTexture is a depth stencil attachment in the device's packed depth
// stencil format.
type DepthTexture struct {
	Texture
}

// NewDepthTexture creates a depth stencil attachment. Recreate it from the
// resize hook so it matches the surface size.
func NewDepthTexture(ctx *Context, width, height uint32) (*DepthTexture, error) {
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	usage := vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
	t, err := newTexture(ctx, "Depth Texture", width, height, ctx.gpu.depthFormat, usage, aspect,
		vk.ImageLayoutDepthStencilAttachmentOptimal)
	if err != nil {
		return nil, err
	}
	return &DepthTexture{Texture: *t}, nil
}

// NewColorTexture creates an extra color attachment that can also be sampled.
// Passes leave it in the shader read only layout.
func NewColorTexture(ctx *Context, width, height uint32, format gputypes.TextureFormat) (*Texture, error) {
	f, err := ctx.textureFormat(format)
	if err != nil {
		return nil, err
	}
	usage := vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageSampledBit)
	return newTexture(ctx, "Color Texture", width, height, f, usage,
		vk.ImageAspectFlags(vk.ImageAspectColorBit), vk.ImageLayoutShaderReadOnlyOptimal)
}

func newTexture(ctx *Context, label string, width, height uint32, format vk.Format,
	usage vk.ImageUsageFlags, aspect vk.ImageAspectFlags, final vk.ImageLayout) (*Texture, error) {

	if width == 0 || height == 0 {
		return nil, errors.Errorf("vulkan: %s size %dx%d has a zero dimension", label, width, height)
	}
	device := ctx.gpu.device

	var image vk.Image
	ret := vk.CreateImage(device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if isError(ret) {
		return nil, errors.Wrap(frameError(ret, "create image"), label)
	}

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &reqs)
	mem, err := ctx.gpu.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(device, image, nil)
		return nil, errors.Wrap(err, label)
	}
	if ret := vk.BindImageMemory(device, image, mem, 0); isError(ret) {
		vk.FreeMemory(device, mem, nil)
		vk.DestroyImage(device, image, nil)
		return nil, errors.Wrap(newError(ret), label)
	}

	view, err := createImageView(device, image, format, aspect)
	if err != nil {
		vk.FreeMemory(device, mem, nil)
		vk.DestroyImage(device, image, nil)
		return nil, errors.Wrap(err, label)
	}
	return &Texture{
		ctx:    ctx,
		label:  label,
		memory: mem,
		view: TextureView{
			view:   view,
			image:  image,
			format: format,
			width:  width,
			height: height,
			aspect: aspect,
			layout: vk.ImageLayoutUndefined,
			final:  final,
		},
	}, nil
}

// View returns the attachable view of the texture.
func (t *Texture) View() *TextureView {
	return &t.view
}

func (t *Texture) Size() (width, height uint32) {
	return t.view.Size()
}

func (t *Texture) Label() string {
	return t.label
}

// Destroy waits for the device to finish with the texture and releases it
// together with every cached framebuffer that references it.
func (t *Texture) Destroy() {
	if t.ctx == nil || t.view.view == vk.NullImageView {
		return
	}
	device := t.ctx.gpu.device
	vk.DeviceWaitIdle(device)
	t.ctx.evictFramebuffers(t.view.view)
	vk.DestroyImageView(device, t.view.view, nil)
	vk.DestroyImage(device, t.view.image, nil)
	vk.FreeMemory(device, t.memory, nil)
	t.view = TextureView{}
	t.ctx = nil
}
