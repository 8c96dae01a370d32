package vulkan

import (
	"github.com/andewx/noboiler"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const maxColorAttachments = 8

type attachmentKey struct {
	format  vk.Format
	load    vk.AttachmentLoadOp
	initial vk.ImageLayout
	final   vk.ImageLayout
}

// passKey identifies a cached render pass. Two passes with equal keys are
// interchangeable.
type passKey struct {
	colors   [maxColorAttachments]attachmentKey
	n        int
	depth    attachmentKey
	hasDepth bool
}

type framebufferKey struct {
	pass   vk.RenderPass
	views  [maxColorAttachments + 1]vk.ImageView
	n      int
	width  uint32
	height uint32
}

// attachmentDescriptions lays out the color attachments first and the depth
// attachment last.
func (k passKey) attachmentDescriptions() ([]vk.AttachmentDescription, []vk.AttachmentReference, *vk.AttachmentReference) {
	descs := make([]vk.AttachmentDescription, 0, k.n+1)
	refs := make([]vk.AttachmentReference, 0, k.n)
	for i := 0; i < k.n; i++ {
		a := k.colors[i]
		descs = append(descs, vk.AttachmentDescription{
			Format:         a.format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         a.load,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  a.initial,
			FinalLayout:    a.final,
		})
		refs = append(refs, vk.AttachmentReference{
			Attachment: uint32(i),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		})
	}
	if !k.hasDepth {
		return descs, refs, nil
	}
	descs = append(descs, vk.AttachmentDescription{
		Format:         k.depth.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         k.depth.load,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  k.depth.load,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  k.depth.initial,
		FinalLayout:    k.depth.final,
	})
	return descs, refs, &vk.AttachmentReference{
		Attachment: uint32(k.n),
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
}

var passDependencies = []vk.SubpassDependency{
	{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	},
	{
		SrcSubpass:    0,
		DstSubpass:    vk.SubpassExternal,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessShaderReadBit),
	},
}

// renderPass returns the cached render pass for key, creating it on first use.
func (c *Context) renderPass(key passKey) (vk.RenderPass, error) {
	if pass, ok := c.passes[key]; ok {
		return pass, nil
	}
	descs, refs, depthRef := key.attachmentDescriptions()
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(c.gpu.device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(descs)),
		PAttachments:    descs,
		SubpassCount:    1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:       vk.PipelineBindPointGraphics,
			ColorAttachmentCount:    uint32(len(refs)),
			PColorAttachments:       refs,
			PDepthStencilAttachment: depthRef,
		}},
		DependencyCount: uint32(len(passDependencies)),
		PDependencies:   passDependencies,
	}, nil, &pass)
	if isError(ret) {
		return vk.NullRenderPass, frameError(ret, "create render pass")
	}
	c.passes[key] = pass
	return pass, nil
}

func (c *Context) framebuffer(pass vk.RenderPass, views []*TextureView, width, height uint32) (vk.Framebuffer, error) {
	key := framebufferKey{pass: pass, n: len(views), width: width, height: height}
	handles := make([]vk.ImageView, len(views))
	for i, v := range views {
		key.views[i] = v.view
		handles[i] = v.view
	}
	if fb, ok := c.framebuffers[key]; ok {
		return fb, nil
	}
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(c.gpu.device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(handles)),
		PAttachments:    handles,
		Width:           width,
		Height:          height,
		Layers:          1,
	}, nil, &fb)
	if isError(ret) {
		return vk.NullFramebuffer, frameError(ret, "create framebuffer")
	}
	c.framebuffers[key] = fb
	return fb, nil
}

// flushFramebuffers drops every cached framebuffer. The device must be idle.
func (c *Context) flushFramebuffers() {
	if len(c.framebuffers) > 0 {
		c.log.Debug("vulkan: flushing framebuffers", "count", len(c.framebuffers))
	}
	for key, fb := range c.framebuffers {
		vk.DestroyFramebuffer(c.gpu.device, fb, nil)
		delete(c.framebuffers, key)
	}
}

// evictFramebuffers drops the cached framebuffers that reference view.
func (c *Context) evictFramebuffers(view vk.ImageView) {
	for key, fb := range c.framebuffers {
		if key.references(view) {
			vk.DestroyFramebuffer(c.gpu.device, fb, nil)
			delete(c.framebuffers, key)
		}
	}
}

func (k framebufferKey) references(view vk.ImageView) bool {
	for i := 0; i < k.n; i++ {
		if k.views[i] == view {
			return true
		}
	}
	return false
}

// flippedViewport maps clip space y up onto the framebuffer, matching the
// convention shaders written for wgpu expect.
func flippedViewport(width, height uint32) vk.Viewport {
	return vk.Viewport{
		X:        0,
		Y:        float32(height),
		Width:    float32(width),
		Height:   -float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

type colorAttachment struct {
	view  *TextureView
	clear gputypes.Color
	load  bool
}

// RenderPassBuilder describes a render pass over the frame's view and any
// extra attachments.
type RenderPassBuilder struct {
	enc    *Encoder
	label  string
	colors []colorAttachment
	depth  *DepthTexture
	err    error
}

// NewRenderPass starts a pass whose first color attachment is the frame's
// view, cleared to opaque white unless configured otherwise.
func NewRenderPass(frame *noboiler.Frame) *RenderPassBuilder {
	enc, ok := frame.Encoder.(*Encoder)
	if !ok {
		return &RenderPassBuilder{err: ErrNotVulkan, colors: make([]colorAttachment, 1)}
	}
	b := newRenderPassBuilder(enc)
	if view, ok := frame.View.(*TextureView); ok {
		b.colors[0].view = view
	} else {
		b.err = ErrNotVulkan
	}
	return b
}

func newRenderPassBuilder(enc *Encoder) *RenderPassBuilder {
	return &RenderPassBuilder{
		enc:   enc,
		label: "Render Pass",
		colors: []colorAttachment{{
			view:  enc.target,
			clear: gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		}},
	}
}

func (b *RenderPassBuilder) Label(label string) *RenderPassBuilder {
	b.label = label
	return b
}

// ClearColor sets the color the frame's view is cleared to.
func (b *RenderPassBuilder) ClearColor(c gputypes.Color) *RenderPassBuilder {
	b.colors[0].clear = c
	b.colors[0].load = false
	return b
}

// LoadColor keeps the frame's view contents instead of clearing them.
func (b *RenderPassBuilder) LoadColor() *RenderPassBuilder {
	b.colors[0].load = true
	return b
}

// AddColorAttachment appends a color attachment cleared to clear.
func (b *RenderPassBuilder) AddColorAttachment(view *TextureView, clear gputypes.Color) *RenderPassBuilder {
	if view == nil {
		b.err = errors.New("vulkan: nil color attachment")
		return b
	}
	b.colors = append(b.colors, colorAttachment{view: view, clear: clear})
	return b
}

// DepthStencilAttachment attaches depth, cleared to 1 with stencil 0.
func (b *RenderPassBuilder) DepthStencilAttachment(depth *DepthTexture) *RenderPassBuilder {
	b.depth = depth
	return b
}

func (b *RenderPassBuilder) key() (passKey, []*TextureView, error) {
	var key passKey
	if len(b.colors) > maxColorAttachments {
		return key, nil, errors.Errorf("vulkan: %s has %d color attachments, at most %d are supported",
			b.label, len(b.colors), maxColorAttachments)
	}
	views := make([]*TextureView, 0, len(b.colors)+1)
	for i, a := range b.colors {
		k := attachmentKey{
			format:  a.view.format,
			load:    vk.AttachmentLoadOpClear,
			initial: vk.ImageLayoutUndefined,
			final:   a.view.final,
		}
		if a.load {
			k.load = vk.AttachmentLoadOpLoad
			k.initial = a.view.layout
		}
		key.colors[i] = k
		views = append(views, a.view)
	}
	key.n = len(b.colors)
	if b.depth != nil {
		v := b.depth.View()
		if v.view == vk.NullImageView {
			return key, nil, errors.Errorf("vulkan: %s uses a destroyed depth texture", b.label)
		}
		key.hasDepth = true
		key.depth = attachmentKey{
			format:  v.format,
			load:    vk.AttachmentLoadOpClear,
			initial: vk.ImageLayoutUndefined,
			final:   v.final,
		}
		views = append(views, v)
	}
	return key, views, nil
}

// Build begins the pass on the frame's encoder. A pass still open on the
// encoder is ended first.
func (b *RenderPassBuilder) Build() (*RenderPass, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.colors[0].view == nil {
		return nil, errors.Errorf("vulkan: %s has no target view", b.label)
	}
	key, views, err := b.key()
	if err != nil {
		return nil, err
	}
	enc := b.enc
	if enc.pass != nil {
		if err := enc.pass.End(); err != nil {
			return nil, err
		}
	}
	c := enc.ctx
	pass, err := c.renderPass(key)
	if err != nil {
		return nil, errors.Wrap(err, b.label)
	}
	width, height := views[0].Size()
	for _, v := range views[1:] {
		w, h := v.Size()
		width, height = min(width, w), min(height, h)
	}
	fb, err := c.framebuffer(pass, views, width, height)
	if err != nil {
		return nil, errors.Wrap(err, b.label)
	}

	clears := make([]vk.ClearValue, 0, len(views))
	for _, a := range b.colors {
		clears = append(clears, vk.NewClearValue([]float32{
			float32(a.clear.R), float32(a.clear.G), float32(a.clear.B), float32(a.clear.A),
		}))
	}
	if b.depth != nil {
		clears = append(clears, vk.NewClearDepthStencil(1.0, 0))
	}
	area := vk.Rect2D{Extent: vk.Extent2D{Width: width, Height: height}}
	vk.CmdBeginRenderPass(enc.cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      pass,
		Framebuffer:     fb,
		RenderArea:      area,
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)
	vk.CmdSetViewport(enc.cmd, 0, 1, []vk.Viewport{flippedViewport(width, height)})
	vk.CmdSetScissor(enc.cmd, 0, 1, []vk.Rect2D{area})

	rp := &RenderPass{enc: enc, label: b.label, views: views}
	enc.pass = rp
	return rp, nil
}

// RenderPass records draw commands between begin and end of a pass.
type RenderPass struct {
	enc      *Encoder
	label    string
	views    []*TextureView
	pipeline *Pipeline
	err      error
	ended    bool
}

func (p *RenderPass) Label() string {
	return p.label
}

func (p *RenderPass) fail(err error) {
	if p.err == nil {
		p.err = errors.Wrap(err, p.label)
	}
}

// SetPipeline binds a pipeline built by this package.
func (p *RenderPass) SetPipeline(pipeline noboiler.Pipeline) {
	pl, ok := pipeline.(*Pipeline)
	if !ok || pl == nil {
		p.fail(ErrNotVulkan)
		return
	}
	p.pipeline = pl
	vk.CmdBindPipeline(p.enc.cmd, vk.PipelineBindPointGraphics, pl.pipeline)
}

// SetBindGroup binds a descriptor set at index of the current pipeline's layout.
func (p *RenderPass) SetBindGroup(index uint32, set vk.DescriptorSet) {
	if p.pipeline == nil {
		p.fail(errors.New("vulkan: bind group set before a pipeline"))
		return
	}
	vk.CmdBindDescriptorSets(p.enc.cmd, vk.PipelineBindPointGraphics, p.pipeline.layout,
		index, 1, []vk.DescriptorSet{set}, 0, nil)
}

// SetVertexBuffer binds b at slot. Empty buffers are skipped.
func (p *RenderPass) SetVertexBuffer(slot uint32, b *Buffer) {
	if b == nil || b.buffer == vk.NullBuffer {
		return
	}
	vk.CmdBindVertexBuffers(p.enc.cmd, slot, 1, []vk.Buffer{b.buffer}, []vk.DeviceSize{0})
}

// SetIndexBuffer binds b as a uint32 index buffer. Empty buffers are skipped.
func (p *RenderPass) SetIndexBuffer(b *Buffer) {
	if b == nil || b.buffer == vk.NullBuffer {
		return
	}
	vk.CmdBindIndexBuffer(p.enc.cmd, b.buffer, 0, vk.IndexTypeUint32)
}

func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if vertexCount == 0 || instanceCount == 0 {
		return
	}
	vk.CmdDraw(p.enc.cmd, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if indexCount == 0 || instanceCount == 0 {
		return
	}
	vk.CmdDrawIndexed(p.enc.cmd, indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// End closes the pass and returns the first error recorded while it was
// open. Calling End again returns the same error.
func (p *RenderPass) End() error {
	if p.ended {
		return p.err
	}
	p.ended = true
	vk.CmdEndRenderPass(p.enc.cmd)
	for _, v := range p.views {
		v.layout = v.final
		if v == p.enc.target {
			p.enc.presentable = true
		}
	}
	if p.enc.pass == p {
		p.enc.pass = nil
	}
	return p.err
}
