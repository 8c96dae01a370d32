package vulkan

import (
	"github.com/andewx/noboiler"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DepthStencilState enables depth testing against a depth attachment.
type DepthStencilState struct {
	Format            gputypes.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
}

// Pipeline is a compiled graphics pipeline and its layout.
type Pipeline struct {
	device   vk.Device
	pipeline vk.Pipeline
	layout   vk.PipelineLayout
	label    string
}

var _ noboiler.Pipeline = (*Pipeline)(nil)

func (p *Pipeline) Label() string {
	return p.label
}

func (p *Pipeline) Handle() vk.Pipeline {
	return p.pipeline
}

func (p *Pipeline) Layout() vk.PipelineLayout {
	return p.layout
}

func (p *Pipeline) Destroy() {
	if p.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(p.device, p.pipeline, nil)
		p.pipeline = vk.NullPipeline
	}
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.device, p.layout, nil)
		p.layout = vk.NullPipelineLayout
	}
}

// PipelineBuilder collects the state of a graphics pipeline.
type PipelineBuilder struct {
	ctx *Context
	err error

	label       string
	layoutLabel string

	vertPath, fragPath   string
	vertEntry, fragEntry string

	buffers    []gputypes.VertexBufferLayout
	bindGroups []vk.DescriptorSetLayout
	topology   gputypes.PrimitiveTopology
	cullMode   gputypes.CullMode
	frontFace  gputypes.FrontFace
	depth      *DepthStencilState
	targets    []gputypes.TextureFormat
}

func newPipelineBuilder(data *noboiler.AppData) *PipelineBuilder {
	b := &PipelineBuilder{
		label:       "Render Pipeline",
		layoutLabel: "Render Pipeline Layout",
		topology:    gputypes.PrimitiveTopologyTriangleList,
		cullMode:    gputypes.CullModeBack,
		frontFace:   gputypes.FrontFaceCCW,
	}
	b.ctx, b.err = ContextOf(data)
	return b
}

// PipelineFromShaderFile builds a pipeline from one shader file holding both
// stages. WGSL files use the vs_main and fs_main entry points.
func PipelineFromShaderFile(path string, data *noboiler.AppData) *PipelineBuilder {
	b := newPipelineBuilder(data)
	b.vertPath, b.fragPath = path, path
	b.vertEntry, b.fragEntry = "vs_main", "fs_main"
	return b
}

// PipelineFromSPIRV builds a pipeline from a vertex and a fragment SPIR-V
// file, both with a main entry point.
func PipelineFromSPIRV(vertPath, fragPath string, data *noboiler.AppData) *PipelineBuilder {
	b := newPipelineBuilder(data)
	b.vertPath, b.fragPath = vertPath, fragPath
	b.vertEntry, b.fragEntry = "main", "main"
	return b
}

func (b *PipelineBuilder) Label(label string) *PipelineBuilder {
	b.label = label
	return b
}

// LayoutLabel names the pipeline layout in log messages.
func (b *PipelineBuilder) LayoutLabel(label string) *PipelineBuilder {
	b.layoutLabel = label
	return b
}

// AddVertexBuffer appends a vertex buffer layout. The n-th layout is bound
// at slot n.
func (b *PipelineBuilder) AddVertexBuffer(layout gputypes.VertexBufferLayout) *PipelineBuilder {
	b.buffers = append(b.buffers, layout)
	return b
}

// AddBindGroup appends a descriptor set layout to the pipeline layout.
func (b *PipelineBuilder) AddBindGroup(layout vk.DescriptorSetLayout) *PipelineBuilder {
	b.bindGroups = append(b.bindGroups, layout)
	return b
}

func (b *PipelineBuilder) VertexEntry(name string) *PipelineBuilder {
	b.vertEntry = name
	return b
}

func (b *PipelineBuilder) FragmentEntry(name string) *PipelineBuilder {
	b.fragEntry = name
	return b
}

func (b *PipelineBuilder) Topology(t gputypes.PrimitiveTopology) *PipelineBuilder {
	b.topology = t
	return b
}

func (b *PipelineBuilder) CullMode(m gputypes.CullMode) *PipelineBuilder {
	b.cullMode = m
	return b
}

func (b *PipelineBuilder) FrontFace(f gputypes.FrontFace) *PipelineBuilder {
	b.frontFace = f
	return b
}

// DepthStencil enables depth testing. Passes using the pipeline must attach
// a depth texture.
func (b *PipelineBuilder) DepthStencil(state *DepthStencilState) *PipelineBuilder {
	b.depth = state
	return b
}

// AddColorTarget appends a color target after the surface target.
func (b *PipelineBuilder) AddColorTarget(format gputypes.TextureFormat) *PipelineBuilder {
	b.targets = append(b.targets, format)
	return b
}

// compatiblePass describes a render pass the pipeline can be used with.
// Compatibility only depends on attachment formats and samples.
func (b *PipelineBuilder) compatiblePass() (passKey, error) {
	var key passKey
	n := len(b.targets) + 1
	if n > maxColorAttachments {
		return key, errors.Errorf("vulkan: %s has %d color targets, at most %d are supported",
			b.label, n, maxColorAttachments)
	}
	key.colors[0] = attachmentKey{
		format:  b.ctx.swap.format.Format,
		load:    vk.AttachmentLoadOpClear,
		initial: vk.ImageLayoutUndefined,
		final:   vk.ImageLayoutPresentSrc,
	}
	for i, t := range b.targets {
		f, err := b.ctx.textureFormat(t)
		if err != nil {
			return key, err
		}
		key.colors[i+1] = attachmentKey{
			format:  f,
			load:    vk.AttachmentLoadOpClear,
			initial: vk.ImageLayoutUndefined,
			final:   vk.ImageLayoutShaderReadOnlyOptimal,
		}
	}
	key.n = n
	if b.depth != nil {
		f, err := b.ctx.textureFormat(b.depth.Format)
		if err != nil {
			return key, err
		}
		key.hasDepth = true
		key.depth = attachmentKey{
			format:  f,
			load:    vk.AttachmentLoadOpClear,
			initial: vk.ImageLayoutUndefined,
			final:   vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}
	return key, nil
}

func (b *PipelineBuilder) stages() (vert, frag vk.ShaderModule, err error) {
	vertCode, err := loadShaderFile(b.vertPath)
	if err != nil {
		return vk.NullShaderModule, vk.NullShaderModule, err
	}
	fragCode := vertCode
	if b.fragPath != b.vertPath {
		if fragCode, err = loadShaderFile(b.fragPath); err != nil {
			return vk.NullShaderModule, vk.NullShaderModule, err
		}
	}
	if vert, err = b.ctx.createShaderModule(vertCode); err != nil {
		return vk.NullShaderModule, vk.NullShaderModule, err
	}
	if b.fragPath == b.vertPath {
		return vert, vert, nil
	}
	if frag, err = b.ctx.createShaderModule(fragCode); err != nil {
		vk.DestroyShaderModule(b.ctx.gpu.device, vert, nil)
		return vk.NullShaderModule, vk.NullShaderModule, err
	}
	return vert, frag, nil
}

func (b *PipelineBuilder) depthState() vk.PipelineDepthStencilStateCreateInfo {
	state := vk.PipelineDepthStencilStateCreateInfo{
		SType:          vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthCompareOp: vk.CompareOpAlways,
		MaxDepthBounds: 1,
	}
	if b.depth != nil {
		state.DepthTestEnable = vk.True
		if b.depth.DepthWriteEnabled {
			state.DepthWriteEnable = vk.True
		}
		state.DepthCompareOp = compareOp(b.depth.DepthCompare)
	}
	return state
}

// Build compiles the shaders and creates the pipeline. The shader modules
// are released once the pipeline exists.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	device := b.ctx.gpu.device

	bindings, attrs, err := vertexInput(b.buffers)
	if err != nil {
		return nil, errors.Wrap(err, b.label)
	}
	key, err := b.compatiblePass()
	if err != nil {
		return nil, err
	}
	pass, err := b.ctx.renderPass(key)
	if err != nil {
		return nil, errors.Wrap(err, b.label)
	}
	vert, frag, err := b.stages()
	if err != nil {
		return nil, err
	}
	defer func() {
		vk.DestroyShaderModule(device, vert, nil)
		if frag != vert {
			vk.DestroyShaderModule(device, frag, nil)
		}
	}()

	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(b.bindGroups)),
		PSetLayouts:    b.bindGroups,
	}, nil, &layout)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), b.layoutLabel)
	}

	blend := make([]vk.PipelineColorBlendAttachmentState, key.n)
	for i := range blend {
		blend[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable: vk.False,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
				vk.ColorComponentBBit | vk.ColorComponentABit),
		}
	}
	depth := b.depthState()
	dynamic := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}

	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: 2,
		PStages: []vk.PipelineShaderStageCreateInfo{{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert,
			PName:  safeString(b.vertEntry),
		}, {
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag,
			PName:  safeString(b.fragEntry),
		}},
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(bindings)),
			PVertexBindingDescriptions:      bindings,
			VertexAttributeDescriptionCount: uint32(len(attrs)),
			PVertexAttributeDescriptions:    attrs,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: primitiveTopology(b.topology),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    cullMode(b.cullMode),
			FrontFace:   frontFace(b.frontFace),
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1,
		},
		PDepthStencilState: &depth,
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: uint32(len(blend)),
			PAttachments:    blend,
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(dynamic)),
			PDynamicStates:    dynamic,
		},
		Layout:     layout,
		RenderPass: pass,
	}

	var cache vk.PipelineCache
	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(device, cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if isError(ret) {
		vk.DestroyPipelineLayout(device, layout, nil)
		return nil, errors.Wrap(frameError(ret, "create graphics pipeline"), b.label)
	}
	b.ctx.log.Debug("vulkan: pipeline created", "label", b.label, "layout", b.layoutLabel)
	return &Pipeline{
		device:   device,
		pipeline: pipelines[0],
		layout:   layout,
		label:    b.label,
	}, nil
}
