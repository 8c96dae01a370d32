package vulkan

import (
	"github.com/andewx/noboiler"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var textureFormats = map[gputypes.TextureFormat]vk.Format{
	gputypes.TextureFormatBGRA8Unorm:          vk.FormatB8g8r8a8Unorm,
	gputypes.TextureFormatRGBA8Unorm:          vk.FormatR8g8b8a8Unorm,
	gputypes.TextureFormatR8Unorm:             vk.FormatR8Unorm,
	gputypes.TextureFormatDepth24PlusStencil8: vk.FormatD24UnormS8Uint,
}

func textureFormat(f gputypes.TextureFormat) (vk.Format, error) {
	if v, ok := textureFormats[f]; ok {
		return v, nil
	}
	return vk.FormatUndefined, errors.Errorf("vulkan: unsupported texture format %v", f)
}

// surfaceTextureFormat reports a swapchain format in gputypes terms.
// Formats without a counterpart report TextureFormatUndefined.
func surfaceTextureFormat(f vk.Format) gputypes.TextureFormat {
	switch f {
	case vk.FormatB8g8r8a8Unorm, vk.FormatB8g8r8a8Srgb:
		return gputypes.TextureFormatBGRA8Unorm
	case vk.FormatR8g8b8a8Unorm, vk.FormatR8g8b8a8Srgb:
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatUndefined
}

var vertexFormats = map[gputypes.VertexFormat]vk.Format{
	gputypes.VertexFormatFloat32:   vk.FormatR32Sfloat,
	gputypes.VertexFormatFloat32x2: vk.FormatR32g32Sfloat,
	gputypes.VertexFormatFloat32x3: vk.FormatR32g32b32Sfloat,
	gputypes.VertexFormatFloat32x4: vk.FormatR32g32b32a32Sfloat,
	gputypes.VertexFormatUint32:    vk.FormatR32Uint,
	gputypes.VertexFormatUint32x2:  vk.FormatR32g32Uint,
	gputypes.VertexFormatUint32x3:  vk.FormatR32g32b32Uint,
	gputypes.VertexFormatUint32x4:  vk.FormatR32g32b32a32Uint,
	gputypes.VertexFormatSint32:    vk.FormatR32Sint,
	gputypes.VertexFormatSint32x2:  vk.FormatR32g32Sint,
	gputypes.VertexFormatSint32x3:  vk.FormatR32g32b32Sint,
	gputypes.VertexFormatSint32x4:  vk.FormatR32g32b32a32Sint,
}

func vertexFormat(f gputypes.VertexFormat) (vk.Format, error) {
	if v, ok := vertexFormats[f]; ok {
		return v, nil
	}
	return vk.FormatUndefined, errors.Errorf("vulkan: unsupported vertex format %v", f)
}

// vertexInput converts buffer layouts into binding and attribute
// descriptions. Layout i is bound at binding i.
func vertexInput(layouts []gputypes.VertexBufferLayout) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	bindings := make([]vk.VertexInputBindingDescription, 0, len(layouts))
	var attrs []vk.VertexInputAttributeDescription
	for i, l := range layouts {
		rate := vk.VertexInputRateVertex
		if l.StepMode == gputypes.VertexStepModeInstance {
			rate = vk.VertexInputRateInstance
		}
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   uint32(i),
			Stride:    uint32(l.ArrayStride),
			InputRate: rate,
		})
		for _, a := range l.Attributes {
			f, err := vertexFormat(a.Format)
			if err != nil {
				return nil, nil, err
			}
			attrs = append(attrs, vk.VertexInputAttributeDescription{
				Location: a.ShaderLocation,
				Binding:  uint32(i),
				Format:   f,
				Offset:   uint32(a.Offset),
			})
		}
	}
	return bindings, attrs, nil
}

func primitiveTopology(t gputypes.PrimitiveTopology) vk.PrimitiveTopology {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return vk.PrimitiveTopologyPointList
	case gputypes.PrimitiveTopologyLineList:
		return vk.PrimitiveTopologyLineList
	case gputypes.PrimitiveTopologyLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case gputypes.PrimitiveTopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	}
	return vk.PrimitiveTopologyTriangleList
}

func cullMode(m gputypes.CullMode) vk.CullModeFlags {
	switch m {
	case gputypes.CullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case gputypes.CullModeBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
	return vk.CullModeFlags(vk.CullModeNone)
}

func frontFace(f gputypes.FrontFace) vk.FrontFace {
	if f == gputypes.FrontFaceCW {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

func compareOp(f gputypes.CompareFunction) vk.CompareOp {
	switch f {
	case gputypes.CompareFunctionNever:
		return vk.CompareOpNever
	case gputypes.CompareFunctionLess:
		return vk.CompareOpLess
	case gputypes.CompareFunctionEqual:
		return vk.CompareOpEqual
	case gputypes.CompareFunctionLessEqual:
		return vk.CompareOpLessOrEqual
	case gputypes.CompareFunctionGreater:
		return vk.CompareOpGreater
	case gputypes.CompareFunctionNotEqual:
		return vk.CompareOpNotEqual
	case gputypes.CompareFunctionGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	}
	return vk.CompareOpAlways
}

var presentModes = map[noboiler.PresentMode]vk.PresentMode{
	noboiler.PresentModeFifo:        vk.PresentModeFifo,
	noboiler.PresentModeFifoRelaxed: vk.PresentModeFifoRelaxed,
	noboiler.PresentModeImmediate:   vk.PresentModeImmediate,
	noboiler.PresentModeMailbox:     vk.PresentModeMailbox,
}

// pickPresentMode returns the requested mode when the surface supports it and
// FIFO otherwise, which every surface supports.
func pickPresentMode(requested noboiler.PresentMode, supported []vk.PresentMode) (mode vk.PresentMode, fellBack bool) {
	want, ok := presentModes[requested]
	if !ok {
		return vk.PresentModeFifo, true
	}
	for _, m := range supported {
		if m == want {
			return want, false
		}
	}
	return vk.PresentModeFifo, want != vk.PresentModeFifo
}

func presentModeOf(m vk.PresentMode) noboiler.PresentMode {
	for mode, v := range presentModes {
		if v == m {
			return mode
		}
	}
	return noboiler.PresentModeFifo
}

var compositeAlphaOrder = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
	vk.CompositeAlphaInheritBit,
}

var alphaModes = map[noboiler.AlphaMode]vk.CompositeAlphaFlagBits{
	noboiler.AlphaModeOpaque:         vk.CompositeAlphaOpaqueBit,
	noboiler.AlphaModePreMultiplied:  vk.CompositeAlphaPreMultipliedBit,
	noboiler.AlphaModePostMultiplied: vk.CompositeAlphaPostMultipliedBit,
	noboiler.AlphaModeInherit:        vk.CompositeAlphaInheritBit,
}

// pickCompositeAlpha honors an explicit request when supported. Auto and
// unsupported requests take the first supported mode in opaque,
// premultiplied, postmultiplied, inherit order.
func pickCompositeAlpha(requested noboiler.AlphaMode, supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	if want, ok := alphaModes[requested]; ok && supported&vk.CompositeAlphaFlags(want) != 0 {
		return want
	}
	for _, bit := range compositeAlphaOrder {
		if supported&vk.CompositeAlphaFlags(bit) != 0 {
			return bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func alphaModeOf(bit vk.CompositeAlphaFlagBits) noboiler.AlphaMode {
	for mode, v := range alphaModes {
		if v == bit {
			return mode
		}
	}
	return noboiler.AlphaModeAuto
}

// pickSurfaceFormat prefers 8 bit BGRA then RGBA unorm formats and falls back
// to the first format the surface reports.
func pickSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("vulkan: surface has no pixel formats")
	}
	for i := range formats {
		formats[i].Deref()
	}
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		f := formats[0]
		f.Format = vk.FormatB8g8r8a8Unorm
		return f, nil
	}
	for _, want := range []vk.Format{vk.FormatB8g8r8a8Unorm, vk.FormatR8g8b8a8Unorm} {
		for _, f := range formats {
			if f.Format == want {
				return f, nil
			}
		}
	}
	return formats[0], nil
}
