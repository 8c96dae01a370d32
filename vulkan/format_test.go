package vulkan

import (
	"testing"

	"github.com/andewx/noboiler"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestPickPresentMode(t *testing.T) {
	all := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo, vk.PresentModeFifoRelaxed}
	tests := []struct {
		name      string
		requested noboiler.PresentMode
		supported []vk.PresentMode
		want      vk.PresentMode
		fellBack  bool
	}{
		{"fifo", noboiler.PresentModeFifo, all, vk.PresentModeFifo, false},
		{"immediate", noboiler.PresentModeImmediate, all, vk.PresentModeImmediate, false},
		{"mailbox", noboiler.PresentModeMailbox, all, vk.PresentModeMailbox, false},
		{"fifo relaxed", noboiler.PresentModeFifoRelaxed, all, vk.PresentModeFifoRelaxed, false},
		{"unsupported", noboiler.PresentModeMailbox, []vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeFifo, true},
		{"fifo only", noboiler.PresentModeFifo, []vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeFifo, false},
		{"unknown", noboiler.PresentMode(42), all, vk.PresentModeFifo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fellBack := pickPresentMode(tt.requested, tt.supported)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.fellBack, fellBack)
		})
	}
	assert.Equal(t, noboiler.PresentModeImmediate, presentModeOf(vk.PresentModeImmediate))
}

func TestPickCompositeAlpha(t *testing.T) {
	opaque := vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit)
	pre := vk.CompositeAlphaFlags(vk.CompositeAlphaPreMultipliedBit)
	inherit := vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit)

	assert.Equal(t, vk.CompositeAlphaOpaqueBit, pickCompositeAlpha(noboiler.AlphaModeAuto, opaque|pre))
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, pickCompositeAlpha(noboiler.AlphaModePreMultiplied, opaque|pre))
	assert.Equal(t, vk.CompositeAlphaInheritBit, pickCompositeAlpha(noboiler.AlphaModeOpaque, inherit))
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, pickCompositeAlpha(noboiler.AlphaModeAuto, pre|inherit))
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, pickCompositeAlpha(noboiler.AlphaModeAuto, 0))

	assert.Equal(t, noboiler.AlphaModeInherit, alphaModeOf(vk.CompositeAlphaInheritBit))
}

func TestPickSurfaceFormat(t *testing.T) {
	bgra := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	odd := vk.SurfaceFormat{Format: vk.FormatA2b10g10r10UnormPack32, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		formats []vk.SurfaceFormat
		want    vk.Format
	}{
		{"bgra preferred", []vk.SurfaceFormat{srgb, rgba, bgra}, vk.FormatB8g8r8a8Unorm},
		{"rgba next", []vk.SurfaceFormat{srgb, rgba}, vk.FormatR8g8b8a8Unorm},
		{"first otherwise", []vk.SurfaceFormat{odd, srgb}, vk.FormatA2b10g10r10UnormPack32},
		{"undefined means any", []vk.SurfaceFormat{{Format: vk.FormatUndefined}}, vk.FormatB8g8r8a8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickSurfaceFormat(tt.formats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format)
		})
	}

	_, err := pickSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestSurfaceTextureFormat(t *testing.T) {
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, surfaceTextureFormat(vk.FormatB8g8r8a8Unorm))
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, surfaceTextureFormat(vk.FormatR8g8b8a8Srgb))
	assert.Equal(t, gputypes.TextureFormatUndefined, surfaceTextureFormat(vk.FormatA2b10g10r10UnormPack32))

	f, err := textureFormat(gputypes.TextureFormatRGBA8Unorm)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, f)
	_, err = textureFormat(gputypes.TextureFormatUndefined)
	assert.Error(t, err)
}

type colorVertex struct {
	Position [3]float32
	Color    [3]float32
}

func TestVertexInput(t *testing.T) {
	layouts := []gputypes.VertexBufferLayout{
		noboiler.LayoutOf[colorVertex](),
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 2},
			},
		},
	}
	bindings, attrs, err := vertexInput(layouts)
	require.NoError(t, err)

	assert.Equal(t, []vk.VertexInputBindingDescription{
		{Binding: 0, Stride: 24, InputRate: vk.VertexInputRateVertex},
		{Binding: 1, Stride: 8, InputRate: vk.VertexInputRateInstance},
	}, bindings)
	assert.Equal(t, []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
		{Location: 2, Binding: 1, Format: vk.FormatR32g32Sfloat, Offset: 0},
	}, attrs)

	_, _, err = vertexInput([]gputypes.VertexBufferLayout{{
		ArrayStride: 4,
		Attributes:  []gputypes.VertexAttribute{{Format: gputypes.VertexFormat(99)}},
	}})
	assert.Error(t, err)
}

func TestPipelineStateConversions(t *testing.T) {
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, primitiveTopology(gputypes.PrimitiveTopologyTriangleList))
	assert.Equal(t, vk.PrimitiveTopologyLineStrip, primitiveTopology(gputypes.PrimitiveTopologyLineStrip))
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), cullMode(gputypes.CullModeBack))
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), cullMode(gputypes.CullModeNone))
	assert.Equal(t, vk.FrontFaceCounterClockwise, frontFace(gputypes.FrontFaceCCW))
	assert.Equal(t, vk.FrontFaceClockwise, frontFace(gputypes.FrontFaceCW))
	assert.Equal(t, vk.CompareOpLess, compareOp(gputypes.CompareFunctionLess))
	assert.Equal(t, vk.CompareOpLessOrEqual, compareOp(gputypes.CompareFunctionLessEqual))
	assert.Equal(t, vk.CompareOpAlways, compareOp(gputypes.CompareFunctionAlways))
}
