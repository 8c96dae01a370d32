package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestClampExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 1024, Height: 768},
	}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, clampExtent(fixed, 800, 600),
		"the current extent wins when the platform dictates it")

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 2048},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, clampExtent(free, 800, 600))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 2048}, clampExtent(free, 5000, 3000))
	assert.Equal(t, vk.Extent2D{Width: 1, Height: 1}, clampExtent(free, 0, 0))

	minimized := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{}}
	assert.Equal(t, vk.Extent2D{}, clampExtent(minimized, 800, 600))
}

func TestSwapImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), swapImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), swapImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
	assert.Equal(t, uint32(4), swapImageCount(vk.SurfaceCapabilities{MinImageCount: 3}), "zero max is unbounded")
}

func TestPreTransform(t *testing.T) {
	assert.Equal(t, vk.SurfaceTransformIdentityBit, preTransform(vk.SurfaceCapabilities{
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit | vk.SurfaceTransformRotate90Bit),
		CurrentTransform:    vk.SurfaceTransformRotate90Bit,
	}))
	assert.Equal(t, vk.SurfaceTransformRotate90Bit, preTransform(vk.SurfaceCapabilities{
		SupportedTransforms: vk.SurfaceTransformFlags(vk.SurfaceTransformRotate90Bit),
		CurrentTransform:    vk.SurfaceTransformRotate90Bit,
	}))
}
