package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestExtensionSetResolve(t *testing.T) {
	set := extensionSet{
		required: []string{"VK_KHR_surface", "VK_KHR_win32_surface", "VK_KHR_surface\x00"},
		wanted:   []string{"VK_EXT_debug_report", "VK_KHR_portability_enumeration", "VK_KHR_surface"},
	}
	enabled, missing, missingWanted := set.resolve([]string{
		"VK_KHR_surface",
		"VK_EXT_debug_report",
	})
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_win32_surface\x00", "VK_EXT_debug_report\x00"}, enabled)
	assert.Equal(t, []string{"VK_KHR_win32_surface\x00"}, missing)
	assert.Equal(t, []string{"VK_KHR_portability_enumeration\x00"}, missingWanted)
}

func TestDeviceExtensionSet(t *testing.T) {
	enabled, missing, _ := deviceExtensions.resolve([]string{"VK_KHR_swapchain", "VK_KHR_maintenance1"})
	assert.Equal(t, []string{"VK_KHR_swapchain\x00"}, enabled)
	assert.Empty(t, missing)

	_, missing, _ = deviceExtensions.resolve(nil)
	assert.Equal(t, []string{"VK_KHR_swapchain\x00"}, missing)
}

func TestHasName(t *testing.T) {
	list := []string{"VK_EXT_debug_report\x00"}
	assert.True(t, hasName(list, debugReportExtension))
	assert.False(t, hasName(list, portabilityEnumerate))
}

func TestEnumerate(t *testing.T) {
	available := []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"}
	var calls int
	list := func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		calls++
		if out == nil {
			*count = uint32(len(available))
			return vk.Success
		}
		for i := range out {
			copy(out[i].ExtensionName[:], available[i])
		}
		return vk.Success
	}

	names, err := enumerate(list, extensionName)
	require.NoError(t, err)
	assert.Equal(t, available, names)
	assert.Equal(t, 2, calls)
}

func TestEnumerateEmpty(t *testing.T) {
	names, err := enumerate(func(count *uint32, out []vk.LayerProperties) vk.Result {
		*count = 0
		return vk.Success
	}, layerName)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEnumerateError(t *testing.T) {
	_, err := enumerate(func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.ErrorOutOfHostMemory
	}, extensionName)
	assert.Error(t, err)
}
