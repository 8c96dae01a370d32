package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

var (
	graphicsFlags = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit)
	computeFlags  = vk.QueueFlags(vk.QueueComputeBit | vk.QueueTransferBit)
)

func TestPickQueueFamilies(t *testing.T) {
	tests := []struct {
		name              string
		families          []queueFamily
		graphics, present uint32
		ok                bool
	}{
		{
			name:     "shared family",
			families: []queueFamily{{flags: computeFlags, count: 2, present: true}, {flags: graphicsFlags, count: 1, present: true}},
			graphics: 1, present: 1, ok: true,
		},
		{
			name:     "split families",
			families: []queueFamily{{flags: graphicsFlags, count: 1}, {flags: computeFlags, count: 1, present: true}},
			graphics: 0, present: 1, ok: true,
		},
		{
			name: "shared wins over earlier split",
			families: []queueFamily{
				{flags: graphicsFlags, count: 1},
				{flags: computeFlags, count: 1, present: true},
				{flags: graphicsFlags, count: 1, present: true},
			},
			graphics: 2, present: 2, ok: true,
		},
		{
			name:     "empty family skipped",
			families: []queueFamily{{flags: graphicsFlags, count: 0, present: true}, {flags: graphicsFlags, count: 4, present: true}},
			graphics: 1, present: 1, ok: true,
		},
		{
			name:     "no present",
			families: []queueFamily{{flags: graphicsFlags, count: 1}},
			ok:       false,
		},
		{
			name:     "no graphics",
			families: []queueFamily{{flags: computeFlags, count: 1, present: true}},
			ok:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graphics, present, ok := pickQueueFamilies(tt.families)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.graphics, graphics)
				assert.Equal(t, tt.present, present)
			}
		})
	}
}

func TestQueueCreateInfos(t *testing.T) {
	assert.Len(t, queueCreateInfos(0, 0), 1)
	infos := queueCreateInfos(0, 2)
	if assert.Len(t, infos, 2) {
		assert.Equal(t, uint32(2), infos[1].QueueFamilyIndex)
		assert.Equal(t, []float32{1.0}, infos[1].PQueuePriorities)
	}
}

func TestPickGPU(t *testing.T) {
	candidates := []gpuCandidate{
		{name: "llvmpipe", kind: vk.PhysicalDeviceTypeCpu, usable: true},
		{name: "broken discrete", kind: vk.PhysicalDeviceTypeDiscreteGpu, usable: false},
		{name: "igpu", kind: vk.PhysicalDeviceTypeIntegratedGpu, usable: true},
		{name: "second igpu", kind: vk.PhysicalDeviceTypeIntegratedGpu, usable: true},
	}
	idx, ok := pickGPU(candidates)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	candidates[1].usable = true
	idx, _ = pickGPU(candidates)
	assert.Equal(t, 1, idx)

	_, ok = pickGPU([]gpuCandidate{{kind: vk.PhysicalDeviceTypeDiscreteGpu}})
	assert.False(t, ok)
	_, ok = pickGPU(nil)
	assert.False(t, ok)
}

func TestPickDepthFormat(t *testing.T) {
	attachable := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	only := func(supported vk.Format) func(vk.Format) vk.FormatFeatureFlags {
		return func(f vk.Format) vk.FormatFeatureFlags {
			if f == supported {
				return attachable
			}
			return 0
		}
	}

	f, ok := pickDepthFormat(depthFormats, only(vk.FormatD32SfloatS8Uint))
	assert.True(t, ok)
	assert.Equal(t, vk.FormatD32SfloatS8Uint, f)

	f, ok = pickDepthFormat(depthFormats, func(vk.Format) vk.FormatFeatureFlags { return attachable })
	assert.True(t, ok)
	assert.Equal(t, vk.FormatD24UnormS8Uint, f)

	_, ok = pickDepthFormat(depthFormats, only(vk.FormatD32Sfloat))
	assert.False(t, ok)
}

func TestFindMemoryType(t *testing.T) {
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 3
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	props.MemoryTypes[2].PropertyFlags = hostVisible | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit)

	idx, ok := findMemoryType(props, 0b111, hostVisible)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), idx)

	idx, ok = findMemoryType(props, 0b111, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	assert.True(t, ok)
	assert.Equal(t, uint32(0), idx)

	_, ok = findMemoryType(props, 0b011, hostVisible)
	assert.False(t, ok, "type 2 is excluded by the type bits")

	_, ok = findMemoryType(props, 0b1000, 0)
	assert.False(t, ok, "type 3 is past the type count")
}
