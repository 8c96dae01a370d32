package vulkan

import (
	"log/slog"

	"github.com/andewx/noboiler"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// gpuCandidate is what device selection needs to know about an adapter.
type gpuCandidate struct {
	name     string
	kind     vk.PhysicalDeviceType
	graphics uint32
	present  uint32
	// usable is false when the adapter lacks suitable queues or the
	// swapchain extension.
	usable bool
}

var gpuKindRank = map[vk.PhysicalDeviceType]int{
	vk.PhysicalDeviceTypeDiscreteGpu:   4,
	vk.PhysicalDeviceTypeIntegratedGpu: 3,
	vk.PhysicalDeviceTypeVirtualGpu:    2,
	vk.PhysicalDeviceTypeCpu:           1,
}

// pickGPU returns the index of the best usable adapter, preferring discrete
// over integrated over virtual over software ones. Ties keep enumeration
// order.
func pickGPU(candidates []gpuCandidate) (int, bool) {
	best, bestRank := -1, -1
	for i, c := range candidates {
		if !c.usable {
			continue
		}
		if r := gpuKindRank[c.kind]; r > bestRank {
			best, bestRank = i, r
		}
	}
	return best, best >= 0
}

// gpu is the selected physical device and the logical device opened on it.
type gpu struct {
	physical vk.PhysicalDevice
	props    vk.PhysicalDeviceProperties
	memProps vk.PhysicalDeviceMemoryProperties

	device         vk.Device
	graphicsFamily uint32
	presentFamily  uint32
	graphicsQueue  vk.Queue
	presentQueue   vk.Queue
	depthFormat    vk.Format
}

func (g *gpu) name() string {
	return vk.ToString(g.props.DeviceName[:])
}

func (g *gpu) separatePresent() bool {
	return g.graphicsFamily != g.presentFamily
}

var deviceExtensions = extensionSet{
	required: []string{swapchainExtension},
	wanted:   []string{portabilitySubset},
}

// openGPU selects an adapter that can render to surface and opens a logical
// device with a graphics and a present queue on it.
func openGPU(instance vk.Instance, surface vk.Surface, log *slog.Logger) (g *gpu, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	orPanic(newError(ret))
	if count == 0 {
		return nil, errors.Wrap(noboiler.ErrNoAdapter, "vulkan: no GPU devices found")
	}
	physical := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, physical)
	orPanic(newError(ret))

	candidates := make([]gpuCandidate, len(physical))
	for i, pd := range physical {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()
		c := gpuCandidate{name: vk.ToString(props.DeviceName[:]), kind: props.DeviceType}

		graphics, present, ok := pickQueueFamilies(queueFamilies(pd, surface))
		if ok {
			actual, err := DeviceExtensions(pd)
			orPanic(err)
			_, missing, _ := deviceExtensions.resolve(actual)
			c.usable = len(missing) == 0
		}
		c.graphics, c.present = graphics, present
		candidates[i] = c
		log.Debug("vulkan: found adapter", "name", c.name, "usable", c.usable)
	}
	idx, ok := pickGPU(candidates)
	if !ok {
		return nil, errors.Wrap(noboiler.ErrNoAdapter, "vulkan: no adapter can render to this surface")
	}

	g = &gpu{
		physical:       physical[idx],
		graphicsFamily: candidates[idx].graphics,
		presentFamily:  candidates[idx].present,
	}
	vk.GetPhysicalDeviceProperties(g.physical, &g.props)
	g.props.Deref()
	vk.GetPhysicalDeviceMemoryProperties(g.physical, &g.memProps)
	g.memProps.Deref()

	actual, err := DeviceExtensions(g.physical)
	orPanic(err)
	enabled, _, _ := deviceExtensions.resolve(actual)

	queues := queueCreateInfos(g.graphicsFamily, g.presentFamily)
	var device vk.Device
	ret = vk.CreateDevice(g.physical, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queues)),
		PQueueCreateInfos:       queues,
		EnabledExtensionCount:   uint32(len(enabled)),
		PpEnabledExtensionNames: enabled,
	}, nil, &device)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), "vulkan: create device")
	}
	g.device = device
	vk.GetDeviceQueue(device, g.graphicsFamily, 0, &g.graphicsQueue)
	if g.separatePresent() {
		vk.GetDeviceQueue(device, g.presentFamily, 0, &g.presentQueue)
	} else {
		g.presentQueue = g.graphicsQueue
	}

	g.depthFormat, ok = g.findDepthFormat()
	if !ok {
		vk.DestroyDevice(device, nil)
		return nil, errors.New("vulkan: adapter supports no depth stencil format")
	}

	log.Info("vulkan: adapter selected",
		"name", g.name(),
		"graphics_family", g.graphicsFamily,
		"present_family", g.presentFamily)
	return g, nil
}

// Packed depth stencil formats, most preferred first.
var depthFormats = []vk.Format{
	vk.FormatD24UnormS8Uint,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD16UnormS8Uint,
}

func (g *gpu) findDepthFormat() (vk.Format, bool) {
	return pickDepthFormat(depthFormats, func(f vk.Format) vk.FormatFeatureFlags {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(g.physical, f, &props)
		props.Deref()
		return props.OptimalTilingFeatures
	})
}

func pickDepthFormat(candidates []vk.Format, features func(vk.Format) vk.FormatFeatureFlags) (vk.Format, bool) {
	for _, f := range candidates {
		if features(f)&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0 {
			return f, true
		}
	}
	return vk.FormatUndefined, false
}

// findMemoryType returns the first memory type allowed by typeBits that has
// all the required property flags.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, required vk.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount && i < 32; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&required == required {
			return i, true
		}
	}
	return 0, false
}

func (g *gpu) allocate(reqs vk.MemoryRequirements, required vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	reqs.Deref()
	typeIndex, ok := findMemoryType(g.memProps, reqs.MemoryTypeBits, required)
	if !ok {
		return vk.NullDeviceMemory, errors.Errorf("vulkan: no memory type with properties %#x", uint32(required))
	}
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(g.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &mem)
	if isError(ret) {
		return vk.NullDeviceMemory, frameError(ret, "allocate memory")
	}
	return mem, nil
}

func (g *gpu) destroy() {
	if g.device != nil {
		vk.DestroyDevice(g.device, nil)
		g.device = nil
	}
}
