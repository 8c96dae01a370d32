package vulkan

import vk "github.com/vulkan-go/vulkan"

type queueFamily struct {
	flags   vk.QueueFlags
	count   uint32
	present bool
}

// pickQueueFamilies returns the families to submit graphics work and
// presentation to. A family that can do both wins over a split pair.
func pickQueueFamilies(families []queueFamily) (graphics, present uint32, ok bool) {
	graphicsFound, presentFound := false, false
	for i, f := range families {
		if f.count == 0 {
			continue
		}
		hasGraphics := f.flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		if hasGraphics && f.present {
			return uint32(i), uint32(i), true
		}
		if hasGraphics && !graphicsFound {
			graphics, graphicsFound = uint32(i), true
		}
		if f.present && !presentFound {
			present, presentFound = uint32(i), true
		}
	}
	return graphics, present, graphicsFound && presentFound
}

func queueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) []queueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)

	families := make([]queueFamily, count)
	for i := range props {
		props[i].Deref()
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, uint32(i), surface, &supported)
		families[i] = queueFamily{
			flags:   props[i].QueueFlags,
			count:   props[i].QueueCount,
			present: supported.B(),
		}
	}
	return families
}

// queueCreateInfos requests one queue per distinct family.
func queueCreateInfos(graphics, present uint32) []vk.DeviceQueueCreateInfo {
	infos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: graphics,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	if present != graphics {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: present,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
