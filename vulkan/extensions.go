package vulkan

import vk "github.com/vulkan-go/vulkan"

// enumerate runs the two-call Vulkan enumeration pattern: list is called once
// for the count and once to fill the slice. name reads one entry.
func enumerate[T any](list func(count *uint32, out []T) vk.Result, name func(*T) string) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	orPanic(newError(list(&count, nil)))
	props := make([]T, count)
	orPanic(newError(list(&count, props)))
	names = make([]string, 0, count)
	for i := range props[:count] {
		names = append(names, name(&props[i]))
	}
	return names, nil
}

func extensionName(p *vk.ExtensionProperties) string {
	p.Deref()
	return vk.ToString(p.ExtensionName[:])
}

func layerName(p *vk.LayerProperties) string {
	p.Deref()
	return vk.ToString(p.LayerName[:])
}

// InstanceExtensions lists the instance extensions the loader offers.
func InstanceExtensions() ([]string, error) {
	return enumerate(func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateInstanceExtensionProperties("", count, out)
	}, extensionName)
}

// DeviceExtensions lists the extensions gpu supports.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	return enumerate(func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateDeviceExtensionProperties(gpu, "", count, out)
	}, extensionName)
}

// ValidationLayers lists the instance layers installed on the system.
func ValidationLayers() ([]string, error) {
	return enumerate(vk.EnumerateInstanceLayerProperties, layerName)
}

// extensionSet splits names into the ones bring-up cannot do without and the
// ones that are enabled only when present.
type extensionSet struct {
	required []string
	wanted   []string
}

// resolve picks the names to enable from actual. Required names are always
// returned so creation fails loudly when one is absent.
func (e extensionSet) resolve(actual []string) (enabled, missingRequired, missingWanted []string) {
	have := make(map[string]struct{}, len(actual))
	for _, s := range actual {
		have[safeString(s)] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, s := range safeStrings(e.required) {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		enabled = append(enabled, s)
		if _, ok := have[s]; !ok {
			missingRequired = append(missingRequired, s)
		}
	}
	for _, s := range safeStrings(e.wanted) {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := have[s]; ok {
			enabled = append(enabled, s)
		} else {
			missingWanted = append(missingWanted, s)
		}
	}
	return enabled, missingRequired, missingWanted
}
