package vulkan

import (
	"context"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/andewx/noboiler"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	validationLayer      = "VK_LAYER_KHRONOS_validation"
	debugReportExtension = "VK_EXT_debug_report"
	portabilityEnumerate = "VK_KHR_portability_enumeration"
	portabilitySubset    = "VK_KHR_portability_subset"
	swapchainExtension   = "VK_KHR_swapchain"
)

// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
const createEnumeratePortability vk.InstanceCreateFlags = 0x1

// InstanceOptions configures instance creation.
type InstanceOptions struct {
	AppName string
	// Extensions are the instance extensions the windowing system needs to
	// create a surface.
	Extensions []string
	// Validation enables the Khronos validation layer and routes its reports
	// into Logger.
	Validation bool
	Logger     *slog.Logger
}

// Instance is a Vulkan instance with its optional debug report callback.
type Instance struct {
	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	log           *slog.Logger
}

// NewInstance creates a Vulkan 1.1 instance. vk.Init must have been called.
func NewInstance(opts InstanceOptions) (inst *Instance, err error) {
	defer checkErr(&err)

	log := noboiler.OrNop(opts.Logger)
	exts := extensionSet{required: opts.Extensions}
	if opts.Validation {
		exts.wanted = append(exts.wanted, debugReportExtension)
	}
	if runtime.GOOS == "darwin" {
		exts.wanted = append(exts.wanted, portabilityEnumerate)
	}

	actual, err := InstanceExtensions()
	orPanic(err)
	enabled, missing, missingWanted := exts.resolve(actual)
	if len(missing) > 0 {
		return nil, errors.Errorf("vulkan: missing required instance extensions %q", missing)
	}
	if len(missingWanted) > 0 {
		log.Warn("vulkan: optional instance extensions unavailable", "extensions", missingWanted)
	}
	var flags vk.InstanceCreateFlags
	if hasName(enabled, portabilityEnumerate) {
		flags |= createEnumeratePortability
	}
	log.Debug("vulkan: enabling instance extensions", "count", len(enabled))

	var layers []string
	if opts.Validation {
		actualLayers, err := ValidationLayers()
		orPanic(err)
		var n int
		layers, n = checkExisting(actualLayers, []string{validationLayer})
		if n > 0 {
			log.Warn("vulkan: validation layer unavailable", "layer", validationLayer)
		}
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: flags,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(opts.AppName),
			PEngineName:        "noboiler\x00",
		},
		EnabledExtensionCount:   uint32(len(enabled)),
		PpEnabledExtensionNames: enabled,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &instance)
	if isError(ret) {
		return nil, errors.Wrap(newError(ret), "vulkan: create instance")
	}
	vk.InitInstance(instance)

	inst = &Instance{instance: instance, log: log}
	if opts.Validation && hasName(enabled, debugReportExtension) {
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: inst.debugReport,
		}, nil, &inst.debugCallback)
		orPanic(newError(ret), inst.Destroy)
		log.Debug("vulkan: debug report callback installed")
	}
	return inst, nil
}

func hasName(list []string, name string) bool {
	name = safeString(name)
	for _, s := range list {
		if safeString(s) == name {
			return true
		}
	}
	return false
}

func (i *Instance) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	level := debugReportLevel(flags)
	i.log.Log(context.Background(), level, pMessage, "layer", pLayerPrefix, "code", messageCode)
	return vk.Bool32(vk.False)
}

func debugReportLevel(flags vk.DebugReportFlags) slog.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Handle returns the raw instance.
func (i *Instance) Handle() vk.Instance {
	return i.instance
}

// Destroy releases the instance. Surfaces and devices created from it must
// be destroyed first.
func (i *Instance) Destroy() {
	if i.instance == nil {
		return
	}
	if i.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.instance, i.debugCallback, nil)
		i.debugCallback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(i.instance, nil)
	i.instance = nil
}
