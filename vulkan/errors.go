package vulkan

import (
	"fmt"

	"github.com/andewx/noboiler"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrNotVulkan is returned by builders handed a device context, frame or
// pipeline that was not created by this package.
var ErrNotVulkan = errors.New("vulkan: value does not belong to a vulkan context")

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// newError converts a failed result into an error carrying a stack trace.
func newError(ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return errors.WithStack(fmt.Errorf("vulkan error: %s (%d)", resultString(ret), ret))
}

func resultString(ret vk.Result) string {
	if err := vk.Error(ret); err != nil {
		return err.Error()
	}
	return "success"
}

// frameError maps results that the run loop knows how to recover from onto
// the noboiler sentinels. Other failures become plain vulkan errors.
// Success and Suboptimal both map to nil.
func frameError(ret vk.Result, op string) error {
	var sentinel error
	switch ret {
	case vk.Success, vk.Suboptimal:
		return nil
	case vk.Timeout, vk.NotReady:
		sentinel = noboiler.ErrTimeout
	case vk.ErrorOutOfDate:
		sentinel = noboiler.ErrOutdated
	case vk.ErrorSurfaceLost, vk.ErrorDeviceLost:
		sentinel = noboiler.ErrLost
	case vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory:
		sentinel = noboiler.ErrOutOfMemory
	default:
		return errors.Wrap(newError(ret), op)
	}
	return errors.Wrapf(sentinel, "%s: %s", op, resultString(ret))
}

func orPanic(err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}
		panic(err)
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = errors.Errorf("%+v", v)
	}
}
