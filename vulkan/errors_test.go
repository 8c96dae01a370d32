package vulkan

import (
	"testing"

	"github.com/andewx/noboiler"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestFrameError(t *testing.T) {
	tests := []struct {
		name string
		ret  vk.Result
		want error
	}{
		{"timeout", vk.Timeout, noboiler.ErrTimeout},
		{"not ready", vk.NotReady, noboiler.ErrTimeout},
		{"out of date", vk.ErrorOutOfDate, noboiler.ErrOutdated},
		{"surface lost", vk.ErrorSurfaceLost, noboiler.ErrLost},
		{"device lost", vk.ErrorDeviceLost, noboiler.ErrLost},
		{"host memory", vk.ErrorOutOfHostMemory, noboiler.ErrOutOfMemory},
		{"device memory", vk.ErrorOutOfDeviceMemory, noboiler.ErrOutOfMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := frameError(tt.ret, "acquire image")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "acquire image")
		})
	}
}

func TestFrameErrorSuccess(t *testing.T) {
	assert.NoError(t, frameError(vk.Success, "present"))
	assert.NoError(t, frameError(vk.Suboptimal, "present"))
}

func TestFrameErrorOther(t *testing.T) {
	err := frameError(vk.ErrorInitializationFailed, "create swapchain")
	require.Error(t, err)
	assert.False(t, noboiler.IsTransient(err))
	assert.False(t, noboiler.IsFatal(err))
	assert.Contains(t, err.Error(), "create swapchain")
}

func TestNewError(t *testing.T) {
	assert.NoError(t, newError(vk.Success))
	err := newError(vk.ErrorDeviceLost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vulkan error")
	assert.Equal(t, "success", resultString(vk.Success))
}

func TestCheckErr(t *testing.T) {
	sentinel := errors.New("boom")
	run := func(v any) (err error) {
		defer checkErr(&err)
		panic(v)
	}
	assert.Same(t, sentinel, run(sentinel))
	assert.EqualError(t, run("plain"), "plain")

	var finalized bool
	assert.Panics(t, func() { orPanic(sentinel, func() { finalized = true }) })
	assert.True(t, finalized)
	assert.NotPanics(t, func() { orPanic(nil) })
}
