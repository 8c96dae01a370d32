package vulkan

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, "main\x00", safeString("main\x00"))
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b\x00"}))
}

func TestCheckExisting(t *testing.T) {
	existing, missing := checkExisting(
		[]string{"VK_KHR_surface", "VK_KHR_xcb_surface\x00"},
		[]string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface", "VK_EXT_debug_report"})
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface\x00"}, existing)
	assert.Equal(t, 1, missing)
}

func spirvWords(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func TestSliceUint32(t *testing.T) {
	words, err := sliceUint32(spirvWords(spirvMagic, 0x00010000, 7))
	require.NoError(t, err)
	assert.Equal(t, []uint32{spirvMagic, 0x00010000, 7}, words)

	_, err = sliceUint32(nil)
	assert.Error(t, err)
	_, err = sliceUint32([]byte{3, 2, 35, 7, 1})
	assert.Error(t, err, "length not a multiple of 4")
	_, err = sliceUint32(spirvWords(0xdeadbeef))
	assert.ErrorContains(t, err, "magic")
}
