package vulkan

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const spirvMagic = 0x07230203

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// checkExisting returns the entries of required that are present in actual,
// and how many were not.
func checkExisting(actual, required []string) (existing []string, missing int) {
	have := make(map[string]struct{}, len(actual))
	for _, s := range actual {
		have[safeString(s)] = struct{}{}
	}
	for _, s := range safeStrings(required) {
		if _, ok := have[s]; ok {
			existing = append(existing, s)
		} else {
			missing++
		}
	}
	return existing, missing
}

// sliceUint32 decodes a little endian SPIR-V byte stream into words.
func sliceUint32(data []byte) ([]uint32, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, errors.Errorf("vulkan: spir-v length %d is not a positive multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, errors.Errorf("vulkan: bad spir-v magic 0x%08x", words[0])
	}
	return words, nil
}
