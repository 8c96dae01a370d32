package vulkan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// loadShaderFile reads a shader and returns its SPIR-V words. WGSL sources
// are compiled, .spv files are taken as they are.
func loadShaderFile(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "vulkan: read shader")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wgsl":
		code, err := compileWGSL(string(data))
		return code, errors.Wrapf(err, "vulkan: shader %s", path)
	case ".spv":
		code, err := sliceUint32(data)
		return code, errors.Wrapf(err, "vulkan: shader %s", path)
	default:
		return nil, errors.Errorf("vulkan: shader %s: unsupported extension %q", path, ext)
	}
}

// compileWGSL translates WGSL source to SPIR-V.
func compileWGSL(src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, errors.Wrap(err, "compile wgsl")
	}
	return sliceUint32(spirv)
}

func (c *Context) createShaderModule(code []uint32) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(c.gpu.device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, newError(ret)
	}
	return module, nil
}
