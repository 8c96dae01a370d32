package vulkan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleWGSL = `
@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.5, 0.0, 1.0);
}
`

func TestCompileWGSL(t *testing.T) {
	code, err := compileWGSL(triangleWGSL)
	require.NoError(t, err)
	require.NotEmpty(t, code)
	assert.Equal(t, uint32(spirvMagic), code[0])

	_, err = compileWGSL("fn broken( {")
	assert.Error(t, err)
}

func TestLoadShaderFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}

	code, err := loadShaderFile(write("triangle.wgsl", []byte(triangleWGSL)))
	require.NoError(t, err)
	assert.Equal(t, uint32(spirvMagic), code[0])

	code, err = loadShaderFile(write("triangle.SPV", spirvWords(spirvMagic, 0x00010300, 0, 1, 0)))
	require.NoError(t, err)
	assert.Len(t, code, 5)

	_, err = loadShaderFile(write("bad.spv", []byte{1, 2, 3}))
	assert.Error(t, err)

	_, err = loadShaderFile(write("shader.glsl", []byte("void main() {}")))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = loadShaderFile(filepath.Join(dir, "missing.wgsl"))
	assert.Error(t, err)
}

func TestExampleShadersCompile(t *testing.T) {
	for _, name := range []string{"shader_basic_color.wgsl", "shader_color_from_pos.wgsl"} {
		t.Run(name, func(t *testing.T) {
			code, err := loadShaderFile(filepath.Join("..", "cmd", "shaders", name))
			require.NoError(t, err)
			assert.Equal(t, uint32(spirvMagic), code[0])
		})
	}
}
