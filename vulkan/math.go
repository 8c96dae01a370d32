package vulkan

import "github.com/go-gl/mathgl/mgl32"

// clipCorrection remaps OpenGL style depth in [-1, 1] to [0, 1]. The y axis
// needs no change since passes flip the viewport.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Projection converts a projection matrix built by mgl32 for OpenGL clip
// space into one for the surfaces of this package.
func Projection(proj mgl32.Mat4) mgl32.Mat4 {
	return clipCorrection.Mul4(proj)
}

// Perspective returns a right handed perspective projection with depth in
// [0, 1]. fovy is in radians.
func Perspective(fovy, aspect, near, far float32) mgl32.Mat4 {
	return Projection(mgl32.Perspective(fovy, aspect, near, far))
}
