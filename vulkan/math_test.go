package vulkan

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	proj := Perspective(mgl32.DegToRad(60), 16.0/9.0, near, far)

	ndcZ := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return clip.Z() / clip.W()
	}
	assert.InDelta(t, 0, ndcZ(-near), 1e-5)
	assert.InDelta(t, 1, ndcZ(-far), 1e-4)
	mid := ndcZ(-10)
	assert.Greater(t, mid, float32(0))
	assert.Less(t, mid, float32(1))
}

func TestProjectionKeepsXY(t *testing.T) {
	proj := mgl32.Ortho(-2, 2, -1, 1, -1, 1)
	fixed := Projection(proj)
	p := fixed.Mul4x1(mgl32.Vec4{2, 1, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-6)
	assert.InDelta(t, 1, p.Y(), 1e-6)
	assert.InDelta(t, 0.5, p.Z(), 1e-6)
}
