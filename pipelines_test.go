package noboiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineSetOrder(t *testing.T) {
	var set PipelineSet
	ps := []*fakePipeline{{id: 0}, {id: 1}, {id: 2}}
	for _, p := range ps {
		set.Push(p)
	}

	assert.Equal(t, 3, set.Len())
	for i, p := range ps {
		assert.Same(t, p, set.At(i))
	}
	assert.NotSame(t, set.At(0), set.At(1))
}

func TestPipelineSetOutOfRange(t *testing.T) {
	var set PipelineSet
	assert.PanicsWithValue(t, "noboiler: pipeline index 0 out of range [0,0)", func() {
		set.At(0)
	})

	set.Push(&fakePipeline{})
	assert.PanicsWithValue(t, "noboiler: pipeline index 1 out of range [0,1)", func() {
		set.At(1)
	})
	assert.Panics(t, func() { set.At(-1) })
	assert.NotPanics(t, func() { set.At(0) })
}

func TestPipelineSetDestroy(t *testing.T) {
	var set PipelineSet
	a, b := &fakePipeline{}, &fakePipeline{}
	set.Push(a)
	set.Push(nil)
	set.Push(b)

	set.destroy()
	assert.True(t, a.destroyed)
	assert.True(t, b.destroyed)
	assert.Zero(t, set.Len())
}
