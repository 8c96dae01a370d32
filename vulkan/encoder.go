package vulkan

import vk "github.com/vulkan-go/vulkan"

// Encoder records the commands of one frame into a primary command buffer.
type Encoder struct {
	ctx    *Context
	cmd    vk.CommandBuffer
	label  string
	target *TextureView
	pass   *RenderPass

	// presentable is set once a pass left the target in the present layout.
	presentable bool
	releases    []Releaser
}

func (e *Encoder) Label() string {
	return e.label
}

// Handle returns the command buffer being recorded.
func (e *Encoder) Handle() vk.CommandBuffer {
	return e.cmd
}

// Release destroys r once the GPU finished the frame. Use it for resources
// created while recording that the frame still reads.
func (e *Encoder) Release(r Releaser) {
	if r != nil {
		e.releases = append(e.releases, r)
	}
}

// clearTarget records a clear-only pass so an untouched frame can be
// presented.
func (e *Encoder) clearTarget() error {
	rp, err := newRenderPassBuilder(e).Label("Clear Pass").Build()
	if err != nil {
		return err
	}
	return rp.End()
}
