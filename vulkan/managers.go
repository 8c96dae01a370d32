package vulkan

import vk "github.com/vulkan-go/vulkan"

// FenceManager hands out fences for queue submissions and recycles them once
// the GPU signalled all of them. It is not safe for concurrent use.
type FenceManager struct {
	device vk.Device
	fences []vk.Fence
	count  uint32
}

func NewFenceManager(device vk.Device) *FenceManager {
	return &FenceManager{device: device}
}

// Reset blocks until every fence handed out since the last Reset signalled.
// Resources used by those submissions may be reused or destroyed afterwards.
func (f *FenceManager) Reset() error {
	if f.count == 0 {
		return nil
	}
	active := f.fences[:f.count]
	f.count = 0
	if ret := vk.WaitForFences(f.device, uint32(len(active)), active, vk.True, vk.MaxUint64); isError(ret) {
		return frameError(ret, "wait for fences")
	}
	return newError(vk.ResetFences(f.device, uint32(len(active)), active))
}

// NewFence returns an unsignalled fence.
func (f *FenceManager) NewFence() (vk.Fence, error) {
	if f.count < uint32(len(f.fences)) {
		fence := f.fences[f.count]
		f.count++
		return fence, nil
	}
	var fence vk.Fence
	ret := vk.CreateFence(f.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence)
	if isError(ret) {
		return vk.NullFence, newError(ret)
	}
	f.fences = append(f.fences, fence)
	f.count++
	return fence, nil
}

// Pending reports how many fences are still outstanding.
func (f *FenceManager) Pending() int {
	return int(f.count)
}

func (f *FenceManager) Destroy() {
	f.Reset()
	for _, fence := range f.fences {
		vk.DestroyFence(f.device, fence, nil)
	}
	f.fences = nil
}

// CommandBufferManager allocates primary command buffers from a resettable
// pool and recycles them after Reset. It is not safe for concurrent use.
type CommandBufferManager struct {
	device  vk.Device
	pool    vk.CommandPool
	buffers []vk.CommandBuffer
	level   vk.CommandBufferLevel
	count   uint32
}

// NewCommandBufferManager creates the pool on the given queue family.
func NewCommandBufferManager(device vk.Device, level vk.CommandBufferLevel, queueFamily uint32) (*CommandBufferManager, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, newError(ret)
	}
	return &CommandBufferManager{
		device: device,
		pool:   pool,
		level:  level,
	}, nil
}

// Reset marks every command buffer as recyclable. The caller must have waited
// for the submissions using them.
func (c *CommandBufferManager) Reset() {
	c.count = 0
}

// NewCommandBuffer returns a command buffer in the initial state.
func (c *CommandBufferManager) NewCommandBuffer() (vk.CommandBuffer, error) {
	if c.count < uint32(len(c.buffers)) {
		buf := c.buffers[c.count]
		c.count++
		ret := vk.ResetCommandBuffer(buf, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
		return buf, newError(ret)
	}
	bufs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              c.level,
		CommandBufferCount: 1,
	}, bufs)
	if isError(ret) {
		return nil, newError(ret)
	}
	c.buffers = append(c.buffers, bufs[0])
	c.count++
	return bufs[0], nil
}

func (c *CommandBufferManager) Destroy() {
	if len(c.buffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(c.buffers)), c.buffers)
	}
	vk.DestroyCommandPool(c.device, c.pool, nil)
	c.buffers = nil
}
