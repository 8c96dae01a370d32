package vulkan

import (
	"unsafe"

	"github.com/andewx/noboiler"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a host visible device buffer holding Count records.
type Buffer struct {
	device vk.Device
	buffer vk.Buffer
	memory vk.DeviceMemory
	label  string
	count  int
	size   int
}

// Count returns the number of records uploaded into the buffer.
func (b *Buffer) Count() int {
	return b.count
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int {
	return b.size
}

func (b *Buffer) Label() string {
	return b.label
}

// Handle returns the raw buffer, vk.NullBuffer for an empty buffer.
func (b *Buffer) Handle() vk.Buffer {
	return b.buffer
}

func (b *Buffer) Destroy() {
	if b.buffer != vk.NullBuffer {
		vk.DestroyBuffer(b.device, b.buffer, nil)
		b.buffer = vk.NullBuffer
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(b.device, b.memory, nil)
		b.memory = vk.NullDeviceMemory
	}
}

// BufferBuilder uploads a slice of records into a new buffer.
type BufferBuilder[T any] struct {
	ctx   *Context
	err   error
	label string
	usage vk.BufferUsageFlagBits
	data  []T
}

// NewVertexBuffer starts a vertex buffer holding data.
func NewVertexBuffer[T any](data *noboiler.AppData, records []T) *BufferBuilder[T] {
	return newBufferBuilder(data, "Vertex Buffer", vk.BufferUsageVertexBufferBit, records)
}

// NewIndexBuffer starts a uint32 index buffer.
func NewIndexBuffer(data *noboiler.AppData, indices []uint32) *BufferBuilder[uint32] {
	return newBufferBuilder(data, "Indices Buffer", vk.BufferUsageIndexBufferBit, indices)
}

// NewUniformBuffer starts a uniform buffer holding data.
func NewUniformBuffer[T any](data *noboiler.AppData, records []T) *BufferBuilder[T] {
	return newBufferBuilder(data, "Uniform Buffer", vk.BufferUsageUniformBufferBit, records)
}

func newBufferBuilder[T any](data *noboiler.AppData, label string, usage vk.BufferUsageFlagBits, records []T) *BufferBuilder[T] {
	b := &BufferBuilder[T]{label: label, usage: usage, data: records}
	b.ctx, b.err = ContextOf(data)
	return b
}

func (b *BufferBuilder[T]) Label(label string) *BufferBuilder[T] {
	b.label = label
	return b
}

// Data replaces the records to upload.
func (b *BufferBuilder[T]) Data(records []T) *BufferBuilder[T] {
	b.data = records
	return b
}

// AddData appends records to upload.
func (b *BufferBuilder[T]) AddData(records ...T) *BufferBuilder[T] {
	b.data = append(b.data, records...)
	return b
}

// Build creates the buffer and copies the records into it. An empty record
// list gives an empty buffer without a device allocation.
func (b *BufferBuilder[T]) Build() (*Buffer, error) {
	if b.err != nil {
		return nil, b.err
	}
	bytes := noboiler.AsBytes(b.data)
	buf := &Buffer{
		device: b.ctx.gpu.device,
		label:  b.label,
		count:  len(b.data),
		size:   len(bytes),
	}
	if len(bytes) == 0 {
		return buf, nil
	}
	if err := b.ctx.upload(buf, bytes, b.usage); err != nil {
		return nil, errors.Wrap(err, b.label)
	}
	return buf, nil
}

func (c *Context) upload(buf *Buffer, data []byte, usage vk.BufferUsageFlagBits) error {
	device := c.gpu.device
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Usage:       vk.BufferUsageFlags(usage),
		Size:        vk.DeviceSize(len(data)),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf.buffer)
	if isError(ret) {
		return frameError(ret, "create buffer")
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buf.buffer, &reqs)
	mem, err := c.gpu.allocate(reqs, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		buf.Destroy()
		return err
	}
	buf.memory = mem
	if ret := vk.BindBufferMemory(device, buf.buffer, mem, 0); isError(ret) {
		buf.Destroy()
		return newError(ret)
	}

	var ptr unsafe.Pointer
	if ret := vk.MapMemory(device, mem, 0, vk.DeviceSize(len(data)), 0, &ptr); isError(ret) {
		buf.Destroy()
		return frameError(ret, "map memory")
	}
	n := vk.Memcopy(ptr, data)
	vk.UnmapMemory(device, mem)
	if n != len(data) {
		buf.Destroy()
		return errors.Errorf("vulkan: copied %d of %d bytes", n, len(data))
	}
	return nil
}
