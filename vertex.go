package noboiler

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/gogpu/gputypes"
)

// Vertex is implemented by vertex record types that describe their own
// buffer layout.
type Vertex interface {
	VertexLayout() gputypes.VertexBufferLayout
}

// VertexFormatSize returns the byte size of a vertex attribute format, or
// zero for formats this package does not lay out.
func VertexFormatSize(f gputypes.VertexFormat) uint64 {
	switch f {
	case gputypes.VertexFormatFloat32, gputypes.VertexFormatUint32, gputypes.VertexFormatSint32:
		return 4
	case gputypes.VertexFormatFloat32x2, gputypes.VertexFormatUint32x2, gputypes.VertexFormatSint32x2:
		return 8
	case gputypes.VertexFormatFloat32x3, gputypes.VertexFormatUint32x3, gputypes.VertexFormatSint32x3:
		return 12
	case gputypes.VertexFormatFloat32x4, gputypes.VertexFormatUint32x4, gputypes.VertexFormatSint32x4:
		return 16
	}
	return 0
}

// VertexAttrArray lays out formats back to back with shader locations
// 0..len(formats)-1. The stride is the size of V so trailing padding in the
// record is honored.
func VertexAttrArray[V any](formats ...gputypes.VertexFormat) gputypes.VertexBufferLayout {
	var v V
	attrs := make([]gputypes.VertexAttribute, len(formats))
	var offset uint64
	for i, f := range formats {
		attrs[i] = gputypes.VertexAttribute{
			Format:         f,
			Offset:         offset,
			ShaderLocation: uint32(i),
		}
		offset += VertexFormatSize(f)
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(v)),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// LayoutOf derives a vertex buffer layout from the exported and unexported
// fields of the struct type V, in declaration order. Fields must be float32,
// int32 or uint32 scalars or arrays of two to four of them. LayoutOf panics on
// any other field type since a vertex record is fixed at compile time.
func LayoutOf[V any]() gputypes.VertexBufferLayout {
	t := reflect.TypeOf((*V)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("noboiler: vertex type %s is not a struct", t))
	}
	attrs := make([]gputypes.VertexAttribute, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		format, ok := fieldFormat(f.Type)
		if !ok {
			panic(fmt.Sprintf("noboiler: vertex field %s.%s has unsupported type %s", t, f.Name, f.Type))
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(f.Offset),
			ShaderLocation: uint32(len(attrs)),
		})
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: uint64(t.Size()),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

var scalarFormats = map[reflect.Kind][4]gputypes.VertexFormat{
	reflect.Float32: {gputypes.VertexFormatFloat32, gputypes.VertexFormatFloat32x2, gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4},
	reflect.Uint32:  {gputypes.VertexFormatUint32, gputypes.VertexFormatUint32x2, gputypes.VertexFormatUint32x3, gputypes.VertexFormatUint32x4},
	reflect.Int32:   {gputypes.VertexFormatSint32, gputypes.VertexFormatSint32x2, gputypes.VertexFormatSint32x3, gputypes.VertexFormatSint32x4},
}

func fieldFormat(t reflect.Type) (gputypes.VertexFormat, bool) {
	n := 1
	if t.Kind() == reflect.Array {
		n = t.Len()
		t = t.Elem()
	}
	formats, ok := scalarFormats[t.Kind()]
	if !ok || n < 1 || n > 4 {
		return 0, false
	}
	return formats[n-1], true
}

// AsBytes reinterprets a slice of plain records as bytes without copying.
// T must not contain pointers.
func AsBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var v T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(v)))
}
