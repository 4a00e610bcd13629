package layout

import (
	"reflect"
	"strconv"
	"unsafe"

	"github.com/wippyai/typelayout/internal/align"
)

// Descriptor describes the layout of one field.
//
// Alignment must be a power of two and Size a multiple of Alignment.
// Construct builds the field at ptr, which is aligned to Alignment, and must
// not touch memory outside [ptr, ptr+Size). It returns ptr.
type Descriptor interface {
	Alignment() uintptr
	Size() uintptr
	Construct(ptr unsafe.Pointer) unsafe.Pointer
}

// Typed is a Descriptor whose field holds a V.
type Typed[V any] interface {
	Descriptor
	New(ptr unsafe.Pointer) *V
}

// Provider is implemented by types that supply their own descriptor.
// DescriptorFor calls it on the zero value.
type Provider interface {
	LayoutDescriptor() Descriptor
}

// Value is the default descriptor for V: the platform's size and alignment,
// constructed as V's zero value.
type Value[V any] struct{}

// Of returns the default descriptor for V.
func Of[V any]() Value[V] {
	return Value[V]{}
}

func (Value[V]) Alignment() uintptr {
	var z V
	return unsafe.Alignof(z)
}

// Size is zero for zero-size types.
func (Value[V]) Size() uintptr {
	var z V
	size := unsafe.Sizeof(z)
	if size == 0 {
		return 0
	}
	return align.Up(size, unsafe.Alignof(z))
}

func (d Value[V]) Construct(ptr unsafe.Pointer) unsafe.Pointer {
	d.New(ptr)
	return ptr
}

func (Value[V]) New(ptr unsafe.Pointer) *V {
	p := (*V)(ptr)
	var z V
	*p = z
	return p
}

func (Value[V]) TypeName() string {
	return typeName[V]()
}

// Fixed describes a V with an explicit size and alignment. It constructs by
// zero filling its span, which suits ABI-defined fields whose layout must not
// follow the host platform.
type Fixed[V any] struct {
	name      string
	size      uintptr
	alignment uintptr
}

// FixedOf returns a descriptor for V occupying size bytes aligned to alignment.
func FixedOf[V any](size, alignment uintptr) Fixed[V] {
	return Fixed[V]{size: size, alignment: alignment}
}

// Named returns a copy of f reported under name in diagnostics.
func (f Fixed[V]) Named(name string) Fixed[V] {
	f.name = name
	return f
}

func (f Fixed[V]) Alignment() uintptr { return f.alignment }
func (f Fixed[V]) Size() uintptr      { return f.size }

func (f Fixed[V]) Construct(ptr unsafe.Pointer) unsafe.Pointer {
	if f.size > 0 {
		clear(unsafe.Slice((*byte)(ptr), f.size))
	}
	return ptr
}

func (f Fixed[V]) New(ptr unsafe.Pointer) *V {
	return (*V)(f.Construct(ptr))
}

func (f Fixed[V]) TypeName() string {
	if f.name != "" {
		return f.name
	}
	return typeName[V]()
}

func (f Fixed[V]) validate() string {
	var z V
	if f.size < unsafe.Sizeof(z) {
		return "explicit size is smaller than the Go type it holds"
	}
	if f.alignment < unsafe.Alignof(z) {
		return "explicit alignment is weaker than the Go type it holds"
	}
	return ""
}

// Bytes describes a span of zero-filled bytes holding no Go value. It is not
// Typed, so no field handle can point into it.
type Bytes struct {
	name      string
	size      uintptr
	alignment uintptr
}

// Opaque returns a descriptor for size zero-filled bytes.
func Opaque(size, alignment uintptr) Bytes {
	return Bytes{size: size, alignment: alignment, name: "opaque"}
}

// Named returns a copy of b reported under name in diagnostics.
func (b Bytes) Named(name string) Bytes {
	b.name = name
	return b
}

func (b Bytes) Alignment() uintptr { return b.alignment }
func (b Bytes) Size() uintptr      { return b.size }

func (b Bytes) Construct(ptr unsafe.Pointer) unsafe.Pointer {
	if b.size > 0 {
		clear(unsafe.Slice((*byte)(ptr), b.size))
	}
	return ptr
}

// Slice returns the span at ptr as a byte slice.
func (b Bytes) Slice(ptr unsafe.Pointer) []byte {
	if b.size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), b.size)
}

func (b Bytes) TypeName() string {
	if b.name != "" {
		return b.name
	}
	return "opaque"
}

// ArrayDescriptor lays out a run of identical elements.
type ArrayDescriptor[V any] struct {
	elem Typed[V]
	n    int
}

// Array returns a descriptor for n consecutive elements described by elem.
// New returns the first element.
func Array[V any](elem Typed[V], n int) ArrayDescriptor[V] {
	return ArrayDescriptor[V]{elem: elem, n: n}
}

func (a ArrayDescriptor[V]) Len() int { return a.n }

func (a ArrayDescriptor[V]) Elem() Typed[V] { return a.elem }

func (a ArrayDescriptor[V]) Alignment() uintptr { return a.elem.Alignment() }

func (a ArrayDescriptor[V]) Size() uintptr {
	return a.elem.Size() * uintptr(a.n)
}

func (a ArrayDescriptor[V]) Construct(ptr unsafe.Pointer) unsafe.Pointer {
	stride := a.elem.Size()
	for i := 0; i < a.n; i++ {
		a.elem.Construct(unsafe.Add(ptr, uintptr(i)*stride))
	}
	return ptr
}

func (a ArrayDescriptor[V]) New(ptr unsafe.Pointer) *V {
	return (*V)(a.Construct(ptr))
}

// Index returns element i given the first element. i is not bounds checked.
func (a ArrayDescriptor[V]) Index(first *V, i int) *V {
	return (*V)(unsafe.Add(unsafe.Pointer(first), uintptr(i)*a.elem.Size()))
}

func (a ArrayDescriptor[V]) TypeName() string {
	return "[" + strconv.Itoa(a.n) + "]" + describe(a.elem)
}

func (a ArrayDescriptor[V]) validate() string {
	if a.n < 0 {
		return "negative array length"
	}
	if a.elem == nil {
		return "nil element descriptor"
	}
	if a.n == 0 && a.elem.Size() != 0 {
		return "zero-length array holds no element; use Opaque(0, alignment)"
	}
	if v, ok := a.elem.(validator); ok {
		if msg := v.validate(); msg != "" {
			return "element: " + msg
		}
	}
	if _, ok := align.Mul(a.elem.Size(), uintptr(a.n)); !ok {
		return "array size overflows uintptr"
	}
	return ""
}

// validator lets descriptors report contract violations that depend on their
// own configuration.
type validator interface {
	validate() string
}

type typeNamer interface {
	TypeName() string
}

func typeName[V any]() string {
	return reflect.TypeFor[V]().String()
}

func describe(d Descriptor) string {
	if d == nil {
		return "nil"
	}
	if n, ok := d.(typeNamer); ok {
		return n.TypeName()
	}
	return reflect.TypeOf(d).String()
}
