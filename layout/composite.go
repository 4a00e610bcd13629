package layout

import (
	"slices"
	"unsafe"

	"go.uber.org/zap"
)

// Composite is the layout of a T assembled from an ordered list of field
// descriptors. T is usually an empty marker type that is only ever handled
// through pointers produced by the composite.
//
// *Composite[T] is itself a Typed[T], so composites nest.
type Composite[T any] struct {
	name   string
	fields []Descriptor
	plan   plan
}

// NewComposite lays out fields in order. Offsets, size and alignment are
// computed once here and cached.
func NewComposite[T any](fields ...Descriptor) (*Composite[T], error) {
	name := typeName[T]()
	p, err := computePlan(name, fields)
	if err != nil {
		return nil, err
	}

	c := &Composite[T]{
		name:   name,
		fields: slices.Clone(fields),
		plan:   p,
	}

	Logger().Debug("composite declared",
		zap.String("type", name),
		zap.Int("fields", len(fields)),
		zap.Uintptr("size", p.size),
		zap.Uintptr("align", p.alignment))

	return c, nil
}

// MustComposite is NewComposite that panics on an invalid field list.
// It is meant for package-level declarations, where a bad layout should stop
// the program before it runs.
func MustComposite[T any](fields ...Descriptor) *Composite[T] {
	c, err := NewComposite[T](fields...)
	if err != nil {
		panic(err)
	}
	return c
}

// Alignment is the largest field alignment, 1 for an empty composite.
func (c *Composite[T]) Alignment() uintptr {
	return c.plan.alignment
}

// Size is the end of the last field rounded up to Alignment, 0 for an empty
// composite. Unlike a Go struct, a composite of zero-size fields takes no
// space.
func (c *Composite[T]) Size() uintptr {
	return c.plan.size
}

// NumFields returns the number of fields.
func (c *Composite[T]) NumFields() int {
	return len(c.fields)
}

// Construct builds every field at its offset from ptr, in declaration order,
// and returns ptr. An empty composite writes nothing.
//
// ptr must be aligned to Alignment and point at Size writable bytes.
func (c *Composite[T]) Construct(ptr unsafe.Pointer) unsafe.Pointer {
	construct(ptr, c.fields, c.plan.offsets)
	return ptr
}

// New constructs a T at ptr and returns it.
func (c *Composite[T]) New(ptr unsafe.Pointer) *T {
	return (*T)(c.Construct(ptr))
}

// FieldOffset returns the offset of field index from the start of the
// composite. index may equal NumFields, giving the end of the last field
// before trailing padding.
func (c *Composite[T]) FieldOffset(index int) uintptr {
	if index < 0 || index > len(c.fields) {
		panic(outOfRange(c.name, index, len(c.fields)+1))
	}
	return c.plan.offsets[index]
}

// FieldDescriptor returns the descriptor of field index.
func (c *Composite[T]) FieldDescriptor(index int) Descriptor {
	c.checkIndex(index)
	return c.fields[index]
}

// Field returns the descriptor of field index and its address inside the
// composite at p.
func (c *Composite[T]) Field(index int, p *T) (Descriptor, unsafe.Pointer) {
	c.checkIndex(index)
	return c.fields[index], unsafe.Add(unsafe.Pointer(p), c.plan.offsets[index])
}

// FromField returns the composite that owns field index at fieldPtr.
// fieldPtr must have been obtained from a composite of this layout.
func (c *Composite[T]) FromField(index int, fieldPtr unsafe.Pointer) *T {
	c.checkIndex(index)
	return (*T)(unsafe.Add(fieldPtr, -int(c.plan.offsets[index])))
}

// TypeName returns the name of T.
func (c *Composite[T]) TypeName() string {
	return c.name
}

func (c *Composite[T]) checkIndex(index int) {
	if index < 0 || index >= len(c.fields) {
		panic(outOfRange(c.name, index, len(c.fields)))
	}
}
