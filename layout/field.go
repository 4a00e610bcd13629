package layout

import (
	"strconv"
	"unsafe"

	"github.com/wippyai/typelayout/errors"
)

// FieldRef is a checked handle to a V field of a T composite. The index and
// type are verified once when the handle is created, so translating addresses
// through it is plain pointer arithmetic.
type FieldRef[T, V any] struct {
	desc   Typed[V]
	owner  Descriptor
	path   []int
	offset uintptr
}

// FieldOf returns a handle to field index of c, which must be described by a
// Typed[V]. It panics when index is out of range or the field holds another
// type; declare handles next to the composite so mistakes fail at init.
func FieldOf[V, T any](c *Composite[T], index int) FieldRef[T, V] {
	ref, err := LookupField[V](c, index)
	if err != nil {
		panic(err)
	}
	return ref
}

// LookupField is FieldOf returning an error instead of panicking.
func LookupField[V, T any](c *Composite[T], index int) (FieldRef[T, V], error) {
	if index < 0 || index >= len(c.fields) {
		return FieldRef[T, V]{}, outOfRange(c.name, index, len(c.fields))
	}
	d := c.fields[index]
	td, ok := d.(Typed[V])
	if !ok {
		return FieldRef[T, V]{}, typeMismatch([]string{c.name, strconv.Itoa(index)}, describe(d), typeName[V]())
	}
	return FieldRef[T, V]{
		desc:   td,
		owner:  c,
		path:   []int{index},
		offset: c.plan.offsets[index],
	}, nil
}

// Compose returns a handle to inner's field reached through outer, whose
// field must be the very composite inner was taken from.
func Compose[A, B, C any](outer FieldRef[A, B], inner FieldRef[B, C]) FieldRef[A, C] {
	if outer.desc == nil || inner.desc == nil {
		panic(errors.NilPointer(errors.PhaseAccess, nil, "layout.FieldRef"))
	}
	if Descriptor(outer.desc) != inner.owner {
		panic(errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			GoType(describe(outer.desc)).
			Detail("nested field belongs to %s", describe(inner.owner)).
			Build())
	}
	path := make([]int, 0, len(outer.path)+len(inner.path))
	path = append(path, outer.path...)
	path = append(path, inner.path...)
	return FieldRef[A, C]{
		desc:   inner.desc,
		owner:  outer.owner,
		path:   path,
		offset: outer.offset + inner.offset,
	}
}

// Ptr returns the field's address inside the composite at p.
func (r FieldRef[T, V]) Ptr(p *T) *V {
	return (*V)(unsafe.Add(unsafe.Pointer(p), r.offset))
}

// Field returns the field's descriptor and its address inside the composite
// at p.
func (r FieldRef[T, V]) Field(p *T) (Typed[V], *V) {
	return r.desc, r.Ptr(p)
}

// Owner returns the composite whose field lives at f. f must have been
// obtained from Ptr or Field of a handle with the same path.
func (r FieldRef[T, V]) Owner(f *V) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(f), -int(r.offset)))
}

// Offset returns the distance from the start of the composite to the field.
func (r FieldRef[T, V]) Offset() uintptr { return r.offset }

// Index returns the field's index within its immediate parent.
func (r FieldRef[T, V]) Index() int { return r.path[len(r.path)-1] }

// Path returns the field indices from the outermost composite inward.
func (r FieldRef[T, V]) Path() []int { return append([]int(nil), r.path...) }

// Descriptor returns the field's descriptor.
func (r FieldRef[T, V]) Descriptor() Typed[V] { return r.desc }
