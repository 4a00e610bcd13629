package layout

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/internal/align"
)

// fieldOffsetFromBase returns the offset of fields[index] when the first field
// is placed no earlier than base. index may equal len(fields), in which case
// the result is the end of the last field before the trailing padding.
func fieldOffsetFromBase(base uintptr, index int, fields []Descriptor) uintptr {
	cursor := base
	for i, f := range fields {
		cursor = align.Up(cursor, f.Alignment())
		if i == index {
			return cursor
		}
		cursor += f.Size()
	}
	return cursor
}

// alignmentOf returns the largest field alignment, 1 for no fields.
func alignmentOf(fields []Descriptor) uintptr {
	result := uintptr(1)
	for _, f := range fields {
		result = max(result, f.Alignment())
	}
	return result
}

// construct builds every field at its offset from ptr, in declaration order.
func construct(ptr unsafe.Pointer, fields []Descriptor, offsets []uintptr) {
	for i, f := range fields {
		f.Construct(unsafe.Add(ptr, offsets[i]))
	}
}

// plan is the cached result of laying out a field list.
type plan struct {
	offsets   []uintptr // len(fields)+1, last entry is the raw end
	alignment uintptr
	size      uintptr
}

// computePlan validates fields and lays them out from offset 0, reporting
// overflow instead of wrapping.
func computePlan(owner string, fields []Descriptor) (plan, error) {
	p := plan{
		offsets:   make([]uintptr, len(fields)+1),
		alignment: 1,
	}

	cursor := uintptr(0)
	for i, f := range fields {
		if err := checkDescriptor(owner, i, f); err != nil {
			return plan{}, err
		}

		a := f.Alignment()
		var ok bool
		if cursor, ok = align.UpChecked(cursor, a); !ok {
			return plan{}, overflow(owner, i)
		}
		p.offsets[i] = cursor
		p.alignment = max(p.alignment, a)

		if cursor, ok = align.Add(cursor, f.Size()); !ok {
			return plan{}, overflow(owner, i)
		}
	}
	p.offsets[len(fields)] = cursor

	if cursor == 0 {
		return p, nil
	}
	size, ok := align.UpChecked(cursor, p.alignment)
	if !ok {
		return plan{}, overflow(owner, len(fields))
	}
	p.size = size
	return p, nil
}

func checkDescriptor(owner string, index int, f Descriptor) error {
	path := []string{owner, strconv.Itoa(index)}
	if f == nil {
		return errors.NilPointer(errors.PhaseDeclare, path, "layout.Descriptor")
	}
	// Descriptors with their own configuration are checked before their
	// Alignment and Size are trusted.
	if v, ok := f.(validator); ok {
		if msg := v.validate(); msg != "" {
			return invalidDescriptor(path, describe(f), msg)
		}
	}
	a := f.Alignment()
	if !align.IsPowerOfTwo(a) {
		return invalidDescriptor(path, describe(f), fmt.Sprintf("alignment %d is not a power of two", a))
	}
	if s := f.Size(); !align.IsAligned(s, a) {
		return errors.New(errors.PhaseDeclare, errors.KindInvalidDescriptor).
			Path(path...).
			GoType(describe(f)).
			Value(s).
			Detail("size %d is not a multiple of alignment %d", s, a).
			Build()
	}
	return nil
}

func invalidDescriptor(path []string, goType, detail string) *errors.Error {
	return errors.InvalidDescriptor(path, goType, detail)
}

func overflow(owner string, index int) *errors.Error {
	return errors.Overflow(errors.PhaseDeclare, []string{owner, strconv.Itoa(index)},
		"layout exceeds the address space")
}

func typeMismatch(path []string, goType, want string) *errors.Error {
	return errors.TypeMismatch(errors.PhaseAccess, path, goType, want)
}

func outOfRange(owner string, index, limit int) *errors.Error {
	return errors.OutOfBounds(errors.PhaseAccess, []string{owner}, index, limit)
}
