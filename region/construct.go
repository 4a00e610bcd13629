package region

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/typelayout"
	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/internal/align"
	"github.com/wippyai/typelayout/layout"
)

// Construct builds a T described by d at offset in r and returns it.
// The span must fit inside r and start at an address aligned for d.
func Construct[T any](r typelayout.Region, offset uintptr, d layout.Typed[T]) (*T, error) {
	ptr, err := span(r, offset, d, errors.PhaseConstruct)
	if err != nil {
		return nil, err
	}
	Logger().Debug("construct",
		zap.Uintptr("offset", offset),
		zap.Uintptr("size", d.Size()),
		zap.Uintptr("align", d.Alignment()))
	return d.New(ptr), nil
}

// At returns the T already constructed at offset in r, applying the same
// checks as Construct without writing.
func At[T any](r typelayout.Region, offset uintptr, d layout.Typed[T]) (*T, error) {
	ptr, err := span(r, offset, d, errors.PhaseAccess)
	if err != nil {
		return nil, err
	}
	return (*T)(ptr), nil
}

// span validates [offset, offset+d.Size()) against r and returns its address.
func span(r typelayout.Region, offset uintptr, d layout.Descriptor, phase errors.Phase) (unsafe.Pointer, error) {
	if r == nil {
		return nil, errors.NilPointer(phase, nil, "typelayout.Region")
	}
	if d == nil {
		return nil, errors.NilPointer(phase, nil, "layout.Descriptor")
	}

	size := d.Size()
	end, ok := align.Add(offset, size)
	if !ok || end > r.Len() {
		return nil, errors.RegionTooSmall(phase, offset, size, r.Len())
	}

	base := r.Base()
	if base == nil {
		// No address exists for even an empty span.
		return nil, errors.New(phase, errors.KindNilPointer).
			GoType("typelayout.Region").
			Detail("region has no backing memory").
			Build()
	}

	ptr := unsafe.Add(base, offset)
	if !align.IsAligned(uintptr(ptr), d.Alignment()) {
		return nil, errors.Misaligned(phase, uintptr(ptr), d.Alignment())
	}
	return ptr, nil
}
