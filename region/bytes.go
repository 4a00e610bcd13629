package region

import (
	"unsafe"

	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/internal/align"
)

// Bytes is a Go heap buffer whose first byte is aligned to a requested
// boundary.
type Bytes struct {
	buf  []byte
	base unsafe.Pointer
	size uintptr
}

// NewBytes allocates size bytes aligned to alignment, which must be a power
// of two.
func NewBytes(size, alignment uintptr) (*Bytes, error) {
	if !align.IsPowerOfTwo(alignment) {
		return nil, errors.InvalidInput(errors.PhaseAllocate, "alignment must be a power of two")
	}
	total, ok := align.Add(size, alignment)
	if !ok {
		return nil, errors.AllocationFailed(errors.PhaseAllocate, size, alignment)
	}

	buf := make([]byte, total)
	start := uintptr(unsafe.Pointer(&buf[0]))
	pad := align.Up(start, alignment) - start

	return &Bytes{
		buf:  buf,
		base: unsafe.Pointer(&buf[pad]),
		size: size,
	}, nil
}

// Base returns the aligned start of the buffer.
func (b *Bytes) Base() unsafe.Pointer { return b.base }

// Len returns the usable size in bytes.
func (b *Bytes) Len() uintptr { return b.size }

// Bytes returns the usable buffer.
func (b *Bytes) Bytes() []byte {
	return unsafe.Slice((*byte)(b.base), b.size)
}
