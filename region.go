package typelayout

import "unsafe"

// Region is a contiguous block of writable memory that composites are
// constructed into. Offsets passed to region operations are relative to Base.
type Region interface {
	Base() unsafe.Pointer
	Len() uintptr
}

// Allocator hands out aligned, non-overlapping spans of a Region.
type Allocator interface {
	Alloc(size, alignment uintptr) (uintptr, error)
}
