package region

import (
	"unsafe"

	"github.com/tetratelabs/wazero/api"
)

// Wasm is a region backed by a WASM instance's linear memory. Offsets into
// it are guest addresses.
type Wasm struct {
	Mem api.Memory
}

// WrapMemory wraps a wazero api.Memory as a Region.
func WrapMemory(mem api.Memory) *Wasm {
	if mem == nil {
		return nil
	}
	return &Wasm{Mem: mem}
}

// Base returns the host address of guest offset 0, or nil for an empty
// memory. It changes when the memory grows.
func (w *Wasm) Base() unsafe.Pointer {
	buf, ok := w.Mem.Read(0, w.Mem.Size())
	if !ok || len(buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&buf[0])
}

// Len returns the current memory size in bytes.
func (w *Wasm) Len() uintptr {
	return uintptr(w.Mem.Size())
}

// Grow adds pages of 64KiB and returns the previous size in pages.
func (w *Wasm) Grow(pages uint32) (uint32, bool) {
	return w.Mem.Grow(pages)
}
