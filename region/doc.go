// Package region provides checked construction of composites into memory.
//
// The layout engine trusts its caller: Construct writes wherever it is told.
// This package owns the memory side and validates each request against it
// before delegating.
//
// # Regions
//
// Two regions are provided:
//
//	buf, _ := region.NewBytes(4096, 16)   // Go heap buffer, 16-byte aligned
//	mem := region.WrapMemory(mod.ExportedMemory("memory")) // wazero linear memory
//
// # Construction
//
// Construct checks that the span [offset, offset+Size) lies inside the region
// and that its address is aligned for the composite:
//
//	obj, err := region.Construct(buf, 64, objectLayout)
//
// # Arena
//
// Arena carves aligned, non-overlapping spans out of a region:
//
//	arena, _ := region.NewArena(mem, region.WithStart(1024))
//	obj, off, err := region.New(arena, objectLayout)
//
// off is the guest-visible offset of obj when the region is WASM memory.
package region
