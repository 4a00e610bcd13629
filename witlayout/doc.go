// Package witlayout computes Canonical ABI memory layouts for WIT types.
//
// Every WIT type maps to a layout.Descriptor. Records and tuples become
// layout composites, so their offsets follow the same placement rules as any
// other composite and can be constructed into WASM memory with package
// region:
//
//	calc := witlayout.NewCalculator()
//	point, err := calc.Record(pointDef) // *layout.Composite[witlayout.Record]
//	x, err := witlayout.RecordField[uint32](calc, pointDef, "x")
//	p, err := region.Construct(mem, offset, point)
//	*x.Ptr(p) = 10
//
// Variants, options and results are a discriminant followed by a payload
// span sized for the largest case. Strings and lists are a (pointer, length)
// pair of u32, resource handles a u32.
//
// Results are cached per *wit.TypeDef. A Calculator is safe for concurrent
// use.
package witlayout
