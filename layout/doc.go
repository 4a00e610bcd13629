// Package layout computes in-memory layouts of composite objects described by
// a list of field descriptors instead of a Go struct.
//
// A managed runtime often glues several independently defined pieces into one
// allocation: a GC header in front of a payload, or a fixed prefix in front of
// a tail whose shape is only known at runtime. Package layout lets each piece
// be declared as a Descriptor and computes offsets, size and alignment with
// the same packing rules the platform applies to structs.
//
// # Descriptors
//
// A Descriptor reports Alignment and Size and constructs its field in place:
//
//	Of[V]()             zero value of V with V's platform layout
//	FixedOf[V](s, a)    V with an explicit size and alignment
//	Opaque(s, a)        zero-filled bytes, untyped
//	Array(d, n)         n consecutive elements of d
//	*Composite[T]       a nested composite
//
// Types may opt into their own descriptor by implementing Provider, or have
// one registered for them with Register. DescriptorFor resolves either and
// falls back to Of.
//
// # Composites
//
// Composites are declared once, normally at package level, and cache their
// offsets:
//
//	type Object struct{}
//
//	var (
//		objectLayout = layout.MustComposite[Object](
//			layout.Of[Header](),
//			layout.Of[uint64](),
//		)
//		objectHeader  = layout.FieldOf[Header](objectLayout, 0)
//		objectPayload = layout.FieldOf[uint64](objectLayout, 1)
//	)
//
//	obj := objectLayout.New(ptr)   // construct at ptr
//	hdr := objectHeader.Ptr(obj)   // composite -> field
//	obj = objectHeader.Owner(hdr)  // field -> composite
//
// Layout rules match struct packing: every field is pushed forward to its own
// alignment, fields are never reordered, and the size is rounded up to the
// largest field alignment. An empty composite has size 0 and alignment 1 so it
// can mark a position without taking space.
//
// # Safety
//
// Construct, New, Ptr, Field and Owner perform unchecked address arithmetic.
// The caller owns the backing memory and guarantees it is aligned to the
// composite's alignment and at least Size bytes long. Package region offers
// checked construction on top of this package. Memory that the Go garbage
// collector does not scan must only hold pointer-free fields.
//
// Declared composites are immutable and safe for concurrent use.
package layout
