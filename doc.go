// Package typelayout computes and constructs memory layouts for heterogeneous
// objects assembled from independently described fields.
//
// A managed runtime often needs an object that is "a header followed by a
// payload" where both parts are described by separate types. typelayout glues
// such parts together with C-like placement rules and hands out typed field
// accessors that translate between a composite and its fields in both
// directions.
//
// # Architecture Overview
//
//	typelayout/          Root package with the Region and Allocator interfaces
//	├── layout/          Descriptors, composites and field handles
//	├── region/          Checked construction into heap buffers and wazero memory
//	├── witlayout/       Canonical ABI layouts of WIT types built on layout
//	├── errors/          Structured error types for debugging
//	└── cmd/layoutdump/  Prints or browses layouts of a WIT document
//
// # Quick Start
//
// Declare the layout once, next to its field handles:
//
//	type object struct{}
//
//	var (
//	    objectLayout = layout.MustComposite[object](
//	        layout.Of[Header](),
//	        layout.Of[uint64](),
//	    )
//	    objectHeader = layout.FieldOf[Header](objectLayout, 0)
//	    objectValue  = layout.FieldOf[uint64](objectLayout, 1)
//	)
//
// Construct an instance into memory and use the handles:
//
//	buf, _ := region.NewBytes(objectLayout.Size(), objectLayout.Alignment())
//	obj, err := region.Construct(buf, 0, objectLayout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	*objectValue.Ptr(obj) = 42
//	same := objectValue.Owner(objectValue.Ptr(obj)) // == obj
//
// # Placement
//
// Fields are placed in declaration order. Each field starts at the end of the
// previous one rounded up to its own alignment; the composite's alignment is
// the largest field alignment and its size is the end of the last field
// rounded up to that alignment. An empty composite has size 0 and
// alignment 1.
//
// # Thread Safety
//
// Descriptors and composites are immutable after declaration and safe for
// concurrent use. Constructing into the same memory from several goroutines
// must be synchronized by the caller. Arena is safe for concurrent use.
//
// # Memory Model
//
// Composites live in memory the Go garbage collector does not scan: heap
// byte buffers and WASM linear memory. Fields must not hold Go pointers.
// A wazero memory may move when it grows, so pointers into it are only valid
// until the next growth.
package typelayout
