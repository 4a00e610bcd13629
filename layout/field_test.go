package layout

import (
	"errors"
	"testing"
	"unsafe"

	lerrors "github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/internal/align"
)

type (
	gcHeader struct {
		typeInfo uintptr
		flags    uint32
	}
	handle     struct{}
	slot       struct{}
	markerOnly struct{}
)

var (
	slotLayout = MustComposite[slot](Of[uint8](), Of[uint64]())
	slotTag    = FieldOf[uint8](slotLayout, 0)
	slotValue  = FieldOf[uint64](slotLayout, 1)

	handleLayout = MustComposite[handle](Of[gcHeader](), Of[uint16](), slotLayout)
	handleHeader = FieldOf[gcHeader](handleLayout, 0)
	handleKind   = FieldOf[uint16](handleLayout, 1)
	handleSlot   = FieldOf[slot](handleLayout, 2)

	handleSlotValue = Compose(handleSlot, slotValue)
)

func newHandle(t *testing.T) (*handle, []byte) {
	t.Helper()
	words, raw := buffer(handleLayout.Size(), 0xcd)
	return handleLayout.New(unsafe.Pointer(&words[0])), raw
}

func TestFieldRefOffsets(t *testing.T) {
	hdrSize := unsafe.Sizeof(gcHeader{})
	wantSlot := align.Up(hdrSize+2, slotLayout.Alignment())
	wantValue := wantSlot + slotLayout.FieldOffset(1)

	if handleHeader.Offset() != 0 {
		t.Errorf("header offset: got %d, want 0", handleHeader.Offset())
	}
	if handleKind.Offset() != hdrSize {
		t.Errorf("kind offset: got %d, want %d", handleKind.Offset(), hdrSize)
	}
	if handleSlot.Offset() != wantSlot {
		t.Errorf("slot offset: got %d, want %d", handleSlot.Offset(), wantSlot)
	}
	if handleSlotValue.Offset() != wantValue {
		t.Errorf("nested offset: got %d, want %d", handleSlotValue.Offset(), wantValue)
	}
	if got := handleSlotValue.Path(); len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("nested path: got %v, want [2 1]", got)
	}
	if handleSlotValue.Index() != 1 {
		t.Errorf("nested index: got %d, want 1", handleSlotValue.Index())
	}
}

func TestFieldRefAccess(t *testing.T) {
	h, _ := newHandle(t)

	handleHeader.Ptr(h).flags = 0x1234
	*handleKind.Ptr(h) = 7
	*handleSlotValue.Ptr(h) = 0xdeadbeef
	*slotTag.Ptr(handleSlot.Ptr(h)) = 3

	if handleHeader.Ptr(h).flags != 0x1234 {
		t.Error("header write lost")
	}
	if *handleKind.Ptr(h) != 7 {
		t.Error("kind write lost")
	}
	if got := *slotValue.Ptr(handleSlot.Ptr(h)); got != 0xdeadbeef {
		t.Errorf("nested value through two hops: got %#x", got)
	}
	if *slotTag.Ptr(handleSlot.Ptr(h)) != 3 {
		t.Error("tag write lost")
	}

	d, p := handleKind.Field(h)
	if d.Size() != 2 || p != handleKind.Ptr(h) {
		t.Error("Field should return the descriptor and the field address")
	}
	if handleKind.Descriptor().Alignment() != 2 {
		t.Error("Descriptor should return the field descriptor")
	}
}

func TestFieldRefRoundTrip(t *testing.T) {
	h, _ := newHandle(t)

	if handleHeader.Owner(handleHeader.Ptr(h)) != h {
		t.Error("header round trip failed")
	}
	if handleKind.Owner(handleKind.Ptr(h)) != h {
		t.Error("kind round trip failed")
	}
	if handleSlot.Owner(handleSlot.Ptr(h)) != h {
		t.Error("slot round trip failed")
	}
	if handleSlotValue.Owner(handleSlotValue.Ptr(h)) != h {
		t.Error("nested round trip failed")
	}

	// Untyped accessors agree with the handles.
	for i := 0; i < handleLayout.NumFields(); i++ {
		_, fp := handleLayout.Field(i, h)
		if handleLayout.FromField(i, fp) != h {
			t.Errorf("field %d: untyped round trip failed", i)
		}
	}
	_, fp := handleLayout.Field(1, h)
	if (*uint16)(fp) != handleKind.Ptr(h) {
		t.Error("untyped and typed field addresses differ")
	}
}

func TestConstructZeroesFields(t *testing.T) {
	h, raw := newHandle(t)

	if hdr := handleHeader.Ptr(h); hdr.typeInfo != 0 || hdr.flags != 0 {
		t.Errorf("header not zeroed: %+v", *hdr)
	}
	if *handleKind.Ptr(h) != 0 || *handleSlotValue.Ptr(h) != 0 {
		t.Error("fields not zeroed")
	}
	// Padding between kind and the slot keeps its previous contents.
	padStart := handleKind.Offset() + 2
	if raw[padStart] != 0xcd {
		t.Errorf("padding byte %d was written", padStart)
	}
}

func TestLookupFieldErrors(t *testing.T) {
	t.Run("out_of_range", func(t *testing.T) {
		_, err := LookupField[uint16](handleLayout, 3)
		if !errors.Is(err, &lerrors.Error{Phase: lerrors.PhaseAccess, Kind: lerrors.KindOutOfBounds}) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("negative", func(t *testing.T) {
		_, err := LookupField[uint16](handleLayout, -1)
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("wrong_type", func(t *testing.T) {
		_, err := LookupField[uint32](handleLayout, 1)
		if !errors.Is(err, &lerrors.Error{Phase: lerrors.PhaseAccess, Kind: lerrors.KindTypeMismatch}) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("untyped_descriptor", func(t *testing.T) {
		c := MustComposite[markerOnly](Opaque(4, 4))
		if _, err := LookupField[uint32](c, 0); err == nil {
			t.Error("opaque bytes are not a uint32 field")
		}
		if _, err := LookupField[byte](c, 0); err == nil {
			t.Error("opaque bytes hold no typed value")
		}

		// A zero-size opaque span at the end must not yield a handle past it.
		tail := MustComposite[markerOnly](Of[uint16](), Opaque(0, 8))
		if _, err := LookupField[byte](tail, 1); err == nil {
			t.Errorf("handle at offset %d of a %d byte composite", tail.FieldOffset(1), tail.Size())
		}
	})

	t.Run("empty_composite", func(t *testing.T) {
		c := MustComposite[markerOnly]()
		assertPanicKind(t, lerrors.KindOutOfBounds, func() { FieldOf[uint8](c, 0) })
	})
}

func TestComposeRejectsForeignField(t *testing.T) {
	other := MustComposite[slot](Of[uint8](), Of[uint64]())
	otherValue := FieldOf[uint64](other, 1)

	// Same shape, different declaration.
	assertPanicKind(t, lerrors.KindTypeMismatch, func() { Compose(handleSlot, otherValue) })
	assertPanicKind(t, lerrors.KindNilPointer, func() { Compose(FieldRef[handle, slot]{}, slotValue) })
}

func BenchmarkFieldRefPtr(b *testing.B) {
	words, _ := buffer(handleLayout.Size(), 0)
	h := handleLayout.New(unsafe.Pointer(&words[0]))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := handleSlotValue.Ptr(h)
		if handleSlotValue.Owner(p) != h {
			b.Fatal("round trip failed")
		}
	}
}

func BenchmarkConstruct(b *testing.B) {
	words, _ := buffer(handleLayout.Size(), 0)
	ptr := unsafe.Pointer(&words[0])
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handleLayout.Construct(ptr)
	}
}
