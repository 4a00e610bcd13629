package region

import (
	"errors"
	"sync"
	"testing"
	"unsafe"

	lerrors "github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/layout"
)

type (
	record struct{}
	nothing struct{}
)

var (
	recordLayout = layout.MustComposite[record](layout.Of[uint8](), layout.Of[uint32](), layout.Of[uint16]())
	recordTag    = layout.FieldOf[uint8](recordLayout, 0)
	recordValue  = layout.FieldOf[uint32](recordLayout, 1)
	recordCount  = layout.FieldOf[uint16](recordLayout, 2)

	nothingLayout = layout.MustComposite[nothing]()
)

func isKind(err error, phase lerrors.Phase, kind lerrors.Kind) bool {
	return errors.Is(err, &lerrors.Error{Phase: phase, Kind: kind})
}

func fill(b *Bytes, v byte) {
	buf := b.Bytes()
	for i := range buf {
		buf[i] = v
	}
}

func TestNewBytes(t *testing.T) {
	for _, alignment := range []uintptr{1, 2, 8, 64, 4096} {
		b, err := NewBytes(100, alignment)
		if err != nil {
			t.Fatalf("align %d: %v", alignment, err)
		}
		if uintptr(b.Base())%alignment != 0 {
			t.Errorf("align %d: base %p not aligned", alignment, b.Base())
		}
		if b.Len() != 100 || len(b.Bytes()) != 100 {
			t.Errorf("align %d: got len %d, want 100", alignment, b.Len())
		}
	}

	t.Run("zero_size", func(t *testing.T) {
		b, err := NewBytes(0, 8)
		if err != nil {
			t.Fatal(err)
		}
		if b.Len() != 0 || b.Base() == nil {
			t.Errorf("got len %d base %p", b.Len(), b.Base())
		}
	})

	t.Run("bad_alignment", func(t *testing.T) {
		for _, alignment := range []uintptr{0, 3, 12} {
			if _, err := NewBytes(16, alignment); !isKind(err, lerrors.PhaseAllocate, lerrors.KindInvalidInput) {
				t.Errorf("align %d: got %v", alignment, err)
			}
		}
	})
}

func TestConstruct(t *testing.T) {
	b, err := NewBytes(64, 8)
	if err != nil {
		t.Fatal(err)
	}
	fill(b, 0xff)

	r, err := Construct(b, 8, recordLayout)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if unsafe.Pointer(r) != unsafe.Add(b.Base(), 8) {
		t.Error("instance not at the requested offset")
	}
	if *recordTag.Ptr(r) != 0 || *recordValue.Ptr(r) != 0 || *recordCount.Ptr(r) != 0 {
		t.Error("fields not zeroed")
	}
	raw := b.Bytes()
	if raw[9] != 0xff {
		t.Error("padding after the tag was written")
	}
	if raw[8+recordLayout.Size()] != 0xff {
		t.Error("byte past the instance was written")
	}

	*recordValue.Ptr(r) = 0x01020304
	again, err := At(b, 8, recordLayout)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if again != r || *recordValue.Ptr(again) != 0x01020304 {
		t.Error("At should view the constructed instance without writing")
	}

	t.Run("end_of_region", func(t *testing.T) {
		if _, err := Construct(b, 64-recordLayout.Size(), recordLayout); err != nil {
			t.Errorf("last slot: %v", err)
		}
	})

	t.Run("empty_at_end", func(t *testing.T) {
		if _, err := Construct(b, 64, nothingLayout); err != nil {
			t.Errorf("empty composite at end: %v", err)
		}
	})

	tests := []struct {
		name   string
		offset uintptr
		phase  lerrors.Phase
		kind   lerrors.Kind
	}{
		{"misaligned", 2, lerrors.PhaseConstruct, lerrors.KindMisaligned},
		{"past_end", 56, lerrors.PhaseConstruct, lerrors.KindOutOfBounds},
		{"far_past_end", 1 << 20, lerrors.PhaseConstruct, lerrors.KindOutOfBounds},
		{"wraps", ^uintptr(0) - 2, lerrors.PhaseConstruct, lerrors.KindOutOfBounds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Construct(b, tc.offset, recordLayout)
			if !isKind(err, tc.phase, tc.kind) {
				t.Errorf("got %v, want %s/%s", err, tc.phase, tc.kind)
			}
		})
	}

	t.Run("at_checks", func(t *testing.T) {
		if _, err := At(b, 2, recordLayout); !isKind(err, lerrors.PhaseAccess, lerrors.KindMisaligned) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("nil_region", func(t *testing.T) {
		if _, err := Construct[record](nil, 0, recordLayout); !isKind(err, lerrors.PhaseConstruct, lerrors.KindNilPointer) {
			t.Errorf("got %v", err)
		}
	})
}

// unbacked is a region with no memory behind it.
type unbacked struct{}

func (unbacked) Base() unsafe.Pointer { return nil }
func (unbacked) Len() uintptr         { return 0 }

func TestConstructUnbackedRegion(t *testing.T) {
	marker := layout.MustComposite[nothing](layout.Of[struct{}]())

	tests := []struct {
		name   string
		offset uintptr
		d      layout.Typed[nothing]
		kind   lerrors.Kind
	}{
		{"empty_composite", 0, nothingLayout, lerrors.KindNilPointer},
		{"zero_size_field", 0, marker, lerrors.KindNilPointer},
		{"past_end", 4, nothingLayout, lerrors.KindOutOfBounds},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Construct(unbacked{}, tc.offset, tc.d)
			if p != nil || !isKind(err, lerrors.PhaseConstruct, tc.kind) {
				t.Errorf("Construct: got %v, %v", p, err)
			}
			p, err = At(unbacked{}, tc.offset, tc.d)
			if p != nil || !isKind(err, lerrors.PhaseAccess, tc.kind) {
				t.Errorf("At: got %v, %v", p, err)
			}
		})
	}

	if _, err := Construct(unbacked{}, 0, recordLayout); !isKind(err, lerrors.PhaseConstruct, lerrors.KindOutOfBounds) {
		t.Errorf("sized composite: got %v", err)
	}
}

func TestArena(t *testing.T) {
	b, err := NewBytes(64, 16)
	if err != nil {
		t.Fatal(err)
	}

	a, err := NewArena(b, WithName("test"))
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		size, alignment uintptr
		want            uintptr
	}{
		{1, 1, 0},
		{4, 4, 4},
		{8, 8, 8},
		{2, 2, 16},
		{16, 16, 32},
	}
	for i, s := range steps {
		got, err := a.Alloc(s.size, s.alignment)
		if err != nil {
			t.Fatalf("alloc %d: %v", i, err)
		}
		if got != s.want {
			t.Errorf("alloc %d: got offset %d, want %d", i, got, s.want)
		}
	}
	if a.Used() != 48 || a.Remaining() != 16 || a.Count() != len(steps) {
		t.Errorf("got used %d remaining %d count %d", a.Used(), a.Remaining(), a.Count())
	}

	if _, err := a.Alloc(32, 1); !isKind(err, lerrors.PhaseAllocate, lerrors.KindAllocation) {
		t.Errorf("exhausted: got %v", err)
	}
	if a.Used() != 48 {
		t.Error("failed allocation should not consume space")
	}
	if _, err := a.Alloc(4, 3); !isKind(err, lerrors.PhaseAllocate, lerrors.KindInvalidInput) {
		t.Errorf("bad alignment: got %v", err)
	}

	a.Reset()
	if a.Used() != 0 || a.Count() != 0 {
		t.Error("Reset should release everything")
	}
	if got, _ := a.Alloc(8, 8); got != 0 {
		t.Errorf("after reset: got offset %d, want 0", got)
	}
}

func TestArenaOptions(t *testing.T) {
	b, err := NewBytes(128, 8)
	if err != nil {
		t.Fatal(err)
	}

	a, err := NewArena(b, WithStart(16), WithLimit(40))
	if err != nil {
		t.Fatal(err)
	}
	if a.Region() != b {
		t.Error("Region should return the backing region")
	}
	if got, _ := a.Alloc(1, 1); got != 16 {
		t.Errorf("first offset: got %d, want 16", got)
	}
	if a.Remaining() != 23 {
		t.Errorf("remaining: got %d, want 23", a.Remaining())
	}
	if _, err := a.Alloc(24, 1); err == nil {
		t.Error("allocation past the limit should fail")
	}

	t.Run("limit_clamped", func(t *testing.T) {
		a, err := NewArena(b, WithLimit(1<<20))
		if err != nil {
			t.Fatal(err)
		}
		if a.Remaining() != 128 {
			t.Errorf("remaining: got %d, want 128", a.Remaining())
		}
	})

	t.Run("start_past_limit", func(t *testing.T) {
		if _, err := NewArena(b, WithStart(64), WithLimit(32)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("nil_region", func(t *testing.T) {
		if _, err := NewArena(nil); !isKind(err, lerrors.PhaseAllocate, lerrors.KindNilPointer) {
			t.Errorf("got %v", err)
		}
	})
}

func TestArenaNew(t *testing.T) {
	b, err := NewBytes(recordLayout.Size()*4+1, recordLayout.Alignment())
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewArena(b, WithStart(1))
	if err != nil {
		t.Fatal(err)
	}

	var prev *record
	for i := 0; i < 3; i++ {
		r, off, err := New(a, recordLayout)
		if err != nil {
			t.Fatalf("instance %d: %v", i, err)
		}
		if off%recordLayout.Alignment() != 0 {
			t.Errorf("instance %d: offset %d misaligned", i, off)
		}
		*recordCount.Ptr(r) = uint16(i + 1)
		if prev != nil && *recordCount.Ptr(prev) != uint16(i) {
			t.Errorf("instance %d overwrote its predecessor", i)
		}
		prev = r
	}

	if _, _, err := New(a, recordLayout); err == nil {
		t.Error("fourth instance should not fit after the reserved byte")
	}
	if _, _, err := New(a, nothingLayout); err != nil {
		t.Errorf("empty composite always fits: %v", err)
	}
}

func TestArenaConcurrent(t *testing.T) {
	const workers, perWorker = 8, 32
	b, err := NewBytes(workers*perWorker*8, 8)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewArena(b)
	if err != nil {
		t.Fatal(err)
	}

	offsets := make(chan uintptr, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				off, err := a.Alloc(8, 8)
				if err != nil {
					t.Error(err)
					return
				}
				offsets <- off
			}
		}()
	}
	wg.Wait()
	close(offsets)

	seen := make(map[uintptr]bool)
	for off := range offsets {
		if seen[off] {
			t.Fatalf("offset %d handed out twice", off)
		}
		seen[off] = true
	}
	if len(seen) != workers*perWorker {
		t.Errorf("got %d allocations, want %d", len(seen), workers*perWorker)
	}
}
