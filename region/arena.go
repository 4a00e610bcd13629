package region

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/typelayout"
	"github.com/wippyai/typelayout/errors"
	"github.com/wippyai/typelayout/internal/align"
	"github.com/wippyai/typelayout/layout"
)

// Arena is a bump allocator over a region. Spans are never freed
// individually; Reset releases all of them at once.
type Arena struct {
	r     typelayout.Region
	name  string
	start uintptr
	limit uintptr
	mu    sync.Mutex
	next  uintptr
	count int
}

// Option configures an Arena.
type Option func(*Arena)

// WithStart reserves the first offset bytes of the region.
func WithStart(offset uintptr) Option {
	return func(a *Arena) { a.start = offset }
}

// WithLimit caps the arena at limit bytes from the start of the region.
func WithLimit(limit uintptr) Option {
	return func(a *Arena) { a.limit = limit }
}

// WithName labels the arena in log output.
func WithName(name string) Option {
	return func(a *Arena) { a.name = name }
}

// NewArena returns an arena over r. By default it spans the whole region.
func NewArena(r typelayout.Region, opts ...Option) (*Arena, error) {
	if r == nil {
		return nil, errors.NilPointer(errors.PhaseAllocate, nil, "typelayout.Region")
	}
	a := &Arena{r: r, name: "arena", limit: r.Len()}
	for _, opt := range opts {
		opt(a)
	}
	if a.limit > r.Len() {
		a.limit = r.Len()
	}
	if a.start > a.limit {
		return nil, errors.RegionTooSmall(errors.PhaseAllocate, a.start, 0, a.limit)
	}
	a.next = a.start
	return a, nil
}

var _ typelayout.Allocator = (*Arena)(nil)

// Alloc reserves size bytes whose address is aligned to alignment and
// returns their offset in the region.
func (a *Arena) Alloc(size, alignment uintptr) (uintptr, error) {
	if !align.IsPowerOfTwo(alignment) {
		return 0, errors.InvalidInput(errors.PhaseAllocate, "alignment must be a power of two")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	base := uintptr(a.r.Base())
	addr, ok := align.UpChecked(base+a.next, alignment)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseAllocate, size, alignment)
	}
	offset := addr - base
	end, ok := align.Add(offset, size)
	if !ok || end > a.limit {
		Logger().Debug("arena exhausted",
			zap.String("arena", a.name),
			zap.Uintptr("size", size),
			zap.Uintptr("align", alignment),
			zap.Uintptr("remaining", a.limit-a.next))
		return 0, errors.AllocationFailed(errors.PhaseAllocate, size, alignment)
	}

	a.next = end
	a.count++
	return offset, nil
}

// Reset releases every span. Pointers handed out before remain valid memory
// but will be reused.
func (a *Arena) Reset() {
	a.mu.Lock()
	a.next = a.start
	a.count = 0
	a.mu.Unlock()
}

// Used returns the bytes consumed since the start, padding included.
func (a *Arena) Used() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next - a.start
}

// Remaining returns the bytes left before the limit.
func (a *Arena) Remaining() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limit - a.next
}

// Count returns the number of live allocations.
func (a *Arena) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Region returns the region the arena allocates from.
func (a *Arena) Region() typelayout.Region { return a.r }

// New allocates a span for d in a and constructs a T there. It returns the
// instance and its offset in the region.
func New[T any](a *Arena, d layout.Typed[T]) (*T, uintptr, error) {
	offset, err := a.Alloc(d.Size(), d.Alignment())
	if err != nil {
		return nil, 0, err
	}
	p, err := Construct(a.r, offset, d)
	if err != nil {
		return nil, 0, err
	}
	return p, offset, nil
}
