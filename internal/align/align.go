package align

import "math/bits"

// Up rounds value up to the nearest multiple of alignment.
// An alignment of 0 leaves value unchanged.
func Up(value, alignment uintptr) uintptr {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// UpChecked is Up that reports false when rounding would overflow.
func UpChecked(value, alignment uintptr) (uintptr, bool) {
	if alignment == 0 {
		return value, true
	}
	sum, ok := Add(value, alignment-1)
	if !ok {
		return 0, false
	}
	return sum &^ (alignment - 1), true
}

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

// IsAligned reports whether value is a multiple of alignment.
func IsAligned(value, alignment uintptr) bool {
	if alignment == 0 {
		return true
	}
	return value&(alignment-1) == 0
}

func Add(a, b uintptr) (uintptr, bool) {
	sum, carry := bits.Add(uint(a), uint(b), 0)
	return uintptr(sum), carry == 0
}

func Mul(a, b uintptr) (uintptr, bool) {
	hi, lo := bits.Mul(uint(a), uint(b))
	return uintptr(lo), hi == 0
}
