// Package align provides the integer alignment helpers shared by the layout
// engine and the region package.
//
// All alignments handled here are powers of two. Up rounds a value to the next
// multiple of an alignment, Add reports overflow instead of wrapping.
//
// This package is internal to typelayout.
package align
