// Package errors provides structured error types for typelayout.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDeclare, errors.KindInvalidDescriptor).
//		Path("Object", "1").
//		GoType("uint32").
//		Detail("alignment %d is not a power of two", 3).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Misaligned(errors.PhaseConstruct, addr, 8)
//	err := errors.OutOfBounds(errors.PhaseAccess, path, 4, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
