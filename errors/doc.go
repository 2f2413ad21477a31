// Package errors provides structured error types for memview.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go type and layout names, and cause chain.
//
// Declaration-time rejections (unsupported field kinds, non-trivial aggregates,
// unsized layouts, unsupported calling conventions) use PhaseDeclare and are
// returned by constructors before any memory is touched:
//
//	err := errors.New(errors.PhaseDeclare, errors.KindNonTrivial).
//		Path("Player", "name").
//		GoType("string").
//		Detail("strings are not trivially copyable").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsizedLayout("Player", "weak view")
//	err := errors.OutOfBounds(errors.PhaseAccess, path, 10, 4)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
