// Package errors provides structured error types for the gpu-layout compiler.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the offending declaration/field path, the type name involved,
// the source line when known, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLayout, errors.KindUnsupported).
//		Path("Scene", "items").
//		TypeName("PietItem").
//		Detail("enum cannot be aligned as an inline field").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax(12, "expected ':' after field name")
//	err := errors.Unresolved([]string{"Group", "bbox"}, "BBox")
//
// Compilation errors fall in three families that callers can test with errors.Is:
// ErrParse (malformed declarations), ErrUnresolved (a named type absent from the
// table) and ErrUnsupported (shapes the layout rules do not cover).
package errors
