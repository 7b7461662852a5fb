// Package errors provides structured error types for the objref registry.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the command keyword, the offending parameter, the
// expected and received value types, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindTypeMismatch).
//		Command("compute").
//		Param("factor").
//		Expected("f64").
//		Got("s64").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownCommand("Frobnicate")
//	err := errors.HandleNotFound("getPreset", 7)
//
// Sentinels match by Kind regardless of phase or context:
//
//	if errors.Is(err, objerrors.ErrHandleNotFound) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
