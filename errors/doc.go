// Package errors provides structured error types for the r3d-bridge library.
//
// Errors are categorized by Phase (where in the job lifecycle the error
// occurred) and Kind (error category). Foreign status codes map onto a closed
// set of kinds; codes outside the documented set map to KindUnrecognizedStatus.
// Mapping a success code panics, since success never produces an error.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSubmit, errors.KindInvalidInput).
//		Path("job", "output").
//		Detail("buffer not set").
//		Build()
//
// Or map a status returned by the engine:
//
//	err := errors.FromDecodeStatus(errors.PhaseComplete, status.DecodeCancelled)
//
// Sentinels such as ErrCancelled match any phase:
//
//	if stderrors.Is(err, errors.ErrCancelled) { ... }
package errors
