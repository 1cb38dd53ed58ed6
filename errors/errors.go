package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the job lifecycle the error occurred
type Phase string

const (
	PhaseInit     Phase = "init"     // SDK library loading
	PhaseLoad     Phase = "load"     // clip opening
	PhaseSubmit   Phase = "submit"   // synchronous rejection at submission
	PhaseComplete Phase = "complete" // asynchronous failure reported by the trampoline
	PhaseIO       Phase = "io"       // storage backends
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseRuntime  Phase = "runtime"  // library-level misuse and bookkeeping
)

// Kind categorizes the error
type Kind string

// Library-level kinds. Foreign status kinds live in status.go.
const (
	KindUnrecognizedStatus   Kind = "unrecognized_status"
	KindJobInFlight          Kind = "job_in_flight"
	KindMetadataNotRequested Kind = "metadata_not_requested"
	KindResultTaken          Kind = "result_taken"
	KindBufferTooSmall       Kind = "buffer_too_small"
	KindAllocation           Kind = "allocation"
	KindNotFound             Kind = "not_found"
	KindNotInitialized       Kind = "not_initialized"
	KindInvalidInput         Kind = "invalid_input"
	KindUnsupported          Kind = "unsupported"
	KindClosed               Kind = "closed"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Status string // foreign status name, when the error came from the engine
	Detail string
	Path   []string
	Code   int32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Status != "" {
		b.WriteString(": ")
		b.WriteString(e.Status)
	}

	if e.Detail != "" {
		if e.Status != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Status sets the foreign status name and code
func (b *Builder) Status(name string, code int32) *Builder {
	b.err.Status = name
	b.err.Code = code
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// JobInFlight reports a job that was touched while the engine owns it
func JobInFlight(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindJobInFlight,
		Detail: fmt.Sprintf("%s: job is owned by the engine until its future resolves", op),
	}
}

// MetadataNotRequested reports a metadata read on a job that never allocated it
func MetadataNotRequested() *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindMetadataNotRequested,
		Detail: "metadata was not requested in the job",
	}
}

// BufferTooSmall reports an output buffer below the size the engine needs
func BufferTooSmall(phase Phase, needed, provided int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBufferTooSmall,
		Detail: fmt.Sprintf("output buffer too small: needed %d bytes, got %d", needed, provided),
		Value:  needed,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a missing component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed reports use of a component after Close
func Closed(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", component),
	}
}
