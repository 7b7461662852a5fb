package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // keyword recognition
	PhaseValidate Phase = "validate" // handle, arity and type checks
	PhaseExecute  Phase = "execute"  // instance operation
	PhaseBoundary Phase = "boundary" // guest memory marshalling
	PhaseRestore  Phase = "restore"  // snapshot import
	PhaseScenario Phase = "scenario" // scenario file evaluation
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownCommand  Kind = "unknown_command"
	KindInvalidArgument Kind = "invalid_argument"
	KindHandleNotFound  Kind = "handle_not_found"
	KindArity           Kind = "arity"
	KindTypeMismatch    Kind = "type_mismatch"
	KindExecution       Kind = "execution"
	KindBoundary        Kind = "boundary"
	KindInvalidData     Kind = "invalid_data"
)

// Sentinels for errors.Is. They carry no phase and match any error of the same Kind.
var (
	ErrUnknownCommand  = &Error{Kind: KindUnknownCommand}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrHandleNotFound  = &Error{Kind: KindHandleNotFound}
	ErrArity           = &Error{Kind: KindArity}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrExecution       = &Error{Kind: KindExecution}
)

// Error is the structured error type used throughout objref
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Command  string
	Param    string
	Expected string
	Got      string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Command != "" {
		b.WriteString(" in ")
		b.WriteString(e.Command)
		if e.Param != "" {
			b.WriteByte('(')
			b.WriteString(e.Param)
			b.WriteByte(')')
		}
	}

	hasTypes := e.Expected != "" || e.Got != ""
	if hasTypes {
		b.WriteString(": ")
		switch {
		case e.Expected != "" && e.Got != "":
			b.WriteString("expected ")
			b.WriteString(e.Expected)
			b.WriteString(", got ")
			b.WriteString(e.Got)
		case e.Expected != "":
			b.WriteString("expected ")
			b.WriteString(e.Expected)
		default:
			b.WriteString("got ")
			b.WriteString(e.Got)
		}
	}

	if e.Detail != "" {
		if hasTypes {
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
// A target without a phase matches on Kind alone.
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

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PhaseOf returns the Phase of the first *Error in err's chain, or "" if there is none.
func PhaseOf(err error) Phase {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Phase
	}
	return ""
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

// Command sets the command keyword
func (b *Builder) Command(name string) *Builder {
	b.err.Command = name
	return b
}

// Param sets the offending parameter name
func (b *Builder) Param(name string) *Builder {
	b.err.Param = name
	return b
}

// Expected sets the expected type or count
func (b *Builder) Expected(s string) *Builder {
	b.err.Expected = s
	return b
}

// Got sets the received type or count
func (b *Builder) Got(s string) *Builder {
	b.err.Got = s
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

// UnknownCommand creates an unknown command error
func UnknownCommand(keyword string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnknownCommand,
		Detail: fmt.Sprintf("unknown command %q", keyword),
		Value:  keyword,
	}
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(phase Phase, command, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidArgument,
		Command: command,
		Detail:  detail,
	}
}

// HandleNotFound creates a handle lookup failure
func HandleNotFound(command string, handle any) *Error {
	return &Error{
		Phase:   PhaseValidate,
		Kind:    KindHandleNotFound,
		Command: command,
		Detail:  fmt.Sprintf("unknown handle %v", handle),
		Value:   handle,
	}
}

// ArityMismatch creates an argument or output count error
func ArityMismatch(command, what string, want, got int) *Error {
	return &Error{
		Phase:    PhaseValidate,
		Kind:     KindArity,
		Command:  command,
		Expected: fmt.Sprintf("%d %s", want, what),
		Got:      fmt.Sprintf("%d", got),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(command, param, expected, got string) *Error {
	return &Error{
		Phase:    PhaseValidate,
		Kind:     KindTypeMismatch,
		Command:  command,
		Param:    param,
		Expected: expected,
		Got:      got,
	}
}

// Execution wraps a failure raised by the wrapped instance
func Execution(command string, cause error) *Error {
	return &Error{
		Phase:   PhaseExecute,
		Kind:    KindExecution,
		Command: command,
		Cause:   cause,
	}
}

// OutOfBounds creates a guest memory access error
func OutOfBounds(what string, offset, length uint32) *Error {
	return &Error{
		Phase:  PhaseBoundary,
		Kind:   KindBoundary,
		Detail: fmt.Sprintf("%s at offset %d (length %d) out of bounds", what, offset, length),
		Value:  offset,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
