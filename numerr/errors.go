// Package numerr defines the failure taxonomy for numcanon.
//
// Every error returned by the CLIs maps to exactly one FailureClass, which
// determines the exit code. Broken preconditions inside the codec are not
// returned at all: they panic through Violation.
package numerr

import "fmt"

// FailureClass is a stable failure category.
type FailureClass string

const (
	InvalidNumber     FailureClass = "INVALID_NUMBER"
	NotFinite         FailureClass = "NOT_FINITE"
	MalformedVector   FailureClass = "MALFORMED_VECTOR"
	VectorMismatch    FailureClass = "VECTOR_MISMATCH"
	BoundExceeded     FailureClass = "BOUND_EXCEEDED"
	CLIUsage          FailureClass = "CLI_USAGE"
	InternalIO        FailureClass = "INTERNAL_IO"
	InternalError     FailureClass = "INTERNAL_ERROR"
	ContractViolation FailureClass = "CONTRACT_VIOLATION"
)

// ExitCode returns the process exit code for this failure class.
func (fc FailureClass) ExitCode() int {
	switch fc {
	case InternalIO, InternalError, ContractViolation:
		return 10
	default:
		return 2
	}
}

// Error is the structured error type for all numcanon failures.
type Error struct {
	Class   FailureClass
	Offset  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("numerr: %s at byte %d: %s", e.Class, e.Offset, msg)
	}
	return fmt.Sprintf("numerr: %s: %s", e.Class, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given class and message.
// A negative offset means the failure has no input position.
func New(class FailureClass, offset int, message string) *Error {
	return &Error{Class: class, Offset: offset, Message: message}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(class FailureClass, offset int, message string, cause error) *Error {
	return &Error{Class: class, Offset: offset, Message: message, Cause: cause}
}

// Violation panics with a CONTRACT_VIOLATION error. It marks a broken
// precondition in a caller, never a condition the codec can recover from.
func Violation(format string, args ...any) {
	panic(New(ContractViolation, -1, fmt.Sprintf(format, args...)))
}
