package domain

import (
	"errors"
	"fmt"
)

// Class groups error codes by the layer that raised them. It is the middle
// segment of a code and selects the process exit status.
type Class string

const (
	ClassConnection Class = "CONN"
	ClassConductor  Class = "COND"
	ClassArgument   Class = "ARG"
	ClassConfig     Class = "CFG"
)

var exitCodes = map[Class]int{
	ClassArgument:   2,
	ClassConfig:     3,
	ClassConnection: 4,
	ClassConductor:  5,
}

// DomainError is a failure with a stable code of the form HC-<class>-<n>.
// The package-level values are sentinels; WithDetails and Wrap derive
// copies that still match them under errors.Is.
type DomainError struct {
	Class   Class
	Code    string
	Message string
	Details string
	Cause   error
}

func define(class Class, n int, message string) *DomainError {
	return &DomainError{
		Class:   class,
		Code:    fmt.Sprintf("HC-%s-%04d", class, n),
		Message: message,
	}
}

func (e *DomainError) Error() string {
	if e.Details == "" {
		return "[" + e.Code + "] " + e.Message
	}
	return "[" + e.Code + "] " + e.Message + ": " + e.Details
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches any *DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func (e *DomainError) derive(details string, cause error) *DomainError {
	out := *e
	out.Details, out.Cause = details, cause
	return &out
}

// WithDetails returns a copy of e with details, keeping its cause.
func (e *DomainError) WithDetails(details string) *DomainError {
	return e.derive(details, e.Cause)
}

func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.derive(fmt.Sprintf(format, args...), e.Cause)
}

// WithCause returns a copy of e caused by cause, keeping its details.
func (e *DomainError) WithCause(cause error) *DomainError {
	return e.derive(e.Details, cause)
}

// Wrap returns a copy of e caused by cause. Unless e already has details,
// the cause's text becomes the details.
func (e *DomainError) Wrap(cause error) *DomainError {
	details := e.Details
	if details == "" && cause != nil {
		details = cause.Error()
	}
	return e.derive(details, cause)
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ExitCode maps err to a process exit status: 0 for nil, a per-class
// status for a DomainError, and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := exitCodes[de.Class]; ok {
			return code
		}
	}
	return 1
}

// Reaching the conductor.
var (
	// ErrConnectionFailed covers a websocket that could not be opened or
	// broke mid-request.
	ErrConnectionFailed     = define(ClassConnection, 5001, "could not connect to conductor")
	ErrConnectionClosed     = define(ClassConnection, 5002, "connection closed")
	ErrTimeout              = define(ClassConnection, 5040, "request timed out")
	ErrAuthenticationFailed = define(ClassConnection, 4010, "app interface authentication failed")
)

// What the conductor answered.
var (
	// ErrConductor details are "<call>: <error kind>: <conductor message>".
	ErrConductor          = define(ClassConductor, 5000, "conductor returned an error")
	ErrUnexpectedResponse = define(ClassConductor, 5020, "unexpected response from conductor")
)

// Command-line arguments.
var (
	ErrInvalidArgument = define(ClassArgument, 1001, "invalid argument")
	ErrMissingArgument = define(ClassArgument, 1002, "missing required argument")
)

// Configuration files.
var (
	ErrConfigLoad    = define(ClassConfig, 4001, "failed to load configuration")
	ErrConfigInvalid = define(ClassConfig, 4002, "invalid configuration")
	ErrConfigSave    = define(ClassConfig, 4003, "failed to save configuration")
)
