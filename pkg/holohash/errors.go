package holohash

import (
	"errors"
	"fmt"
)

// Kind names a class of codec failure.
type Kind uint8

const (
	KindPayloadLength Kind = iota + 1
	KindHashLength
	KindChecksum
	KindUnknownType
	KindTypeMismatch
	KindEncoding
	KindIndexRange
)

var kindText = [...]string{
	KindPayloadLength: "invalid payload length",
	KindHashLength:    "invalid hash length",
	KindChecksum:      "location checksum mismatch",
	KindUnknownType:   "unknown hash type",
	KindTypeMismatch:  "hash type mismatch",
	KindEncoding:      "malformed encoding",
	KindIndexRange:    "cell index out of range",
}

// Code is the stable HC-HASH-40xx code of k.
func (k Kind) Code() string { return fmt.Sprintf("HC-HASH-%d", 4000+int(k)) }

func (k Kind) String() string {
	if int(k) < len(kindText) && kindText[k] != "" {
		return kindText[k]
	}
	return "unknown codec error"
}

// Error is a codec failure. errors.Is matches on Kind alone, so a
// detailed copy still matches its sentinel.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	s := "[" + e.Kind.Code() + "] " + e.Kind.String()
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithDetails returns a copy of e with a formatted detail.
func (e *Error) WithDetails(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Detail: fmt.Sprintf(format, args...), Err: e.Err}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Detail: e.Detail, Err: err}
}

// Sentinels for errors.Is.
var (
	ErrInvalidPayloadLength = &Error{Kind: KindPayloadLength} // core is not 32 bytes
	ErrInvalidHashLength    = &Error{Kind: KindHashLength}    // raw hash is not 39 bytes
	ErrChecksumMismatch     = &Error{Kind: KindChecksum}
	ErrUnknownHashType      = &Error{Kind: KindUnknownType}
	ErrHashTypeMismatch     = &Error{Kind: KindTypeMismatch}
	ErrMalformedEncoding    = &Error{Kind: KindEncoding}
	ErrIndexOutOfRange      = &Error{Kind: KindIndexRange}
)

// Code returns the code of the first codec error in err's chain, or "".
func Code(err error) string {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind.Code()
	}
	return ""
}
