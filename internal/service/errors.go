package service

import (
	"errors"
	"fmt"
)

// Kind classifies a store failure.
type Kind int

const (
	// KindTransport is a network failure: the store was not reached.
	KindTransport Kind = iota + 1
	// KindStore is a non-success status reported by the store.
	KindStore
	// KindDecode is a response body that is not the expected structure.
	KindDecode
	// KindNotFound is a logical record absent from a freshly fetched set.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStore:
		return "store"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error is a classified store failure.
type Error struct {
	Kind   Kind
	Status int    // HTTP status for KindStore, 0 otherwise
	Msg    string // user-facing message
	Err    error  // underlying cause, for logs
}

// NewError returns a classified error.
func NewError(kind Kind, msg string, underlying error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: underlying}
}

// StoreError returns a KindStore error for an HTTP status.
func StoreError(status int, msg string, underlying error) *Error {
	return &Error{Kind: KindStore, Status: status, Msg: msg, Err: underlying}
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
	if e.Status != 0 {
		prefix = fmt.Sprintf("[%s %d] %s", e.Kind, e.Status, e.Msg)
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or 0 if err is not a classified error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsKind reports whether err is a classified error of kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Msg
	}
	return err.Error()
}
