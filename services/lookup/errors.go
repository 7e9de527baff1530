package lookup

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches a well-formed "no such title" answer from the provider.
	ErrNotFound = errors.New("lookup: not found")
	// ErrTransient matches failures that may succeed on a later attempt.
	ErrTransient = errors.New("lookup: transient failure")
)

type ErrorKind int

const (
	KindTransient ErrorKind = iota + 1
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error

	retryable bool
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("lookup %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("lookup %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrTransient:
		return e.Kind == KindTransient
	}
	return false
}

func notFound(op string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

// transient errors are retried within a call unless marked final.
func transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Err: err, retryable: true}
}

func final(e *Error) *Error {
	e.retryable = false
	return e
}

func isRetryable(err error) bool {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.retryable
	}
	return false
}
