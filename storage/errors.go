package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by every backend.
var (
	// ErrNotFound indicates the object or bucket does not exist.
	ErrNotFound = errors.New("storage: object not found")

	// ErrCredentials indicates credentials are missing or were rejected.
	ErrCredentials = errors.New("storage: credentials unavailable")
)

// Error carries the context of a failed provider call.
type Error struct {
	// Op is the operation that failed (list, head, open, presign).
	Op string
	// Bucket is the bucket the operation targeted.
	Bucket string
	// Key is the object key or listing prefix.
	Key string
	// Code is the provider error code, when one was reported.
	Code string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	target := e.Bucket
	if e.Key != "" {
		target = e.Bucket + "/" + e.Key
	}
	if e.Code != "" {
		return fmt.Sprintf("storage.%s %s: %s: %v", e.Op, target, e.Code, e.Err)
	}
	return fmt.Sprintf("storage.%s %s: %v", e.Op, target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with operation context.
func NewError(op, bucket, key, code string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Code: code, Err: err}
}

// IsNotFound reports whether err indicates a missing object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCredentials reports whether err indicates missing or rejected credentials.
func IsCredentials(err error) bool {
	return errors.Is(err, ErrCredentials)
}

// joinSentinel wraps cause so both sentinel and cause match errors.Is.
func joinSentinel(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// NotFoundError builds a classified not-found error.
func NotFoundError(op, bucket, key, code string, cause error) *Error {
	return NewError(op, bucket, key, code, joinSentinel(ErrNotFound, cause))
}

// CredentialsError builds a classified credentials error.
func CredentialsError(op, bucket, key, code string, cause error) *Error {
	return NewError(op, bucket, key, code, joinSentinel(ErrCredentials, cause))
}
