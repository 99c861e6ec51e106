package interfaces

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across components.
var (
	// ErrDuplicateSlug reports a unique-constraint violation on a slug
	// column. During installation this means the canonical username
	// collided with an existing identifier.
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrReservedSlug reports an identifier reserved by the application
	// (route fragments and similar).
	ErrReservedSlug = errors.New("slug is reserved")

	// ErrUserNotFound reports a lookup miss on the users table.
	ErrUserNotFound = errors.New("user not found")

	// ErrSettingNotFound reports a lookup miss on the settings table.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrUnsupportedDriver reports a descriptor naming a driver the
	// storage factory does not know.
	ErrUnsupportedDriver = errors.New("unsupported storage driver")
)

// ConnErrorKind is the closed set of connectivity failure classes. The
// kind decides which request fields the operator is asked to correct, so
// drivers must classify carefully and callers must never fall back to
// matching message substrings.
type ConnErrorKind int

const (
	// ConnOther is any failure not covered by a more specific kind.
	ConnOther ConnErrorKind = iota

	// ConnAuth means the store rejected the user or password.
	ConnAuth

	// ConnNotFound means the target database does not exist.
	ConnNotFound

	// ConnTimeout means the host did not respond within the descriptor
	// timeout.
	ConnTimeout
)

// String returns a short label for logging.
func (k ConnErrorKind) String() string {
	switch k {
	case ConnAuth:
		return "auth"
	case ConnNotFound:
		return "not-found"
	case ConnTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// ConnError wraps a driver failure with its classification.
type ConnError struct {
	Kind ConnErrorKind
	Err  error
}

// Error returns the kind label and the underlying message.
func (e *ConnError) Error() string {
	return fmt.Sprintf("store connection failed (%s): %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying driver error.
func (e *ConnError) Unwrap() error {
	return e.Err
}
