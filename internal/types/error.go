package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure. Handlers map kinds to HTTP status
// codes in one place (utils.ErrorResponse).
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindPermission ErrorKind = "permission_denied"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindDependency ErrorKind = "dependency"
)

// Error is the single error type services return for expected failures.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied reports a failed authorization check.
func PermissionDenied(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing or already-deleted entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a state collision: duplicate sibling folder name,
// self/descendant re-parenting, protected root deletion, non-empty folder
// deletion without force.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Dependency reports a collaborator failure (storage, email, broadcast).
// The entity's own write may still have succeeded; callers must say which
// half did.
func Dependency(format string, args ...any) *Error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
