// Package apperr defines the error taxonomy shared by services and controllers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrComplaintClosed = errors.New("complaint is closed")
	ErrUserNotFound    = errors.New("user not found")
)

// ValidationError reports bad operator input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// PreconditionError means the operation was refused before any network call.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Message)
}

// NewPreconditionError creates a new precondition error
func NewPreconditionError(msg string) *PreconditionError {
	return &PreconditionError{Message: msg}
}

// RemoteError wraps a failed call to a store or an external API.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError creates a new remote error
func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsPrecondition checks if the error is a precondition error
func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}

// IsRemote checks if the error came from a store or external API
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}
