package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// TaskErrorType categorizes the failures surfaced to callers
type TaskErrorType string

const (
	ValidationError TaskErrorType = "validation"
	NotFoundError   TaskErrorType = "not_found"
	TransportError  TaskErrorType = "transport"
	InternalError   TaskErrorType = "internal"
)

// TaskError provides structured error information with HTTP status suggestions
type TaskError struct {
	Type    TaskErrorType  `json:"type"`
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *TaskError) Unwrap() error {
	return e.cause
}

// Is matches any TaskError of the same Type, so callers can write
// errors.Is(err, &TaskError{Type: NotFoundError}).
func (e *TaskError) Is(target error) bool {
	t, ok := target.(*TaskError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

func firstDetails(details []map[string]any) map[string]any {
	if len(details) > 0 {
		return details[0]
	}
	return nil
}

// Constructor functions for common error types
func NewValidationError(message string, details ...map[string]any) *TaskError {
	return &TaskError{
		Type:    ValidationError,
		Message: message,
		Code:    http.StatusBadRequest,
		Details: firstDetails(details),
	}
}

func NewNotFoundError(message string) *TaskError {
	return &TaskError{
		Type:    NotFoundError,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewTransportError reports an unreachable or failing store or text-generation service.
func NewTransportError(message string, cause error, details ...map[string]any) *TaskError {
	return &TaskError{
		Type:    TransportError,
		Message: message,
		Code:    http.StatusBadGateway,
		Details: firstDetails(details),
		cause:   cause,
	}
}

func NewInternalError(message string) *TaskError {
	return &TaskError{
		Type:    InternalError,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// FromType rebuilds a TaskError from its wire representation.
// Unknown types are treated as internal errors.
func FromType(typ string, message string, details map[string]any) *TaskError {
	var e *TaskError
	switch TaskErrorType(typ) {
	case ValidationError:
		e = NewValidationError(message, details)
	case NotFoundError:
		e = NewNotFoundError(message)
		e.Details = details
	case TransportError:
		e = NewTransportError(message, nil, details)
	default:
		e = NewInternalError(message)
		e.Details = details
	}
	return e
}

// IsTaskError checks if an error is (or wraps) a TaskError and returns it
func IsTaskError(err error) (*TaskError, bool) {
	var taskErr *TaskError
	if stderrors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}

// IsType reports whether err is a TaskError of the given type.
func IsType(err error, typ TaskErrorType) bool {
	taskErr, ok := IsTaskError(err)
	return ok && taskErr.Type == typ
}
