// Package errors defines application error types shared by repositories, services and handlers.
// Handlers match them with errors.Is against the Err* sentinels.
package errors

import "fmt"

// ErrNotFound matches any *NotFoundError.
var ErrNotFound = &NotFoundError{}

// NotFoundError reports a missing record (or one owned by someone else).
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is matches any NotFoundError regardless of resource.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// NewNotFoundError creates a NotFoundError for resource.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{Resource: resource, Message: message}
}

// ErrValidation matches any *ValidationError.
var ErrValidation = &ValidationError{}

// ValidationError reports client input that failed a business rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return fmt.Sprintf("validation failed for field: %s", e.Field)
	}

	return "validation error"
}

// Is matches any ValidationError regardless of field.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
