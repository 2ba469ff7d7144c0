package services

import "fmt"

// ValidationError reports bad or missing input, including per-field errors
// surfaced by the bulk import validator.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation against an unknown item id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("business item %s not found", e.ID)
}

// InvalidStateError reports an operation that is not legal for the item's
// current stored status.
type InvalidStateError struct {
	Op     string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is not allowed while item status is %q", e.Op, e.Status)
}

// ConversionError reports a cross-table category conversion that failed and
// was rolled back.
type ConversionError struct {
	ID  string
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("category conversion of item %s failed and was rolled back: %v", e.ID, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// AuthorizationError reports a caller lacking the role an operation requires.
type AuthorizationError struct {
	Required string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("caller lacks required role %q", e.Required)
}
