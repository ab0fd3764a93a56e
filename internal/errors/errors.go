// Package errors defines the domain errors shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError is a classified failure. Two DomainErrors match under errors.Is
// when their codes are equal, so a detailed error built from a sentinel still
// matches the sentinel.
type DomainError struct {
	Code    string
	Message string
	Status  int
	Field   string
}

func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus returns the status code for the error, defaulting to 500.
func (e *DomainError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Invalid builds a validation error for one field.
func Invalid(field, format string, args ...interface{}) *DomainError {
	cp := *ErrValidation
	cp.Field = field
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// As extracts the DomainError from err, if any.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is mirrors the standard library so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
