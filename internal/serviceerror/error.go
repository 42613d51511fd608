package serviceerror

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so callers can map it to their own surface
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
	KindStorage      Kind = "storage"
)

// ServiceError is the typed error returned by lifecycle operations
type ServiceError struct {
	Kind    Kind
	Code    string
	Message string
	// CurrentStatus is the status the entity was in when an invalid_state error was raised
	CurrentStatus string
	Err           error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	CodeNotFound          = "CSE-4004"
	CodeInvalidState      = "CSE-4009"
	CodeValidation        = "CSE-4001"
	CodeStorage           = "SSE-5001"
	CodeDuplicate         = "CSE-4010"
	CodeUnknownReference  = "CSE-4002"
	CodeRejectReasonEmpty = "CSE-4003"
)

// NotFound reports a missing entity
func NotFound(entity, id string) *ServiceError {
	return &ServiceError{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// InvalidState reports an operation attempted from a forbidding status
func InvalidState(current, format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Kind:          KindInvalidState,
		Code:          CodeInvalidState,
		Message:       fmt.Sprintf(format, args...),
		CurrentStatus: current,
	}
}

// Validation reports structurally invalid input
func Validation(format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Kind:    KindValidation,
		Code:    CodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// ValidationWithCode reports invalid input under a specific code
func ValidationWithCode(code string, err error, format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Kind:    KindValidation,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Storage wraps an infrastructure failure
func Storage(op string, err error) *ServiceError {
	return &ServiceError{
		Kind:    KindStorage,
		Code:    CodeStorage,
		Message: "failed to " + op,
		Err:     err,
	}
}

// KindOf returns the kind of a service error anywhere in the chain, or "" if there is none
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsStorage(err error) bool      { return KindOf(err) == KindStorage }

// As extracts the service error from a chain
func As(err error) (*ServiceError, bool) {
	var se *ServiceError
	ok := errors.As(err, &se)
	return se, ok
}
