package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
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

const (
	ErrCodeValidation    = "VALIDATION"
	ErrCodeMissingConfig = "MISSING_CONFIG"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// NewValidationError reports a user-correctable input problem. The
// message is the user-facing reason and is returned verbatim.
func NewValidationError(message string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewMissingConfigError reports an operator-correctable server
// misconfiguration, e.g. absent merchant credentials.
func NewMissingConfigError(message string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeMissingConfig,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
