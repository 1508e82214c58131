// Package apperr defines the error kinds surfaced by the dialogue engine.
// Callers branch on kind with the Is* helpers instead of matching strings.
package apperr

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeService        ErrorType = "service_error"
	ErrorTypeInvalidContent ErrorType = "invalid_content"
)

// Cause narrows down why a completion service call failed.
// It is only set on service errors.
type Cause string

const (
	CauseNetwork     Cause = "network"      // transport failure or timeout
	CauseAuth        Cause = "auth"         // credential rejected
	CauseRateLimited Cause = "rate_limited" // provider throttled the call
	CauseUpstream    Cause = "upstream"     // any other non-success status
	CauseMalformed   Cause = "malformed"    // body could not be decoded
	CauseEmpty       Cause = "empty"        // decoded fine but carried no text
)

// AppError is the single error type returned across package boundaries.
type AppError struct {
	Type    ErrorType
	Cause   Cause
	Message string
	Err     error
	Code    string // stable code for API responses
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType, ""),
	}
}

// NewValidationError reports a structurally invalid request.
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError reports a missing persona record.
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewInvalidContentError reports stored content that exists but cannot be used,
// e.g. a persona document with a blank field.
func NewInvalidContentError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeInvalidContent, message, originalError)
}

// NewServiceError reports a failed completion call.
func NewServiceError(cause Cause, message string, originalError error) *AppError {
	return &AppError{
		Type:    ErrorTypeService,
		Cause:   cause,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(ErrorTypeService, cause),
	}
}

func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

func IsServiceError(err error) bool {
	return hasType(err, ErrorTypeService)
}

func IsInvalidContentError(err error) bool {
	return hasType(err, ErrorTypeInvalidContent)
}

// ServiceCause returns the cause of a service error anywhere in err's chain.
func ServiceCause(err error) (Cause, bool) {
	var appError *AppError
	if errors.As(err, &appError) && appError.Type == ErrorTypeService {
		return appError.Cause, true
	}
	return "", false
}

// CodeOf returns the API code for err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) string {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Code
	}
	return "INTERNAL_ERROR"
}

func hasType(err error, t ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == t
	}
	return false
}

func generateErrorCode(errType ErrorType, cause Cause) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeInvalidContent:
		return "INVALID_CONTENT"
	case ErrorTypeService:
		switch cause {
		case CauseRateLimited:
			return "LLM_RATE_LIMITED"
		case CauseNetwork:
			return "LLM_UNAVAILABLE"
		default:
			return "LLM_ERROR"
		}
	default:
		return "UNKNOWN_ERROR"
	}
}
