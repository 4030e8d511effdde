package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	apperrors "whisper-transcriber/internal/app/errors"
)

// ErrorKind is the machine-readable class carried in every error body. The
// pipeline kinds pass through unchanged; the rest are HTTP-only.
type ErrorKind string

const (
	KindUnsupportedFormat   = ErrorKind(apperrors.KindUnsupportedFormat)
	KindFileTooLarge        = ErrorKind(apperrors.KindFileTooLarge)
	KindInvalidLanguage     = ErrorKind(apperrors.KindInvalidLanguage)
	KindDecodeFailed        = ErrorKind(apperrors.KindDecodeFailed)
	KindTranscriptionFailed = ErrorKind(apperrors.KindTranscriptionFailed)
	KindBusy                = ErrorKind(apperrors.KindBusy)
	KindCanceled            = ErrorKind(apperrors.KindCanceled)
	KindInternal            = ErrorKind(apperrors.KindInternal)
	KindBadRequest          = ErrorKind(apperrors.KindBadRequest)

	KindNotFound ErrorKind = "not_found"
	KindConflict ErrorKind = "conflict"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindInvalidLanguage, KindBadRequest:
		return http.StatusBadRequest
	case KindDecodeFailed:
		return http.StatusUnprocessableEntity
	case KindBusy:
		return http.StatusServiceUnavailable
	case KindCanceled, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts any error into the body sent to the caller. Pipeline
// errors keep their kind and user-facing message; anything else becomes a
// generic internal error.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Kind:    ErrorKind(apperrors.KindOf(err)),
		Message: apperrors.UserMessage(err),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}
