package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a pipeline failure. Front ends map kinds to HTTP statuses
// and CLI exit codes.
type Kind string

const (
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindFileTooLarge        Kind = "file_too_large"
	KindInvalidLanguage     Kind = "invalid_language"
	KindDecodeFailed        Kind = "decode_failed"
	KindTranscriptionFailed Kind = "transcription_failed"
	KindBusy                Kind = "busy"
	KindCanceled            Kind = "canceled"
	KindInternal            Kind = "internal_error"

	// KindBadRequest covers malformed requests: a missing file field or a
	// broken multipart body.
	KindBadRequest Kind = "bad_request"
)

// Sentinels for errors.Is comparisons. Matching is by kind only.
var (
	ErrUnsupportedFormat   = New(KindUnsupportedFormat, "unsupported file format")
	ErrFileTooLarge        = New(KindFileTooLarge, "file too large")
	ErrInvalidLanguage     = New(KindInvalidLanguage, "unsupported language")
	ErrDecodeFailed        = New(KindDecodeFailed, "audio decode failed")
	ErrTranscriptionFailed = New(KindTranscriptionFailed, "transcription failed")
	ErrBusy                = New(KindBusy, "transcriber busy")
	ErrCanceled            = New(KindCanceled, "transcription canceled")
	ErrInternal            = New(KindInternal, "internal error")
)

// Error represents a standardized error
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new error
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a new formatted error
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a kind and additional context
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Kind returns the error classification
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the short, user-facing message without the cause chain
func (e *Error) Message() string {
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

// KindOf returns the kind of the outermost classified error in the chain,
// or KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// UserMessage returns a message safe to show a caller: the classified
// message for known kinds, a generic one otherwise.
func UserMessage(err error) string {
	var e *Error
	if !stderrors.As(err, &e) {
		return "internal error"
	}
	switch e.kind {
	case KindTranscriptionFailed:
		// the engine message is the useful part here
		return e.Error()
	case KindInternal:
		return "internal error"
	default:
		return e.message
	}
}

// Helper functions for common patterns

// UnsupportedFormat returns an error for a rejected file extension
func UnsupportedFormat(ext string, allowed []string) error {
	return Newf(KindUnsupportedFormat, "unsupported file type %q (allowed: %v)", ext, allowed)
}

// FileTooLarge returns an error for inputs above the size limit
func FileTooLarge(size, max int64) error {
	if size < 0 {
		return Newf(KindFileTooLarge, "file too large (limit %d bytes)", max)
	}
	return Newf(KindFileTooLarge, "file too large: %d bytes (limit %d bytes)", size, max)
}

// InvalidLanguage returns an error for an unsupported language hint
func InvalidLanguage(code string, allowed []string) error {
	return Newf(KindInvalidLanguage, "unsupported language %q (allowed: %v)", code, allowed)
}

// BadRequest returns an error for a malformed request
func BadRequest(message string) error {
	return New(KindBadRequest, message)
}

// InputNotFound returns an error for a local input path that does not exist
func InputNotFound(path string) error {
	return Newf(KindBadRequest, "input not found: %s", path)
}

// IsValidationError reports whether err was raised by input validation
func IsValidationError(err error) bool {
	switch KindOf(err) {
	case KindUnsupportedFormat, KindFileTooLarge, KindInvalidLanguage, KindBadRequest:
		return true
	default:
		return false
	}
}
