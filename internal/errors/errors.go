package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any error in the chain carries the given code
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeDatabaseError         = "DATABASE_ERROR"
	CodeInternalError         = "INTERNAL_ERROR"
	CodeTransport             = "TRANSPORT_ERROR"
	CodeMalformedResponse     = "MALFORMED_RESPONSE"
	CodeProvider              = "PROVIDER_ERROR"
	CodeInvalidQuery          = "INVALID_QUERY"
	CodeUnresolvableSelection = "UNRESOLVABLE_SELECTION"
	CodeTitleAlignment        = "TITLE_ALIGNMENT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

// Transport marks an HTTP-level failure (connection error or non-2xx status).
func Transport(message string, cause error) *AppError {
	return &AppError{Code: CodeTransport, Message: message, Cause: cause}
}

// MalformedResponse marks a structural surprise in an otherwise successful response.
func MalformedResponse(message string) *AppError {
	return New(CodeMalformedResponse, message)
}

// Provider marks a success HTTP response carrying a failure status at the
// application level. Status text and payload are kept for diagnostics.
func Provider(status, payload string) *AppError {
	return New(CodeProvider, fmt.Sprintf("provider returned %s: %s", status, payload))
}

// InvalidQuery marks a caller precondition violation.
func InvalidQuery(message string) *AppError {
	return New(CodeInvalidQuery, message)
}

// UnresolvableSelection marks a batch in which no selection resolved to a
// usable vector.
func UnresolvableSelection(message string) *AppError {
	return New(CodeUnresolvableSelection, message)
}

// TitleAlignment marks a series title that cannot be zipped against the
// expected dimension columns.
func TitleAlignment(message string) *AppError {
	return New(CodeTitleAlignment, message)
}
