package errors

import "fmt"

// AppError represents a domain-specific error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewUnknownFrameworkError reports an assessment request against an
// unregistered framework.
func NewUnknownFrameworkError(name string) *AppError {
	return &AppError{Code: "UNKNOWN_FRAMEWORK", Message: fmt.Sprintf("framework %q is not registered", name)}
}

// NewUnsupportedError reports an unsupported report type or format.
// This is the one error category that is fatal to the calling
// operation.
func NewUnsupportedError(what, value string) *AppError {
	return &AppError{Code: "UNSUPPORTED", Message: fmt.Sprintf("unsupported %s: %s", what, value)}
}

func NewDomainError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}
