package errors

import (
	stderrors "errors"
	"fmt"
)

// IgnoreError is the structured error type for amanignore.
// It provides rich context for error handling, logging, and user presentation.
type IgnoreError struct {
	// Code is the unique error code (e.g., "ERR_406_INVALID_PATH").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *IgnoreError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IgnoreError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with IgnoreError sentinels.
func (e *IgnoreError) Is(target error) bool {
	if t, ok := target.(*IgnoreError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *IgnoreError) WithDetail(key, value string) *IgnoreError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *IgnoreError) WithSuggestion(suggestion string) *IgnoreError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IgnoreError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *IgnoreError {
	return &IgnoreError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an IgnoreError from an existing error.
// The error's message becomes the IgnoreError message.
func Wrap(code string, err error) *IgnoreError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *IgnoreError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *IgnoreError {
	return New(ErrCodeFileRead, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *IgnoreError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *IgnoreError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var ie *IgnoreError
	if stderrors.As(err, &ie) {
		return ie.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an IgnoreError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var ie *IgnoreError
	if stderrors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// GetCategory extracts the category from an IgnoreError anywhere in the chain.
// Returns empty string if there is none.
func GetCategory(err error) Category {
	var ie *IgnoreError
	if stderrors.As(err, &ie) {
		return ie.Category
	}
	return ""
}
