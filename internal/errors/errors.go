package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig     = "CONFIG"
	ErrConnection = "CONNECTION"
	ErrSnapshot   = "SNAPSHOT"
	ErrRender     = "RENDER"
	ErrAuth       = "AUTH"
	ErrHTTP       = "HTTP"
	ErrLogs       = "LOGS"
)

// Sentinels for failures that are resolved internally and never reach the user.
var (
	// ErrConnectionConflict is raised when a second channel would be opened
	// while one is live. The connection manager disposes the old one instead.
	ErrConnectionConflict = New(ErrConnection, "connection already live", "")

	// ErrRenderTargetMissing marks a write to a key the layout does not own.
	ErrRenderTargetMissing = New(ErrRender, "render target missing", "")
)

// Error is a structured error with a code, a message, an optional hint on how
// to fix it and an optional cause.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var panelErr *Error
	if errors.As(err, &panelErr) {
		return panelErr.Code == code
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
