package errors

import (
	"fmt"
)

// Error kinds for the different categories of build failures
const (
	// Lexical errors (unbalanced quotes or parentheses)
	ErrLex = "LEX_ERROR"

	// Parse errors (bad header, @else without @if, wrong for-loop arity)
	ErrParse = "PARSE_ERROR"

	// Type errors (incompatible operands, wrong relational operator)
	ErrType = "TYPE_ERROR"

	// Name errors (unknown identifier, function, or namespace)
	ErrName = "NAME_ERROR"

	// Arity errors (function call argument count outside declared bounds)
	ErrArity = "ARITY_ERROR"

	// Value errors (Unknown produced in a position that must emit)
	ErrValue = "VALUE_ERROR"

	// IO errors (missing include, unreadable input, unwritable output)
	ErrIO = "IO_ERROR"
)

// BuildError represents a structured build failure with a kind and the
// source snippet it arose from.
type BuildError struct {
	Kind    string
	Message string
	Snippet string
	Cause   error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap allows error unwrapping
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// New creates a new BuildError
func New(kind, message string) *BuildError {
	return &BuildError{Kind: kind, Message: message}
}

// Newf creates a new BuildError with a formatted message
func Newf(kind, format string, args ...any) *BuildError {
	return &BuildError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new BuildError wrapping an existing error
func Wrap(kind, message string, cause error) *BuildError {
	return &BuildError{Kind: kind, Message: message, Cause: cause}
}

// WithSnippet attaches the surrounding source text to the error
func (e *BuildError) WithSnippet(snippet string) *BuildError {
	e.Snippet = snippet
	return e
}

// IsKind checks whether err is a BuildError of the given kind
func IsKind(err error, kind string) bool {
	if buildErr, ok := err.(*BuildError); ok {
		return buildErr.Kind == kind
	}
	return false
}
