package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryRuntime Category = "runtime"
)

// Location points into a config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// RippleError is a structured error with a code, an optional location and
// a suggestion.
type RippleError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in a file the error was found, if anywhere.
	Location *Location

	// Field names the offending config key or flag.
	Field string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RippleError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RippleError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location to the error.
func (e *RippleError) WithLocation(file string, line, column int) *RippleError {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithField names the offending config key or flag.
func (e *RippleError) WithField(field string) *RippleError {
	e.Field = field
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RippleError) WithSuggestion(s string) *RippleError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *RippleError) WithDetail(d string) *RippleError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *RippleError) Wrap(err error) *RippleError {
	e.Wrapped = err
	return e
}

// New creates a RippleError from a registered error code.
func New(code string) *RippleError {
	template, ok := registry[code]
	if !ok {
		return &RippleError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RippleError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a RippleError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *RippleError {
	return &RippleError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is a RippleError.
func FromError(err error, code string) *RippleError {
	if err == nil {
		return nil
	}
	var re *RippleError
	if errors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}
