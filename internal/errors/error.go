package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRenderer Category = "renderer"
	CategoryTree     Category = "tree"
	CategorySelector Category = "selector"
	CategoryProtocol Category = "protocol"
	CategoryPolicy   Category = "policy"
	CategoryConfig   Category = "config"
	CategorySnapshot Category = "snapshot"
	CategoryCLI      Category = "cli"
)

// HostError is a structured error with a registered code.
type HostError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually naming the offending value.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HostError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HostError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a HostError with the same code.
func (e *HostError) Is(target error) bool {
	t, ok := target.(*HostError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *HostError) WithDetail(d string) *HostError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detail to the error.
func (e *HostError) WithDetailf(format string, args ...any) *HostError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HostError) WithSuggestion(s string) *HostError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *HostError) Wrap(err error) *HostError {
	e.Wrapped = err
	return e
}

// New creates a HostError from a registered error code.
func New(code string) *HostError {
	template, ok := registry[code]
	if !ok {
		return &HostError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HostError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates a new HostError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HostError {
	return &HostError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// As returns the first HostError in err's chain.
func As(err error) (*HostError, bool) {
	for err != nil {
		if he, ok := err.(*HostError); ok {
			return he, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Code returns the code of the first HostError in err's chain, or "".
func Code(err error) string {
	for err != nil {
		if he, ok := err.(*HostError); ok && he.Code != "" {
			return he.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
