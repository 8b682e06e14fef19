// Package errors provides the error taxonomy shared by the assembly pipeline
// and the archive back-ends.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates an archive back-end cannot be used on this system
	ErrUnavailable = errors.New("backend unavailable")
	// ErrInvalidEntry indicates an archive entry that violates the container layout
	ErrInvalidEntry = errors.New("invalid archive entry")
	// ErrRender indicates the template renderer failed
	ErrRender = errors.New("render failed")
)

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "finalize")
	Path      string // File/entry path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "recipe", "OPF")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnavailableError reports that an external packaging tool is missing or broken.
type UnavailableError struct {
	Tool   string // Executable that was probed
	Reason string // What went wrong
	Err    error  // Underlying error, if any
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s unavailable: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s unavailable", e.Tool)
}

// Is lets errors.Is match ErrUnavailable while Unwrap exposes the cause.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// InvalidEntryError reports an entry that breaks the archive ordering or
// naming contract.
type InvalidEntryError struct {
	Path   string // Entry path inside the archive
	Reason string // Why the entry was rejected
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry %q: %s", e.Path, e.Reason)
}

func (e *InvalidEntryError) Unwrap() error {
	return ErrInvalidEntry
}

// RenderError wraps a failure of the template renderer.
type RenderError struct {
	Template string // Template name
	Err      error  // Underlying error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("could not render template %s: %v", e.Template, e.Err)
}

// Is lets errors.Is match ErrRender while Unwrap exposes the cause.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnavailable creates an UnavailableError
func NewUnavailable(tool, reason string, err error) *UnavailableError {
	return &UnavailableError{
		Tool:   tool,
		Reason: reason,
		Err:    err,
	}
}

// NewInvalidEntry creates an InvalidEntryError
func NewInvalidEntry(path, reason string) *InvalidEntryError {
	return &InvalidEntryError{
		Path:   path,
		Reason: reason,
	}
}

// NewRender creates a RenderError
func NewRender(template string, err error) *RenderError {
	return &RenderError{
		Template: template,
		Err:      err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
