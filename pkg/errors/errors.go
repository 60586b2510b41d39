package errors

import (
	"fmt"
)

// ParseError represents a chain or dependency document that could not be decoded.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures chain definition issues found before anything is dispatched.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UnknownStateError reports a selected state name that the target does not declare.
type UnknownStateError struct {
	Target string
	State  string
}

// NewUnknownStateError constructs an UnknownStateError.
func NewUnknownStateError(target, state string) error {
	return &UnknownStateError{Target: target, State: state}
}

func (e *UnknownStateError) Error() string {
	if e == nil {
		return ""
	}
	if e.State == "" {
		return fmt.Sprintf("unknown state: target %s has no state selected and no default direction", e.Target)
	}
	return fmt.Sprintf("unknown state: target %s does not declare state %q", e.Target, e.State)
}

// MissingControllerError reports an ordinary target without a controller to drive it.
type MissingControllerError struct {
	Target string
}

// NewMissingControllerError constructs a MissingControllerError.
func NewMissingControllerError(target string) error {
	return &MissingControllerError{Target: target}
}

func (e *MissingControllerError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("missing controller: no controller registered for target %s", e.Target)
}

// DispatchError represents a controller that failed to settle on its final style.
type DispatchError struct {
	Target string
	Err    error
}

// NewDispatchError constructs a DispatchError.
func NewDispatchError(target string, err error) error {
	return &DispatchError{Target: target, Err: err}
}

func (e *DispatchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Target != "" {
		return fmt.Sprintf("dispatch error on target %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("dispatch error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *DispatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
