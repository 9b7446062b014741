// Package errors defines the structured error type used across fieldmon.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes, one per subsystem.
const (
	ErrConfig  = "CONFIG"
	ErrNav     = "NAV"
	ErrSession = "SESSION"
	ErrDevice  = "DEVICE"
	ErrAlarm   = "ALARM"
	ErrMqtt    = "MQTT"
	ErrExec    = "EXEC"
	ErrLock    = "LOCK"
)

// Error is a coded error rendered as:
//
//	✗ <what failed>
//
//	  <cause>
//
//	  <what to do about it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates an error with a code, message and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Newf is New with a formatted message and no suggestion.
func Newf(code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a message to err under the EXEC code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrExec,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode attaches a code, message and suggestion to err.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, "\n  %s\n", e.Cause.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Suggestion)
	}

	return b.String()
}

// Unwrap returns the cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
