package service

import (
	"fmt"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

// Result codes shared by the collaborators. Device validation uses 1-5
// (see config.ValidateDevice).
const (
	CodeOK           = 0
	CodeNotConnected = 1
	CodeInvalid      = 6
	CodeNotFound     = 404
	CodeIOFailure    = 500
	CodeNoResponse   = 503
)

// Result is the uniform success/error/data envelope. Code 0 is success.
type Result[T any] struct {
	Code    int
	Message string
	Data    T
}

// Empty is the payload of results that carry no data.
type Empty struct{}

// OK wraps data in a successful Result.
func OK[T any](data T) Result[T] {
	return Result[T]{Code: CodeOK, Data: data}
}

// Done is a successful Result without data.
func Done() Result[Empty] {
	return Result[Empty]{}
}

// Fail builds an error Result.
func Fail[T any](code int, format string, args ...interface{}) Result[T] {
	return Result[T]{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsSuccess reports whether Code is 0.
func (r Result[T]) IsSuccess() bool {
	return r.Code == CodeOK
}

// Err converts a failed Result into a structured error under errCode.
// Successful results return nil.
func (r Result[T]) Err(errCode string) error {
	if r.IsSuccess() {
		return nil
	}
	return errors.Newf(errCode, "%s (code %d)", r.Message, r.Code)
}

func failAs[T, U any](r Result[U]) Result[T] {
	return Result[T]{Code: r.Code, Message: r.Message}
}
