package apperror

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string // machine readable, e.g. NOT_FOUND
	Message    string // safe to show to the caller
	HTTPStatus int
	Err        error // wrapped cause, optional
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError with the same code and message, so a sentinel
// still matches after WithCause.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of e wrapping err.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
