// Package apperror carries the error vocabulary shared by every service:
// a stable code for clients, a safe message, and the HTTP status to answer
// with. Driver and infrastructure errors ride along as the cause and are
// never rendered.
package apperror

import "fmt"

type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error

	// origin is the sentinel this error was derived from via WithCause.
	origin *AppError
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel a WithCause copy was built from, so
// errors.Is(ErrX.WithCause(err), ErrX) holds. Distinct sentinels sharing a
// code stay distinct.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.origin != nil && e.origin == t
}

// WithCause returns a copy of e that wraps cause. A nil cause returns e.
func (e *AppError) WithCause(cause error) *AppError {
	if cause == nil {
		return e
	}
	origin := e
	if e.origin != nil {
		origin = e.origin
	}
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Err:        cause,
		origin:     origin,
	}
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap attaches err as the cause of a new AppError. It returns nil for a
// nil err.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}
