package response

import (
	"errors"
)

type Error struct {
	Code    int
	Err     error
	Details string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

// WithDetails copies a domain error and attaches the upstream cause message.
// Non domain errors are returned unchanged.
func WithDetails(err error, cause error) error {
	var e *Error
	if !errors.As(err, &e) || cause == nil {
		return err
	}
	return &Error{Code: e.Code, Err: e.Err, Details: cause.Error()}
}
