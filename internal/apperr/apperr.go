// Package apperr separates the errors the CLI reports differently from
// ordinary failures.
//
//	UserError     bad flag, unknown crop, unreadable --data file. Only the
//	              message is printed. Exit code 1.
//	ErrCancelled  the prediction form was aborted. Exit code 0.
//
// Training, I/O and encoding failures stay plain errors wrapped with
// fmt.Errorf("context: %w", err).
package apperr

import (
	"errors"
	"fmt"
)

var ErrCancelled = errors.New("operation cancelled")

// UserError is returned by command handlers for invalid input so the root
// command prints the message without repeating usage.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

func User(msg string) error { return &UserError{Message: msg} }

func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUser reports whether err is (or wraps) a *UserError.
func IsUser(err error) bool {
	var u *UserError
	return errors.As(err, &u)
}
