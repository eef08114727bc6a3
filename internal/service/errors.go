package service

import "errors"

var (
	ErrConflict      = errors.New("participant name already taken")
	ErrNotFound      = errors.New("participant not found")
	ErrUnprocessable = errors.New("unprocessable entity")
)

// unprocessableError is a caller-facing 422 with a single message.
type unprocessableError struct {
	msg string
}

func (e *unprocessableError) Error() string { return e.msg }

func (e *unprocessableError) Is(target error) bool { return target == ErrUnprocessable }

var (
	ErrUnknownSender error = &unprocessableError{msg: `"from" must be a registered participant`}
	ErrInvalidLimit  error = &unprocessableError{msg: `"limit" must be a positive integer`}
)
