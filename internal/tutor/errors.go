package tutor

import "errors"

var (
	// ErrEmptyMessage is returned when Send receives only whitespace.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSessionClosed is returned when sending on a closed session.
	ErrSessionClosed = errors.New("tutor session closed")
)
