package content

import "errors"

var (
	// ErrUnavailable indicates the content service could not be reached or
	// answered with a server error.
	ErrUnavailable = errors.New("content service unavailable")

	// ErrStudentNotFound indicates the content service has no record for the student.
	ErrStudentNotFound = errors.New("student not found")
)
