package service

import "errors"

var (
	ErrSessionClosed        = errors.New("student session is closed")
	ErrStudentIDRequired    = errors.New("student id is required")
	ErrLessonRefRequired    = errors.New("lesson ref is required")
	ErrTutorSessionNotFound = errors.New("tutor session not found")
	ErrProfilesUnavailable  = errors.New("profile storage is not configured")
)
