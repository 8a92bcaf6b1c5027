package api

import (
	"net/http"

	"github.com/alexanderramin/orbit/internal/nudge"
	"github.com/alexanderramin/orbit/internal/plan"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/alexanderramin/orbit/internal/tutor"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrStudentIDRequired, http.StatusBadRequest},
	{service.ErrLessonRefRequired, http.StatusBadRequest},
	{plan.ErrInvalidStatus, http.StatusBadRequest},
	{tutor.ErrEmptyMessage, http.StatusBadRequest},
	{plan.ErrUnknownTask, http.StatusNotFound},
	{nudge.ErrUnknownNudge, http.StatusNotFound},
	{service.ErrTutorSessionNotFound, http.StatusNotFound},
	{service.ErrSessionClosed, http.StatusConflict},
	{tutor.ErrSessionClosed, http.StatusConflict},
	{service.ErrProfilesUnavailable, http.StatusNotImplemented},
}
