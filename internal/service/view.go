package service

import (
	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
)

// TaskView is a micro-task with its status for today.
type TaskView struct {
	domain.MicroTask
	Status domain.TaskStatus `json:"status"`
}

// TutorHandoff is a tutor conversation opened on the student's behalf,
// for example by acting on a try-again nudge.
type TutorHandoff struct {
	SessionID string               `json:"sessionId"`
	Prompt    string               `json:"prompt"`
	Lesson    *contract.LessonMeta `json:"lesson,omitempty"`
}

// DashboardView is one render pass.
type DashboardView struct {
	StudentID    string                     `json:"studentId"`
	Day          string                     `json:"day"`
	Tasks        []TaskView                 `json:"tasks"`
	Done         int                        `json:"done"`
	Streak       int                        `json:"streak"`
	History      []domain.StreakDay         `json:"history"`
	Stats        contract.Stats             `json:"stats"`
	Badges       []contract.Badge           `json:"badges"`
	Nudge        *domain.Nudge              `json:"nudge,omitempty"`
	Celebrations []domain.CelebrationMoment `json:"celebrations"`
	StudyMode    bool                       `json:"studyMode"`

	// Flash is the adaptive flash consumed by this render, if any.
	Flash *domain.AdaptiveFlash `json:"flash,omitempty"`

	// One-shot bus messages received since the previous render.
	Navigation *bus.NavigateMessage `json:"navigation,omitempty"`
	Reflection string               `json:"reflection,omitempty"`
	Tutor      *TutorHandoff        `json:"tutor,omitempty"`
}

// AllDone reports whether every task is done. An empty plan is not done.
func (v *DashboardView) AllDone() bool {
	return len(v.Tasks) > 0 && v.Done == len(v.Tasks)
}
