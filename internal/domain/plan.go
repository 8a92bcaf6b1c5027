package domain

// MicroTask is one of the short daily tasks shown in the task lane.
type MicroTask struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Minutes     int      `json:"minutes"`
	Kind        TaskKind `json:"kind"`
	SubjectHint string   `json:"subjectHint,omitempty"`
	LessonRef   string   `json:"lessonRef,omitempty"`
}

// MicroPlanState is the live task status map for a single calendar day.
// TaskIDs records the day's task set so completion can be judged even for
// tasks the student never touched.
type MicroPlanState struct {
	Day      string                `json:"day"`
	TaskIDs  []string              `json:"taskIds"`
	Statuses map[string]TaskStatus `json:"statuses"`
}

// NewMicroPlanState returns an empty state for the given day key.
func NewMicroPlanState(day string) MicroPlanState {
	return MicroPlanState{
		Day:      day,
		TaskIDs:  []string{},
		Statuses: map[string]TaskStatus{},
	}
}

// Status returns the recorded status for a task, pending when unset.
func (s MicroPlanState) Status(taskID string) TaskStatus {
	if st, ok := s.Statuses[taskID]; ok && st != "" {
		return st
	}
	return TaskPending
}

// AllDone reports whether every task of the day reached done.
// A day with no tasks is not complete.
func (s MicroPlanState) AllDone() bool {
	if len(s.TaskIDs) == 0 {
		return false
	}
	for _, id := range s.TaskIDs {
		if s.Status(id) != TaskDone {
			return false
		}
	}
	return true
}

// DoneCount returns how many of the day's tasks are done.
func (s MicroPlanState) DoneCount() int {
	n := 0
	for _, id := range s.TaskIDs {
		if s.Status(id) == TaskDone {
			n++
		}
	}
	return n
}

// StreakWindow caps the number of days kept in the streak history.
const StreakWindow = 30

// StreakDay is one folded day of the rolling streak history.
type StreakDay struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}
