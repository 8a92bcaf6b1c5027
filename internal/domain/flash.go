package domain

import "time"

// Event types carried by an AdaptiveFlash.
const (
	EventLessonCompleted = "lesson_completed"
	EventPathRecomputed  = "path_recomputed"
)

// Next-step reasons reported by the path recompute.
const (
	ReasonRemediation = "remediation"
	ReasonStretch     = "stretch"
	ReasonContinue    = "continue"
)

// AdaptiveFlash is the one-shot outcome of an adaptive path recompute.
type AdaptiveFlash struct {
	EventType        string    `json:"eventType"`
	CreatedAt        time.Time `json:"createdAt"`
	TargetDifficulty *float64  `json:"targetDifficulty,omitempty"`
	Misconceptions   []string  `json:"misconceptions"`
	NextReason       string    `json:"nextReason,omitempty"`
	NextTitle        string    `json:"nextTitle,omitempty"`
	PrimaryStandard  string    `json:"primaryStandard,omitempty"`
	NextURL          string    `json:"nextUrl,omitempty"`
}

// IsLessonCompletion reports whether the flash was produced by finishing a lesson.
func (f AdaptiveFlash) IsLessonCompletion() bool {
	switch f.EventType {
	case EventLessonCompleted, "lesson_complete", "lesson.completed":
		return true
	}
	return false
}
