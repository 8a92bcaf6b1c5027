package domain

import "time"

// CelebrationMoment is a one-time congratulatory notification. ID is derived
// from the triggering fact so the same achievement always maps to one ID.
type CelebrationMoment struct {
	ID           string          `json:"id"`
	Kind         CelebrationKind `json:"kind"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Prompt       string          `json:"prompt,omitempty"`
	NotifyParent bool            `json:"notifyParent,omitempty"`
}

// Nudge is a single contextual suggestion shown after a lesson.
type Nudge struct {
	ID        string    `json:"id"`
	Type      NudgeType `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	TargetURL string    `json:"targetUrl,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// AchievementSnapshot is the last-seen progress used to detect milestones.
type AchievementSnapshot struct {
	Level                int      `json:"level"`
	StreakDays           int      `json:"streakDays"`
	AvgAccuracy          *float64 `json:"avgAccuracy,omitempty"`
	ModulesMasteredCount int      `json:"modulesMasteredCount"`
}

// ConversationTurn is one message in a tutor transcript.
type ConversationTurn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
