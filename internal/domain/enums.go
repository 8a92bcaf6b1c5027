package domain

type TaskKind string

const (
	TaskNew    TaskKind = "new"
	TaskReview TaskKind = "review"
	TaskSpaced TaskKind = "spaced"
)

// ParseTaskKind maps upstream kind strings onto a TaskKind. Unknown values
// are treated as new material.
func ParseTaskKind(s string) TaskKind {
	switch TaskKind(s) {
	case TaskReview, TaskSpaced:
		return TaskKind(s)
	case "spaced_review", "spaced-review":
		return TaskSpaced
	default:
		return TaskNew
	}
}

type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
	TaskSkipped TaskStatus = "skipped"
)

// ValidTaskStatuses is the set of statuses a user action may request.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskPending: true, TaskDone: true, TaskSkipped: true,
}

type CelebrationKind string

const (
	CelebrateLevelUp  CelebrationKind = "level_up"
	CelebrateStreak   CelebrationKind = "streak"
	CelebrateAccuracy CelebrationKind = "accuracy"
	CelebrateMastery  CelebrationKind = "mastery"
	CelebrateBadge    CelebrationKind = "badge"
)

type NudgeType string

const (
	NudgeRecap      NudgeType = "recap"
	NudgeQuickCheck NudgeType = "quick_check"
	NudgeTryAgain   NudgeType = "try_again"
)

type GuardrailCategory string

const (
	GuardrailNone     GuardrailCategory = "none"
	GuardrailPII      GuardrailCategory = "pii"
	GuardrailCheating GuardrailCategory = "cheating"
)

// Scaffold identifies the help action that triggered a tutor turn.
type Scaffold string

const (
	ScaffoldNone       Scaffold = ""
	ScaffoldHint       Scaffold = "hint"
	ScaffoldBreakDown  Scaffold = "break_down"
	ScaffoldAnotherWay Scaffold = "another_way"
)

// ParseScaffold returns ScaffoldNone for anything it does not recognize.
func ParseScaffold(s string) Scaffold {
	switch Scaffold(s) {
	case ScaffoldHint, ScaffoldBreakDown, ScaffoldAnotherWay:
		return Scaffold(s)
	case "break-down", "breakdown":
		return ScaffoldBreakDown
	case "another-way":
		return ScaffoldAnotherWay
	default:
		return ScaffoldNone
	}
}

type Intensity string

const (
	IntensityLight   Intensity = "light"
	IntensitySteady  Intensity = "steady"
	IntensityIntense Intensity = "intense"
)

type Intent string

const (
	IntentCatchUp  Intent = "catch_up"
	IntentKeepPace Intent = "keep_pace"
	IntentGetAhead Intent = "get_ahead"
	IntentExplore  Intent = "explore"
)

// ValidIntensities and ValidIntents are the accepted profile values.
var (
	ValidIntensities = map[Intensity]bool{
		IntensityLight: true, IntensitySteady: true, IntensityIntense: true,
	}
	ValidIntents = map[Intent]bool{
		IntentCatchUp: true, IntentKeepPace: true, IntentGetAhead: true, IntentExplore: true,
	}
)
