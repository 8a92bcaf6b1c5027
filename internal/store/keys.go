package store

// Key purposes. Every persisted record is namespaced as "<purpose>-<studentID>".
const (
	PurposeMicroPlan          = "micro-plan-v1"
	PurposeAdaptiveFlash      = "adaptive-flash"
	PurposeCelebrationSnap    = "celebration-snapshot"
	PurposeCelebrationSeen    = "celebration-seen"
	PurposeNudgesDismissed    = "student-nudges-dismissed"
	PurposeGuardrailLast      = "tutor-guardrail-last"
	PurposeExplainerDismissed = "tutor-explainer-dismissed"
	PurposeElevatedStudyMode  = "elevated_study_mode"
)

// StudentPurposes lists every purpose that holds per-student state.
var StudentPurposes = []string{
	PurposeMicroPlan,
	PurposeAdaptiveFlash,
	PurposeCelebrationSnap,
	PurposeCelebrationSeen,
	PurposeNudgesDismissed,
	PurposeGuardrailLast,
	PurposeExplainerDismissed,
	PurposeElevatedStudyMode,
}

// Key builds the namespaced key for a purpose and student.
func Key(purpose, studentID string) string {
	return purpose + "-" + studentID
}
