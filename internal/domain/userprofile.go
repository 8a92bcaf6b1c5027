package domain

// StudentProfile holds the pacing preferences that shape tutor instructions.
type StudentProfile struct {
	StudentID       string
	WeeklyIntensity Intensity
	Intent          Intent
	LessonOnly      bool
}

// DefaultStudentProfile returns the profile used when nothing is stored.
func DefaultStudentProfile(studentID string) StudentProfile {
	return StudentProfile{
		StudentID:       studentID,
		WeeklyIntensity: IntensitySteady,
		Intent:          IntentKeepPace,
	}
}

// Normalize replaces unknown intensity/intent values with the defaults.
func (p StudentProfile) Normalize() StudentProfile {
	if !ValidIntensities[p.WeeklyIntensity] {
		p.WeeklyIntensity = IntensitySteady
	}
	if !ValidIntents[p.Intent] {
		p.Intent = IntentKeepPace
	}
	return p
}
