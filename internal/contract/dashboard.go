package contract

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
)

// PlanItem is one upstream recommendation for today's plan.
type PlanItem struct {
	ID        string
	Title     string
	Minutes   int
	Kind      domain.TaskKind
	Subject   string
	LessonRef string
}

// Stats is the student's current gamified progress.
type Stats struct {
	Level           int      `json:"level"`
	XP              int      `json:"xp"`
	StreakDays      int      `json:"streakDays"`
	AvgAccuracy     *float64 `json:"avgAccuracy,omitempty"`
	RecentAccuracy  *float64 `json:"recentAccuracy,omitempty"`
	ModulesMastered int      `json:"modulesMastered"`
}

// Badge is an earned badge. New marks badges earned since the last fetch.
type Badge struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earnedAt"`
	New      bool      `json:"new,omitempty"`
}

// CannedExplanation is a curated explanation for a subject/topic pair.
type CannedExplanation struct {
	Subject string
	Topic   string
	Text    string
}

// Dashboard is the validated content/profile payload for one student.
type Dashboard struct {
	StudentID      string
	Plan           []PlanItem
	Lessons        []LessonMeta
	SubjectMastery map[string]float64
	Badges         []Badge
	Stats          Stats
	Celebrations   []domain.CelebrationMoment
	Persona        PersonaMeta
	Profile        domain.StudentProfile
	Explanations   []CannedExplanation
}

// EmptyDashboard is what callers render when the fetch fails.
func EmptyDashboard(studentID string) *Dashboard {
	return &Dashboard{
		StudentID:      studentID,
		SubjectMastery: map[string]float64{},
		Persona:        DefaultPersona(),
		Profile:        domain.DefaultStudentProfile(studentID),
	}
}

// Lesson returns the lesson metadata for ref, if present.
func (d *Dashboard) Lesson(ref string) (LessonMeta, bool) {
	for _, l := range d.Lessons {
		if l.Ref == ref {
			return l, true
		}
	}
	return LessonMeta{}, false
}

// ServerCelebrations returns server-supplied moments plus one moment per
// newly earned badge.
func (d *Dashboard) ServerCelebrations() []domain.CelebrationMoment {
	out := append([]domain.CelebrationMoment{}, d.Celebrations...)
	for _, b := range d.Badges {
		if !b.New {
			continue
		}
		out = append(out, domain.CelebrationMoment{
			ID:          "badge-" + b.ID,
			Kind:        domain.CelebrateBadge,
			Title:       "New badge: " + b.Name,
			Description: fmt.Sprintf("You earned the %s badge.", b.Name),
			OccurredAt:  b.EarnedAt,
		})
	}
	return out
}

// DecodeDashboard validates a raw dashboard document. Only non-JSON input is
// an error; every missing or mistyped field is defaulted.
func DecodeDashboard(data []byte, studentID string, now time.Time) (*Dashboard, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	d := EmptyDashboard(domain.CoalesceStr(str(raw, "studentId", "student_id"), studentID))

	for _, item := range objects(raw, "plan") {
		id := str(item, "id")
		if id == "" {
			continue
		}
		d.Plan = append(d.Plan, PlanItem{
			ID:        id,
			Title:     domain.CoalesceStr(str(item, "title", "label"), "Practice"),
			Minutes:   integer(item, 0, "minutes", "estimatedMinutes"),
			Kind:      domain.ParseTaskKind(str(item, "kind", "type")),
			Subject:   str(item, "subject", "subjectHint"),
			LessonRef: str(item, "lessonRef", "lessonId"),
		})
	}

	for _, l := range objects(raw, "lessons") {
		if lesson, ok := DecodeLesson(l); ok {
			d.Lessons = append(d.Lessons, lesson)
		}
	}

	for subject, v := range object(raw, "subjectMastery") {
		if f, ok := v.(float64); ok {
			d.SubjectMastery[subject] = f
		}
	}

	for _, b := range objects(raw, "badges") {
		id := str(b, "id")
		if id == "" {
			continue
		}
		d.Badges = append(d.Badges, Badge{
			ID:       id,
			Name:     domain.CoalesceStr(str(b, "name", "title"), id),
			EarnedAt: timestamp(b, now, "earnedAt"),
			New:      boolean(b, "new", "isNew"),
		})
	}

	stats := object(raw, "stats")
	d.Stats = Stats{
		Level:           integer(stats, 1, "level"),
		XP:              integer(stats, 0, "xp"),
		StreakDays:      integer(stats, 0, "streakDays", "streak"),
		AvgAccuracy:     numPtr(stats, "avgAccuracy", "accuracy"),
		RecentAccuracy:  numPtr(stats, "recentAccuracy"),
		ModulesMastered: integer(stats, 0, "modulesMastered", "modulesMasteredCount"),
	}

	for _, c := range objects(raw, "celebrations") {
		id := str(c, "id")
		if id == "" {
			continue
		}
		d.Celebrations = append(d.Celebrations, domain.CelebrationMoment{
			ID:           id,
			Kind:         domain.CelebrationKind(domain.CoalesceStr(str(c, "kind"), string(domain.CelebrateBadge))),
			Title:        domain.CoalesceStr(str(c, "title"), "Nice work!"),
			Description:  str(c, "description"),
			OccurredAt:   timestamp(c, now, "occurredAt"),
			Prompt:       str(c, "prompt"),
			NotifyParent: boolean(c, "notifyParent"),
		})
	}

	if p, ok := raw["persona"].(map[string]any); ok {
		d.Persona = DecodePersona(p)
	}

	profile := object(raw, "profile")
	d.Profile = domain.StudentProfile{
		StudentID:       d.StudentID,
		WeeklyIntensity: domain.Intensity(str(profile, "weeklyIntensity", "intensity")),
		Intent:          domain.Intent(str(profile, "intent")),
		LessonOnly:      boolean(profile, "lessonOnly", "lesson_only"),
	}.Normalize()

	for _, e := range objects(raw, "explanations") {
		text := str(e, "text", "body")
		if text == "" {
			continue
		}
		d.Explanations = append(d.Explanations, CannedExplanation{
			Subject: str(e, "subject"),
			Topic:   str(e, "topic", "concept"),
			Text:    text,
		})
	}

	return d, nil
}
