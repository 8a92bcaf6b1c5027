package contract

import "strings"

// PersonaMeta describes the tutor persona chosen for the student.
type PersonaMeta struct {
	ID          string
	Name        string
	Role        string
	Tone        string
	Constraints []string
}

// DefaultPersona is used when no persona metadata is supplied.
func DefaultPersona() PersonaMeta {
	return PersonaMeta{
		ID:          "default",
		Name:        "Orbit",
		Role:        "a patient study coach",
		Tone:        "warm, encouraging, and concise",
		Constraints: []string{},
	}
}

// DecodePersona reads a loose persona object, defaulting every missing field.
func DecodePersona(m map[string]any) PersonaMeta {
	def := DefaultPersona()
	p := PersonaMeta{
		ID:          str(m, "id", "slug"),
		Name:        str(m, "name", "displayName"),
		Role:        str(m, "role", "description"),
		Tone:        str(m, "tone", "voice"),
		Constraints: stringList(m, "constraints"),
	}
	if p.ID == "" {
		p.ID = def.ID
	}
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.Role == "" {
		p.Role = def.Role
	}
	if p.Tone == "" {
		p.Tone = def.Tone
	}
	return p
}

// LessonMeta is the lesson context attached to tutor turns and tasks.
type LessonMeta struct {
	Ref      string `json:"ref"`
	Title    string `json:"title"`
	Subject  string `json:"subject,omitempty"`
	Concept  string `json:"concept,omitempty"`
	Standard string `json:"standard,omitempty"`
}

// DecodeLesson reads a loose lesson object. Lessons without a ref are rejected.
func DecodeLesson(m map[string]any) (LessonMeta, bool) {
	l := LessonMeta{
		Ref:      str(m, "ref", "id", "lessonId"),
		Title:    str(m, "title", "name"),
		Subject:  strings.ToLower(str(m, "subject")),
		Concept:  str(m, "concept", "topic"),
		Standard: str(m, "standard", "primaryStandard"),
	}
	if l.Ref == "" {
		return LessonMeta{}, false
	}
	if l.Title == "" {
		l.Title = l.Ref
	}
	return l, true
}
