// Package content fetches the read-only dashboard record and path-recompute
// notifications from the content/profile service.
package content

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/domain"
)

// Source fetches a student's dashboard record.
type Source interface {
	Fetch(ctx context.Context, studentID string) (*contract.Dashboard, error)
}

// LessonResult reports one finished lesson.
type LessonResult struct {
	LessonRef      string   `json:"lessonRef"`
	Title          string   `json:"title,omitempty"`
	Accuracy       *float64 `json:"accuracy,omitempty"`
	Misconceptions []string `json:"misconceptions,omitempty"`
}

// Recomputer turns a finished lesson into an adaptive flash.
type Recomputer interface {
	Recompute(ctx context.Context, studentID string, res LessonResult) (domain.AdaptiveFlash, error)
}

// FetchOrEmpty fetches from src and degrades to an empty dashboard on any
// failure. A nil src always yields the empty dashboard.
func FetchOrEmpty(ctx context.Context, src Source, studentID string, logger *slog.Logger) *contract.Dashboard {
	if src == nil {
		return contract.EmptyDashboard(studentID)
	}
	if logger == nil {
		logger = slog.Default()
	}
	d, err := src.Fetch(ctx, studentID)
	if err != nil {
		logger.WarnContext(ctx, "content_fetch_failed", "student_id", studentID, "error", err)
		return contract.EmptyDashboard(studentID)
	}
	return d
}

// Recompute thresholds for the local recomputer, in percent.
const (
	remediateBelow = 70.0
	stretchFrom    = 90.0
)

// LocalRecomputer derives the flash from the lesson result alone. It is used
// when no content service is configured, or when the service call fails.
type LocalRecomputer struct {
	Now func() time.Time
}

// Recompute never fails.
func (r LocalRecomputer) Recompute(_ context.Context, _ string, res LessonResult) (domain.AdaptiveFlash, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	reason := domain.ReasonContinue
	switch {
	case len(res.Misconceptions) > 0:
		reason = domain.ReasonRemediation
	case res.Accuracy != nil && *res.Accuracy < remediateBelow:
		reason = domain.ReasonRemediation
	case res.Accuracy != nil && *res.Accuracy >= stretchFrom:
		reason = domain.ReasonStretch
	}
	misconceptions := append([]string{}, res.Misconceptions...)
	return domain.AdaptiveFlash{
		EventType:      domain.EventLessonCompleted,
		CreatedAt:      now(),
		Misconceptions: misconceptions,
		NextReason:     reason,
		NextTitle:      res.Title,
	}, nil
}
