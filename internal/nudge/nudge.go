// Package nudge derives a single contextual suggestion from a consumed
// adaptive flash and tracks which suggestions the student has dismissed.
package nudge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexanderramin/orbit/internal/bus"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/store"
)

// Accuracy thresholds, in percent.
const (
	TryAgainBelow   = 70.0
	QuickCheckBelow = 85.0
)

// DefaultView is where "act on it" routes when a nudge has no target.
const DefaultView = "/learning-path"

// ErrUnknownNudge is returned when acting on an id with no live nudge.
var ErrUnknownNudge = errors.New("nudge not found")

// Classify picks the nudge type for a flash. First match wins:
// remediation, misconceptions, or recent accuracy below 70 mean try_again;
// a stretch reason or accuracy below 85 mean quick_check; otherwise recap.
func Classify(f domain.AdaptiveFlash, recentAccuracy *float64) domain.NudgeType {
	if f.NextReason == domain.ReasonRemediation || len(f.Misconceptions) > 0 ||
		(recentAccuracy != nil && *recentAccuracy < TryAgainBelow) {
		return domain.NudgeTryAgain
	}
	if f.NextReason == domain.ReasonStretch || (recentAccuracy != nil && *recentAccuracy < QuickCheckBelow) {
		return domain.NudgeQuickCheck
	}
	return domain.NudgeRecap
}

// Build returns the nudge for a lesson-completion flash. Any other flash
// yields false.
func Build(f domain.AdaptiveFlash, recentAccuracy *float64) (domain.Nudge, bool) {
	if !f.IsLessonCompletion() {
		return domain.Nudge{}, false
	}

	typ := Classify(f, recentAccuracy)
	detail := detailFor(typ, f)
	n := domain.Nudge{
		ID:        ID(f, typ, detail),
		Type:      typ,
		Detail:    detail,
		TargetURL: f.NextURL,
	}

	switch typ {
	case domain.NudgeTryAgain:
		n.Title = "Give it another try"
		n.Body = fmt.Sprintf("A second pass on %s will help it stick.", detail)
	case domain.NudgeQuickCheck:
		n.Title = "Quick check"
		n.Body = fmt.Sprintf("Try a few quick questions on %s.", detail)
	default:
		n.Title = "Recap what you learned"
		n.Body = fmt.Sprintf("Take a minute to recap %s.", detail)
	}
	return n, true
}

func detailFor(typ domain.NudgeType, f domain.AdaptiveFlash) string {
	var misconception string
	if typ == domain.NudgeTryAgain && len(f.Misconceptions) > 0 {
		misconception = f.Misconceptions[0]
	}
	return domain.CoalesceStr(misconception, f.NextTitle, f.PrimaryStandard, "this lesson")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// ID derives the stable nudge id from the flash timestamp, type, and detail.
func ID(f domain.AdaptiveFlash, typ domain.NudgeType, detail string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(detail), "-"), "-")
	return fmt.Sprintf("nudge-%d-%s-%s", f.CreatedAt.UnixMilli(), typ, slug)
}

// Generator filters built nudges against the student's dismissed set and
// records dismiss and act actions.
type Generator struct {
	store     store.Store
	studentID string
	bus       *bus.Bus
}

// NewGenerator creates a Generator. b may be nil when no routing is wired.
func NewGenerator(s store.Store, studentID string, b *bus.Bus) *Generator {
	return &Generator{store: s, studentID: studentID, bus: b}
}

// Generate returns the nudge for f unless it has been dismissed before.
func (g *Generator) Generate(ctx context.Context, f domain.AdaptiveFlash, recentAccuracy *float64) (domain.Nudge, bool) {
	n, ok := Build(f, recentAccuracy)
	if !ok || g.isDismissed(ctx, n.ID) {
		return domain.Nudge{}, false
	}
	return n, true
}

// Dismiss suppresses id permanently.
func (g *Generator) Dismiss(ctx context.Context, id string) {
	dismissed := g.loadDismissed(ctx)
	for _, d := range dismissed {
		if d == id {
			return
		}
	}
	dismissed = append(dismissed, id)
	store.SetJSON(ctx, g.store, g.key(), dismissed)
}

// Act suppresses n and publishes the routing side effect. It returns the
// navigation target.
func (g *Generator) Act(ctx context.Context, n domain.Nudge) string {
	g.Dismiss(ctx, n.ID)
	target := domain.CoalesceStr(n.TargetURL, DefaultView)
	if g.bus != nil {
		g.bus.Navigate.Publish(bus.NavigateMessage{
			StudentID: g.studentID,
			Target:    target,
			Source:    "nudge:" + string(n.Type),
		})
	}
	return target
}

func (g *Generator) isDismissed(ctx context.Context, id string) bool {
	for _, d := range g.loadDismissed(ctx) {
		if d == id {
			return true
		}
	}
	return false
}

func (g *Generator) loadDismissed(ctx context.Context) []string {
	ids, _ := store.GetJSON[[]string](ctx, g.store, g.key())
	return ids
}

func (g *Generator) key() string {
	return store.Key(store.PurposeNudgesDismissed, g.studentID)
}
