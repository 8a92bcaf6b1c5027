package guardrail

import (
	"context"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/store"
)

// DefaultCooldown is the minimum gap between two explainer dialogs.
const DefaultCooldown = 10 * time.Minute

// Decision is the outcome of screening one outgoing message.
type Decision struct {
	Category      domain.GuardrailCategory
	Blocked       bool
	Reminder      string
	ShowExplainer bool
	Explainer     string
}

// Throttle screens messages for one student and rate-limits the explainer.
type Throttle struct {
	store     store.Store
	studentID string
	cooldown  time.Duration
	now       func() time.Time
}

// NewThrottle creates a Throttle. cooldown <= 0 uses DefaultCooldown and
// nil now uses time.Now.
func NewThrottle(s store.Store, studentID string, cooldown time.Duration, now func() time.Time) *Throttle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if now == nil {
		now = time.Now
	}
	return &Throttle{store: s, studentID: studentID, cooldown: cooldown, now: now}
}

// Check classifies text. A violation always carries the inline reminder;
// the explainer is added only when the last one is older than the cooldown
// and the student has not turned explainers off.
func (t *Throttle) Check(ctx context.Context, text string) Decision {
	cat := Classify(text)
	if cat == domain.GuardrailNone {
		return Decision{Category: cat}
	}

	d := Decision{Category: cat, Blocked: true, Reminder: Reminder(cat)}
	if t.explainerDismissed(ctx) {
		return d
	}

	now := t.now()
	last, ok := store.GetJSON[time.Time](ctx, t.store, store.Key(store.PurposeGuardrailLast, t.studentID))
	if ok && now.Sub(last) <= t.cooldown {
		return d
	}

	store.SetJSON(ctx, t.store, store.Key(store.PurposeGuardrailLast, t.studentID), now)
	d.ShowExplainer = true
	d.Explainer = Explainer(cat)
	return d
}

// DismissExplainer stops the explainer from ever showing again for the student.
func (t *Throttle) DismissExplainer(ctx context.Context) {
	store.SetJSON(ctx, t.store, store.Key(store.PurposeExplainerDismissed, t.studentID), true)
}

func (t *Throttle) explainerDismissed(ctx context.Context) bool {
	v, _ := store.GetJSON[bool](ctx, t.store, store.Key(store.PurposeExplainerDismissed, t.studentID))
	return v
}
