// Package flash relays the one-shot outcome of an adaptive path recompute to
// the next dashboard render.
package flash

import (
	"context"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/store"
)

// Relay is a single-slot mailbox per student backed by a Store.
// Publish overwrites any unread flash; Consume drains the slot.
type Relay struct {
	store store.Store
}

// NewRelay creates a Relay on top of s.
func NewRelay(s store.Store) *Relay {
	return &Relay{store: s}
}

// Publish stores f as the student's unread flash, replacing any previous one.
func (r *Relay) Publish(ctx context.Context, studentID string, f domain.AdaptiveFlash) {
	if f.Misconceptions == nil {
		f.Misconceptions = []string{}
	}
	store.SetJSON(ctx, r.store, store.Key(store.PurposeAdaptiveFlash, studentID), f)
}

// Consume returns the unread flash and removes it. A second Consume returns
// false until the next Publish.
func (r *Relay) Consume(ctx context.Context, studentID string) (domain.AdaptiveFlash, bool) {
	return store.TakeJSON[domain.AdaptiveFlash](ctx, r.store, store.Key(store.PurposeAdaptiveFlash, studentID))
}
