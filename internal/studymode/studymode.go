// Package studymode persists the student's elevated study mode toggle.
package studymode

import (
	"context"
	"time"

	"github.com/alexanderramin/orbit/internal/store"
)

// Expiry is how long an enabled study mode stays active.
const Expiry = 7 * 24 * time.Hour

type record struct {
	Enabled bool      `json:"enabled"`
	SetAt   time.Time `json:"setAt"`
}

// Mode reads and writes one student's elevated study mode.
type Mode struct {
	store     store.Store
	studentID string
	now       func() time.Time
}

// New creates a Mode. nil now uses time.Now.
func New(s store.Store, studentID string, now func() time.Time) *Mode {
	if now == nil {
		now = time.Now
	}
	return &Mode{store: s, studentID: studentID, now: now}
}

func (m *Mode) key() string {
	return store.Key(store.PurposeElevatedStudyMode, m.studentID)
}

// Set enables or disables study mode. Disabling removes the record.
func (m *Mode) Set(ctx context.Context, enabled bool) {
	if !enabled {
		m.store.Remove(ctx, m.key())
		return
	}
	store.SetJSON(ctx, m.store, m.key(), record{Enabled: true, SetAt: m.now()})
}

// Active reports whether study mode is on and younger than Expiry.
// Expired or disabled records are removed.
func (m *Mode) Active(ctx context.Context) bool {
	rec, ok := store.GetJSON[record](ctx, m.store, m.key())
	if !ok {
		return false
	}
	if !rec.Enabled || m.now().Sub(rec.SetAt) >= Expiry {
		m.store.Remove(ctx, m.key())
		return false
	}
	return true
}

// ExpiresAt returns when the active mode lapses.
func (m *Mode) ExpiresAt(ctx context.Context) (time.Time, bool) {
	if !m.Active(ctx) {
		return time.Time{}, false
	}
	rec, _ := store.GetJSON[record](ctx, m.store, m.key())
	return rec.SetAt.Add(Expiry), true
}
