// Package celebrate detects new achievements and queues celebration moments
// so that each one is shown exactly once.
package celebrate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/store"
)

// MaxQueue bounds how many moments are queued in one evaluation.
const MaxQueue = 2

// AccuracyJumpPoints is the minimum gain in average accuracy, in percentage
// points, that counts as a jump.
const AccuracyJumpPoints = 5.0

// StreakMilestones are the streak lengths that earn a celebration.
var StreakMilestones = []int{3, 7, 14, 30}

// snapshotRecord is persisted under the celebration-snapshot key. Pending
// holds every unseen moment, local or server-supplied, so a moment crowded
// out of the queue is offered again even if its source never repeats it.
type snapshotRecord struct {
	Snapshot domain.AchievementSnapshot `json:"snapshot"`
	Pending  []domain.CelebrationMoment `json:"pending,omitempty"`
}

// Deduplicator owns one student's celebration queue.
type Deduplicator struct {
	store     store.Store
	studentID string
	now       func() time.Time

	mu    sync.Mutex
	queue []domain.CelebrationMoment
}

// NewDeduplicator creates a Deduplicator. nil now uses time.Now.
func NewDeduplicator(s store.Store, studentID string, now func() time.Time) *Deduplicator {
	if now == nil {
		now = time.Now
	}
	return &Deduplicator{store: s, studentID: studentID, now: now}
}

// Evaluate compares current against the last snapshot, merges the result
// with server-supplied moments, drops anything already seen, and returns
// the new queue. The snapshot is persisted on every call; seen ids are not
// touched.
func (d *Deduplicator) Evaluate(ctx context.Context, current domain.AchievementSnapshot, server []domain.CelebrationMoment) []domain.CelebrationMoment {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	prev, _ := store.GetJSON[snapshotRecord](ctx, d.store, d.snapshotKey())
	seen := d.loadSeen(ctx)

	merged := make([]domain.CelebrationMoment, 0, len(prev.Pending)+len(server)+4)
	merged = append(merged, prev.Pending...)
	merged = append(merged, Candidates(prev.Snapshot, current, now)...)
	merged = append(merged, server...)

	unseen := make([]domain.CelebrationMoment, 0, len(merged))
	ids := make(map[string]bool, len(merged))
	for _, m := range merged {
		if m.ID == "" || seen[m.ID] || ids[m.ID] {
			continue
		}
		ids[m.ID] = true
		unseen = append(unseen, m)
	}

	store.SetJSON(ctx, d.store, d.snapshotKey(), snapshotRecord{Snapshot: current, Pending: unseen})

	if len(unseen) > MaxQueue {
		unseen = unseen[:MaxQueue]
	}
	d.queue = unseen
	return append([]domain.CelebrationMoment{}, d.queue...)
}

// Dismiss removes the head of the queue and records it as seen. It returns
// the dismissed moment, or false when the queue is empty.
func (d *Deduplicator) Dismiss(ctx context.Context) (domain.CelebrationMoment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return domain.CelebrationMoment{}, false
	}
	head := d.queue[0]
	d.queue = d.queue[1:]
	d.markSeen(ctx, head.ID)
	return head, true
}

func (d *Deduplicator) snapshotKey() string {
	return store.Key(store.PurposeCelebrationSnap, d.studentID)
}

func (d *Deduplicator) seenKey() string {
	return store.Key(store.PurposeCelebrationSeen, d.studentID)
}

func (d *Deduplicator) loadSeen(ctx context.Context) map[string]bool {
	ids, _ := store.GetJSON[[]string](ctx, d.store, d.seenKey())
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	return seen
}

func (d *Deduplicator) markSeen(ctx context.Context, ids ...string) {
	existing, _ := store.GetJSON[[]string](ctx, d.store, d.seenKey())
	changed := false
	for _, id := range ids {
		if id != "" && !contains(existing, id) {
			existing = append(existing, id)
			changed = true
		}
	}
	if changed {
		store.SetJSON(ctx, d.store, d.seenKey(), existing)
	}
}

// Candidates derives local celebration moments from the change between two
// snapshots. A zero prev is treated as a brand new student at level 1.
func Candidates(prev, current domain.AchievementSnapshot, now time.Time) []domain.CelebrationMoment {
	var out []domain.CelebrationMoment

	if current.Level > max(prev.Level, 1) {
		out = append(out, domain.CelebrationMoment{
			ID:          fmt.Sprintf("level-%d", current.Level),
			Kind:        domain.CelebrateLevelUp,
			Title:       fmt.Sprintf("Level %d reached!", current.Level),
			Description: fmt.Sprintf("You moved up to level %d.", current.Level),
			OccurredAt:  now,
		})
	}

	if m, ok := crossedMilestone(prev.StreakDays, current.StreakDays); ok {
		start := domain.AddDays(domain.DayKey(now), -(current.StreakDays - 1))
		out = append(out, domain.CelebrationMoment{
			ID:           fmt.Sprintf("streak-%d-%s", m, strings.ReplaceAll(start, "-", "")),
			Kind:         domain.CelebrateStreak,
			Title:        fmt.Sprintf("%d-day streak!", m),
			Description:  fmt.Sprintf("You finished your plan %d days in a row.", current.StreakDays),
			OccurredAt:   now,
			Prompt:       "What helped you keep going?",
			NotifyParent: m >= 7,
		})
	}

	if prev.AvgAccuracy != nil && current.AvgAccuracy != nil {
		before, after := math.Round(*prev.AvgAccuracy), math.Round(*current.AvgAccuracy)
		if *current.AvgAccuracy-*prev.AvgAccuracy >= AccuracyJumpPoints {
			out = append(out, domain.CelebrationMoment{
				ID:          fmt.Sprintf("accuracy-jump-%d-%d", int(before), int(after)),
				Kind:        domain.CelebrateAccuracy,
				Title:       "Accuracy is climbing",
				Description: fmt.Sprintf("Your average accuracy rose from %d%% to %d%%.", int(before), int(after)),
				OccurredAt:  now,
			})
		}
	}

	if current.ModulesMasteredCount > prev.ModulesMasteredCount {
		out = append(out, domain.CelebrationMoment{
			ID:           fmt.Sprintf("mastery-%d", current.ModulesMasteredCount),
			Kind:         domain.CelebrateMastery,
			Title:        "New module mastered",
			Description:  fmt.Sprintf("You have mastered %d modules.", current.ModulesMasteredCount),
			OccurredAt:   now,
			NotifyParent: true,
		})
	}

	return out
}

// crossedMilestone returns the highest milestone in (prev, current].
func crossedMilestone(prev, current int) (int, bool) {
	best := 0
	for _, m := range StreakMilestones {
		if prev < m && current >= m {
			best = m
		}
	}
	return best, best > 0
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
