// Package plan tracks the daily micro-plan and the completion streak derived
// from it. All state is client persisted through a store.Store.
package plan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/store"
)

// DefaultRolloverInterval is how often the day key is re-derived.
const DefaultRolloverInterval = 10 * time.Minute

// Tracker owns one student's micro-plan record. Every mutation is written
// to the store before the call returns.
type Tracker struct {
	store     store.Store
	studentID string
	now       func() time.Time

	mu     sync.Mutex
	rec    Record
	loaded bool
}

// NewTracker creates a Tracker. now supplies local wall-clock time; nil uses time.Now.
func NewTracker(s store.Store, studentID string, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: s, studentID: studentID, now: now}
}

// TodayKey derives today's YYYY-MM-DD key from the local wall clock.
func (t *Tracker) TodayKey() string {
	return domain.DayKey(t.now())
}

func (t *Tracker) key() string {
	return store.Key(store.PurposeMicroPlan, t.studentID)
}

// Load reads the persisted record, rolling it over if the day changed.
func (t *Tracker) Load(ctx context.Context) domain.MicroPlanState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)
	return copyState(t.rec.State)
}

func (t *Tracker) ensureLoaded(ctx context.Context) {
	if !t.loaded {
		persisted, _ := store.GetJSON[Record](ctx, t.store, t.key())
		t.rec = persisted
		t.loaded = true
	}
	rolled, changed := LoadOrRoll(t.rec, t.TodayKey())
	t.rec = rolled
	if changed {
		t.persist(ctx)
	}
}

func (t *Tracker) persist(ctx context.Context) {
	store.SetJSON(ctx, t.store, t.key(), t.rec)
}

// Seed sets today's tasks. A day's task set is fixed once seeded, so later
// calls on the same day are ignored and report false.
func (t *Tracker) Seed(ctx context.Context, tasks []domain.MicroTask) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)

	if len(t.rec.State.TaskIDs) > 0 || len(tasks) == 0 {
		return false
	}
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	t.rec.State.TaskIDs = ids
	t.rec.Tasks = append([]domain.MicroTask{}, tasks...)
	t.persist(ctx)
	return true
}

// Tasks returns today's seeded tasks.
func (t *Tracker) Tasks(ctx context.Context) []domain.MicroTask {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)
	return append([]domain.MicroTask{}, t.rec.Tasks...)
}

// SetTaskStatus applies a user action. Requesting the status a task already
// has toggles it back to pending. Returns the resulting status.
func (t *Tracker) SetTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus) (domain.TaskStatus, error) {
	if !domain.ValidTaskStatuses[status] {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)

	if !containsID(t.rec.State.TaskIDs, taskID) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	next := status
	if t.rec.State.Status(taskID) == status {
		next = domain.TaskPending
	}
	if next == domain.TaskPending {
		delete(t.rec.State.Statuses, taskID)
	} else {
		t.rec.State.Statuses[taskID] = next
	}
	t.persist(ctx)
	return next, nil
}

// Streak returns the current completion streak including today's live state.
func (t *Tracker) Streak(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)
	return ComputeStreak(t.rec.History, t.rec.State.AllDone(), t.rec.State.Day)
}

// History returns the folded day history, oldest first.
func (t *Tracker) History(ctx context.Context) []domain.StreakDay {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoaded(ctx)
	return append([]domain.StreakDay{}, t.rec.History...)
}

// CheckRollover re-derives the day key and rolls the record over when it
// changed. Returns the live day key and whether a rollover happened.
func (t *Tracker) CheckRollover(ctx context.Context) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		t.ensureLoaded(ctx)
		return t.rec.State.Day, false
	}
	rolled, changed := LoadOrRoll(t.rec, t.TodayKey())
	t.rec = rolled
	if changed {
		t.persist(ctx)
	}
	return t.rec.State.Day, changed
}

// StartRolloverWatcher re-checks the day key every interval so a session
// spanning midnight rolls over without a reload. onRoll, if set, receives
// the watcher's context and the new day key; the context is cancelled when
// the watcher stops. The returned stop function cancels the watcher and
// waits for it to exit.
func (t *Tracker) StartRolloverWatcher(ctx context.Context, interval time.Duration, onRoll func(ctx context.Context, day string)) (stop func()) {
	if interval <= 0 {
		interval = DefaultRolloverInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if day, changed := t.CheckRollover(ctx); changed && onRoll != nil {
					onRoll(ctx, day)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func copyState(s domain.MicroPlanState) domain.MicroPlanState {
	out := domain.MicroPlanState{
		Day:      s.Day,
		TaskIDs:  append([]string{}, s.TaskIDs...),
		Statuses: make(map[string]domain.TaskStatus, len(s.Statuses)),
	}
	for k, v := range s.Statuses {
		out.Statuses[k] = v
	}
	return out
}
