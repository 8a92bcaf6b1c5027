package celebrate

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/store"
	"github.com/alexanderramin/orbit/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeduplicator(t *testing.T) (*Deduplicator, *testutil.Clock, *store.MemoryStore) {
	t.Helper()
	clock := testutil.NewClock(testutil.Day(2026, time.March, 10))
	s := store.NewMemoryStore()
	return NewDeduplicator(s, "stu-1", clock.Now), clock, s
}

func seedSnapshot(t *testing.T, s store.Store, snap domain.AchievementSnapshot) {
	t.Helper()
	store.SetJSON(context.Background(), s, store.Key(store.PurposeCelebrationSnap, "stu-1"), snapshotRecord{Snapshot: snap})
}

func ids(moments []domain.CelebrationMoment) []string {
	out := make([]string, 0, len(moments))
	for _, m := range moments {
		out = append(out, m.ID)
	}
	return out
}

func TestCandidates(t *testing.T) {
	now := testutil.Day(2026, time.March, 10)
	prev := domain.AchievementSnapshot{Level: 3, StreakDays: 2, AvgAccuracy: testutil.Float(70), ModulesMasteredCount: 1}
	current := domain.AchievementSnapshot{Level: 4, StreakDays: 7, AvgAccuracy: testutil.Float(76), ModulesMasteredCount: 2}

	got := ids(Candidates(prev, current, now))
	want := []string{"level-4", "streak-7-20260304", "accuracy-jump-70-76", "mastery-2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidates_NoChange(t *testing.T) {
	snap := domain.AchievementSnapshot{Level: 3, StreakDays: 7, AvgAccuracy: testutil.Float(80), ModulesMasteredCount: 2}
	assert.Empty(t, Candidates(snap, snap, time.Now()))
}

func TestCandidates_AccuracyNeedsPriorValue(t *testing.T) {
	prev := domain.AchievementSnapshot{Level: 1}
	current := domain.AchievementSnapshot{Level: 1, AvgAccuracy: testutil.Float(95)}
	assert.Empty(t, Candidates(prev, current, time.Now()))
}

func TestCandidates_AccuracyBelowThreshold(t *testing.T) {
	prev := domain.AchievementSnapshot{Level: 1, AvgAccuracy: testutil.Float(70)}
	current := domain.AchievementSnapshot{Level: 1, AvgAccuracy: testutil.Float(74.9)}
	assert.Empty(t, Candidates(prev, current, time.Now()))
}

func TestCandidates_StreakHighestMilestoneOnly(t *testing.T) {
	now := testutil.Day(2026, time.March, 10)
	got := Candidates(domain.AchievementSnapshot{Level: 1, StreakDays: 0}, domain.AchievementSnapshot{Level: 1, StreakDays: 15}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "streak-14-20260224", got[0].ID)
	assert.True(t, got[0].NotifyParent)

	assert.Empty(t, Candidates(domain.AchievementSnapshot{StreakDays: 7}, domain.AchievementSnapshot{StreakDays: 9}, now),
		"milestone already crossed")
}

func TestCandidates_NewStudentAtLevelOne(t *testing.T) {
	assert.Empty(t, Candidates(domain.AchievementSnapshot{}, domain.AchievementSnapshot{Level: 1}, time.Now()))
}

func TestEvaluate_TruncatesAndKeepsRemainderPending(t *testing.T) {
	d, _, s := newTestDeduplicator(t)
	ctx := context.Background()
	seedSnapshot(t, s, domain.AchievementSnapshot{Level: 3, StreakDays: 2, ModulesMasteredCount: 1})

	current := domain.AchievementSnapshot{Level: 4, StreakDays: 3, ModulesMasteredCount: 2}
	queue := d.Evaluate(ctx, current, nil)
	assert.Equal(t, []string{"level-4", "streak-3-20260308"}, ids(queue))

	_, ok := d.Dismiss(ctx)
	require.True(t, ok)
	_, ok = d.Dismiss(ctx)
	require.True(t, ok)

	// Same stats again: only the crowded-out moment remains.
	queue = d.Evaluate(ctx, current, nil)
	assert.Equal(t, []string{"mastery-2"}, ids(queue))
}

func TestEvaluate_ShownMomentNeverRepeats(t *testing.T) {
	d, _, s := newTestDeduplicator(t)
	ctx := context.Background()
	server := []domain.CelebrationMoment{{ID: "badge-first-week", Kind: domain.CelebrateBadge, Title: "First week"}}

	for i := 0; i < 3; i++ {
		queue := d.Evaluate(ctx, domain.AchievementSnapshot{Level: 1}, server)
		if i == 0 {
			require.Equal(t, []string{"badge-first-week"}, ids(queue))
			d.Dismiss(ctx)
			continue
		}
		assert.Empty(t, queue)
	}

	// A fresh instance on the same store agrees.
	other := NewDeduplicator(s, "stu-1", nil)
	assert.Empty(t, other.Evaluate(ctx, domain.AchievementSnapshot{Level: 1}, server))
}

func TestEvaluate_CrowdedOutServerMomentSurvives(t *testing.T) {
	d, _, s := newTestDeduplicator(t)
	ctx := context.Background()
	seedSnapshot(t, s, domain.AchievementSnapshot{Level: 1, StreakDays: 2})

	current := domain.AchievementSnapshot{Level: 2, StreakDays: 3}
	server := []domain.CelebrationMoment{{ID: "badge-first-lesson", Kind: domain.CelebrateBadge, Title: "First lesson"}}
	queue := d.Evaluate(ctx, current, server)
	require.Equal(t, []string{"level-2", "streak-3-20260308"}, ids(queue))

	for range queue {
		_, ok := d.Dismiss(ctx)
		require.True(t, ok)
	}

	// New badges are sent once; the crowded-out one must still come back.
	queue = d.Evaluate(ctx, current, nil)
	require.Equal(t, []string{"badge-first-lesson"}, ids(queue))
	assert.Equal(t, "First lesson", queue[0].Title)

	d.Dismiss(ctx)
	assert.Empty(t, d.Evaluate(ctx, current, nil))
}

func TestEvaluate_UnshownMomentStaysEligible(t *testing.T) {
	d, _, s := newTestDeduplicator(t)
	ctx := context.Background()
	seedSnapshot(t, s, domain.AchievementSnapshot{Level: 2})

	first := d.Evaluate(ctx, domain.AchievementSnapshot{Level: 3}, nil)
	require.Equal(t, []string{"level-3"}, ids(first))

	// Never dismissed; the snapshot already moved to level 3 but the
	// moment is still offered.
	again := d.Evaluate(ctx, domain.AchievementSnapshot{Level: 3}, nil)
	assert.Equal(t, []string{"level-3"}, ids(again))
}

func TestEvaluate_LocalBeforeServerAndDeduped(t *testing.T) {
	d, _, _ := newTestDeduplicator(t)
	ctx := context.Background()
	d.Evaluate(ctx, domain.AchievementSnapshot{Level: 1}, nil)

	server := []domain.CelebrationMoment{
		{ID: "level-2", Kind: domain.CelebrateLevelUp, Title: "dup from server"},
		{ID: "badge-x", Kind: domain.CelebrateBadge},
	}
	queue := d.Evaluate(ctx, domain.AchievementSnapshot{Level: 2}, server)
	require.Equal(t, []string{"level-2", "badge-x"}, ids(queue))
	assert.Equal(t, "Level 2 reached!", queue[0].Title)
}

func TestEvaluate_PersistsSnapshotEveryCall(t *testing.T) {
	d, _, s := newTestDeduplicator(t)
	ctx := context.Background()

	d.Evaluate(ctx, domain.AchievementSnapshot{Level: 5, StreakDays: 1}, nil)
	rec, ok := store.GetJSON[snapshotRecord](ctx, s, store.Key(store.PurposeCelebrationSnap, "stu-1"))
	require.True(t, ok)
	assert.Equal(t, 5, rec.Snapshot.Level)

	_, ok = s.Get(ctx, store.Key(store.PurposeCelebrationSeen, "stu-1"))
	assert.False(t, ok, "seen ids written only on show")
}

func TestDismiss_EmptyQueue(t *testing.T) {
	d, _, _ := newTestDeduplicator(t)
	_, ok := d.Dismiss(context.Background())
	assert.False(t, ok)
}
