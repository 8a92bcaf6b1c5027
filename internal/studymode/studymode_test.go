package studymode

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/orbit/internal/store"
	"github.com/alexanderramin/orbit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_ExpiresAfterSevenDays(t *testing.T) {
	clock := testutil.NewClock(testutil.Day(2026, time.March, 1))
	s := store.NewMemoryStore()
	m := New(s, "stu-1", clock.Now)
	ctx := context.Background()

	assert.False(t, m.Active(ctx))

	m.Set(ctx, true)
	assert.True(t, m.Active(ctx))
	exp, ok := m.ExpiresAt(ctx)
	require.True(t, ok)
	assert.Equal(t, testutil.Day(2026, time.March, 8), exp)

	clock.Advance(Expiry - time.Second)
	assert.True(t, m.Active(ctx))

	clock.Advance(time.Second)
	assert.False(t, m.Active(ctx))
	_, present := s.Get(ctx, store.Key(store.PurposeElevatedStudyMode, "stu-1"))
	assert.False(t, present, "expired record removed on read")
}

func TestMode_Disable(t *testing.T) {
	s := store.NewMemoryStore()
	m := New(s, "stu-1", nil)
	ctx := context.Background()

	m.Set(ctx, true)
	m.Set(ctx, false)
	assert.False(t, m.Active(ctx))
	_, ok := m.ExpiresAt(ctx)
	assert.False(t, ok)
}
