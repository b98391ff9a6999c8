package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/greekbot/internal/config"
	"github.com/example/greekbot/internal/database"
)

type fakeDispatcher struct {
	scheduled []string
	digests   []string
}

func (f *fakeDispatcher) SendScheduled(_ context.Context, dateKey string) error {
	f.scheduled = append(f.scheduled, dateKey)
	return nil
}

func (f *fakeDispatcher) SendDigest(_ context.Context, weekKey string) error {
	f.digests = append(f.digests, weekKey)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Timezone:         "UTC",
		DailyTarget:      2,
		ActiveHoursStart: 8,
		ActiveHoursEnd:   21,
	}
}

func newTestScheduler(t *testing.T, dispatcher Dispatcher, now time.Time, randValue float64) *Scheduler {
	t.Helper()
	require.NoError(t, database.Open("sqlite3", ":memory:"))
	t.Cleanup(func() { _ = database.Close() })

	return New(testConfig(), dispatcher, nil, zaptest.NewLogger(t),
		WithClock(func() time.Time { return now }),
		WithRand(func() float64 { return randValue }),
	)
}

func at(hour, minute int) time.Time {
	// Wednesday
	return time.Date(2026, 8, 26, hour, minute, 0, 0, time.UTC)
}

func TestTimeWeight(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		hour   int
		weight float64
	}{
		{7, 0.0},  // before active hours
		{21, 0.0}, // after active hours
		{8, 1.5},  // morning peak
		{10, 1.5},
		{18, 1.5}, // evening peak
		{20, 1.5},
		{11, 0.8}, // midday lull
		{14, 0.8},
		{15, 1.0},
		{17, 1.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.weight, timeWeight(tc.hour, cfg), "hour %d", tc.hour)
	}
}

func TestShouldSendNowOutsideActiveHours(t *testing.T) {
	for _, hour := range []int{0, 7, 21, 23} {
		s := newTestScheduler(t, &fakeDispatcher{}, at(hour, 0), 0.0)
		send, err := s.ShouldSendNow(context.Background())
		require.NoError(t, err)
		assert.False(t, send, "hour %d", hour)
	}
}

func TestShouldSendNowTargetReached(t *testing.T) {
	now := at(10, 0)
	s := newTestScheduler(t, &fakeDispatcher{}, now, 0.0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, s.sendLog.Append(ctx, now.Format("2006-01-02"), 0))
	}
	send, err := s.ShouldSendNow(ctx)
	require.NoError(t, err)
	assert.False(t, send)
}

func TestShouldSendNowMidday(t *testing.T) {
	// 15:00, nothing sent: 6 hours x 3 ticks = 18 slots for 2 sends,
	// so the per-tick probability is 2/18 at weight 1.0.
	s := newTestScheduler(t, &fakeDispatcher{}, at(15, 0), 0.05)
	send, err := s.ShouldSendNow(context.Background())
	require.NoError(t, err)
	assert.True(t, send)

	s.randFn = func() float64 { return 0.5 }
	send, err = s.ShouldSendNow(context.Background())
	require.NoError(t, err)
	assert.False(t, send)
}

func TestShouldSendNowUrgencyFloor(t *testing.T) {
	// 20:00 with the full target left: 3 slots for 2 sends triggers the
	// 0.5 floor (and the peak weight pushes raw probability to the cap).
	s := newTestScheduler(t, &fakeDispatcher{}, at(20, 0), 0.49)
	send, err := s.ShouldSendNow(context.Background())
	require.NoError(t, err)
	assert.True(t, send)

	// Even at maximum urgency the probability is capped below 1.
	s.randFn = func() float64 { return 0.95 }
	send, err = s.ShouldSendNow(context.Background())
	require.NoError(t, err)
	assert.False(t, send)
}

func TestWeeklyDigestWindowAndDedup(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sunday := time.Date(2026, 8, 30, 18, 5, 0, 0, time.UTC)
	s := newTestScheduler(t, dispatcher, sunday, 0.0)
	ctx := context.Background()

	s.maybeSendWeeklyDigest(ctx)
	require.Equal(t, []string{"2026-W35-digest"}, dispatcher.digests)

	// The delivered digest lands in the send log; later ticks in the same
	// week skip it.
	require.NoError(t, s.sendLog.Append(ctx, "2026-W35-digest", 0))
	s.maybeSendWeeklyDigest(ctx)
	assert.Len(t, dispatcher.digests, 1)
}

func TestWeeklyDigestOutsideWindow(t *testing.T) {
	cases := []time.Time{
		time.Date(2026, 8, 30, 17, 55, 0, 0, time.UTC), // Sunday, too early
		time.Date(2026, 8, 30, 18, 25, 0, 0, time.UTC), // Sunday, past the window
		time.Date(2026, 8, 26, 18, 5, 0, 0, time.UTC),  // Wednesday
	}
	for _, now := range cases {
		dispatcher := &fakeDispatcher{}
		s := newTestScheduler(t, dispatcher, now, 0.0)
		s.maybeSendWeeklyDigest(context.Background())
		assert.Empty(t, dispatcher.digests, "%s", now)
	}
}
