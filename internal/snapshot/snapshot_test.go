package snapshot

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AdsPilot/internal/model"
	"AdsPilot/internal/store"
)

func intPtr(n int) *int { return &n }

func TestShouldTakeGate(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), 5*time.Minute, 0)
	now := time.Now()

	assert.True(t, m.ShouldTake(now), "fresh manager should be due")

	m.Take(context.Background(), now, nil, nil)
	assert.False(t, m.ShouldTake(now.Add(4*time.Minute)))
	assert.True(t, m.ShouldTake(now.Add(5*time.Minute)))
}

func TestTakePrefersLiveData(t *testing.T) {
	st := store.NewMemoryStore()
	m := NewManager(st, 0, 0)
	now := time.Now()

	campaigns := map[string]model.Campaign{
		"c1": {ID: "c1", Channel: "ShopAlpha", SpentToday: 120, Cart: 1, Clicks: 10},
		"c2": {ID: "c2", Channel: "ShopBeta", SpentToday: 80, Cart: 7, Clicks: 30},
	}
	liveIndex := map[string]model.LiveMetrics{
		"shopalpha": {Channel: "ShopAlpha", AddedToCart: intPtr(4), Clicks: 42, Orders: 2, Sales: 900},
	}

	m.Take(context.Background(), now, campaigns, liveIndex)

	snaps, err := st.Snapshots(context.Background())
	require.NoError(t, err)
	key := strconv.FormatInt(now.UnixMilli(), 10)

	// c1 matched live data (case-insensitive), spend always from campaign.
	require.Contains(t, snaps["c1"], key)
	assert.Equal(t, model.Snapshot{Spent: 120, Cart: 4, Clicks: 42, Orders: 2, Sales: 900}, snaps["c1"][key])

	// c2 had no live match and keeps last-known campaign fields.
	require.Contains(t, snaps["c2"], key)
	assert.Equal(t, model.Snapshot{Spent: 80, Cart: 7, Clicks: 30}, snaps["c2"][key])
}

func TestWindowSortsAndFilters(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ms := func(d time.Duration) string {
		return strconv.FormatInt(now.Add(d).UnixMilli(), 10)
	}
	series := map[string]model.Snapshot{
		ms(-10 * time.Minute): {Spent: 30},
		ms(-2 * time.Minute):  {Spent: 50},
		ms(-20 * time.Minute): {Spent: 10}, // outside 15-minute window
		"garbage":             {Spent: 99},
	}

	points := Window(series, 15, now)
	require.Len(t, points, 2)
	assert.Equal(t, 30.0, points[0].Spent)
	assert.Equal(t, 50.0, points[1].Spent)
	assert.Less(t, points[0].Time, points[1].Time)
}

func TestCleanupRetention(t *testing.T) {
	st := store.NewMemoryStore()
	m := NewManager(st, 0, 4*time.Hour)
	ctx := context.Background()
	now := time.Now()

	old := now.Add(-5 * time.Hour).UnixMilli()
	fresh := now.Add(-1 * time.Hour).UnixMilli()
	edge := now.Add(-4 * time.Hour).UnixMilli() // exactly at horizon: kept

	require.NoError(t, st.WriteSnapshot(ctx, "c1", old, model.Snapshot{Spent: 1}))
	require.NoError(t, st.WriteSnapshot(ctx, "c1", fresh, model.Snapshot{Spent: 2}))
	require.NoError(t, st.WriteSnapshot(ctx, "c1", edge, model.Snapshot{Spent: 3}))

	snaps, err := st.Snapshots(ctx)
	require.NoError(t, err)
	m.Cleanup(ctx, now, snaps)

	snaps, err = st.Snapshots(ctx)
	require.NoError(t, err)
	assert.NotContains(t, snaps["c1"], strconv.FormatInt(old, 10))
	assert.Contains(t, snaps["c1"], strconv.FormatInt(fresh, 10))
	assert.Contains(t, snaps["c1"], strconv.FormatInt(edge, 10))
}
