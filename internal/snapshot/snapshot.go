// Package snapshot maintains the per-campaign metric time series used for
// short-horizon trend detection. Snapshots are append-only, keyed by epoch
// milliseconds, and swept after a fixed retention.
package snapshot

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"AdsPilot/internal/model"
	"AdsPilot/internal/store"
)

const (
	// DefaultInterval is the snapshot cadence, independent of the cycle
	// interval so snapshot and API-poll cadence can diverge.
	DefaultInterval = 5 * time.Minute
	// Retention bounds how far back the series is kept.
	Retention = 4 * time.Hour
)

// Point is one snapshot with its parsed timestamp, as returned by Window.
type Point struct {
	Time int64 // epoch ms
	model.Snapshot
}

// Manager gates snapshot cadence and performs writes and retention sweeps.
type Manager struct {
	store     store.Store
	interval  time.Duration
	retention time.Duration
	lastTaken time.Time
}

// NewManager creates a Manager. Non-positive durations take the defaults.
func NewManager(st store.Store, interval, retention time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retention <= 0 {
		retention = Retention
	}
	return &Manager{store: st, interval: interval, retention: retention}
}

// ShouldTake reports whether the snapshot cadence is due at now.
func (m *Manager) ShouldTake(now time.Time) bool {
	return now.Sub(m.lastTaken) >= m.interval
}

// Take appends one snapshot per campaign under the current timestamp,
// preferring the live collaborator reading (joined by lower-cased channel)
// and falling back to last-known campaign fields. A failed write for one
// campaign is logged and does not affect the others.
func (m *Manager) Take(ctx context.Context, now time.Time, campaigns map[string]model.Campaign, liveIndex map[string]model.LiveMetrics) {
	ts := now.UnixMilli()
	written := 0
	for id, cam := range campaigns {
		snap := model.Snapshot{
			Spent:  cam.SpentToday,
			Cart:   cam.Cart,
			Clicks: cam.Clicks,
			Orders: cam.Orders,
			Sales:  cam.Sales,
		}
		if live, ok := liveIndex[strings.ToLower(cam.Channel)]; ok {
			snap.Cart = live.CartTotal()
			snap.Clicks = live.Clicks
			snap.Orders = live.Orders
			snap.Sales = live.Sales
		}
		if err := m.store.WriteSnapshot(ctx, id, ts, snap); err != nil {
			log.Printf("[WARN] snapshot write failed for %s: %v", id, err)
			continue
		}
		written++
	}
	m.lastTaken = now
	log.Printf("[INFO] snapshot taken for %d/%d campaigns", written, len(campaigns))
}

// Cleanup deletes snapshots strictly older than the retention horizon, and
// keys that do not parse as epoch milliseconds. Run periodically, not every
// cycle, to bound store write volume.
func (m *Manager) Cleanup(ctx context.Context, now time.Time, snapshots map[string]map[string]model.Snapshot) {
	cutoff := now.Add(-m.retention).UnixMilli()
	removed := 0
	for id, series := range snapshots {
		for key := range series {
			ts, err := strconv.ParseInt(key, 10, 64)
			if err == nil && ts >= cutoff {
				continue
			}
			if err := m.store.DeleteSnapshot(ctx, id, key); err != nil {
				log.Printf("[WARN] snapshot delete failed for %s/%s: %v", id, key, err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[INFO] snapshot cleanup removed %d entries", removed)
	}
}

// Window returns the snapshots within the trailing window of the given
// length, sorted ascending by timestamp. Keys that do not parse are skipped.
func Window(series map[string]model.Snapshot, minutes int, now time.Time) []Point {
	nowMS := now.UnixMilli()
	start := nowMS - int64(minutes)*60_000

	points := make([]Point, 0, len(series))
	for key, snap := range series {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		if ts >= start && ts <= nowMS {
			points = append(points, Point{Time: ts, Snapshot: snap})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points
}
