// Package monitor runs the evaluation control loop: one strictly sequential
// cycle per interval, reading the shared store, refreshing remote metrics,
// snapshotting, deciding and executing budget actions. A cycle's failure is
// contained at the cycle boundary; the loop itself never dies.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"AdsPilot/internal/ads"
	"AdsPilot/internal/engine"
	"AdsPilot/internal/executor"
	"AdsPilot/internal/model"
	"AdsPilot/internal/ops"
	"AdsPilot/internal/recorder"
	"AdsPilot/internal/snapshot"
	"AdsPilot/internal/store"
)

// cleanupEvery bounds store write volume: retention sweeps run on every
// n-th cycle, not every cycle.
const cleanupEvery = 10

// CredentialSource resolves a channel name to a platform credential.
// Lookups are case-insensitive. A nil source means no credentials.
type CredentialSource interface {
	Credential(channel string) (string, bool)
}

// Monitor owns one control loop. Exactly one Monitor instance must write to
// a given store root; the design is single-writer (the instance id stamped
// into metadata makes violations visible).
type Monitor struct {
	store   store.Store
	api     ads.API // nil = capability absent
	creds   CredentialSource
	snaps   *snapshot.Manager
	engine  *engine.Engine
	exec    *executor.Executor
	rec     recorder.Recorder
	metrics *ops.Metrics

	interval   time.Duration
	instanceID string
	cycleCount int
	now        func() time.Time
}

// New wires a Monitor from its collaborators. api, creds, metrics may be
// nil; rec may be a NoopRecorder. Non-positive intervals take the defaults.
func New(st store.Store, api ads.API, creds CredentialSource, rec recorder.Recorder, metrics *ops.Metrics, fetchInterval, snapshotInterval time.Duration) *Monitor {
	if fetchInterval <= 0 {
		fetchInterval = 180 * time.Second
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Monitor{
		store:      st,
		api:        api,
		creds:      creds,
		snaps:      snapshot.NewManager(st, snapshotInterval, 0),
		engine:     engine.New(nil),
		exec:       executor.New(st, api, rec, nil),
		rec:        rec,
		metrics:    metrics,
		interval:   fetchInterval,
		instanceID: uuid.NewString(),
		now:        time.Now,
	}
}

// Run executes cycles until ctx is cancelled. Cancellation is checked only
// between cycles; in-flight calls are bounded by their own timeouts.
func (m *Monitor) Run(ctx context.Context) {
	log.Printf("[INFO] monitor loop starting (interval: %s, instance: %s)", m.interval, m.instanceID)
	for {
		if err := m.RunCycle(ctx); err != nil {
			log.Printf("[ERROR] cycle #%d: %v", m.cycleCount, err)
			if m.metrics != nil {
				m.metrics.CycleFailures.Inc()
			}
		}

		select {
		case <-ctx.Done():
			log.Println("[INFO] monitor loop stopped")
			return
		case <-time.After(m.interval):
		}
	}
}

// RunCycle runs a single cycle, containing panics at the cycle boundary.
func (m *Monitor) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return m.runCycle(ctx)
}

func (m *Monitor) runCycle(ctx context.Context) error {
	m.cycleCount++
	start := m.now()
	log.Printf("[INFO] --- cycle #%d ---", m.cycleCount)

	// 1. Read managed campaigns; without them there is no cycle.
	campaigns, err := m.store.Campaigns(ctx)
	if err != nil {
		return fmt.Errorf("read campaigns: %w", err)
	}
	for id, cam := range campaigns {
		cam.Normalize(id)
		campaigns[id] = cam
	}
	log.Printf("[INFO] campaigns under management: %d", len(campaigns))

	// 2. Read the collaborator's live metrics; a failure degrades to
	// last-known campaign fields.
	live, err := m.store.LiveMetrics(ctx)
	if err != nil {
		log.Printf("[WARN] read live metrics: %v", err)
		live = map[string]model.LiveMetrics{}
	}
	liveIndex := indexLive(live)

	// 3. Refresh spend/ROAS from the remote platform, if present.
	if m.api != nil {
		m.refreshRemote(ctx, campaigns)
	}

	// 4. Merge live clicks/cart/orders/sales into campaigns.
	m.mergeLive(ctx, campaigns, liveIndex)

	// 5. Snapshot on its own cadence.
	now := m.now()
	if m.snaps.ShouldTake(now) {
		m.snaps.Take(ctx, now, campaigns, liveIndex)
	}

	// 6. Decide and execute.
	snapshots, err := m.store.Snapshots(ctx)
	if err != nil {
		log.Printf("[WARN] read snapshots: %v", err)
		snapshots = map[string]map[string]model.Snapshot{}
	}

	actions := m.engine.EvaluateAll(campaigns, snapshots)
	if len(actions) > 0 {
		log.Printf("[INFO] auto-budget: %d actions to execute", len(actions))
	}
	for _, action := range actions {
		cred := m.credentialFor(action.Channel)
		res := m.exec.Execute(ctx, action, cred)
		if m.metrics != nil {
			m.metrics.Actions.WithLabelValues(string(action.Kind)).Inc()
			if m.api != nil && res.Applied && !res.RemoteSynced {
				m.metrics.RemoteFailures.Inc()
			}
		}
	}

	// 7. Run metadata.
	if err := m.store.UpdateMetadata(ctx, map[string]any{
		"last_update":      now.Format(time.RFC3339),
		"update_timestamp": now.UnixMilli(),
		"total_campaigns":  len(campaigns),
		"cycle_count":      m.cycleCount,
		"instance_id":      m.instanceID,
	}); err != nil {
		log.Printf("[WARN] update metadata: %v", err)
	}

	// 8. Periodic retention sweep.
	if m.cycleCount%cleanupEvery == 0 {
		m.snaps.Cleanup(ctx, now, snapshots)
	}

	elapsed := m.now().Sub(start)
	if m.metrics != nil {
		m.metrics.Cycles.Inc()
		m.metrics.CycleDuration.Set(elapsed.Seconds())
		m.metrics.CampaignCount.Set(float64(len(campaigns)))
	}
	if err := m.rec.RecordCycle(&recorder.CycleRecord{
		Cycle:     m.cycleCount,
		Campaigns: len(campaigns),
		Actions:   len(actions),
		Duration:  elapsed,
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}

	log.Printf("[INFO] cycle #%d completed in %.1fs", m.cycleCount, elapsed.Seconds())
	return nil
}

// refreshRemote pulls balance and campaign metrics from the platform and
// merges them into the store and the in-memory campaign set. List fetches
// fan out per distinct credential through a bounded pool; one credential's
// failure never aborts the others.
func (m *Monitor) refreshRemote(ctx context.Context, campaigns map[string]model.Campaign) {
	creds := m.distinctCredentials(campaigns)
	if len(creds) == 0 {
		log.Println("[WARN] no credential available for remote fetch")
		return
	}

	if balance, err := m.api.Balance(ctx, creds[0]); err == nil {
		log.Printf("[INFO] ads balance: %.2f", balance)
	} else if !errors.Is(err, ads.ErrNotConfigured) {
		log.Printf("[WARN] fetch balance: %v", err)
	}

	var (
		mu    sync.Mutex
		stats []ads.CampaignStats
	)
	g := new(errgroup.Group)
	g.SetLimit(4) // bound concurrency against the platform
	for _, cred := range creds {
		cred := cred
		g.Go(func() error {
			list, err := m.api.Campaigns(ctx, cred)
			if errors.Is(err, ads.ErrNotConfigured) {
				return nil
			}
			if err != nil {
				log.Printf("[WARN] fetch campaign list: %v", err)
				return nil
			}
			mu.Lock()
			stats = append(stats, list...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[WARN] campaign list fan-out: %v", err)
	}

	if len(stats) == 0 {
		return
	}
	log.Printf("[INFO] platform returned %d campaign readings", len(stats))

	byChannel := make(map[string]string, len(campaigns)) // lower channel -> id
	for id, cam := range campaigns {
		byChannel[strings.ToLower(cam.Channel)] = id
	}

	for _, stat := range stats {
		id, ok := byChannel[stat.NameKey()]
		if !ok {
			continue
		}
		cam := campaigns[id]

		cam.SpentToday = stat.CostValue()
		cam.ROAS = stat.ROAS
		cam.AdCredit = stat.CreditValue()
		cam.Visits = stat.VisitCount()
		cam.ConversionRate = stat.ConversionRate
		cam.LastUpdate = m.now().Format(time.RFC3339)

		updates := map[string]any{
			"spent_today":     cam.SpentToday,
			"roas":            cam.ROAS,
			"ad_credit":       cam.AdCredit,
			"visits":          cam.Visits,
			"conversion_rate": cam.ConversionRate,
			"last_update":     cam.LastUpdate,
		}
		if cam.SpentToday >= cam.DailyBudget*0.99 {
			cam.Status = model.StatusBudgetFull
			updates["status"] = model.StatusBudgetFull
		}

		if err := m.store.UpdateCampaign(ctx, id, updates); err != nil {
			log.Printf("[WARN] merge remote data for %s: %v", id, err)
			continue
		}
		campaigns[id] = cam
	}
}

// mergeLive folds the live collaborator's counters into each campaign,
// joined by lower-cased channel name.
func (m *Monitor) mergeLive(ctx context.Context, campaigns map[string]model.Campaign, liveIndex map[string]model.LiveMetrics) {
	for id, cam := range campaigns {
		liveRec, ok := liveIndex[strings.ToLower(cam.Channel)]
		if !ok {
			continue
		}

		cam.Clicks = liveRec.Clicks
		cam.Cart = liveRec.CartTotal()
		cam.Orders = liveRec.Orders
		cam.Sales = liveRec.Sales

		err := m.store.UpdateCampaign(ctx, id, map[string]any{
			"clicks": cam.Clicks,
			"cart":   cam.Cart,
			"orders": cam.Orders,
			"sales":  cam.Sales,
		})
		if err != nil {
			log.Printf("[WARN] merge live data for %s: %v", id, err)
			continue
		}
		campaigns[id] = cam
	}
}

// distinctCredentials returns the unique credentials across campaigns, in
// stable (channel-sorted) order.
func (m *Monitor) distinctCredentials(campaigns map[string]model.Campaign) []string {
	if m.creds == nil {
		return nil
	}
	channels := make([]string, 0, len(campaigns))
	for _, cam := range campaigns {
		channels = append(channels, cam.Channel)
	}
	sort.Strings(channels)

	seen := map[string]struct{}{}
	var creds []string
	for _, ch := range channels {
		cred, ok := m.creds.Credential(ch)
		if !ok {
			continue
		}
		if _, dup := seen[cred]; dup {
			continue
		}
		seen[cred] = struct{}{}
		creds = append(creds, cred)
	}
	return creds
}

func (m *Monitor) credentialFor(channel string) string {
	if m.creds == nil {
		return ""
	}
	cred, _ := m.creds.Credential(channel)
	return cred
}

func indexLive(live map[string]model.LiveMetrics) map[string]model.LiveMetrics {
	index := make(map[string]model.LiveMetrics, len(live))
	for _, rec := range live {
		if rec.Channel == "" {
			continue
		}
		index[strings.ToLower(rec.Channel)] = rec
	}
	return index
}
