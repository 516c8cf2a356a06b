// Package executor applies decided actions. The shared state store is
// written first and is authoritative; the remote platform is mirrored
// best-effort and never rolls the store back.
package executor

import (
	"context"
	"errors"
	"log"
	"time"

	"AdsPilot/internal/ads"
	"AdsPilot/internal/budget"
	"AdsPilot/internal/model"
	"AdsPilot/internal/recorder"
	"AdsPilot/internal/store"
)

// Result reports what one action execution achieved. RemoteSynced is
// observability only; callers must not branch on it.
type Result struct {
	Applied      bool
	RemoteSynced bool
}

// Executor consumes actions exactly once. API may be nil (capability
// absent); Recorder may be nil.
type Executor struct {
	Store    store.Store
	API      ads.API
	Recorder recorder.Recorder

	now func() time.Time
}

// New creates an Executor. A nil clock means time.Now.
func New(st store.Store, api ads.API, rec recorder.Recorder, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{Store: st, API: api, Recorder: rec, now: now}
}

// Execute applies one action: budget validation (budget actions are rejected
// whole on an invalid amount, before any write), the authoritative store
// write, the best-effort remote mirror, and the unconditional action-log
// append.
func (x *Executor) Execute(ctx context.Context, action model.Action, credential string) Result {
	log.Printf("[INFO] [AUTO] %s: %s - %s", action.Channel, action.Kind, action.Reason)

	now := x.now()
	updates := map[string]any{"last_auto_action": now.UnixMilli()}
	if action.ScheduleKey != "" {
		updates["last_schedule_action"] = action.ScheduleKey
	}

	switch action.Kind {
	case model.ActionSetBudget, model.ActionIncreaseBudget:
		if ok, reason := budget.Validate(action.NewBudget); !ok {
			log.Printf("[WARN] rejecting %s for %s: budget %.2f %s", action.Kind, action.Channel, action.NewBudget, reason)
			x.record(action, Result{})
			return Result{}
		}
		updates["daily_budget"] = action.NewBudget
		updates["status"] = model.StatusActive
	case model.ActionPause:
		updates["status"] = model.StatusPaused
	case model.ActionResume:
		updates["status"] = model.StatusActive
	}

	res := Result{Applied: true}
	if err := x.Store.UpdateCampaign(ctx, action.CampaignID, updates); err != nil {
		log.Printf("[ERROR] store write for %s failed: %v", action.CampaignID, err)
		res.Applied = false
	}

	res.RemoteSynced = x.mirror(ctx, action, credential)

	entry := model.ActionLogEntry{
		Time:      now.Format("15:04"),
		Type:      action.LogType(),
		Channel:   action.Channel,
		Message:   action.Reason,
		Timestamp: now.UnixMilli(),
	}
	if err := x.Store.AppendActionLog(ctx, entry); err != nil {
		log.Printf("[ERROR] action log append failed: %v", err)
	}

	x.record(action, res)
	return res
}

// mirror pushes the change to the remote platform when the capability and a
// credential are present. Failure is logged, never propagated: the store
// write already happened and stands.
func (x *Executor) mirror(ctx context.Context, action model.Action, credential string) bool {
	if x.API == nil || credential == "" {
		return false
	}

	var err error
	switch action.Kind {
	case model.ActionSetBudget, model.ActionIncreaseBudget:
		err = x.API.SetBudget(ctx, credential, action.CampaignID, action.NewBudget)
	case model.ActionPause:
		err = x.API.Pause(ctx, credential, action.CampaignID)
	case model.ActionResume:
		err = x.API.Resume(ctx, credential, action.CampaignID)
	default:
		return false
	}

	if errors.Is(err, ads.ErrNotConfigured) {
		return false
	}
	if err != nil {
		log.Printf("[WARN] remote %s failed for %s, store still updated: %v", action.Kind, action.Channel, err)
		return false
	}
	return true
}

func (x *Executor) record(action model.Action, res Result) {
	if x.Recorder == nil {
		return
	}
	err := x.Recorder.RecordAction(&recorder.ActionRecord{
		CampaignID:   action.CampaignID,
		Channel:      action.Channel,
		Kind:         string(action.Kind),
		NewBudget:    action.NewBudget,
		Reason:       action.Reason,
		Applied:      res.Applied,
		RemoteSynced: res.RemoteSynced,
	})
	if err != nil {
		log.Printf("[ERROR] record action: %v", err)
	}
}
