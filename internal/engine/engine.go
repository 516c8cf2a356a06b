// Package engine decides budget actions for managed campaigns. It is pure
// decision logic: it reads campaign state and snapshot series and emits
// actions, never touching the store or the remote platform itself.
package engine

import (
	"sort"
	"time"

	"AdsPilot/internal/model"
)

// Engine evaluates campaigns against the configured policy rules. The clock
// is injectable for deterministic tests.
type Engine struct {
	now func() time.Time
}

// New creates an Engine. A nil clock means time.Now.
func New(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// EvaluateAll runs the per-campaign policy over every auto-enabled campaign
// and returns the actions to execute, ordered by campaign id. Campaigns must
// be normalized. At most one action is emitted per campaign per cycle.
func (e *Engine) EvaluateAll(campaigns map[string]model.Campaign, snapshots map[string]map[string]model.Snapshot) []model.Action {
	ids := make([]string, 0, len(campaigns))
	for id := range campaigns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var actions []model.Action
	for _, id := range ids {
		cam := campaigns[id]
		if !cam.Auto() {
			continue
		}

		var action *model.Action
		if cam.Type == model.TypeCompetition {
			action = e.evaluateCompetition(cam, snapshots[id])
		} else {
			action = e.evaluateNormal(cam, snapshots[id])
		}
		if action != nil {
			actions = append(actions, *action)
		}
	}
	return actions
}
