package engine

import (
	"fmt"
	"strings"

	"AdsPilot/internal/budget"
	"AdsPilot/internal/model"
)

// evaluateNormal applies the normal policy. Rules run in strict order and
// the first match wins:
//
//  1. ROAS below its floor: freeze the budget at today's spend, or pause
//     when spend is still under the minimum. Always terminates evaluation.
//  2. Budget threshold reached: grow the budget when ROAS meets target, or
//     when cart performance is good in the 180/60/15-minute windows
//     (checked in that fixed order).
//  3. Scheduled reactivation for paused / budget-full campaigns, at most
//     once per (day, time) pair.
func (e *Engine) evaluateNormal(cam model.Campaign, series map[string]model.Snapshot) *model.Action {
	pctUsed := cam.PctUsed()
	roasFloor := cam.ROASTarget * cam.ROASMinPct / 100

	// 1. ROAS too low pre-empts everything, including growth.
	if cam.ROAS > 0 && cam.ROAS < roasFloor {
		if cam.SpentToday > budget.MinBudget {
			freeze := budget.RoundUp(cam.SpentToday)
			if freeze != cam.DailyBudget {
				return &model.Action{
					CampaignID: cam.ID,
					Kind:       model.ActionSetBudget,
					NewBudget:  freeze,
					Reason:     fmt.Sprintf("ROAS low (%.1f < %.0f), freezing budget at spend", cam.ROAS, roasFloor),
					Channel:    cam.Channel,
				}
			}
		} else if cam.Status != model.StatusPaused {
			return &model.Action{
				CampaignID: cam.ID,
				Kind:       model.ActionPause,
				Reason:     fmt.Sprintf("ROAS low (%.1f), spend under %d, stopping", cam.ROAS, budget.MinBudget),
				Channel:    cam.Channel,
			}
		}
		return nil
	}

	// 2. Budget nearly consumed: consider growing.
	if pctUsed >= cam.BudgetThresholdPct/100 {
		if cam.ROAS >= cam.ROASTarget {
			return &model.Action{
				CampaignID: cam.ID,
				Kind:       model.ActionIncreaseBudget,
				NewBudget:  budget.CalcIncrement(cam.DailyBudget, 0),
				Reason:     fmt.Sprintf("ROAS good (%.1f >= %.0f), budget %.0f%% used", cam.ROAS, cam.ROASTarget, pctUsed*100),
				Channel:    cam.Channel,
			}
		}

		for _, mins := range enabledWindows(cam) {
			if cartGood(series, cam.CartValue, mins, e.now()) {
				return &model.Action{
					CampaignID: cam.ID,
					Kind:       model.ActionIncreaseBudget,
					NewBudget:  budget.CalcIncrement(cam.DailyBudget, 0),
					Reason:     fmt.Sprintf("cart good in %d min window, budget %.0f%% used", mins, pctUsed*100),
					Channel:    cam.Channel,
				}
			}
		}
	}

	// 3. Scheduled reactivation.
	if cam.Status == model.StatusBudgetFull || cam.Status == model.StatusPaused {
		return e.checkSchedule(cam)
	}

	return nil
}

// checkSchedule fires at minute resolution against the campaign's schedule
// times. The "<date>_<HH:MM>" idempotency key keeps a matched minute from
// firing more than once even if the loop runs twice within it.
func (e *Engine) checkSchedule(cam model.Campaign) *model.Action {
	now := e.now()
	nowHM := now.Format("15:04")

	for _, t := range strings.Split(cam.ScheduleTimes, ",") {
		t = strings.TrimSpace(t)
		if t == "" || nowHM != t {
			continue
		}
		key := now.Format("2006-01-02") + "_" + t
		if cam.LastScheduleAction == key {
			return nil // already acted this occurrence
		}

		switch cam.Status {
		case model.StatusBudgetFull:
			return &model.Action{
				CampaignID:  cam.ID,
				Kind:        model.ActionIncreaseBudget,
				NewBudget:   budget.CalcIncrement(cam.DailyBudget, 0),
				Reason:      fmt.Sprintf("scheduled %s: budget full, +%d", t, budget.DefaultIncrement),
				Channel:     cam.Channel,
				ScheduleKey: key,
			}
		case model.StatusPaused:
			return &model.Action{
				CampaignID:  cam.ID,
				Kind:        model.ActionResume,
				Reason:      fmt.Sprintf("scheduled %s: resuming", t),
				Channel:     cam.Channel,
				ScheduleKey: key,
			}
		}
	}
	return nil
}
