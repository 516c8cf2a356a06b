package engine

import (
	"fmt"

	"AdsPilot/internal/budget"
	"AdsPilot/internal/model"
)

// evaluateCompetition applies the competition policy, for high-contention
// campaigns where budget grows on a fixed cadence regardless of ROAS:
//
//  1. Inside the per-campaign blackout window: nothing.
//  2. Budget (nearly) full and the cadence interval elapsed: grow by
//     competition_amount when the 15-minute cart verdict is good, otherwise
//     by the default increment. The verdict sizes the increase; it never
//     gates it.
func (e *Engine) evaluateCompetition(cam model.Campaign, series map[string]model.Snapshot) *model.Action {
	now := e.now()
	if inTimeWindow(now, cam.NoIncreaseStart, cam.NoIncreaseEnd) {
		return nil
	}

	if cam.PctUsed() < 0.99 && cam.Status != model.StatusBudgetFull {
		return nil
	}

	// Minutes since the last automated mutation; a campaign that was never
	// touched qualifies immediately.
	elapsed := 999.0
	if cam.LastAutoAction > 0 {
		elapsed = float64(now.UnixMilli()-cam.LastAutoAction) / 60_000
	}
	if elapsed < float64(cam.CompetitionInterval) {
		return nil
	}

	if cartGood(series, cam.CartValue, 15, now) {
		return &model.Action{
			CampaignID: cam.ID,
			Kind:       model.ActionIncreaseBudget,
			NewBudget:  budget.CalcIncrement(cam.DailyBudget, cam.CompetitionAmount),
			Reason:     fmt.Sprintf("competition: cart good in 15 min, +%.0f", cam.CompetitionAmount),
			Channel:    cam.Channel,
		}
	}
	return &model.Action{
		CampaignID: cam.ID,
		Kind:       model.ActionIncreaseBudget,
		NewBudget:  budget.CalcIncrement(cam.DailyBudget, 0),
		Reason:     fmt.Sprintf("competition: scheduled bump every %d min, +%d", cam.CompetitionInterval, budget.DefaultIncrement),
		Channel:    cam.Channel,
	}
}
