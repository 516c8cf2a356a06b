package engine

import (
	"strconv"
	"testing"
	"time"

	"AdsPilot/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func normalized(c model.Campaign) model.Campaign {
	c.Normalize(c.ID)
	return c
}

func seriesAt(now time.Time, offsets map[time.Duration]model.Snapshot) map[string]model.Snapshot {
	out := map[string]model.Snapshot{}
	for d, s := range offsets {
		out[strconv.FormatInt(now.Add(d).UnixMilli(), 10)] = s
	}
	return out
}

func TestCartGood(t *testing.T) {
	now := time.UnixMilli(600_000)
	series := map[string]model.Snapshot{
		"0":      {Spent: 10, Cart: 2},
		"600000": {Spent: 20, Cart: 4},
	}

	// spent_diff=10 >= 5, cart_diff=2 > 0, cost_per_cart=5 <= 7.5
	if !cartGood(series, 5, 15, now) {
		t.Error("expected good verdict for cart_value=5")
	}
	// cost_per_cart=5 > 1.5
	if cartGood(series, 1, 15, now) {
		t.Error("expected bad verdict for cart_value=1")
	}
	// fewer than 2 points is always bad
	if cartGood(map[string]model.Snapshot{"0": {Spent: 100, Cart: 50}}, 5, 15, now) {
		t.Error("expected bad verdict for single point")
	}
	if cartGood(nil, 5, 15, now) {
		t.Error("expected bad verdict for empty series")
	}
}

func TestCartGoodTooLittleSpend(t *testing.T) {
	now := time.UnixMilli(600_000)
	series := map[string]model.Snapshot{
		"0":      {Spent: 10, Cart: 2},
		"600000": {Spent: 13, Cart: 8},
	}
	// spent_diff=3 < cart_value=5: not enough spend to judge.
	if cartGood(series, 5, 15, now) {
		t.Error("expected bad verdict when spend delta is below cart value")
	}
}

func TestCartGoodNoConversions(t *testing.T) {
	now := time.UnixMilli(600_000)
	series := map[string]model.Snapshot{
		"0":      {Spent: 10, Cart: 5},
		"600000": {Spent: 30, Cart: 5},
	}
	if cartGood(series, 5, 15, now) {
		t.Error("expected bad verdict with zero cart delta")
	}
}

func TestNormalROASLowFreeze(t *testing.T) {
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", Channel: "alpha",
		ROAS: 10, ROASTarget: 30, ROASMinPct: 50, // floor = 15
		SpentToday: 500, DailyBudget: 800,
	})

	a := e.evaluateNormal(cam, nil)
	if a == nil {
		t.Fatal("expected freeze action")
	}
	if a.Kind != model.ActionSetBudget {
		t.Fatalf("expected set_budget, got %s", a.Kind)
	}
	if a.NewBudget != 500 {
		t.Errorf("expected frozen budget 500, got %v", a.NewBudget)
	}
}

func TestNormalROASLowFreezeNoopWhenEqual(t *testing.T) {
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 10, ROASTarget: 30, ROASMinPct: 50,
		SpentToday: 500, DailyBudget: 500,
	})
	if a := e.evaluateNormal(cam, nil); a != nil {
		t.Fatalf("expected no action when freeze equals current budget, got %+v", a)
	}
}

func TestNormalROASLowPause(t *testing.T) {
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 10, ROASTarget: 30, ROASMinPct: 50,
		SpentToday: 150, DailyBudget: 800, Status: model.StatusActive,
	})

	a := e.evaluateNormal(cam, nil)
	if a == nil || a.Kind != model.ActionPause {
		t.Fatalf("expected pause, got %+v", a)
	}

	// Already paused: low ROAS still terminates evaluation, but silently.
	cam.Status = model.StatusPaused
	if a := e.evaluateNormal(cam, nil); a != nil {
		t.Fatalf("expected no action for already-paused campaign, got %+v", a)
	}
}

func TestNormalROASLowPauseAtExactMinimumSpend(t *testing.T) {
	// Spend exactly at the minimum budget sits on the pause branch, not the
	// freeze branch: only spend strictly above the minimum freezes.
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 10, ROASTarget: 30, ROASMinPct: 50,
		SpentToday: 200, DailyBudget: 800, Status: model.StatusActive,
	})

	a := e.evaluateNormal(cam, nil)
	if a == nil || a.Kind != model.ActionPause {
		t.Fatalf("expected pause at spend == 200, got %+v", a)
	}
}

func TestNormalROASLowPreemptsGrowth(t *testing.T) {
	// Budget threshold is reached, but the ROAS floor rule fires first and
	// terminates: the campaign must not be grown.
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 10, ROASTarget: 30, ROASMinPct: 50,
		SpentToday: 190, DailyBudget: 200, Status: model.StatusActive,
	})
	a := e.evaluateNormal(cam, nil)
	if a == nil || a.Kind != model.ActionPause {
		t.Fatalf("expected pause from rule 1, got %+v", a)
	}
}

func TestNormalIncreaseOnGoodROAS(t *testing.T) {
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 35, ROASTarget: 30,
		SpentToday: 190, DailyBudget: 200,
	})

	a := e.evaluateNormal(cam, nil)
	if a == nil || a.Kind != model.ActionIncreaseBudget {
		t.Fatalf("expected increase, got %+v", a)
	}
	if a.NewBudget != 225 {
		t.Errorf("expected 225, got %v", a.NewBudget)
	}
}

func TestNormalIncreaseOnCartWindow(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	e := New(fixedClock(now))

	// ROAS between floor and target: growth depends on the cart verdict.
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 20, ROASTarget: 30, CartValue: 5,
		SpentToday: 190, DailyBudget: 200,
	})

	series := seriesAt(now, map[time.Duration]model.Snapshot{
		-170 * time.Minute: {Spent: 10, Cart: 2},
		-5 * time.Minute:   {Spent: 40, Cart: 10}, // 30/8 = 3.75 <= 7.5
	})

	a := e.evaluateNormal(cam, series)
	if a == nil || a.Kind != model.ActionIncreaseBudget {
		t.Fatalf("expected increase, got %+v", a)
	}
	// The 180-minute window has priority and should be the one cited.
	if want := "cart good in 180 min window, budget 95% used"; a.Reason != want {
		t.Errorf("reason = %q, want %q", a.Reason, want)
	}
}

func TestNormalWindowPriorityFallsThrough(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	e := New(fixedClock(now))

	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 20, ROASTarget: 30, CartValue: 5,
		SpentToday: 190, DailyBudget: 200,
	})
	// Only points inside the last 15 minutes: 180 and 60 windows see the
	// same two points and also pass, unless disabled.
	f := false
	cam.Eval180 = &f
	cam.Eval60 = &f

	series := seriesAt(now, map[time.Duration]model.Snapshot{
		-10 * time.Minute: {Spent: 10, Cart: 2},
		-1 * time.Minute:  {Spent: 25, Cart: 6},
	})

	a := e.evaluateNormal(cam, series)
	if a == nil {
		t.Fatal("expected increase via 15 min window")
	}
	if want := "cart good in 15 min window, budget 95% used"; a.Reason != want {
		t.Errorf("reason = %q, want %q", a.Reason, want)
	}
}

func TestNormalNoActionBelowThreshold(t *testing.T) {
	e := New(nil)
	cam := normalized(model.Campaign{
		ID: "c1", ROAS: 35, ROASTarget: 30,
		SpentToday: 100, DailyBudget: 200, // 50% used
	})
	if a := e.evaluateNormal(cam, nil); a != nil {
		t.Fatalf("expected no action, got %+v", a)
	}
}

func TestScheduledReactivation(t *testing.T) {
	now := time.Date(2026, 8, 23, 6, 0, 0, 0, time.Local)
	e := New(fixedClock(now))

	paused := normalized(model.Campaign{
		ID: "c1", Status: model.StatusPaused, SpentToday: 0, DailyBudget: 200,
	})
	a := e.evaluateNormal(paused, nil)
	if a == nil || a.Kind != model.ActionResume {
		t.Fatalf("expected resume at 06:00, got %+v", a)
	}
	if a.ScheduleKey != "2026-08-23_06:00" {
		t.Errorf("schedule key = %q", a.ScheduleKey)
	}

	full := normalized(model.Campaign{
		ID: "c2", Status: model.StatusBudgetFull, SpentToday: 200, DailyBudget: 200, ROAS: 0,
	})
	a = e.evaluateNormal(full, nil)
	if a == nil || a.Kind != model.ActionIncreaseBudget {
		t.Fatalf("expected increase for budget_full at 06:00, got %+v", a)
	}
	if a.NewBudget != 225 {
		t.Errorf("expected 225, got %v", a.NewBudget)
	}
}

func TestScheduledReactivationIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 23, 11, 30, 0, 0, time.Local)
	e := New(fixedClock(now))

	cam := normalized(model.Campaign{
		ID: "c1", Status: model.StatusPaused, DailyBudget: 200,
	})

	first := e.evaluateNormal(cam, nil)
	if first == nil {
		t.Fatal("expected first firing")
	}

	// The executor persists the key; the same minute must not fire again.
	cam.LastScheduleAction = first.ScheduleKey
	if second := e.evaluateNormal(cam, nil); second != nil {
		t.Fatalf("expected no second firing, got %+v", second)
	}
}

func TestScheduleOffMinuteDoesNotFire(t *testing.T) {
	now := time.Date(2026, 8, 23, 6, 1, 0, 0, time.Local)
	e := New(fixedClock(now))
	cam := normalized(model.Campaign{ID: "c1", Status: model.StatusPaused, DailyBudget: 200})
	if a := e.evaluateNormal(cam, nil); a != nil {
		t.Fatalf("expected no action at 06:01, got %+v", a)
	}
}

func TestCompetitionBlackout(t *testing.T) {
	now := time.Date(2026, 8, 23, 3, 30, 0, 0, time.Local) // inside default 03:00-05:00
	e := New(fixedClock(now))

	cam := normalized(model.Campaign{
		ID: "c1", Type: model.TypeCompetition,
		SpentToday: 200, DailyBudget: 200,
	})
	if a := e.evaluateCompetition(cam, nil); a != nil {
		t.Fatalf("expected no action in blackout window, got %+v", a)
	}
}

func TestCompetitionFirstOpportunity(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 0, 0, 0, time.Local)
	e := New(fixedClock(now))

	// Never acted before: elapsed counts as very large.
	cam := normalized(model.Campaign{
		ID: "c1", Type: model.TypeCompetition, CartValue: 5,
		SpentToday: 199, DailyBudget: 200, CompetitionAmount: 100,
	})

	// Cart bad: still increases, by the default increment.
	a := e.evaluateCompetition(cam, nil)
	if a == nil || a.Kind != model.ActionIncreaseBudget {
		t.Fatalf("expected increase, got %+v", a)
	}
	if a.NewBudget != 225 {
		t.Errorf("default bump: expected 225, got %v", a.NewBudget)
	}

	// Cart good: increases by competition_amount instead.
	series := seriesAt(now, map[time.Duration]model.Snapshot{
		-10 * time.Minute: {Spent: 10, Cart: 2},
		-1 * time.Minute:  {Spent: 25, Cart: 6},
	})
	a = e.evaluateCompetition(cam, series)
	if a == nil || a.NewBudget != 300 {
		t.Fatalf("amount bump: expected 300, got %+v", a)
	}
}

func TestCompetitionIntervalGate(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 0, 0, 0, time.Local)
	e := New(fixedClock(now))

	cam := normalized(model.Campaign{
		ID: "c1", Type: model.TypeCompetition,
		SpentToday: 200, DailyBudget: 200, CompetitionInterval: 30,
	})

	cam.LastAutoAction = now.Add(-10 * time.Minute).UnixMilli()
	if a := e.evaluateCompetition(cam, nil); a != nil {
		t.Fatalf("expected no action 10 min after last, got %+v", a)
	}

	cam.LastAutoAction = now.Add(-31 * time.Minute).UnixMilli()
	if a := e.evaluateCompetition(cam, nil); a == nil {
		t.Fatal("expected action 31 min after last")
	}
}

func TestCompetitionBudgetNotFull(t *testing.T) {
	e := New(fixedClock(time.Date(2026, 8, 23, 14, 0, 0, 0, time.Local)))
	cam := normalized(model.Campaign{
		ID: "c1", Type: model.TypeCompetition,
		SpentToday: 100, DailyBudget: 200, Status: model.StatusActive,
	})
	if a := e.evaluateCompetition(cam, nil); a != nil {
		t.Fatalf("expected no action at 50%% used, got %+v", a)
	}
}

func TestInTimeWindowWrapAround(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 8, 23, h, m, 0, 0, time.Local)
	}
	tests := []struct {
		now        time.Time
		start, end string
		want       bool
	}{
		{at(3, 30), "03:00", "05:00", true},
		{at(5, 0), "03:00", "05:00", true},
		{at(5, 1), "03:00", "05:00", false},
		{at(23, 0), "22:00", "02:00", true}, // wraps midnight
		{at(1, 0), "22:00", "02:00", true},
		{at(12, 0), "22:00", "02:00", false},
		{at(12, 0), "bogus", "05:00", false}, // malformed disables
	}
	for _, tt := range tests {
		if got := inTimeWindow(tt.now, tt.start, tt.end); got != tt.want {
			t.Errorf("inTimeWindow(%s, %s, %s) = %v, want %v",
				tt.now.Format("15:04"), tt.start, tt.end, got, tt.want)
		}
	}
}

func TestEvaluateAllSkipsDisabledAndSorts(t *testing.T) {
	e := New(nil)
	off := false
	campaigns := map[string]model.Campaign{
		"b": normalized(model.Campaign{ID: "b", ROAS: 35, ROASTarget: 30, SpentToday: 190, DailyBudget: 200}),
		"a": normalized(model.Campaign{ID: "a", ROAS: 35, ROASTarget: 30, SpentToday: 190, DailyBudget: 200}),
		"c": normalized(model.Campaign{ID: "c", ROAS: 35, ROASTarget: 30, SpentToday: 190, DailyBudget: 200, AutoEnabled: &off}),
	}

	actions := e.EvaluateAll(campaigns, nil)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].CampaignID != "a" || actions[1].CampaignID != "b" {
		t.Errorf("expected deterministic order a,b; got %s,%s", actions[0].CampaignID, actions[1].CampaignID)
	}
}
