package engine

import (
	"strconv"
	"strings"
	"time"

	"AdsPilot/internal/model"
	"AdsPilot/internal/snapshot"
)

// cartGood is the window evaluator: a cost-efficiency gate over the trailing
// snapshot window. It needs at least two points; it compares the spend and
// cart deltas between the chronologically first and last point, requires
// enough spend to judge (>= cartValue) and at least one new cart, and passes
// when cost per cart stays within 1.5x the nominal target.
func cartGood(series map[string]model.Snapshot, cartValue float64, minutes int, now time.Time) bool {
	points := snapshot.Window(series, minutes, now)
	if len(points) < 2 {
		return false
	}

	first, last := points[0], points[len(points)-1]
	spentDiff := last.Spent - first.Spent
	cartDiff := last.Cart - first.Cart

	if spentDiff < cartValue {
		return false // too little spend to judge
	}
	if cartDiff <= 0 {
		return false // no conversions
	}
	return spentDiff/float64(cartDiff) <= cartValue*1.5
}

// enabledWindows returns the campaign's enabled evaluation windows in the
// fixed descending priority order. First good window wins.
func enabledWindows(cam model.Campaign) []int {
	var windows []int
	if cam.Eval180 == nil || *cam.Eval180 {
		windows = append(windows, 180)
	}
	if cam.Eval60 == nil || *cam.Eval60 {
		windows = append(windows, 60)
	}
	if cam.Eval15 == nil || *cam.Eval15 {
		windows = append(windows, 15)
	}
	return windows
}

// inTimeWindow reports whether now's wall-clock time falls inside
// [start, end] given as "HH:MM" strings. A window whose end precedes its
// start wraps past midnight. Malformed bounds disable the window.
func inTimeWindow(now time.Time, start, end string) bool {
	startMin, ok1 := parseHM(start)
	endMin, ok2 := parseHM(end)
	if !ok1 || !ok2 {
		return false
	}
	nowMin := now.Hour()*60 + now.Minute()
	if startMin <= endMin {
		return nowMin >= startMin && nowMin <= endMin
	}
	return nowMin >= startMin || nowMin <= endMin
}

func parseHM(s string) (int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
