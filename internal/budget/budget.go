// Package budget holds the pure arithmetic for daily-budget amounts.
//
// A valid budget is at least MinBudget and ends in 0, 25, 50 or 75 when
// taken modulo 100 (the granularity the ads platform accepts).
package budget

import "math"

const (
	// MinBudget is the platform's minimum daily budget.
	MinBudget = 200
	// DefaultIncrement is the smallest budget step.
	DefaultIncrement = 25
)

// Validate reports whether amount is an acceptable daily budget. On failure
// the second return value holds a human-readable reason.
func Validate(amount float64) (bool, string) {
	if amount < MinBudget {
		return false, "below minimum"
	}
	switch math.Mod(amount, 100) {
	case 0, 25, 50, 75:
		return true, "ok"
	}
	return false, "invalid ending"
}

// RoundUp rounds amount up to the next multiple of 25, flooring at
// MinBudget. The result always satisfies Validate.
func RoundUp(amount float64) float64 {
	return math.Max(MinBudget, math.Ceil(amount/25)*25)
}

// CalcIncrement returns the next valid budget after adding delta to current.
// A non-positive delta means DefaultIncrement.
func CalcIncrement(current, delta float64) float64 {
	if delta <= 0 {
		delta = DefaultIncrement
	}
	return RoundUp(current + delta)
}
