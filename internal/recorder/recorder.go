package recorder

import "time"

// ActionRecord is one executed (or rejected) budget action.
type ActionRecord struct {
	CampaignID   string
	Channel      string
	Kind         string
	NewBudget    float64
	Reason       string
	Applied      bool
	RemoteSynced bool
}

// CycleRecord summarizes one control-loop cycle.
type CycleRecord struct {
	Cycle     int
	Campaigns int
	Actions   int
	Duration  time.Duration
}

// Recorder persists local history for analysis. It is an audit sink only;
// the shared store stays the source of truth.
type Recorder interface {
	RecordAction(rec *ActionRecord) error
	RecordCycle(rec *CycleRecord) error
	// Trim deletes records older than the given time.
	Trim(olderThan time.Time) error
	Close() error
}
