package model

import "strings"

// ActionKind identifies what the executor should do with a campaign.
type ActionKind string

const (
	ActionSetBudget      ActionKind = "set_budget"
	ActionIncreaseBudget ActionKind = "increase_budget"
	ActionPause          ActionKind = "pause"
	ActionResume         ActionKind = "resume"
)

// Action is an ephemeral decision record produced by the engine and consumed
// exactly once by the executor. Only its effects persist.
type Action struct {
	CampaignID  string
	Kind        ActionKind
	NewBudget   float64 // set_budget / increase_budget only
	Reason      string
	Channel     string
	ScheduleKey string // set when triggered by scheduled reactivation
}

// LogType is the short action name recorded in the action log
// ("set_budget" -> "set", "increase_budget" -> "increase").
func (a Action) LogType() string {
	return strings.TrimSuffix(string(a.Kind), "_budget")
}

// ActionLogEntry is one append-only audit record in the shared store.
type ActionLogEntry struct {
	Time      string `json:"time"` // HH:MM
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}
