package model

// CampaignType selects which decision policy evaluates a campaign.
type CampaignType string

const (
	TypeNormal      CampaignType = "normal"
	TypeCompetition CampaignType = "competition"
)

// Campaign status values. Only the action executor writes these.
const (
	StatusActive     = "active"
	StatusPaused     = "paused"
	StatusBudgetFull = "budget_full"
)

// Campaign is one advertising campaign under management, as stored in the
// shared state store. Field names match the store's JSON keys. Optional
// fields default via Normalize; callers must normalize before evaluating.
type Campaign struct {
	ID      string `json:"-"` // store key, not part of the record body
	Channel string `json:"channel"`

	Type        CampaignType `json:"campaign_type,omitempty"`
	AutoEnabled *bool        `json:"auto_enabled,omitempty"`

	DailyBudget float64 `json:"daily_budget,omitempty"`
	SpentToday  float64 `json:"spent_today,omitempty"`

	ROAS               float64 `json:"roas,omitempty"`
	ROASTarget         float64 `json:"roas_target,omitempty"`
	ROASMinPct         float64 `json:"roas_min_pct,omitempty"`      // percent, e.g. 50
	CartValue          float64 `json:"cart_value,omitempty"`
	BudgetThresholdPct float64 `json:"budget_threshold,omitempty"` // percent, e.g. 90

	Status string `json:"status,omitempty"`

	ScheduleTimes      string `json:"schedule_times,omitempty"` // comma-separated HH:MM
	LastScheduleAction string `json:"last_schedule_action,omitempty"`

	NoIncreaseStart     string  `json:"no_increase_start,omitempty"`
	NoIncreaseEnd       string  `json:"no_increase_end,omitempty"`
	CompetitionInterval int     `json:"competition_interval,omitempty"` // minutes
	CompetitionAmount   float64 `json:"competition_amount,omitempty"`

	LastAutoAction int64 `json:"last_auto_action,omitempty"` // epoch ms

	Eval180 *bool `json:"eval_180,omitempty"`
	Eval60  *bool `json:"eval_60,omitempty"`
	Eval15  *bool `json:"eval_15,omitempty"`

	// Merged from the remote ads API each cycle.
	AdCredit       float64 `json:"ad_credit,omitempty"`
	Visits         int     `json:"visits,omitempty"`
	ConversionRate float64 `json:"conversion_rate,omitempty"`
	LastUpdate     string  `json:"last_update,omitempty"`

	// Merged from the live-metrics collaborator each cycle.
	Clicks int     `json:"clicks,omitempty"`
	Cart   int     `json:"cart,omitempty"`
	Orders int     `json:"orders,omitempty"`
	Sales  float64 `json:"sales,omitempty"`
}

// Normalize fills documented defaults for absent fields and attaches the
// store key. Called exactly once per cycle, right after reading the store.
func (c *Campaign) Normalize(id string) {
	c.ID = id
	if c.Type != TypeCompetition {
		c.Type = TypeNormal
	}
	if c.AutoEnabled == nil {
		c.AutoEnabled = boolPtr(true)
	}
	if c.DailyBudget <= 0 {
		c.DailyBudget = 200
	}
	if c.ROASTarget <= 0 {
		c.ROASTarget = 30
	}
	if c.ROASMinPct <= 0 {
		c.ROASMinPct = 50
	}
	if c.CartValue <= 0 {
		c.CartValue = 5
	}
	if c.BudgetThresholdPct <= 0 {
		c.BudgetThresholdPct = 90
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.ScheduleTimes == "" {
		c.ScheduleTimes = "06:00,11:30,18:00,22:00"
	}
	if c.NoIncreaseStart == "" {
		c.NoIncreaseStart = "03:00"
	}
	if c.NoIncreaseEnd == "" {
		c.NoIncreaseEnd = "05:00"
	}
	if c.CompetitionInterval <= 0 {
		c.CompetitionInterval = 30
	}
	if c.CompetitionAmount <= 0 {
		c.CompetitionAmount = 25
	}
	if c.Eval180 == nil {
		c.Eval180 = boolPtr(true)
	}
	if c.Eval60 == nil {
		c.Eval60 = boolPtr(true)
	}
	if c.Eval15 == nil {
		c.Eval15 = boolPtr(true)
	}
}

// Auto reports whether automated budget management is enabled.
func (c *Campaign) Auto() bool { return c.AutoEnabled == nil || *c.AutoEnabled }

// PctUsed returns the fraction of the daily budget consumed today.
func (c *Campaign) PctUsed() float64 {
	if c.DailyBudget <= 0 {
		return 0
	}
	return c.SpentToday / c.DailyBudget
}

func boolPtr(b bool) *bool { return &b }
