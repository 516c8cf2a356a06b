// Package ads is the remote advertising platform capability. The platform is
// a collaborator: every call is single-attempt and timeout-bounded, and the
// caller treats failures as transient. A nil API means the capability is
// absent; ErrNotConfigured means one endpoint is absent.
package ads

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned when the endpoint for a call is not set.
var ErrNotConfigured = errors.New("ads: endpoint not configured")

// CampaignStats is the per-campaign reading the platform reports. Alternate
// field names cover the two response shapes seen in the wild.
type CampaignStats struct {
	ChannelName    string  `json:"channelName"`
	Username       string  `json:"username"`
	Cost           float64 `json:"cost"`
	Spend          float64 `json:"spend"`
	ROAS           float64 `json:"roas"`
	Balance        float64 `json:"balance"`
	Credit         float64 `json:"credit"`
	Visits         int     `json:"visits"`
	Impressions    int     `json:"impressions"`
	ConversionRate float64 `json:"conversionRate"`
}

// Name returns the channel name, whichever field carried it.
func (c CampaignStats) Name() string {
	if c.ChannelName != "" {
		return c.ChannelName
	}
	return c.Username
}

// NameKey returns the lower-cased join key for channel matching.
func (c CampaignStats) NameKey() string { return strings.ToLower(c.Name()) }

// CostValue returns today's spend, whichever field carried it.
func (c CampaignStats) CostValue() float64 {
	if c.Cost != 0 {
		return c.Cost
	}
	return c.Spend
}

// CreditValue returns the remaining ad credit, whichever field carried it.
func (c CampaignStats) CreditValue() float64 {
	if c.Balance != 0 {
		return c.Balance
	}
	return c.Credit
}

// VisitCount returns the traffic counter, whichever field carried it.
func (c CampaignStats) VisitCount() int {
	if c.Visits != 0 {
		return c.Visits
	}
	return c.Impressions
}

// API is the remote ads platform method set. Credentials are opaque strings
// resolved per channel by the directory collaborator.
type API interface {
	// VerifyAuth checks a credential and returns the account display name.
	VerifyAuth(ctx context.Context, credential string) (string, error)

	// Balance returns the remaining ads credit for the account.
	Balance(ctx context.Context, credential string) (float64, error)

	// Campaigns lists the account's campaigns with current metrics.
	Campaigns(ctx context.Context, credential string) ([]CampaignStats, error)

	// SetBudget sets a campaign's daily budget.
	SetBudget(ctx context.Context, credential, campaignID string, amount float64) error

	// Pause stops a campaign.
	Pause(ctx context.Context, credential, campaignID string) error

	// Resume restarts a paused campaign.
	Resume(ctx context.Context, credential, campaignID string) error
}
