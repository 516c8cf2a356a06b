// Package store provides access to the shared state store that holds
// campaigns, snapshots, the action log and run metadata. The store is the
// source of truth; the remote ads platform is reconciled best-effort.
package store

import (
	"context"
	"errors"

	"AdsPilot/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the shared state store capability. All calls are bounded by the
// implementation's own timeout; errors are transient unless documented.
type Store interface {
	// Campaigns returns all managed campaigns keyed by campaign id.
	// Records are raw as stored; callers normalize.
	Campaigns(ctx context.Context) (map[string]model.Campaign, error)

	// UpdateCampaign merges fields into one campaign record.
	UpdateCampaign(ctx context.Context, id string, fields map[string]any) error

	// LiveMetrics returns the collaborator-owned live channel metrics,
	// keyed by the collaborator's own record key.
	LiveMetrics(ctx context.Context) (map[string]model.LiveMetrics, error)

	// Snapshots returns every campaign's snapshot series, keyed by
	// campaign id then epoch-millisecond timestamp string.
	Snapshots(ctx context.Context) (map[string]map[string]model.Snapshot, error)

	// WriteSnapshot appends one snapshot under the given timestamp.
	WriteSnapshot(ctx context.Context, campaignID string, ts int64, snap model.Snapshot) error

	// DeleteSnapshot removes a single snapshot by its timestamp key.
	DeleteSnapshot(ctx context.Context, campaignID, key string) error

	// AppendActionLog pushes one entry onto the append-only action log.
	AppendActionLog(ctx context.Context, entry model.ActionLogEntry) error

	// Metadata returns the run metadata record.
	Metadata(ctx context.Context) (map[string]any, error)

	// UpdateMetadata merges fields into the run metadata record.
	UpdateMetadata(ctx context.Context, fields map[string]any) error
}
