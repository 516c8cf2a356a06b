package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"AdsPilot/internal/model"
)

// MemoryStore is an in-memory Store used by tests and offline runs. Records
// are held as raw JSON objects so field merges behave like the remote store.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]map[string]any
	live      map[string]model.LiveMetrics
	snapshots map[string]map[string]model.Snapshot
	actionLog map[string]model.ActionLogEntry
	metadata  map[string]any
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns: map[string]map[string]any{},
		live:      map[string]model.LiveMetrics{},
		snapshots: map[string]map[string]model.Snapshot{},
		actionLog: map[string]model.ActionLogEntry{},
		metadata:  map[string]any{},
	}
}

// SeedCampaign stores a campaign record, replacing any existing one.
func (s *MemoryStore) SeedCampaign(id string, c model.Campaign) error {
	raw, err := toRaw(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[id] = raw
	return nil
}

// SeedLive stores a live-metrics record under the given key.
func (s *MemoryStore) SeedLive(key string, l model.LiveMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[key] = l
}

func (s *MemoryStore) Campaigns(_ context.Context) (map[string]model.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Campaign, len(s.campaigns))
	for id, raw := range s.campaigns {
		var c model.Campaign
		if err := fromRaw(raw, &c); err != nil {
			return nil, fmt.Errorf("campaign %s: %w", id, err)
		}
		out[id] = c
	}
	return out, nil
}

func (s *MemoryStore) UpdateCampaign(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.campaigns[id]
	if !ok {
		raw = map[string]any{}
		s.campaigns[id] = raw
	}
	for k, v := range fields {
		raw[k] = v
	}
	return nil
}

func (s *MemoryStore) LiveMetrics(_ context.Context) (map[string]model.LiveMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.LiveMetrics, len(s.live))
	for k, v := range s.live {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Snapshots(_ context.Context) (map[string]map[string]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]model.Snapshot, len(s.snapshots))
	for id, series := range s.snapshots {
		cp := make(map[string]model.Snapshot, len(series))
		for ts, snap := range series {
			cp[ts] = snap
		}
		out[id] = cp
	}
	return out, nil
}

func (s *MemoryStore) WriteSnapshot(_ context.Context, campaignID string, ts int64, snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	series, ok := s.snapshots[campaignID]
	if !ok {
		series = map[string]model.Snapshot{}
		s.snapshots[campaignID] = series
	}
	series[strconv.FormatInt(ts, 10)] = snap
	return nil
}

func (s *MemoryStore) DeleteSnapshot(_ context.Context, campaignID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if series, ok := s.snapshots[campaignID]; ok {
		delete(series, key)
	}
	return nil
}

func (s *MemoryStore) AppendActionLog(_ context.Context, entry model.ActionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionLog[uuid.NewString()] = entry
	return nil
}

// ActionLog returns a copy of the appended log entries, for tests.
func (s *MemoryStore) ActionLog() []model.ActionLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ActionLogEntry, 0, len(s.actionLog))
	for _, e := range s.actionLog {
		out = append(out, e)
	}
	return out
}

func (s *MemoryStore) Metadata(_ context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) UpdateMetadata(_ context.Context, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		s.metadata[k] = v
	}
	return nil
}

func toRaw(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func fromRaw(raw map[string]any, into any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, into)
}
