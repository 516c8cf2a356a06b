package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"AdsPilot/internal/model"
)

// RTDBStore talks to a Firebase-RTDB-style REST store: JSON documents
// addressed by path, with GET/PUT/PATCH/POST/DELETE on "{base}/{path}.json".
type RTDBStore struct {
	BaseURL   string
	RootPath  string // e.g. "ads_monitor"
	LivePath  string // collaborator-owned, read-only, e.g. "live_metrics"
	AuthToken string
	Client    *http.Client
}

// NewRTDBStore creates a store client with a bounded per-call timeout and
// optional proxy support.
func NewRTDBStore(baseURL, rootPath, livePath, authToken, proxyURL string) *RTDBStore {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RTDBStore{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		RootPath:  strings.Trim(rootPath, "/"),
		LivePath:  strings.Trim(livePath, "/"),
		AuthToken: authToken,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (s *RTDBStore) endpoint(path string) string {
	u := s.BaseURL + "/" + strings.Trim(path, "/") + ".json"
	if s.AuthToken != "" {
		u += "?auth=" + url.QueryEscape(s.AuthToken)
	}
	return u
}

func (s *RTDBStore) do(ctx context.Context, method, path string, body, into any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d, body: %s", method, path, resp.StatusCode, string(respBody))
	}
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

func (s *RTDBStore) Campaigns(ctx context.Context) (map[string]model.Campaign, error) {
	var out map[string]model.Campaign
	if err := s.do(ctx, http.MethodGet, s.RootPath+"/campaigns", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]model.Campaign{}
	}
	return out, nil
}

func (s *RTDBStore) UpdateCampaign(ctx context.Context, id string, fields map[string]any) error {
	return s.do(ctx, http.MethodPatch, s.RootPath+"/campaigns/"+id, fields, nil)
}

func (s *RTDBStore) LiveMetrics(ctx context.Context) (map[string]model.LiveMetrics, error) {
	var out map[string]model.LiveMetrics
	if err := s.do(ctx, http.MethodGet, s.LivePath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]model.LiveMetrics{}
	}
	return out, nil
}

func (s *RTDBStore) Snapshots(ctx context.Context) (map[string]map[string]model.Snapshot, error) {
	var out map[string]map[string]model.Snapshot
	if err := s.do(ctx, http.MethodGet, s.RootPath+"/snapshots", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]map[string]model.Snapshot{}
	}
	return out, nil
}

func (s *RTDBStore) WriteSnapshot(ctx context.Context, campaignID string, ts int64, snap model.Snapshot) error {
	key := strconv.FormatInt(ts, 10)
	return s.do(ctx, http.MethodPut, s.RootPath+"/snapshots/"+campaignID+"/"+key, snap, nil)
}

func (s *RTDBStore) DeleteSnapshot(ctx context.Context, campaignID, key string) error {
	return s.do(ctx, http.MethodDelete, s.RootPath+"/snapshots/"+campaignID+"/"+key, nil, nil)
}

func (s *RTDBStore) AppendActionLog(ctx context.Context, entry model.ActionLogEntry) error {
	// POST generates a server-side push key, keeping the log append-only.
	return s.do(ctx, http.MethodPost, s.RootPath+"/action_log", entry, nil)
}

func (s *RTDBStore) Metadata(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.do(ctx, http.MethodGet, s.RootPath+"/metadata", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func (s *RTDBStore) UpdateMetadata(ctx context.Context, fields map[string]any) error {
	return s.do(ctx, http.MethodPatch, s.RootPath+"/metadata", fields, nil)
}
