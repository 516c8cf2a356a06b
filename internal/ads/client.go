package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Endpoints holds the platform paths, relative to BaseURL. Empty paths mean
// that call is unavailable and returns ErrNotConfigured.
type Endpoints struct {
	UserInfo     string
	Balance      string
	CampaignList string
	SetBudget    string
	Pause        string
	Resume       string
}

// Client implements API against the platform's seller HTTP API. Credentials
// are raw cookie strings; the CSRF token is lifted from the cookie itself.
type Client struct {
	BaseURL   string
	Endpoints Endpoints
	Client    *http.Client
}

// NewClient creates an ads API client with optional proxy support.
func NewClient(baseURL string, endpoints Endpoints, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Endpoints: endpoints,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

// envelope is the platform's standard response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) ok() bool { return e.Code == 0 || e.Success }

func parseCookies(credential string) map[string]string {
	cookies := map[string]string{}
	for _, part := range strings.Split(credential, ";") {
		if k, v, found := strings.Cut(strings.TrimSpace(part), "="); found {
			cookies[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return cookies
}

func (c *Client) newRequest(ctx context.Context, method, path, credential string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	cookies := parseCookies(credential)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", credential)
	req.Header.Set("x-csrftoken", cookies["csrftoken"])
	return req, nil
}

func (c *Client) call(ctx context.Context, method, path, credential string, body any) (envelope, error) {
	req, err := c.newRequest(ctx, method, path, credential, body)
	if err != nil {
		return envelope{}, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return envelope{}, fmt.Errorf("%s %s: status %d, body: %s", method, path, resp.StatusCode, string(respBody))
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// Non-JSON responses are treated as failure, not a crash.
		return envelope{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return env, nil
}

func (c *Client) VerifyAuth(ctx context.Context, credential string) (string, error) {
	if c.Endpoints.UserInfo == "" {
		return "", ErrNotConfigured
	}
	env, err := c.call(ctx, http.MethodGet, c.Endpoints.UserInfo, credential, nil)
	if err != nil {
		return "", err
	}
	var info struct {
		UserName string `json:"userName"`
		Name     string `json:"name"`
	}
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &info) != nil {
		return "", fmt.Errorf("verify auth: no account data")
	}
	if info.UserName != "" {
		return info.UserName, nil
	}
	if info.Name != "" {
		return info.Name, nil
	}
	return "", fmt.Errorf("verify auth: no account data")
}

func (c *Client) Balance(ctx context.Context, credential string) (float64, error) {
	if c.Endpoints.Balance == "" {
		return 0, ErrNotConfigured
	}
	env, err := c.call(ctx, http.MethodGet, c.Endpoints.Balance, credential, nil)
	if err != nil {
		return 0, err
	}
	var amount float64
	if err := json.Unmarshal(env.Data, &amount); err != nil {
		return 0, fmt.Errorf("decode balance: %w", err)
	}
	return amount, nil
}

func (c *Client) Campaigns(ctx context.Context, credential string) ([]CampaignStats, error) {
	if c.Endpoints.CampaignList == "" {
		return nil, ErrNotConfigured
	}
	env, err := c.call(ctx, http.MethodGet, c.Endpoints.CampaignList+"?page=1&pageSize=100", credential, nil)
	if err != nil {
		return nil, err
	}
	// The list arrives either wrapped in {"list": [...]} or bare.
	var wrapped struct {
		List []CampaignStats `json:"list"`
	}
	if err := json.Unmarshal(env.Data, &wrapped); err == nil && wrapped.List != nil {
		return wrapped.List, nil
	}
	var bare []CampaignStats
	if err := json.Unmarshal(env.Data, &bare); err != nil {
		return nil, fmt.Errorf("decode campaign list: %w", err)
	}
	return bare, nil
}

func (c *Client) SetBudget(ctx context.Context, credential, campaignID string, amount float64) error {
	if c.Endpoints.SetBudget == "" {
		return ErrNotConfigured
	}
	payload := map[string]any{
		"campaignId":  campaignID,
		"dailyBudget": amount,
	}
	env, err := c.call(ctx, http.MethodPost, c.Endpoints.SetBudget, credential, payload)
	if err != nil {
		return err
	}
	if !env.ok() {
		return fmt.Errorf("set budget rejected: code=%d message=%q", env.Code, env.Message)
	}
	return nil
}

func (c *Client) Pause(ctx context.Context, credential, campaignID string) error {
	return c.toggle(ctx, c.Endpoints.Pause, "pause", credential, campaignID)
}

func (c *Client) Resume(ctx context.Context, credential, campaignID string) error {
	return c.toggle(ctx, c.Endpoints.Resume, "resume", credential, campaignID)
}

func (c *Client) toggle(ctx context.Context, path, name, credential, campaignID string) error {
	if path == "" {
		return ErrNotConfigured
	}
	env, err := c.call(ctx, http.MethodPost, path, credential, map[string]any{"campaignId": campaignID})
	if err != nil {
		return err
	}
	if !env.ok() {
		return fmt.Errorf("%s rejected: code=%d message=%q", name, env.Code, env.Message)
	}
	return nil
}
