// Package directory maps channel names to platform credentials. The source
// is a published CSV sheet maintained by the operators; lookups are
// case-insensitive and the table is refreshed periodically.
package directory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one channel row from the sheet.
type Entry struct {
	Name       string
	Credential string
}

// Directory is a refreshable channel -> credential table.
type Directory struct {
	mu     sync.RWMutex
	csvURL string
	client *http.Client
	byName map[string]Entry // keyed by lower-cased name
}

// New creates a directory that loads from the given CSV export URL, with
// optional proxy support. Call Refresh before first use.
func New(csvURL, proxyURL string) *Directory {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Directory{
		csvURL: csvURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		byName: map[string]Entry{},
	}
}

// Refresh downloads and re-parses the sheet, replacing the table on success.
// On failure the previous table stays in place.
func (d *Directory) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.csvURL, nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch directory: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch directory: status %d", resp.StatusCode)
	}

	entries, err := Parse(resp.Body)
	if err != nil {
		return err
	}

	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[strings.ToLower(e.Name)] = e
	}

	d.mu.Lock()
	d.byName = byName
	d.mu.Unlock()

	log.Printf("[INFO] directory refreshed: %d channels", len(byName))
	return nil
}

// Parse reads sheet CSV. The header row is located by scanning for a row
// containing both "name" and "cookie" cells (the sheet carries preamble rows
// above it); every later row with a non-empty name becomes an entry.
func Parse(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse directory csv: %w", err)
	}

	nameCol, credCol := -1, -1
	headerRow := -1
	for i, row := range rows {
		for j, cell := range row {
			switch strings.TrimSpace(cell) {
			case "name":
				nameCol = j
			case "cookie":
				credCol = j
			}
		}
		if nameCol >= 0 && credCol >= 0 {
			headerRow = i
			break
		}
		nameCol, credCol = -1, -1
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("parse directory csv: name/cookie columns not found")
	}

	var entries []Entry
	for _, row := range rows[headerRow+1:] {
		if nameCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			continue
		}
		cred := ""
		if credCol < len(row) {
			cred = strings.TrimSpace(row[credCol])
		}
		entries = append(entries, Entry{Name: name, Credential: cred})
	}
	return entries, nil
}

// Credential returns the credential for a channel, matched
// case-insensitively. The second return value reports whether the channel
// exists with a non-empty credential.
func (d *Directory) Credential(channel string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.byName[strings.ToLower(strings.TrimSpace(channel))]
	if !ok || e.Credential == "" {
		return "", false
	}
	return e.Credential, true
}

// Names returns all known channel names, sorted.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.byName))
	for _, e := range d.byName {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of known channels.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byName)
}
