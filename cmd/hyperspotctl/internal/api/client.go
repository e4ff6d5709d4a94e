// Package api is hyperspotctl's HTTP client for a running hyperspotd
// instance (spec.md SPEC_FULL.md §2 expansion, "cmd/hyperspotctl"): a thin
// read-only wrapper over GET /health and GET /openapi.json, grounded on
// sentinel-tui-go's own api.Client shape (one method per endpoint, each
// returning a typed struct plus an error for the UI layer's Update to
// branch on). It never touches the in-process module registry — it is a
// client of the wire surface, nothing more.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Client talks to one hyperspotd instance's base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL (e.g. "http://127.0.0.1:8087").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Health is the wire shape of GET /health.
type Health struct {
	Status    string `json:"status" msgpack:"status"`
	Timestamp string `json:"timestamp" msgpack:"timestamp"`
}

// Operation is the subset of pkg/openapi.Operation hyperspotctl renders.
type Operation struct {
	OperationID string   `json:"operationId" msgpack:"operation_id"`
	Summary     string   `json:"summary" msgpack:"summary"`
	Tags        []string `json:"tags" msgpack:"tags"`
}

// Document is the subset of pkg/openapi.Document hyperspotctl renders: a
// per-method map keyed by path, enough to derive module/route counts
// without importing the server's own openapi package.
type Document struct {
	Info struct {
		Title   string `json:"title" msgpack:"title"`
		Version string `json:"version" msgpack:"version"`
	} `json:"info" msgpack:"info"`
	Paths map[string]map[string]Operation `json:"paths" msgpack:"paths"`
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("hyperspotctl: building request for %s: %w", path, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hyperspotctl: fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hyperspotctl: %s returned %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hyperspotctl: decoding %s: %w", path, err)
	}
	return nil
}

// FetchHealth calls GET /health.
func (c *Client) FetchHealth(ctx context.Context) (Health, error) {
	var h Health
	err := c.get(ctx, "/health", &h)
	return h, err
}

// FetchOpenAPIDocument calls GET /openapi.json.
func (c *Client) FetchOpenAPIDocument(ctx context.Context) (Document, error) {
	var doc Document
	err := c.get(ctx, "/openapi.json", &doc)
	return doc, err
}

// RouteCount returns the total number of method-on-path operations in doc.
func (d Document) RouteCount() int {
	n := 0
	for _, methods := range d.Paths {
		n += len(methods)
	}
	return n
}

// Tags returns the distinct set of tags (hyperspotctl's stand-in for
// "modules", since the wire document has no module field of its own) found
// across every operation, sorted for stable rendering.
func (d Document) Tags() []string {
	seen := make(map[string]struct{})
	for _, methods := range d.Paths {
		for _, op := range methods {
			for _, tag := range op.Tags {
				seen[tag] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
