// Package backup talks to the sync gateway and schedules debounced pushes.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoBackup is returned by Pull when the gateway holds no document.
	ErrNoBackup = errors.New("backup: no backup file")
	// ErrNotConfigured is returned when no gateway URL is set.
	ErrNotConfigured = errors.New("backup: gateway url not configured")
)

// GatewayError carries a non-2xx gateway answer.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backup: gateway returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backup: gateway returned %d: %s", e.StatusCode, e.Body)
}

// Envelope is the stored backup document.
type Envelope struct {
	Site string          `json:"site"`
	When string          `json:"when"`
	Data json.RawMessage `json:"data"`
}

type pushResponse struct {
	OK     bool   `json:"ok"`
	GistID string `json:"gistId"`
}

// Client pushes and pulls backup documents through the gateway.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a client for the gateway at baseURL. A zero timeout
// falls back to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP lets tests inject their own transport.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Push sends data for site. The returned blob ID is only set when the
// gateway created a new blob.
func (c *Client) Push(ctx context.Context, site string, data json.RawMessage, when time.Time) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	raw, err := json.Marshal(Envelope{Site: site, When: when.UTC().Format(time.RFC3339Nano), Data: data})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/backup", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("backup: push: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out pushResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("backup: decode push response: %w", err)
	}
	return out.GistID, nil
}

// Pull fetches the stored document.
func (c *Client) Pull(ctx context.Context) (Envelope, error) {
	if c.baseURL == "" {
		return Envelope{}, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/restore", nil)
	if err != nil {
		return Envelope{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("backup: pull: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, fmt.Errorf("backup: read restore response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Envelope{}, ErrNoBackup
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Envelope{}, &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("backup: decode backup document: %w", err)
	}
	return env, nil
}
