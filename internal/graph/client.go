// Package graph provides the client for the relationship-graph backend: the
// external collaborator that indexes people by free-text company name and
// returns connection-strength records.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/prospect-scout/internal/types"
)

// Backend is the capability the scoring engine depends on. Implementations
// must treat zero results as a normal outcome, not an error.
type Backend interface {
	QueryConnections(ctx context.Context, searchTerm string, size int) ([]types.ConnectionRecord, error)
}

// DefaultQuerySize bounds how many profiles one lookup requests.
const DefaultQuerySize = 25

// Retry discipline for transient failures: bounded exponential backoff with
// a small ceiling, never an unbounded loop and never an immediate hard fail.
const (
	maxAttempts   = 3
	retryBaseWait = 500 * time.Millisecond
)

// Config configures the HTTP graph client.
type Config struct {
	BaseURL string
	APIKey  string
	// MinInterval spaces successive calls to respect the collaborator's
	// request budget. Zero disables pacing (useful in tests).
	MinInterval time.Duration
	// Timeout for a single HTTP request. Zero means 30s.
	Timeout time.Duration
}

// Client is the HTTP implementation of Backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient validates the configuration and builds a client. A missing base
// URL or API key is a fatal configuration error surfaced before any run work
// starts.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("graph backend base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("graph backend API key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}, nil
}

// BackendError is a non-transient failure reported by the graph backend itself.
type BackendError struct {
	Status  string
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("graph backend error (%s): %s", e.Status, e.Message)
}

// TransientError is a retryable failure (rate limit, timeout, 5xx) that
// survived the retry ceiling. Runs count these per-item and continue.
type TransientError struct {
	StatusCode int
	Attempts   int
	Cause      error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("graph backend unavailable after %d attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("graph backend unavailable after %d attempts (last status %d)", e.Attempts, e.StatusCode)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// queryResponse is the backend envelope. Responses are parsed into this
// strict shape and handled exhaustively by status, rather than trusting
// optional-field access chains.
type queryResponse struct {
	Status   string          `json:"status"` // "ok" | "partial" | "error"
	Profiles []profileResult `json:"profiles"`
	Error    string          `json:"error,omitempty"`
}

type profileResult struct {
	Person      string             `json:"person"`
	Title       string             `json:"title,omitempty"`
	Connections []connectionResult `json:"connections"`
}

type connectionResult struct {
	Connector string  `json:"connector"`
	Strength  float64 `json:"strength"`
	Origin    string  `json:"origin"`
	Detail    string  `json:"detail,omitempty"`
}

// QueryConnections looks up connection records for a search term. Transient
// upstream failures are retried with exponential backoff up to the attempt
// ceiling; an empty result set is returned as (nil, nil).
func (c *Client) QueryConnections(ctx context.Context, searchTerm string, size int) ([]types.ConnectionRecord, error) {
	if searchTerm == "" {
		return nil, nil
	}
	if size <= 0 {
		size = DefaultQuerySize
	}

	endpoint := fmt.Sprintf("%s/v1/connections?q=%s&size=%s",
		c.baseURL, url.QueryEscape(searchTerm), strconv.Itoa(size))

	var lastStatus int
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		records, status, err := c.doQuery(ctx, endpoint)
		if err == nil {
			return records, nil
		}
		if !isTransientStatus(status) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastStatus, lastErr = status, err
	}

	return nil, &TransientError{StatusCode: lastStatus, Attempts: maxAttempts, Cause: lastErr}
}

// doQuery performs one HTTP round trip. The returned status is 0 for
// non-HTTP failures (treated as transient).
func (c *Client) doQuery(ctx context.Context, endpoint string) ([]types.ConnectionRecord, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to create graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("graph request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, fmt.Errorf("graph backend returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, -1, fmt.Errorf("failed to decode graph response: %w", err)
	}

	switch envelope.Status {
	case "ok", "partial":
		// A partial result is still usable; the caller sees whatever
		// records came back.
		return flatten(envelope.Profiles), resp.StatusCode, nil
	case "error":
		return nil, -1, &BackendError{Status: envelope.Status, Message: envelope.Error}
	default:
		return nil, -1, fmt.Errorf("graph backend returned unknown status %q", envelope.Status)
	}
}

func flatten(profiles []profileResult) []types.ConnectionRecord {
	var out []types.ConnectionRecord
	for _, p := range profiles {
		if p.Person == "" {
			continue
		}
		for _, conn := range p.Connections {
			if conn.Connector == "" || conn.Strength < 0 || conn.Strength > 1 {
				continue
			}
			out = append(out, types.ConnectionRecord{
				ConnectorName: conn.Connector,
				TargetPerson:  p.Person,
				TargetTitle:   p.Title,
				Strength:      conn.Strength,
				Origin:        types.ConnectionOrigin(conn.Origin),
				Detail:        conn.Detail,
			})
		}
	}
	return out
}

func isTransientStatus(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}
