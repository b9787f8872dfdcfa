// Package dashboard queries the tracking summary API on behalf of an operator.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sitepulse/api/models"
)

const summaryPath = "/api/tracking/summary"

var ErrUnauthorized = errors.New("dashboard: not authorized")

// Range selects the summary window. Either Days or From/To (YYYY-MM-DD) is set;
// the zero Range lets the server apply its default.
type Range struct {
	Days int
	From string
	To   string
}

func (r Range) query() url.Values {
	q := url.Values{}
	if r.Days > 0 {
		q.Set("days", strconv.Itoa(r.Days))
	}
	if r.From != "" {
		q.Set("from", r.From)
	}
	if r.To != "" {
		q.Set("to", r.To)
	}
	return q
}

func (r Range) String() string {
	if r.From != "" || r.To != "" {
		return r.From + ".." + r.To
	}
	if r.Days > 0 {
		return fmt.Sprintf("last %d days", r.Days)
	}
	return "default range"
}

// Client calls the summary endpoint. Token is sent as a bearer token; APIKey,
// when set, is sent in X-API-KEY instead.
type Client struct {
	baseURL    string
	token      string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Summary fetches the tracking summary for rng.
func (c *Client) Summary(ctx context.Context, rng Range) (models.TrackingSummary, error) {
	var summary models.TrackingSummary

	endpoint := c.baseURL + summaryPath
	if q := rng.query().Encode(); q != "" {
		endpoint += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	} else if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return summary, fmt.Errorf("summary request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return summary, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return summary, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		var apiErr models.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return summary, fmt.Errorf("summary request failed (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return summary, fmt.Errorf("summary request failed (status %d)", resp.StatusCode)
	}

	if err := json.Unmarshal(body, &summary); err != nil {
		return summary, fmt.Errorf("failed to decode summary: %w", err)
	}
	return summary, nil
}
