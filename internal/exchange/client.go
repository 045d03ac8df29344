// Package exchange wraps the public latest-rates HTTP endpoint used to
// refresh the THB→HKD conversion rate.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.exchangerate-api.com/v4/latest"
	defaultTimeout = 8 * time.Second
)

// Client fetches latest exchange rates for a base currency.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient() *Client {
	return NewClientWith(defaultBaseURL, defaultTimeout)
}

// NewClientWithBaseURL points the client at an alternate endpoint, keeping
// the default timeout. Used by tests to stand in the upstream.
func NewClientWithBaseURL(baseURL string) *Client {
	return NewClientWith(baseURL, defaultTimeout)
}

// NewClientWith configures both the endpoint and the request timeout.
func NewClientWith(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Latest returns the rates mapping for the given base currency. Any non-200
// response, decode failure, or empty rates map is an error; the caller keeps
// its previous value.
func (c *Client) Latest(ctx context.Context, base string) (map[string]float64, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return nil, fmt.Errorf("invalid base currency")
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("User-Agent", "satang/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates endpoint http %d", resp.StatusCode)
	}

	var raw struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	if len(raw.Rates) == 0 {
		return nil, fmt.Errorf("rates not found in response")
	}
	return raw.Rates, nil
}
