// Package fx converts amounts between currencies using a public
// exchange-rate service and flags large rate moves between fetches.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrRateUnavailable     = errors.New("rate unavailable")
)

// Rates is the body of GET /latest/{base}: multipliers from Base to each
// listed currency.
type Rates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Rate returns the multiplier from r.Base to code.
func (r Rates) Rate(code string) (float64, error) {
	v, ok := r.Rates[code]
	if !ok || v <= 0 {
		return 0, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, r.Base, code)
	}
	return v, nil
}

// RateSource is what the converter needs from a rate provider.
type RateSource interface {
	Latest(ctx context.Context, base string) (Rates, error)
}

// Client talks to an exchangerate-api compatible service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL, e.g.
// "https://api.exchangerate-api.com/v4".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Latest fetches the current rates for base. Failures are never retried.
func (c *Client) Latest(ctx context.Context, base string) (Rates, error) {
	endpoint := c.baseURL + "/latest/" + url.PathEscape(base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Rates{}, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rates{}, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Rates{}, fmt.Errorf("fetch rates for %s: unexpected status %d: %s", base, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var rates Rates
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return Rates{}, fmt.Errorf("decode rates for %s: %w", base, err)
	}
	if len(rates.Rates) == 0 {
		return Rates{}, fmt.Errorf("decode rates for %s: %w: empty rate table", base, ErrRateUnavailable)
	}
	if rates.Base == "" {
		rates.Base = base
	}
	return rates, nil
}
