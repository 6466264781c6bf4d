package tier1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"btcreport/internal/ratelimit"
)

const userAgent = "btc-data-tier1/1.0"

// SourceError represents a failure from one upstream source
type SourceError struct {
	Source    string
	Err       error
	Retryable bool
}

func (e *SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Client performs the HTTP fetches shared by all tier-1 sources, pacing
// each source with its own limiter.
type Client struct {
	http     *http.Client
	limiters *ratelimit.MultiLimiter

	coinbaseBase string
	yahooBase    string
	okxBase      string
}

// NewClient creates a client for the public market endpoints.
// perMinute caps the request rate against each source independently.
func NewClient(timeout time.Duration, perMinute int) *Client {
	limiters := ratelimit.NewMultiLimiter()
	for _, source := range []string{"coinbase", "yahoo", "okx"} {
		limiters.Add(source, perMinute)
	}

	return &Client{
		http:         &http.Client{Timeout: timeout},
		limiters:     limiters,
		coinbaseBase: "https://api.coinbase.com",
		yahooBase:    "https://query1.finance.yahoo.com",
		okxBase:      "https://www.okx.com",
	}
}

// getJSON fetches url and decodes the body into typed when non-nil. The
// returned value is the same body decoded as a plain tree, kept so the
// snapshot can embed the upstream payload under its raw key.
func (c *Client) getJSON(ctx context.Context, source, url string, typed any) (any, error) {
	if err := c.limiters.Wait(ctx, source); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SourceError{Source: source, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &SourceError{Source: source, Err: fmt.Errorf("rate limited"), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{Source: source, Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceError{Source: source, Err: err, Retryable: true}
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &SourceError{Source: source, Err: fmt.Errorf("decoding response: %w", err), Retryable: false}
	}
	if typed != nil {
		if err := json.Unmarshal(body, typed); err != nil {
			return nil, &SourceError{Source: source, Err: fmt.Errorf("decoding response: %w", err), Retryable: false}
		}
	}
	return raw, nil
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
