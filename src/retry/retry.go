package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ogri-la/wowhead-scraper-go/src/http"
)

// ErrAttemptsExhausted is returned when MaxAttempts is set and no attempt got a 200
var ErrAttemptsExhausted = errors.New("request attempts exhausted")

// Config holds throttling and retry configuration
type Config struct {
	// Delay is waited before every request, retries included. It is a floor, not a backoff.
	Delay time.Duration
	// MaxAttempts of zero retries until a 200 is seen.
	MaxAttempts int
	// MaxRetryAfter caps how long a Retry-After header can hold us up.
	MaxRetryAfter time.Duration
}

// DefaultConfig is polite to the source site and never gives up
func DefaultConfig() Config {
	return Config{
		Delay:         3 * time.Second,
		MaxAttempts:   0,
		MaxRetryAfter: 60 * time.Second,
	}
}

// shouldRetry determines if we should retry based on the response or error
func shouldRetry(resp *http.Response, err error) bool {
	// Network errors: retry
	if err != nil {
		return true
	}

	// 429 (rate limit): retry
	if resp.StatusCode == 429 {
		return true
	}

	// 5xx (server errors): retry
	if resp.StatusCode >= 500 {
		return true
	}

	// Everything else (2xx, 3xx, 4xx except 429): don't retry
	return false
}

// getRetryDelay is the fixed delay, or a longer Retry-After when a 429 asks for one
func getRetryDelay(resp *http.Response, config Config) time.Duration {
	delay := config.Delay
	if resp == nil || resp.StatusCode != 429 {
		return delay
	}

	retryAfter := resp.Headers["Retry-After"]
	seconds, err := strconv.Atoi(retryAfter)
	if err != nil || seconds <= 0 {
		return delay
	}

	requested := time.Duration(seconds) * time.Second
	if config.MaxRetryAfter > 0 && requested > config.MaxRetryAfter {
		requested = config.MaxRetryAfter
	}
	if requested > delay {
		return requested
	}
	return delay
}

// getRetryReason returns a human-readable reason for the retry
func getRetryReason(resp *http.Response, err error) string {
	if err != nil {
		return "network_error"
	}
	if resp.StatusCode == 429 {
		return "rate_limited"
	}
	if resp.StatusCode >= 500 {
		return "server_error"
	}
	return "unknown"
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithRetry performs a throttled GET, retrying network errors, 429s and 5xx responses.
// Other non-200 responses are returned as-is for the caller to interpret.
func WithRetry(ctx context.Context, client http.HTTPClient, url string, config Config) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response
	delay := config.Delay

	for attempt := 1; config.MaxAttempts <= 0 || attempt <= config.MaxAttempts; attempt++ {
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}

		if attempt > 1 {
			slog.Warn("retrying request", "url", url, "attempt", attempt, "max-attempts", config.MaxAttempts)
		}

		resp, err := client.Get(ctx, url)
		if err == nil && resp.StatusCode == 200 {
			return resp, nil
		}

		lastResp = resp
		lastErr = err

		if !shouldRetry(resp, err) {
			return resp, nil
		}

		delay = getRetryDelay(resp, config)
		slog.Info("backing off before retry", "url", url, "delay", delay, "reason", getRetryReason(resp, err))
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrAttemptsExhausted, url, config.MaxAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: last status %d", ErrAttemptsExhausted, url, config.MaxAttempts, lastResp.StatusCode)
}

// Fetcher is an http.HTTPClient that throttles and retries every request
type Fetcher struct {
	client http.HTTPClient
	config Config
}

// NewFetcher wraps client with WithRetry
func NewFetcher(client http.HTTPClient, config Config) *Fetcher {
	return &Fetcher{client: client, config: config}
}

// Get implements http.HTTPClient
func (f *Fetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	return WithRetry(ctx, f.client, url, f.config)
}
