package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
)

// maxFileSize bounds a single fetched listing
const maxFileSize = 1 << 20

// StatusError is returned for unexpected HTTP status codes
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

// HTTPConfig holds configuration for the HTTP fetcher
type HTTPConfig struct {
	// BaseURL is the URL of the exercise tree root
	BaseURL string

	// MaxConcurrent for bulkhead (default: 8)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 20)
	RatePerSecond int

	// MaxAttempts for retry on 429/5xx (default: 3)
	MaxAttempts int

	// Client overrides the default HTTP client
	Client *http.Client

	// Logger for resilience events
	Logger *slog.Logger
}

// HTTPFetcher retrieves exercise files from a static web server
type HTTPFetcher struct {
	baseURL        string
	client         *http.Client
	circuitBreaker circuitbreaker.CircuitBreaker[string]
	retrier        retry.Retry[string]
	bulkhead       bulkhead.Bulkhead[string]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
}

// NewHTTPFetcher creates a fetcher wrapped with fortify resilience patterns
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.Client
	if client == nil {
		client = newHTTPClient()
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	rate := cfg.RatePerSecond
	if rate <= 0 {
		rate = 20
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	f := &HTTPFetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  logger,
	}

	f.circuitBreaker = circuitbreaker.New[string](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				"base_url", f.baseURL,
				"from", from.String(),
				"to", to.String())
		},
	})

	f.retrier = retry.New[string](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})

	f.bulkhead = bulkhead.New[string](bulkhead.Config{
		MaxConcurrent: maxConcurrent,
		MaxQueue:      maxConcurrent * 4,
		QueueTimeout:  10 * time.Second,
	})

	f.rateLimit = ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    rate * 2,
		Interval: time.Second,
	})

	return f
}

// Fetch downloads the file at p relative to the base URL.
// A 404 is reported as ErrNotFound and never trips the breaker.
func (f *HTTPFetcher) Fetch(ctx context.Context, p string) (string, error) {
	if !f.rateLimit.Allow(ctx, f.baseURL) {
		return "", fmt.Errorf("rate limit exceeded for %s", f.baseURL)
	}

	url := f.baseURL + "/" + strings.TrimLeft(p, "/")

	var notFound bool
	body, err := f.circuitBreaker.Execute(ctx, func(ctx context.Context) (string, error) {
		return f.retrier.Do(ctx, func(ctx context.Context) (string, error) {
			return f.bulkhead.Execute(ctx, func(ctx context.Context) (string, error) {
				body, status, err := f.get(ctx, url)
				if err != nil {
					return "", err
				}
				if status == http.StatusNotFound {
					notFound = true
					return "", nil
				}
				if status != http.StatusOK {
					return "", &StatusError{URL: url, Status: status}
				}
				return body, nil
			})
		})
	})
	if err != nil {
		return "", err
	}
	if notFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return body, nil
}

// Close releases resources held by the fetcher
func (f *HTTPFetcher) Close() error {
	return f.rateLimit.Close()
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return string(data), resp.StatusCode, nil
}

func isRetryable(err error) bool {
	se, ok := err.(*StatusError)
	if !ok {
		return false
	}
	switch se.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
	}

	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
