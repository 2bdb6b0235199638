package strapi

import (
	"fmt"
	"net/http"
	"time"
)

// Option configures optional Client settings.
type Option func(*options) error

// options holds optional configuration for creating a Client.
type options struct {
	// httpClient is a custom HTTP client.
	httpClient *http.Client

	// maxAttempts bounds retries of an upsert operation.
	maxAttempts int

	// retryBase is the base backoff delay.
	retryBase time.Duration

	// timeout is the HTTP client timeout.
	timeout time.Duration
}

// WithHTTPClient sets a custom HTTP client. Overrides WithTimeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) error {
		if httpClient == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		o.httpClient = httpClient
		return nil
	}
}

// WithMaxAttempts sets the retry ceiling for upsert operations.
func WithMaxAttempts(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max attempts must be positive, got %d", n)
		}
		o.maxAttempts = n
		return nil
	}
}

// WithRetryBase sets the base backoff delay, doubled on each retry attempt.
func WithRetryBase(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("retry base must be positive, got %v", d)
		}
		o.retryBase = d
		return nil
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() *options {
	return &options{
		maxAttempts: 3,
		retryBase:   time.Second,
		timeout:     30 * time.Second,
	}
}
