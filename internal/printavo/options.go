package printavo

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures optional Client settings.
type Option func(*options) error

// options holds optional configuration for creating a Client.
type options struct {
	// baseURL is the GraphQL endpoint URL.
	baseURL string

	// customerPageSize is the page size for customer queries.
	customerPageSize int

	// httpClient is a custom HTTP client.
	httpClient *http.Client

	// maxAttempts bounds retries of a single request.
	maxAttempts int

	// orderPageSize is the page size for order queries.
	orderPageSize int

	// requestDelay is the minimum interval between consecutive requests.
	requestDelay time.Duration

	// retryBase is the base backoff delay.
	retryBase time.Duration

	// timeout is the HTTP client timeout.
	timeout time.Duration
}

// WithBaseURL sets a custom GraphQL endpoint URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) error {
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}
		o.baseURL = baseURL
		return nil
	}
}

// WithCustomerPageSize sets the page size for customer queries.
func WithCustomerPageSize(size int) Option {
	return func(o *options) error {
		if size <= 0 {
			return fmt.Errorf("customer page size must be positive, got %d", size)
		}
		o.customerPageSize = size
		return nil
	}
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

// WithMaxAttempts sets the retry ceiling for a single request.
func WithMaxAttempts(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max attempts must be positive, got %d", n)
		}
		o.maxAttempts = n
		return nil
	}
}

// WithOrderPageSize sets the page size for order queries.
func WithOrderPageSize(size int) Option {
	return func(o *options) error {
		if size <= 0 {
			return fmt.Errorf("order page size must be positive, got %d", size)
		}
		o.orderPageSize = size
		return nil
	}
}

// WithRequestDelay sets the minimum interval between consecutive requests.
func WithRequestDelay(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("request delay cannot be negative, got %v", d)
		}
		o.requestDelay = d
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

// defaultOptions returns options with sensible defaults. The request delay
// comes from Printavo's documented ceiling of 10 requests per 5 seconds.
func defaultOptions() *options {
	return &options{
		baseURL:          "https://www.printavo.com/api/v2/graphql",
		customerPageSize: defaultCustomerPageSize,
		maxAttempts:      3,
		orderPageSize:    defaultOrderPageSize,
		requestDelay:     600 * time.Millisecond,
		retryBase:        time.Second,
		timeout:          30 * time.Second,
	}
}
