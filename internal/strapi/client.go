package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StatusError is returned when the API responds with a non-success HTTP status.
type StatusError struct {
	// Body is the raw response body.
	Body string

	// Code is the HTTP status code.
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// retryable reports whether the status warrants another attempt. Validation
// rejections (400) and auth failures (401/403) never succeed on retry.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client is a Strapi REST API client.
type Client struct {
	// baseURL is the base URL for API requests.
	baseURL string

	// httpClient is the HTTP client for making requests.
	httpClient *http.Client

	// maxAttempts bounds retries of an upsert operation.
	maxAttempts int

	// retryBase is the base backoff delay, doubled on each attempt.
	retryBase time.Duration

	// token is the bearer token for authentication.
	token string
}

// NewClient creates a new Strapi API client.
func NewClient(baseURL string, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if token == "" {
		return nil, errors.New("API token is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		maxAttempts: o.maxAttempts,
		retryBase:   o.retryBase,
		token:       token,
	}, nil
}

// Upsert writes the record to the collection keyed by its external id,
// creating it if absent and updating the existing record otherwise. The whole
// lookup+write sequence is retried on transient failure, since either step
// may fail; re-running the same input never produces a duplicate.
func (c *Client) Upsert(ctx context.Context, collection string, externalID string, record any) (UpsertResult, error) {
	if externalID == "" {
		return UpsertResult{}, errors.New("external ID is required")
	}

	var lastErr error
	for attempt := range c.maxAttempts {
		if attempt > 0 {
			if err := sleep(ctx, c.retryBase*(1<<(attempt-1))); err != nil {
				return UpsertResult{}, err
			}
		}

		result, err := c.upsertOnce(ctx, collection, externalID, record)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return UpsertResult{}, err
		}
		if ctx.Err() != nil {
			return UpsertResult{}, err
		}
	}

	return UpsertResult{}, fmt.Errorf("upsert failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// upsertOnce performs a single lookup-before-write attempt.
func (c *Client) upsertOnce(ctx context.Context, collection string, externalID string, record any) (UpsertResult, error) {
	existing, err := c.FindByExternalID(ctx, collection, externalID)
	if err != nil {
		return UpsertResult{}, err
	}

	if existing != nil {
		if err := c.Update(ctx, collection, existing.ID, record); err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{Action: ActionUpdated, ID: existing.ID}, nil
	}

	id, err := c.Create(ctx, collection, record)
	if err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{Action: ActionCreated, ID: id}, nil
}

// FindByExternalID looks up a destination record by its external id.
// Returns nil without error when no record matches.
func (c *Client) FindByExternalID(ctx context.Context, collection string, externalID string) (*Record, error) {
	params := url.Values{}
	params.Set("filters[externalId][$eq]", externalID)
	params.Set("pagination[pageSize]", "1")

	reqURL := fmt.Sprintf("%s/api/%s?%s", c.baseURL, collection, params.Encode())

	var result listResponse
	if err := c.doRequest(ctx, http.MethodGet, reqURL, nil, &result); err != nil {
		return nil, fmt.Errorf("looking up %s by external ID: %w", collection, err)
	}

	if len(result.Data) == 0 {
		return nil, nil
	}
	return &result.Data[0], nil
}

// Create creates a new record in the collection and returns its id.
func (c *Client) Create(ctx context.Context, collection string, record any) (int, error) {
	reqURL := fmt.Sprintf("%s/api/%s", c.baseURL, collection)

	var result singleResponse
	if err := c.doRequest(ctx, http.MethodPost, reqURL, record, &result); err != nil {
		return 0, fmt.Errorf("creating %s: %w", collection, err)
	}

	return result.Data.ID, nil
}

// Update replaces an existing record by id.
func (c *Client) Update(ctx context.Context, collection string, id int, record any) error {
	reqURL := fmt.Sprintf("%s/api/%s/%d", c.baseURL, collection, id)

	if err := c.doRequest(ctx, http.MethodPut, reqURL, record, nil); err != nil {
		return fmt.Errorf("updating %s %d: %w", collection, id, err)
	}

	return nil
}

// Health checks that the destination is reachable and accepts the token.
func (c *Client) Health(ctx context.Context) error {
	reqURL := fmt.Sprintf("%s/api/customers?pagination[pageSize]=1", c.baseURL)

	if err := c.doRequest(ctx, http.MethodGet, reqURL, nil, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// WaitHealthy polls Health until it succeeds or maxWait elapses.
func (c *Client) WaitHealthy(ctx context.Context, maxWait time.Duration, interval time.Duration) error {
	deadline := time.Now().Add(maxWait)

	for {
		err := c.Health(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("destination not healthy after %v: %w", maxWait, err)
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// doRequest executes an HTTP request with authentication and the {data: ...}
// body envelope.
func (c *Client) doRequest(ctx context.Context, method string, reqURL string, record any, result any) error {
	var reqBody io.Reader
	if record != nil {
		jsonBody, err := json.Marshal(map[string]any{"data": record})
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{Body: string(respBody), Code: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// listResponse is the body of a collection query.
type listResponse struct {
	// Data contains the matching records.
	Data []Record `json:"data"`
}

// singleResponse is the body of a single-record write.
type singleResponse struct {
	// Data contains the written record.
	Data Record `json:"data"`
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
