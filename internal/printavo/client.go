package printavo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"
)

// ErrBudgetExceeded indicates a configured page size whose estimated query
// cost exceeds Printavo's complexity ceiling.
var ErrBudgetExceeded = errors.New("estimated query cost exceeds complexity budget")

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

// retryable reports whether the status warrants another attempt.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client is a Printavo GraphQL API client.
//
// The client serializes its own requests: it enforces a minimum delay between
// consecutive requests to stay under Printavo's requests-per-minute ceiling.
// It is not safe for use from multiple goroutines.
type Client struct {
	// baseURL is the GraphQL endpoint URL.
	baseURL string

	// customerPageSize is the page size for customer queries.
	customerPageSize int

	// email is the Printavo account email used for authentication.
	email string

	// httpClient is the HTTP client for making requests.
	httpClient *http.Client

	// lastRequest is when the previous request was sent.
	lastRequest time.Time

	// maxAttempts bounds retries of a single request.
	maxAttempts int

	// orderPageSize is the page size for order queries.
	orderPageSize int

	// requestDelay is the minimum interval between consecutive requests.
	requestDelay time.Duration

	// retryBase is the base backoff delay, doubled on each attempt.
	retryBase time.Duration

	// token is the Printavo API token used for authentication.
	token string
}

// NewClient creates a new Printavo API client.
func NewClient(email string, token string, opts ...Option) (*Client, error) {
	if email == "" {
		return nil, errors.New("account email is required")
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

	if cost := estimatedCost(orderNodeCost, o.orderPageSize); cost > maxQueryCost {
		return nil, fmt.Errorf("order page size %d costs ~%d units: %w",
			o.orderPageSize, cost, ErrBudgetExceeded)
	}
	if cost := estimatedCost(customerNodeCost, o.customerPageSize); cost > maxQueryCost {
		return nil, fmt.Errorf("customer page size %d costs ~%d units: %w",
			o.customerPageSize, cost, ErrBudgetExceeded)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:          o.baseURL,
		customerPageSize: o.customerPageSize,
		email:            email,
		httpClient:       httpClient,
		maxAttempts:      o.maxAttempts,
		orderPageSize:    o.orderPageSize,
		requestDelay:     o.requestDelay,
		retryBase:        o.retryBase,
		token:            token,
	}, nil
}

// OrdersPage fetches a single page of orders starting after the given cursor.
// An empty cursor fetches the first page.
func (c *Client) OrdersPage(ctx context.Context, cursor string) (*Page[Order], error) {
	return c.fetchOrdersPage(ctx, cursor, nil)
}

// CustomersPage fetches a single page of customers starting after the given
// cursor. An empty cursor fetches the first page.
func (c *Client) CustomersPage(ctx context.Context, cursor string) (*Page[Customer], error) {
	return c.fetchCustomersPage(ctx, cursor, nil)
}

// Orders returns a lazy sequence of all orders, restartable from the given
// cursor. Iteration stops at the first error; a run interrupted mid-page
// re-fetches that page on restart.
func (c *Client) Orders(ctx context.Context, cursor string) iter.Seq2[Order, error] {
	return func(yield func(Order, error) bool) {
		for {
			page, err := c.fetchOrdersPage(ctx, cursor, nil)
			if err != nil {
				yield(Order{}, err)
				return
			}
			for _, order := range page.Nodes {
				if !yield(order, nil) {
					return
				}
			}
			if !page.HasMore {
				return
			}
			cursor = page.EndCursor
		}
	}
}

// Customers returns a lazy sequence of all customers, restartable from the
// given cursor.
func (c *Client) Customers(ctx context.Context, cursor string) iter.Seq2[Customer, error] {
	return func(yield func(Customer, error) bool) {
		for {
			page, err := c.fetchCustomersPage(ctx, cursor, nil)
			if err != nil {
				yield(Customer{}, err)
				return
			}
			for _, customer := range page.Nodes {
				if !yield(customer, nil) {
					return
				}
			}
			if !page.HasMore {
				return
			}
			cursor = page.EndCursor
		}
	}
}

// Order fetches a single order by its Printavo id.
func (c *Client) Order(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, errors.New("order id is required")
	}

	var result orderResponse
	if err := c.do(ctx, orderQuery, map[string]any{"id": id}, &result); err != nil {
		return nil, fmt.Errorf("fetching order %s: %w", id, err)
	}
	if result.Order == nil {
		return nil, fmt.Errorf("order %s not found", id)
	}

	return result.Order, nil
}

// OrdersSince fetches orders changed since the given time, up to limit
// records. The filter is applied server-side so incremental sync cycles do
// not re-scan the full collection.
func (c *Client) OrdersSince(ctx context.Context, since time.Time, limit int) ([]Order, error) {
	var orders []Order
	var cursor string

	for {
		page, err := c.fetchOrdersPage(ctx, cursor, &since)
		if err != nil {
			return nil, err
		}
		orders = append(orders, page.Nodes...)

		if !page.HasMore || (limit > 0 && len(orders) >= limit) {
			break
		}
		cursor = page.EndCursor
	}

	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

// CustomersSince fetches customers changed since the given time, up to limit
// records.
func (c *Client) CustomersSince(ctx context.Context, since time.Time, limit int) ([]Customer, error) {
	var customers []Customer
	var cursor string

	for {
		page, err := c.fetchCustomersPage(ctx, cursor, &since)
		if err != nil {
			return nil, err
		}
		customers = append(customers, page.Nodes...)

		if !page.HasMore || (limit > 0 && len(customers) >= limit) {
			break
		}
		cursor = page.EndCursor
	}

	if limit > 0 && len(customers) > limit {
		customers = customers[:limit]
	}
	return customers, nil
}

// fetchOrdersPage fetches one page of orders, optionally filtered server-side
// to records updated since the given time.
func (c *Client) fetchOrdersPage(ctx context.Context, cursor string, since *time.Time) (*Page[Order], error) {
	var result ordersResponse
	if err := c.do(ctx, ordersQuery, c.variables(c.orderPageSize, cursor, since), &result); err != nil {
		return nil, fmt.Errorf("fetching orders page: %w", err)
	}

	return &Page[Order]{
		EndCursor: result.Orders.PageInfo.EndCursor,
		HasMore:   result.Orders.PageInfo.HasNextPage,
		Nodes:     result.Orders.Nodes,
	}, nil
}

// fetchCustomersPage fetches one page of customers.
func (c *Client) fetchCustomersPage(ctx context.Context, cursor string, since *time.Time) (*Page[Customer], error) {
	var result customersResponse
	if err := c.do(ctx, customersQuery, c.variables(c.customerPageSize, cursor, since), &result); err != nil {
		return nil, fmt.Errorf("fetching customers page: %w", err)
	}

	return &Page[Customer]{
		EndCursor: result.Customers.PageInfo.EndCursor,
		HasMore:   result.Customers.PageInfo.HasNextPage,
		Nodes:     result.Customers.Nodes,
	}, nil
}

// variables builds the query variables for a page fetch.
func (c *Client) variables(first int, cursor string, since *time.Time) map[string]any {
	vars := map[string]any{"first": first}
	if cursor != "" {
		vars["after"] = cursor
	}
	if since != nil {
		vars["since"] = since.UTC().Format(time.RFC3339)
	}
	return vars
}

// do executes a GraphQL request with rate limiting and bounded retry.
// Transient failures (network errors, timeouts, 429, 5xx) are retried with
// exponential backoff; exhausting all attempts returns the last error.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, data any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	var lastErr error
	for attempt := range c.maxAttempts {
		if attempt > 0 {
			if err := sleep(ctx, c.retryBase*(1<<(attempt-1))); err != nil {
				return err
			}
		}
		if err := c.throttle(ctx); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, body, data)
		if lastErr == nil {
			return nil
		}

		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && !statusErr.retryable() {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("extraction failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// doOnce executes a single GraphQL request attempt.
func (c *Client) doOnce(ctx context.Context, body []byte, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("email", c.email)
	req.Header.Set("token", c.token)

	c.lastRequest = time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{Body: string(respBody), Code: resp.StatusCode}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}

	return nil
}

// throttle waits until at least requestDelay has passed since the previous
// request.
func (c *Client) throttle(ctx context.Context) error {
	if c.lastRequest.IsZero() {
		return nil
	}
	wait := c.requestDelay - time.Since(c.lastRequest)
	if wait <= 0 {
		return nil
	}
	return sleep(ctx, wait)
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
