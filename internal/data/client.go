package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"heat-dispatch/internal/logger"
	"heat-dispatch/internal/model"
)

// MarketClient fetches market periods from an HTTP endpoint that answers
// with the {"data": [...]} envelope.
type MarketClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Cache   *ResponseCache
	Log     logger.Logger
}

// NewMarketClient returns a client with a 30 second timeout and no cache.
func NewMarketClient(apiKey, baseURL string) *MarketClient {
	return &MarketClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Log:     logger.NopLogger{},
	}
}

// MarketQuery narrows the request window. Zero times are left out of the
// query string and the server decides.
type MarketQuery struct {
	From time.Time
	To   time.Time
	Area string
}

// ErrInvalidWindow is returned for a query whose From is after its To.
var ErrInvalidWindow = errors.New("from must not be after to")

// Validate checks the window bounds. Zero bounds are open.
func (q MarketQuery) Validate() error {
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidWindow, q.From.Format(time.RFC3339), q.To.Format(time.RFC3339))
	}
	return nil
}

// MarketAPIError is returned for non-200 answers from the market endpoint.
type MarketAPIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *MarketAPIError) Error() string {
	return e.Message
}

// FetchPeriods performs a GET against BaseURL and returns the periods in the
// order the server sent them.
func (c *MarketClient) FetchPeriods(ctx context.Context, q MarketQuery) ([]model.MarketCondition, error) {
	if c.BaseURL == "" {
		return nil, &MarketAPIError{Code: "MISSING_URL", Message: "market url is required"}
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := CacheKey(c.BaseURL, q)
	if cached, ok := c.Cache.Get(key); ok {
		c.log().Debugw("market cache hit", map[string]any{"periods": len(cached), "url": c.BaseURL})
		return cached, nil
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid market url: %w", err)
	}
	params := u.Query()
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	if q.Area != "" {
		params.Set("area", q.Area)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.log().Errorf("market request failed after %v: %v", elapsed, err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.log().Infow("market response", map[string]any{
		"status":   resp.StatusCode,
		"path":     u.Path,
		"duration": elapsed.String(),
	})

	if err := statusError(resp); err != nil {
		c.log().Warnf("market endpoint: %v", err)
		return nil, err
	}

	var series model.MarketSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := model.ValidatePeriods(series.Data); err != nil {
		return nil, err
	}

	c.Cache.Set(key, series.Data)
	return series.Data, nil
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return &MarketAPIError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: invalid API key",
		}
	case http.StatusForbidden:
		return &MarketAPIError{
			StatusCode: resp.StatusCode,
			Code:       "INVALID_API_KEY",
			Message:    "Invalid API key or insufficient permissions",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return &MarketAPIError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return &MarketAPIError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("market endpoint returned %s", resp.Status),
		}
	}
}

func (c *MarketClient) httpClient() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}

func (c *MarketClient) log() logger.Logger {
	if c.Log == nil {
		return logger.NopLogger{}
	}
	return c.Log
}
