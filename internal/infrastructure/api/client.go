// Package api is the typed client for the POA REST backend.
// It includes retry logic, optional client-side rate limiting and bearer auth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token for authenticated calls; "" means none
type TokenSource func(ctx context.Context) string

// Observer receives one call per finished request, after retries
type Observer interface {
	ObserveRequest(endpoint string, status int, duration time.Duration)
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	ShouldRetry func(req Request, resp *http.Response, err error) bool
}

// DefaultRetryConfig retries safe requests on transport errors, 5xx and 429.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		ShouldRetry: func(req Request, resp *http.Response, err error) bool {
			// seed, chat and auth calls are not idempotent
			if req.Method != http.MethodGet {
				return false
			}
			if err != nil {
				return true
			}
			return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		},
	}
}

// Options configures a Client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Retry          *RetryConfig
	RateLimitRPS   float64
	RateLimitBurst int
	HTTPClient     *http.Client
	Tokens         TokenSource
	Observer       Observer
	Logger         *zap.Logger
}

// Client talks to the POA backend
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	headers     map[string]string
	retryConfig RetryConfig
	limiter     *rate.Limiter
	tokens      TokenSource
	observer    Observer
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewClient validates the options and builds a client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	retry := DefaultRetryConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
		if retry.ShouldRetry == nil {
			retry.ShouldRetry = DefaultRetryConfig().ShouldRetry
		}
		if retry.Multiplier <= 0 {
			retry.Multiplier = 2.0
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: opts.Timeout,
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		httpClient:  httpClient,
		baseURL:     base,
		headers:     make(map[string]string),
		retryConfig: retry,
		tokens:      opts.Tokens,
		observer:    opts.Observer,
		logger:      logger.Named("api"),
	}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	c.headers["Accept"] = "application/json"
	c.headers["User-Agent"] = "poa-dashboard/1.0"

	return c, nil
}

// Request represents an HTTP request to be executed.
type Request struct {
	// Endpoint is the route template used as the metrics label
	Endpoint    string
	Method      string
	Path        string
	QueryParams url.Values
	Headers     map[string]string
	Body        any
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Do executes an HTTP request with retry logic. A non-2xx final status is
// returned as *APIError; transport failures wrap ErrTransport.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.buildURL(req.Path, req.QueryParams)

	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	start := time.Now()
	var (
		resp    *Response
		lastErr error
	)
	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.logger.Debug("retrying request",
				zap.String("endpoint", req.Endpoint),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
			}
		}

		var httpResp *http.Response
		resp, httpResp, lastErr = c.once(ctx, req, u, bodyBytes)
		if attempt < c.retryConfig.MaxRetries && c.retryConfig.ShouldRetry(req, httpResp, lastErr) {
			continue
		}
		break
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if c.observer != nil {
		c.observer.ObserveRequest(req.Endpoint, status, time.Since(start))
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Endpoint, lastErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, newAPIError(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

func (c *Client) once(ctx context.Context, req Request, u *url.URL, body []byte) (*Response, *http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(ctx, httpReq, req.Headers)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, httpResp, fmt.Errorf("reading response body: %w", err)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
		Duration:   time.Since(start),
	}, httpResp, nil
}

// buildURL joins the base URL path with path and encodes query parameters.
func (c *Client) buildURL(path string, query url.Values) *url.URL {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

// setHeaders applies default headers, the bearer token, then per-request headers
func (c *Client) setHeaders(ctx context.Context, req *http.Request, custom map[string]string) {
	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.mu.RUnlock()

	if c.tokens != nil {
		if tok := c.tokens(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for k, v := range custom {
		req.Header.Set(k, v)
	}
}

// calculateBackoff calculates the backoff delay for the given attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryConfig.RetryDelay) * math.Pow(c.retryConfig.Multiplier, float64(attempt-1))
	if c.retryConfig.MaxDelay > 0 && delay > float64(c.retryConfig.MaxDelay) {
		delay = float64(c.retryConfig.MaxDelay)
	}
	// Add jitter (±25%)
	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter
	return time.Duration(delay)
}

// SetHeader sets a default header for all requests.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.doJSON(ctx, Request{Endpoint: endpoint, Method: http.MethodGet, Path: path, QueryParams: query}, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.doJSON(ctx, Request{Endpoint: endpoint, Method: http.MethodPost, Path: path, QueryParams: query}, out)
}

func (c *Client) doJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, req.Endpoint, err)
	}
	return nil
}

// IsTransport reports whether err is a connectivity failure rather than an
// answer from the backend
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
