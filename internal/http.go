package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	pkgerrs "github.com/jamesprial/go-reddit-mcp/pkg/errors"
	"github.com/jamesprial/go-reddit-mcp/pkg/types"
)

// TokenSource supplies the bearer token attached to each request.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Client manages communication with the Reddit API.
type Client struct {
	client     *http.Client
	BaseURL    *url.URL
	UserAgent  string
	tokens     TokenSource
	jsonSuffix bool
	logger     *slog.Logger

	limiter        *rate.Limiter
	mu             sync.Mutex
	forceWaitUntil time.Time
}

// RateLimitConfig controls how requests are throttled before reaching Reddit.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	SecondsPerMinute         = 60.0
	ParseFloatBitSize        = 64

	// maxErrorBody bounds how much of a failed response is read for diagnostics.
	maxErrorBody = 64 << 10
)

// NewClient returns a new Reddit API client.
// A nil tokens source sends unauthenticated requests and, since the public
// site only serves JSON for ".json" paths, appends that suffix to every path.
func NewClient(httpClient *http.Client, tokens TokenSource, baseURL, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}

	return &Client{
		client:     httpClient,
		BaseURL:    parsedURL,
		UserAgent:  userAgent,
		tokens:     tokens,
		jsonSuffix: tokens == nil,
		logger:     logger,
		limiter:    buildLimiter(*rateCfg),
	}, nil
}

// NewRequest creates a GET request for path, resolved relative to BaseURL,
// with params as the query string.
func (c *Client) NewRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	if c.jsonSuffix {
		path = strings.TrimSuffix(path, "/") + ".json"
	}
	u, err := c.BaseURL.Parse(path)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "build request", URL: path, Err: err}
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("raw_json", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "build request", URL: u.String(), Err: err}
	}

	if c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	return req, nil
}

// DoThing sends req and decodes the body as a single Thing.
func (c *Client) DoThing(req *http.Request) (*types.Thing, error) {
	body, err := c.DoRaw(req)
	if err != nil {
		return nil, err
	}
	var thing types.Thing
	if err := json.Unmarshal(body, &thing); err != nil {
		return nil, &pkgerrs.ParseError{Operation: req.URL.Path, Err: err}
	}
	return &thing, nil
}

// DoRaw sends req and returns the response body. Non-2xx responses are
// reported as *errors.APIError carrying Reddit's error code when present.
func (c *Client) DoRaw(req *http.Request) ([]byte, error) {
	if err := c.waitForRateLimit(req.Context()); err != nil {
		return nil, &pkgerrs.RequestError{Operation: "rate limit wait", URL: req.URL.Path, Err: err}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	c.applyRateHeaders(resp)

	if c.logger != nil {
		c.logger.Debug("reddit request",
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"elapsed", time.Since(start),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apiError(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "read body", URL: req.URL.Path, Err: err}
	}
	return body, nil
}

// apiError builds an APIError from a failed response. Reddit uses several
// error shapes: {"error": 403, "message": "Forbidden", "reason": "private"}
// and {"error": "invalid_grant"} being the common ones.
func apiError(status int, body []byte) error {
	apiErr := &pkgerrs.APIError{StatusCode: status, Message: http.StatusText(status)}
	if !gjson.ValidBytes(body) {
		return apiErr
	}

	parsed := gjson.ParseBytes(body)
	if reason := parsed.Get("reason"); reason.Exists() && reason.String() != "" {
		apiErr.ErrorCode = reason.String()
	} else if code := parsed.Get("error"); code.Type == gjson.String {
		apiErr.ErrorCode = code.String()
	}
	if msg := parsed.Get("message"); msg.Exists() && msg.String() != "" {
		apiErr.Message = msg.String()
	} else if desc := parsed.Get("error_description"); desc.Exists() {
		apiErr.Message = desc.String()
	}
	return apiErr
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if err := c.waitForForcedDelay(ctx); err != nil {
		return err
	}

	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

func (c *Client) waitForForcedDelay(ctx context.Context) error {
	for {
		c.mu.Lock()
		waitUntil := c.forceWaitUntil
		c.mu.Unlock()

		if waitUntil.IsZero() {
			return nil
		}

		now := time.Now()
		if !now.Before(waitUntil) {
			c.clearForcedDelay(waitUntil)
			return nil
		}

		timer := time.NewTimer(waitUntil.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			c.clearForcedDelay(waitUntil)
		}
	}
}

func (c *Client) clearForcedDelay(previous time.Time) {
	c.mu.Lock()
	if previous.Equal(c.forceWaitUntil) {
		c.forceWaitUntil = time.Time{}
	}
	c.mu.Unlock()
}

func (c *Client) applyRateHeaders(resp *http.Response) {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, ParseFloatBitSize); err == nil && seconds > 0 {
			c.deferRequests(time.Duration(seconds * float64(time.Second)))
		}
	}

	remainingHeader := resp.Header.Get("X-Ratelimit-Remaining")
	resetHeader := resp.Header.Get("X-Ratelimit-Reset")
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, errRemaining := strconv.ParseFloat(remainingHeader, ParseFloatBitSize)
	resetSeconds, errReset := strconv.ParseFloat(resetHeader, ParseFloatBitSize)
	if errRemaining != nil || errReset != nil || resetSeconds <= 0 {
		return
	}

	if remaining <= 1 {
		c.deferRequests(time.Duration(resetSeconds * float64(time.Second)))
	}
}

func (c *Client) deferRequests(d time.Duration) {
	if d <= 0 {
		return
	}

	until := time.Now().Add(d)

	c.mu.Lock()
	if until.After(c.forceWaitUntil) {
		c.forceWaitUntil = until
	}
	c.mu.Unlock()
}

