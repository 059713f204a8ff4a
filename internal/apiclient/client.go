// Package apiclient is the HTTP plumbing shared by the chat-bot and channel
// integrations: bearer tokens, client-side rate limiting, and error mapping.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ErrUnauthorized is matched by ExternalAPIError for 401 responses.
var ErrUnauthorized = errors.New("unauthorized")

// TokenStore supplies bearer tokens and forgets them when the API rejects one.
type TokenStore interface {
	oauth2.TokenSource
	Invalidate(ctx context.Context) error
}

// ExternalAPIError is a non-2xx response from an integration API.
type ExternalAPIError struct {
	Service  string
	Method   string
	Endpoint string
	Status   int
	Body     string
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error: %s %s returned %d: %s", e.Service, e.Method, e.Endpoint, e.Status, e.Body)
}

func (e *ExternalAPIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client calls one JSON API.
type Client struct {
	service string
	baseURL string
	tokens  TokenStore
	http    *http.Client
	limiter *rate.Limiter
	headers http.Header
	editors []func(*http.Request)
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseTransport sets the transport beneath the bearer-token layer.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if t, ok := c.http.Transport.(*oauth2.Transport); ok && rt != nil {
			t.Base = rt
		}
	}
}

// WithRateLimit allows r requests per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithRequestEditor runs fn on every outgoing request, after the static headers.
func WithRequestEditor(fn func(*http.Request)) Option {
	return func(c *Client) { c.editors = append(c.editors, fn) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New builds a Client for baseURL authenticated by tokens.
func New(service, baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		headers: make(http.Header),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body as JSON (when non-nil) and decodes a JSON response into out
// (when non-nil). A 401 invalidates the token before the error is returned.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.service, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	for _, edit := range c.editors {
		edit(req)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", c.service, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &ExternalAPIError{
			Service:  c.service,
			Method:   method,
			Endpoint: path,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(raw)),
		}
		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			c.logger.WarnContext(ctx, "token rejected; clearing credentials",
				slog.String("service", c.service),
				slog.String("endpoint", path),
			)
			if invErr := c.tokens.Invalidate(ctx); invErr != nil {
				return errors.Join(apiErr, fmt.Errorf("failed to invalidate %s token: %w", c.service, invErr))
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.service, err)
	}
	return nil
}
