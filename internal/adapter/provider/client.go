package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"rates-service/internal/domain/model"
)

const (
	userAgent   = "Convertly/1.0"
	maxBodySize = 8 << 20
)

// Option configures a provider.
type Option func(*client)

// WithHTTPClient replaces the default client (tests point this at httptest).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// WithMinInterval paces upstream calls to at most one per interval.
// Zero disables pacing.
func WithMinInterval(interval time.Duration) Option {
	return func(cl *client) {
		if interval <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

type client struct {
	feed       model.Feed
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newClient(feed model.Feed, timeout time.Duration, opts ...Option) client {
	cl := client{
		feed:       feed,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(&cl)
	}
	return cl
}

// get issues exactly one GET and returns the body of a 2xx response.
func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, model.NewProviderError(c.feed, 0, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, model.NewProviderError(c.feed, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewProviderError(c.feed, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, model.NewProviderError(c.feed, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, model.NewProviderError(c.feed, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	return body, nil
}

// dedupe keeps the first entry for each identifier.
func dedupe[T model.Entry](entries []T) []T {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, dup := seen[e.Identifier()]; dup {
			continue
		}
		seen[e.Identifier()] = struct{}{}
		out = append(out, e)
	}
	return out
}
