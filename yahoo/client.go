/*
Copyright 2024

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type Config struct {
	BaseURL   string
	CookieURL string

	// RateLimit is the maximum number of requests per second, 0 disables
	// request pacing.
	RateLimit int

	// Timeout of 0 leaves the http client default in place.
	Timeout time.Duration
}

// Client talks to the Yahoo Finance chart and quoteSummary endpoints.
type Client struct {
	http      *resty.Client
	limit     ratelimit.Limiter
	cookieURL string

	mu         sync.Mutex
	crumbValue string
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CookieURL == "" {
		cfg.CookieURL = DefaultCookieURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	limit := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limit = ratelimit.New(cfg.RateLimit)
	}

	return &Client{
		http:      client,
		limit:     limit,
		cookieURL: cfg.CookieURL,
	}
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (*resty.Response, error) {
	c.limit.Take()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("Url", resp.Request.URL).Bytes("Body", resp.Body()).Msg("provider returned an error status")
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode())
	}

	return resp, nil
}

// crumb performs the cookie + crumb handshake the quoteSummary endpoint
// requires. The result is cached for the lifetime of the client.
func (c *Client) crumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumbValue != "" {
		return c.crumbValue, nil
	}

	// the cookie endpoint answers with a 404 but still sets the session cookie
	c.limit.Take()
	if _, err := c.http.R().SetContext(ctx).Get(c.cookieURL); err != nil {
		return "", transportError(ctx, err)
	}

	resp, err := c.get(ctx, "/v1/test/getcrumb", nil)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: crumb request returned status %d", ErrProvider, resp.StatusCode())
	}

	crumb := strings.TrimSpace(resp.String())
	if crumb == "" {
		return "", fmt.Errorf("%w: empty crumb", ErrProvider)
	}

	log.Debug().Str("Crumb", crumb).Msg("negotiated provider crumb")
	c.crumbValue = crumb
	return crumb, nil
}

// transportError classifies a failed request. Cancellation is reported as
// the context error so callers do not mistake it for a retryable failure.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
