package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultRetryAfter is the back-off applied when a 429 response carries no
// Retry-After header.
const defaultRetryAfter = 60 * time.Second

// Auth injects provider credentials into an outgoing request.
type Auth interface {
	Apply(req *http.Request)
}

// BasicAuth is HTTP basic authentication. Zendesk-style token auth uses
// "{email}/token" as the user and the API token as the password.
type BasicAuth struct {
	User     string
	Password string
}

// Apply sets the basic-auth header.
func (a BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.User, a.Password)
}

// TokenAuth sets a single credential header.
type TokenAuth struct {
	Header string
	Value  string
}

// Apply sets the credential header.
func (a TokenAuth) Apply(req *http.Request) {
	req.Header.Set(a.Header, a.Value)
}

// Bearer builds TokenAuth for an Authorization bearer token.
func Bearer(token string) TokenAuth {
	return TokenAuth{Header: "Authorization", Value: "Bearer " + token}
}

// Client issues authenticated HTTP requests against one provider. On a 429
// response it sleeps for the server-dictated delay and retries the same
// request; there is deliberately no cap on rate-limit retries, since the
// provider's limits are the binding constraint on a migration run. Every
// other failure is classified into a typed error and propagated.
type Client struct {
	baseURL    string
	auth       Auth
	classifier *Classifier
	logger     *zap.Logger
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient creates a rate-limited client for one provider. The baseURL is
// the root of the provider API; endpoints passed to Request may be paths
// relative to it or absolute URLs (server-issued page cursors).
func NewClient(baseURL string, auth Auth, classifier *Classifier, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		classifier: classifier,
		logger:     logger,
		httpClient: &http.Client{},
		sleep:      sleepCtx,
	}
}

// Request performs an HTTP request and returns the raw response body.
func (c *Client) Request(ctx context.Context, method, endpoint string) ([]byte, error) {
	url := c.resolve(endpoint)
	rc := RequestContext{URL: url, Method: method}

	for {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request %s %s: %w", method, url, err)
		}

		c.auth.Apply(req)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, c.classifier.Connect(rc, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, c.classifier.Connect(rc, readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryAfterDuration(resp)
			c.logger.Info("rate limited by provider",
				zap.String("endpoint", endpoint),
				zap.Duration("delay", delay),
				zap.String("retry_after", resp.Header.Get("Retry-After")),
				zap.String("rate_limit", resp.Header.Get("X-Rate-Limit")),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.classifier.Status(rc, resp.StatusCode, string(body))
		}

		c.logger.Info("provider response",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)

		return body, nil
	}
}

// resolve turns a relative endpoint into an absolute URL. Server-issued
// cursors arrive as absolute URLs and pass through unchanged.
func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// retryAfterDuration reads the Retry-After header as seconds, falling back
// to the default delay when the header is missing or malformed.
func retryAfterDuration(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
