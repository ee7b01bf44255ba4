package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Defaults applied to every request unless overridden.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
)

// BypassHeader is forwarded untouched so tunnelled backends skip their browser warning page.
const BypassHeader = "ngrok-skip-browser-warning"

// Credentials holds the single bearer credential shared by the process.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Option configures a Client in New.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCredentials installs the credential source used for the Authorization header.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithBypassHeader sets the value of the reverse-proxy bypass header. An empty value disables it.
func WithBypassHeader(value string) Option {
	return func(c *Client) { c.bypass = value }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaults sets the timeout and retry policy used when a request does not override them.
func WithDefaults(timeout time.Duration, attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.defaults.timeout = timeout
		}
		if attempts > 0 {
			c.defaults.attempts = attempts
		}
		if delay >= 0 {
			c.defaults.delay = delay
		}
	}
}

type requestConfig struct {
	method   string
	body     any
	headers  http.Header
	query    url.Values
	timeout  time.Duration
	retry    bool
	attempts int
	delay    time.Duration
}

// RequestOption configures a single Request call.
type RequestOption func(*requestConfig)

func WithMethod(method string) RequestOption {
	return func(r *requestConfig) { r.method = method }
}

// WithBody sets a value that is JSON-encoded as the request body.
func WithBody(body any) RequestOption {
	return func(r *requestConfig) { r.body = body }
}

func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) { r.headers.Set(key, value) }
}

func WithQuery(query url.Values) RequestOption {
	return func(r *requestConfig) {
		for k, vs := range query {
			for _, v := range vs {
				r.query.Add(k, v)
			}
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *requestConfig) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetry turns retries on or off.
func WithRetry(enabled bool) RequestOption {
	return func(r *requestConfig) { r.retry = enabled }
}

// WithRetryAttempts caps the total number of attempts, the first one included.
func WithRetryAttempts(n int) RequestOption {
	return func(r *requestConfig) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithRetryDelay sets the base delay; attempt n waits n*delay before the next one.
func WithRetryDelay(d time.Duration) RequestOption {
	return func(r *requestConfig) {
		if d >= 0 {
			r.delay = d
		}
	}
}
