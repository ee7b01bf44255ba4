// Package apiclient is the JSON HTTP client shared by the service façades: per-attempt timeouts,
// linear retry and structured errors returned in the response instead of thrown.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Response is the outcome of Request. Exactly one of OK or Err is meaningful:
// OK responses carry Data (JSON bodies) or Text (anything else).
type Response struct {
	Data   json.RawMessage
	Text   string
	Status int
	OK     bool
	Err    *APIError
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return &APIError{Kind: KindDecode, Status: r.Status, Message: "response has no JSON body"}
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return &APIError{Kind: KindDecode, Status: r.Status, Message: "decode response body", Err: err}
	}
	return nil
}

type defaults struct {
	timeout  time.Duration
	attempts int
	delay    time.Duration
}

// Client talks to one base URL.
type Client struct {
	baseURL  string
	http     *http.Client
	creds    Credentials
	bypass   string
	logger   *zap.Logger
	tracer   trace.Tracer
	defaults defaults
}

// New returns a client for baseURL. An empty base URL is a configuration error.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		bypass:  "true",
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("tripplanner/apiclient"),
		defaults: defaults{
			timeout:  DefaultTimeout,
			attempts: DefaultRetryAttempts,
			delay:    DefaultRetryDelay,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request sends one logical request, retrying per the configured policy, and returns the last
// observed result. It never panics on transport or HTTP failures; check Response.OK.
func (c *Client) Request(ctx context.Context, endpoint string, opts ...RequestOption) *Response {
	cfg := requestConfig{
		method:   http.MethodGet,
		headers:  http.Header{},
		query:    url.Values{},
		timeout:  c.defaults.timeout,
		retry:    true,
		attempts: c.defaults.attempts,
		delay:    c.defaults.delay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := c.tracer.Start(ctx, "apiclient.Request", trace.WithAttributes(
		attribute.String("http.method", cfg.method),
		attribute.String("apiclient.endpoint", endpoint),
	))
	defer span.End()

	var body []byte
	if cfg.body != nil {
		var err error
		body, err = json.Marshal(cfg.body)
		if err != nil {
			resp := &Response{Err: requestError(endpoint, fmt.Errorf("encode body: %w", err))}
			c.finish(span, endpoint, resp, 0)
			return resp
		}
	}

	attempts := cfg.attempts
	if !cfg.retry || attempts < 1 {
		attempts = 1
	}

	var last *Response
	attempt := 0
	operation := func() error {
		attempt++
		last = c.do(ctx, endpoint, cfg, body)
		if last.OK {
			return nil
		}
		if last.Err.Kind == KindHTTP && last.Status == http.StatusUnauthorized {
			c.clearCredential(ctx)
		}
		if !last.Err.Retryable() {
			return backoff.Permanent(last.Err)
		}
		return last.Err
	}
	notify := func(err error, wait time.Duration) {
		retriesTotal.WithLabelValues(endpointLabel(endpoint)).Inc()
		c.logger.Warn("API request failed, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("wait_duration", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: cfg.delay}, uint64(attempts-1)),
		ctx,
	)
	_ = backoff.RetryNotify(operation, policy, notify)

	c.finish(span, endpoint, last, attempt)
	return last
}

func (c *Client) finish(span trace.Span, endpoint string, resp *Response, attempts int) {
	span.SetAttributes(
		attribute.Int("http.status_code", resp.Status),
		attribute.Int("apiclient.attempts", attempts),
	)
	outcome := "ok"
	if !resp.OK {
		outcome = resp.Err.Kind.String()
		span.SetStatus(codes.Error, resp.Err.Error())
		c.logger.Error("API request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.Status),
			zap.Int("attempts", attempts),
			zap.Error(resp.Err),
		)
	}
	requestsTotal.WithLabelValues(endpointLabel(endpoint), outcome).Inc()
}

// do performs a single attempt bounded by the request timeout.
func (c *Client) do(ctx context.Context, endpoint string, cfg requestConfig, body []byte) *Response {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	target := c.baseURL + endpoint
	if len(cfg.query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + cfg.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, cfg.method, target, reader)
	if err != nil {
		return &Response{Err: requestError(endpoint, err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.bypass != "" {
		req.Header.Set(BypassHeader, c.bypass)
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range cfg.headers {
		req.Header[k] = vs
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Response{Err: classify(ctx, attemptCtx, endpoint, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := classify(ctx, attemptCtx, endpoint, err)
		return &Response{Status: apiErr.Status, Err: apiErr}
	}

	out := &Response{Status: resp.StatusCode}
	jsonBody := isJSON(resp.Header.Get("Content-Type"))
	if jsonBody {
		out.Data = raw
	} else {
		out.Text = string(raw)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := httpError(endpoint, resp.StatusCode, string(raw))
		if jsonBody {
			if msg := errorMessage(raw); msg != "" {
				apiErr.Message = msg
			}
		}
		out.Err = apiErr
		return out
	}
	if jsonBody && len(raw) > 0 && !json.Valid(raw) {
		out.Data = nil
		out.Err = &APIError{Kind: KindDecode, Status: resp.StatusCode, Message: endpoint + " returned malformed JSON", Body: string(raw)}
		return out
	}
	out.OK = true
	return out
}

func (c *Client) token(ctx context.Context) string {
	if c.creds == nil {
		return ""
	}
	token, err := c.creds.Token(ctx)
	if err != nil {
		c.logger.Warn("Failed to read API credential", zap.Error(err))
		return ""
	}
	return token
}

func (c *Client) clearCredential(ctx context.Context) {
	if c.creds == nil {
		return
	}
	if err := c.creds.Clear(ctx); err != nil {
		c.logger.Warn("Failed to clear API credential", zap.Error(err))
		return
	}
	c.logger.Info("Cleared API credential after 401")
}

// classify separates caller cancellation, attempt timeouts and plain network failures.
func classify(ctx, attemptCtx context.Context, endpoint string, err error) *APIError {
	if ctx.Err() != nil {
		return canceledError(endpoint, err)
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return timeoutError(endpoint, err)
	}
	return networkError(endpoint, err)
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// errorMessage pulls a human readable message out of common error bodies.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// Fetch issues a request and decodes a successful JSON body into T.
func Fetch[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) (T, error) {
	var out T
	resp := c.Request(ctx, endpoint, opts...)
	if !resp.OK {
		return out, resp.Err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
