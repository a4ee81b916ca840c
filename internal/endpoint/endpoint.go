// Package endpoint performs GET requests against quote-provider endpoints and
// turns whatever comes back (JSON, JSONP, HTML) into a parsed payload or a
// failure. It never retries; falling back to another source is the caller's
// decision.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"stockquote/internal/httpx"
	"stockquote/internal/metrics"
	"stockquote/internal/ratelimit"
)

// Config is fixed at construction and shared by every request.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// Request describes one call.
type Request struct {
	// Name labels the endpoint in logs and metrics.
	Name   string
	URL    string
	Params map[string]string
	// Unwrap extracts the JSON document from the body. Nil means Plain.
	Unwrap Unwrap
}

// FetchError is the failure signal for transport, status, unwrap and decode
// problems alike.
type FetchError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client is safe for concurrent use.
type Client struct {
	rc      *resty.Client
	limiter ratelimit.Limiter
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter gates every request on l.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records request outcomes and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.rc = resty.NewWithClient(hc) }
}

// New builds a client from cfg.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		rc:  resty.NewWithClient(httpx.New(cfg.Timeout)),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	h := http.Header{}
	httpx.Headers(h, cfg.UserAgent, cfg.Headers)
	for k := range h {
		c.rc.SetHeader(k, h.Get(k))
	}
	c.rc.SetRetryCount(0)
	return c
}

// Text returns the raw body of a successful response.
func (c *Client) Text(ctx context.Context, req Request) (string, error) {
	b, err := c.get(ctx, req)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JSON returns the decoded document of a successful response. Numbers are
// kept as json.Number so callers can coerce them without float surprises.
func (c *Client) JSON(ctx context.Context, req Request) (map[string]any, error) {
	b, err := c.get(ctx, req)
	if err != nil {
		return nil, err
	}
	unwrap := req.Unwrap
	if unwrap == nil {
		unwrap = Plain
	}
	doc, err := unwrap(b)
	if err != nil {
		c.log.Debug("unwrap failed", zap.String("endpoint", req.Name), zap.Error(err))
		return nil, &FetchError{Endpoint: req.Name, Reason: "unwrap", Err: err}
	}
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		c.log.Debug("decode failed", zap.String("endpoint", req.Name), zap.Error(err))
		return nil, &FetchError{Endpoint: req.Name, Reason: "decode", Err: err}
	}
	if out == nil {
		return nil, &FetchError{Endpoint: req.Name, Reason: "empty document"}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, req Request) (b []byte, err error) {
	name := req.Name
	if name == "" {
		name = req.URL
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &FetchError{Endpoint: name, Reason: fmt.Sprintf("panic: %v", r)}
		}
		c.metrics.ObserveEndpoint(name, err, time.Since(start))
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Endpoint: name, Reason: "rate limit wait", Err: err}
		}
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(req.Params).
		Get(req.URL)
	if err != nil {
		c.log.Debug("request failed", zap.String("endpoint", name), zap.Error(err))
		return nil, &FetchError{Endpoint: name, Reason: "transport", Err: err}
	}
	if !resp.IsSuccess() {
		c.log.Debug("unexpected status", zap.String("endpoint", name), zap.Int("status", resp.StatusCode()))
		return nil, &FetchError{Endpoint: name, Reason: fmt.Sprintf("unexpected status code: %d", resp.StatusCode())}
	}
	c.log.Debug("request ok", zap.String("endpoint", name), zap.Int("bytes", len(resp.Body())), zap.Duration("took", time.Since(start)))
	return resp.Body(), nil
}
