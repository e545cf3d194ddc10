// Package httpclient is the outbound HTTP plumbing shared by the customer and
// inventory clients: per-attempt timeout, retries for idempotent calls and
// trace context propagation.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxBodyBytes = 1 << 20
	retryBase    = 50 * time.Millisecond
)

var errEmptySegment = errors.New("empty path segment")

// Response is a fully read response.
type Response struct {
	StatusCode int
	Body       []byte
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	return nil
}

// StatusError is returned for responses the caller did not expect.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client calls one upstream service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	retries uint64
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithRetries sets how many times an idempotent call is retried after a
// transport error or 5xx response.
func WithRetries(n uint64) Option {
	return func(cl *Client) {
		cl.retries = n
	}
}

// New creates a client for baseURL. timeout bounds each attempt.
func New(baseURL string, timeout time.Duration, tracerName string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		timeout: timeout,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Get performs an idempotent GET, retried per configuration.
func (c *Client) Get(ctx context.Context, spanName string, pathSegments ...string) (*Response, error) {
	return c.do(ctx, spanName, http.MethodGet, nil, c.retries, pathSegments...)
}

// PostJSON performs a POST with a JSON body. It is never retried.
func (c *Client) PostJSON(ctx context.Context, spanName string, body any, pathSegments ...string) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	return c.do(ctx, spanName, http.MethodPost, payload, 0, pathSegments...)
}

func (c *Client) do(
	ctx context.Context,
	spanName, method string,
	body []byte,
	retries uint64,
	pathSegments ...string,
) (*Response, error) {
	target, err := c.resolve(pathSegments...)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", target),
		),
	)
	defer span.End()

	var resp *Response
	attempt := 0
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := c.attempt(ctx, method, target, body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if r.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(&StatusError{StatusCode: r.StatusCode, Body: string(r.Body)})
		}
		resp = r

		return nil
	})
	span.SetAttributes(attribute.Int("http.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return resp, nil
}

// resolve appends each segment to the base URL as a single escaped path
// element. Dot segments are percent-encoded so they are never resolved.
func (c *Client) resolve(segments ...string) (string, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		switch s {
		case "":
			return "", errEmptySegment
		case ".":
			escaped[i] = "%2E"
		case "..":
			escaped[i] = "%2E%2E"
		default:
			escaped[i] = url.PathEscape(s)
		}
	}

	return c.baseURL.String() + "/" + strings.Join(escaped, "/"), nil
}

func (c *Client) attempt(ctx context.Context, method, target string, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: res.StatusCode, Body: data}, nil
}
