// Package apiclient is the single chokepoint for calls to the help desk
// REST backend. It applies the base URL, JSON encoding, bearer token and
// uniform error translation; typed methods map one-to-one onto backend
// operations.
//
// The client holds no session state: every authenticated call takes the
// bearer token as an argument.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/metrics"
)

// maxErrorBody bounds how much of a failed response is read looking for
// the backend's error message.
const maxErrorBody = 64 << 10

// Client is a typed HTTP client for the help desk backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransport keeps the default client but swaps its round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient = &http.Client{Transport: rt} }
}

// WithLogger sets the logger used for request tracing at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client rooted at baseURL (e.g. "http://localhost:5000/api").
// No client-side timeout is configured; the transport defaults apply and
// callers bound calls through their context.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call. Body is JSON-encoded unless it is an
// io.Reader, which is sent as-is (the caller then sets Content-Type in
// Headers). Headers override the defaults.
type Request struct {
	Method  string
	Token   string
	Query   url.Values
	Body    any
	Headers http.Header
}

// Do issues a request against endpoint and decodes the JSON response body
// into out. A nil out discards the body; a *json.RawMessage keeps it
// verbatim. Failures are *domain.NetworkError (no response) or
// *domain.HTTPError (non-2xx); no partial data is decoded on failure.
func (c *Client) Do(ctx context.Context, endpoint string, req Request, out any) error {
	resp, err := c.send(ctx, endpoint, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &domain.NetworkError{Endpoint: endpoint, Err: err}
		}
		*raw = append((*raw)[:0], body...)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// send performs the request and translates failures. On success the caller
// owns the response body.
func (c *Client) send(ctx context.Context, endpoint string, req Request) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	target := c.baseURL + endpoint
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for key, values := range req.Headers {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	label := metrics.EndpointLabel(endpoint)
	start := time.Now()
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(label, method).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(label, method, "network_error").Inc()
		c.log.Debug().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("backend unreachable")
		return nil, &domain.NetworkError{Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		metrics.APIRequestsTotal.WithLabelValues(label, method, "http_"+strconv.Itoa(resp.StatusCode)).Inc()
		httpErr := domain.NewHTTPError(resp.StatusCode, endpoint, errorField(resp.Body))
		c.log.Debug().
			Str("method", method).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error", httpErr.Message).
			Msg("backend rejected request")
		return nil, httpErr
	}

	metrics.APIRequestsTotal.WithLabelValues(label, method, "ok").Inc()
	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("backend call")
	return resp, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(encoded), nil
	}
}

// errorField extracts the "error" string of a JSON error envelope, or ""
// when the body is not one.
func errorField(r io.Reader) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&envelope); err != nil {
		return ""
	}
	return strings.TrimSpace(envelope.Error)
}
