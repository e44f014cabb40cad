package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jask/agentwallet/internal/metrics"
)

const (
	pathPayments = "/agentswallet/"
	pathReject   = "/agentswallet/reject/"
	pathClients  = "/clients/"
	pathMarkets  = "/markets/"

	// RequestIDHeader carries a per-request uuid so backend logs can be correlated.
	RequestIDHeader = "x-request-id"

	maxBodyBytes = 4 << 20
)

// Client is a token-authorized JSON client for the payments backend.
type Client struct {
	BaseURL *url.URL
	token   string
	client  *http.Client
	// Debug dumps redacted requests and responses at debug level.
	Debug bool
}

// New returns a Client with the given per-request timeout.
func New(serverURL, token string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewWithHTTPClient(serverURL, token, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient returns a Client using the provided http.Client.
func NewWithHTTPClient(serverURL, token string, hc *http.Client) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", serverURL)
	}
	return &Client{BaseURL: baseURL, token: strings.TrimSpace(token), client: hc}, nil
}

// newRequest creates a request, JSON encoding the body passed.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	resolved := c.BaseURL.ResolveReference(&url.URL{Path: strings.TrimSuffix(c.BaseURL.Path, "/") + path})

	var buf io.Reader
	if body != nil && method != http.MethodGet {
		b := new(bytes.Buffer)
		if err := json.NewEncoder(b).Encode(body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnableToEncode, err)
		}
		buf = b
	}

	req, err := http.NewRequestWithContext(ctx, method, resolved.String(), buf)
	if err != nil {
		return nil, &HTTPError{Method: method, Path: path, cause: err}
	}
	req.Header.Set("accept", "application/json")
	if buf != nil {
		req.Header.Set("content-type", "application/json")
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set("authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into v. Non-2xx answers become *HTTPError.
func (c *Client) do(ctx context.Context, req *http.Request, v any) error {
	labels := prometheus.Labels{"host": req.URL.Host, "method": req.Method}
	metrics.InFlightRequests.With(labels).Inc()
	defer metrics.InFlightRequests.With(labels).Dec()

	logger := zerolog.Ctx(ctx).With().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Logger()

	if c.Debug {
		if dump, err := httputil.DumpRequestOut(req, true); err == nil {
			logger.Debug().Str("type", "http.Request").Msg(string(RedactSensitiveHeaders(dump)))
		}
	}

	path := strings.TrimPrefix(req.URL.Path, strings.TrimSuffix(c.BaseURL.Path, "/"))
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(req.Method, path, "error").Inc()
		logger.Warn().Err(err).Msg("backend request failed")
		return &HTTPError{Method: req.Method, Path: path, cause: err}
	}
	defer resp.Body.Close()
	metrics.BackendRequests.WithLabelValues(req.Method, path, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &HTTPError{Status: resp.StatusCode, Method: req.Method, Path: path, cause: err}
	}

	if c.Debug {
		logger.Debug().Str("type", "http.Response").Int("status", resp.StatusCode).Bytes("body", body).Msg("backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn().
			Int("response_status", resp.StatusCode).
			Bytes("body", body).
			Msg("failed backend call")
		return &HTTPError{Status: resp.StatusCode, Method: req.Method, Path: path, Body: body, cause: ErrProtocol}
	}

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return &HTTPError{Status: resp.StatusCode, Method: req.Method, Path: path, Body: body,
				cause: fmt.Errorf("%w: %v", ErrUnableToDecode, err)}
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, req, v)
}
