// Package upstream is the HTTP client layer for the backend services the
// portal talks to. Every response field is optional and every call fallible.
package upstream

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

	"github.com/rs/zerolog"

	"github.com/cmips/portal-gateway/internal/core/domain"
	"github.com/cmips/portal-gateway/internal/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// StatusError is a non-2xx answer from a backend service.
type StatusError struct {
	Service string
	Status  int
	Message string
	Body    []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Service, e.Status, e.Message)
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// Response is a raw backend answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Transport sends requests to one backend service.
type Transport struct {
	service string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewTransport returns a Transport for the service rooted at baseURL.
func NewTransport(service, baseURL string, timeout time.Duration, log zerolog.Logger) *Transport {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Transport{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("upstream", service).Logger(),
	}
}

// Do sends the request and returns the answer whatever its status.
// Only transport faults are returned as errors; they wrap domain.ErrUpstream.
func (t *Transport) Do(ctx context.Context, method, path string, query url.Values, token string, body []byte) (*Response, error) {
	target := t.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: build request: %v", domain.ErrUpstream, t.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(t.service).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(t.service, "transport_error").Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return nil, fmt.Errorf("%w: %s %s %s: %v", domain.ErrUpstream, t.service, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(t.service, "transport_error").Inc()
		return nil, fmt.Errorf("%w: %s: read body: %v", domain.ErrUpstream, t.service, err)
	}

	outcome := "ok"
	if resp.StatusCode >= http.StatusBadRequest {
		outcome = "http_error"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(t.service, outcome).Inc()

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// JSON sends the request and returns the body of a 2xx answer. Any other
// status is a *StatusError. An empty body yields nil.
func (t *Transport) JSON(ctx context.Context, method, path string, query url.Values, token string, body []byte) (json.RawMessage, error) {
	resp, err := t.Do(ctx, method, path, query, token, body)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &StatusError{
			Service: t.service,
			Status:  resp.Status,
			Message: errorMessage(resp.Status, resp.Body),
			Body:    resp.Body,
		}
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}
	return json.RawMessage(resp.Body), nil
}

// Get is JSON with GET and no body.
func (t *Transport) Get(ctx context.Context, path string, query url.Values, token string) (json.RawMessage, error) {
	return t.JSON(ctx, http.MethodGet, path, query, token, nil)
}

// Send is JSON with a marshalled payload. A nil payload sends no body.
func (t *Transport) Send(ctx context.Context, method, path, token string, payload any) (json.RawMessage, error) {
	var body []byte
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		body = p
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("%s: encode payload: %w", t.service, err)
		}
		body = raw
	}
	return t.JSON(ctx, method, path, nil, token, body)
}

// errorMessage extracts a human-readable reason from an error body.
func errorMessage(status int, body []byte) string {
	var envelope map[string]any
	if json.Unmarshal(body, &envelope) == nil {
		for _, key := range []string{"error_description", "message", "error"} {
			if s, ok := envelope[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	if s := http.StatusText(status); s != "" {
		return s
	}
	return "status " + strconv.Itoa(status)
}

// PathSegment escapes a caller-supplied identifier for use in a URL path.
func PathSegment(s string) string {
	return url.PathEscape(s)
}
