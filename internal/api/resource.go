// Package api talks to the REST backend over JSON.
package api

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

	"tally/internal/auth"
	"tally/internal/debug"
	appErrors "tally/internal/errors"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 512

// StatusError is a non-2xx response. It is wrapped inside a coded error;
// the body is kept for the debug log only.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// Option configures a Resource.
type Option func(*settings)

type settings struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// Resource is a collection endpoint such as /items. R is the record type
// decoded from responses and D the draft type encoded into request bodies.
type Resource[R any, D any] struct {
	base       string
	provider   auth.Provider
	httpClient *http.Client
}

// NewResource builds a client for baseURL + path. Headers for every request
// come from provider at call time, so a logout takes effect immediately.
func NewResource[R any, D any](baseURL, path string, provider auth.Provider, opts ...Option) *Resource[R, D] {
	s := settings{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	client := s.httpClient
	if client == nil {
		client = &http.Client{}
	}
	if s.timeout > 0 {
		c := *client
		c.Timeout = s.timeout
		client = &c
	}
	return &Resource[R, D]{
		base:       strings.TrimRight(baseURL, "/") + "/" + strings.Trim(path, "/"),
		provider:   provider,
		httpClient: client,
	}
}

// URL returns the collection URL.
func (r *Resource[R, D]) URL() string { return r.base }

// List fetches the whole collection.
func (r *Resource[R, D]) List(ctx context.Context) ([]R, error) {
	var out []R
	if err := r.do(ctx, http.MethodGet, r.base, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts draft and returns the server's record.
func (r *Resource[R, D]) Create(ctx context.Context, draft D) (R, error) {
	var out R
	err := r.do(ctx, http.MethodPost, r.base, draft, &out)
	return out, err
}

// Update puts draft to the record with id and returns the server's record.
func (r *Resource[R, D]) Update(ctx context.Context, id string, draft D) (R, error) {
	var out R
	err := r.do(ctx, http.MethodPut, r.member(id), draft, &out)
	return out, err
}

// Delete removes the record with id. Any response body is ignored.
func (r *Resource[R, D]) Delete(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, r.member(id), nil, nil)
}

func (r *Resource[R, D]) member(id string) string {
	return r.base + "/" + url.PathEscape(id)
}

func (r *Resource[R, D]) do(ctx context.Context, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.New(appErrors.CodeParseFailed, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return appErrors.New(appErrors.CodeTransport, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.provider != nil {
		for k, v := range r.provider.Headers() {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		debug.Event("http", map[string]any{"method": method, "url": target, "err": err.Error()})
		return appErrors.New(appErrors.CodeTransport, "cannot reach server", err)
	}
	defer func() { _ = resp.Body.Close() }()

	debug.Event("http", map[string]any{
		"method":  method,
		"url":     target,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classify(&StatusError{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		})
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return appErrors.New(appErrors.CodeParseFailed, "unexpected response from server", err)
	}
	return nil
}

func classify(se *StatusError) error {
	switch se.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErrors.New(appErrors.CodeUnauthorized, "not authorized", se)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.New(appErrors.CodeValidation, "request rejected by server", se)
	case http.StatusNotFound:
		return appErrors.New(appErrors.CodeNotFound, "not found", se)
	default:
		return appErrors.New(appErrors.CodeServer, fmt.Sprintf("server returned %d", se.Status), se)
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
