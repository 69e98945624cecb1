// Package api provides the HTTP client for the travel assistant backend.
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

	"golang.org/x/time/rate"
)

// DefaultBaseURL is where the backend listens by default.
const DefaultBaseURL = "http://localhost:5000"

// DefaultTimeout is the default per-request timeout. Chat requests run the
// assistant's agent loop, so this is generous.
const DefaultTimeout = 120 * time.Second

// Recorder observes completed backend requests.
// Outcome is one of "ok", "error", or "transport".
type Recorder interface {
	ObserveRequest(operation, outcome string, elapsed time.Duration)
}

// Options configures a Client. The zero value is usable.
type Options struct {
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// RPS and Burst throttle outgoing requests. RPS <= 0 disables throttling.
	RPS   float64
	Burst int

	// Recorder, if set, is told about every request.
	Recorder Recorder

	// HTTPClient overrides the underlying client (used by tests).
	HTTPClient *http.Client
}

// Client talks to the assistant backend over its REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	recorder Recorder
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts *Options) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	if opts == nil {
		opts = &Options{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:  strings.TrimRight(u.String(), "/"),
		http:     httpClient,
		recorder: opts.Recorder,
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request. body, if non-nil, is sent as JSON; out, if
// non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	outcome := "transport"
	defer func() {
		if c.recorder != nil {
			c.recorder.ObserveRequest(op, outcome, time.Since(start))
		}
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportError(op, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			outcome = "error"
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "error"
		return &StatusError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	outcome = "ok"
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		outcome = "error"
		return fmt.Errorf("%s: parse response: %w", op, err)
	}
	return nil
}

// docPath builds "/<collection>/<escaped filename>".
func docPath(collection, filename string) string {
	return "/" + collection + "/" + url.PathEscape(filename)
}

// collection returns the REST collection name for a document kind.
func collection(kind Kind) (string, error) {
	switch kind {
	case KindPlan:
		return "travel-plans", nil
	case KindTodo:
		return "todo-lists", nil
	case KindBudget:
		return "budgets", nil
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
