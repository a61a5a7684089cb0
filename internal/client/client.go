// Package client is the Go SDK for the tender review API. It owns the
// session lifecycle, performs client-side capability prechecks, and keeps
// the concurrency contracts the UI relies on: identity updates are totally
// ordered, superseded fetches are provably inert, and concurrent analysis
// calls for one tender share a single request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const defaultTimeout = 2 * time.Minute

// Client is the shared HTTP layer: base URL, cookie jar carrying the
// session cookie, and uniform decoding of the error envelope.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given server. The cookie jar makes every
// subsequent call carry the session cookie set by login.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
	}, nil
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses come back as typed errors; a body that is not JSON is a
// NetworkError, not a panic or a silent nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		_ = json.Unmarshal(raw, &envelope)
		return apiError(resp.StatusCode, envelope.Code, envelope.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &NetworkError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
