package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the per-request timeout of the default transport.
	DefaultTimeout = 30 * time.Second
)

// HTTPTransport is the default Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with the given per-request timeout.
// A timeout <= 0 falls back to DefaultTimeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the underlying HTTP client (for testing).
func (t *HTTPTransport) SetHTTPClient(client *http.Client) {
	t.client = client
}

// Execute performs one HTTP exchange. Responses with status >= 400 are
// returned as *Error carrying the status and the error body; failures
// without a response are returned as *Error with status 0.
func (t *HTTPTransport) Execute(ctx context.Context, method, url string, body []byte, header http.Header) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &Error{Message: "create request", Err: err}
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "read response body", Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: resp.Status,
			Body:    data,
		}
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
	}, nil
}
