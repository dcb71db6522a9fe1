// Package httpjson provides the JSON-over-HTTP transport shared by the
// hand-written provider adapters.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// maxErrorBody caps how much of an error response is echoed into errors.
const maxErrorBody = 512

// Response is a raw provider answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Post sends payload as JSON to url with the given headers.
func Post(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// CheckStatus maps a non-2xx response to a domain error.
// It returns nil for successful responses.
func CheckStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body := resp.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			RetryAfter: RetryAfter(resp.Header),
			kind:       domain.ErrRateLimited,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body), kind: domain.ErrAuthInvalid}
	default:
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter int
	kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Unwrap exposes the domain classification (rate limit, auth) if any.
func (e *StatusError) Unwrap() error {
	return e.kind
}

// RetryAfter parses the Retry-After header in seconds (0 if absent).
func RetryAfter(h http.Header) int {
	if h == nil {
		return 0
	}
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
