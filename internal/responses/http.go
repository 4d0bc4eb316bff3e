package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// HTTPClient talks to a responses-style backend over HTTP with SSE streaming.
// Authentication happens in the transport chain via oauth2.Transport; the
// client itself is stateless and safe for concurrent use.
type HTTPClient struct {
	baseURL   string
	transport http.RoundTripper
	client    *http.Client
}

// Compile-time check that HTTPClient satisfies the collaborator contract.
var _ Client = (*HTTPClient)(nil)

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTransport sets the base transport under the authenticating transport.
// Intended for tests and custom proxy/timeout setups.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) {
		c.transport = rt
	}
}

// NewHTTPClient creates a backend client for the given base URL, drawing
// bearer credentials from source on every request.
func NewHTTPClient(baseURL string, source oauth2.TokenSource, opts ...ClientOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if source == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	c := &HTTPClient{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: c.transport},
		// Client.Timeout = 0 allows long-running SSE streams; callers bound
		// individual requests through ctx.
	}

	return c, nil
}

// APIError is a structured backend failure, decoded from the error envelope
// the backend returns on non-2xx statuses.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("backend error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// CreateResponse performs one buffered generation call.
func (c *HTTPClient) CreateResponse(ctx context.Context, req *Request) (*Response, error) {
	r := *req
	r.Stream = false

	httpResp, err := c.post(ctx, &r, "application/json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode backend response: %w", err)
	}
	return &resp, nil
}

// StreamResponse starts a streaming generation call. The returned stream's
// Close cancels the underlying request, which is the abort handle exposed to
// stream consumers.
func (c *HTTPClient) StreamResponse(ctx context.Context, req *Request) (EventStream, error) {
	r := *req
	r.Stream = true

	streamCtx, cancel := context.WithCancel(ctx)
	httpResp, err := c.post(streamCtx, &r, "text/event-stream")
	if err != nil {
		cancel()
		return nil, err
	}

	return newSSEStream(httpResp.Body, cancel), nil
}

// post sends the request body to the responses endpoint and normalizes
// non-2xx statuses into *APIError.
func (c *HTTPClient) post(ctx context.Context, req *Request, accept string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode backend request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call backend: %w", err)
	}

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = httpResp.Body.Close() }()
		return nil, decodeAPIError(httpResp)
	}
	return httpResp, nil
}

// decodeAPIError reads a non-2xx body and extracts the backend's error
// envelope, falling back to the raw body when it is not JSON.
func decodeAPIError(httpResp *http.Response) error {
	apiErr := &APIError{
		StatusCode: httpResp.StatusCode,
		Message:    http.StatusText(httpResp.StatusCode),
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Error.Message != "" {
		apiErr.Type = envelope.Error.Type
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else if msg := strings.TrimSpace(string(raw)); msg != "" {
		apiErr.Message = msg
	}

	return apiErr
}
