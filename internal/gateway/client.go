package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL matches the Flask development server the backend runs on.
	DefaultBaseURL = "http://localhost:5000"

	// translateTimeout bounds /translate calls; translation is an enhancement
	// and must not stall the workflow indefinitely.
	translateTimeout = 20 * time.Second
)

// Client is a typed HTTP client for the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New builds a Client. A nil httpClient gets a 5 second timeout default; an
// empty baseURL falls back to DefaultBaseURL.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// apiMessage extracts the backend's error or message field from a failed
// response body, falling back to the raw text.
func apiMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// postJSON executes a JSON POST against path and decodes a 2xx body into out
// when out is non-nil. 401/403 responses come back as *AuthError(Invalid);
// every other failure is a *RequestError.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Kind: AuthInvalid, Message: apiMessage(data)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Message: apiMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &RequestError{Kind: RequestRejected, Status: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
		}
	}
	return nil
}
