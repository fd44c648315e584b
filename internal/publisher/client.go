package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production publishing API endpoint.
	DefaultBaseURL = "https://androidpublisher.googleapis.com"

	apiPrefix    = "/androidpublisher/v3/applications"
	uploadPrefix = "/upload/androidpublisher/v3/applications"

	// requestsPerSecond caps outbound API calls well under the default
	// per-minute quota for the publishing API.
	requestsPerSecond = 5
)

// ErrNotFound indicates the server reported 404 for the requested resource.
var ErrNotFound = fmt.Errorf("resource not found")

// StatusError is a non-2xx API response that is not a 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("publishing API error: status %d", e.Code)
	}
	return fmt.Sprintf("publishing API error: status %d: %s", e.Code, e.Body)
}

// Client provides methods for calling the publishing API under an
// authenticated HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a publishing API client. The HTTP client is expected to
// carry bearer authentication (see credentials.Authenticate); it defaults to
// [http.DefaultClient] for unauthenticated test servers.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// do performs a JSON request against the API and decodes the response into
// result when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, result)
}

// send rate-limits, executes, and decodes a prepared request.
func (c *Client) send(req *http.Request, result any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func editPath(packageName, editID string) string {
	return fmt.Sprintf("%s/%s/edits/%s", apiPrefix, packageName, editID)
}
