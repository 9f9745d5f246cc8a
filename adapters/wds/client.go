// Package wds implements the statistical data provider's REST boundary:
// cube metadata, coordinate-to-vector resolution and range observations.
package wds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"statfeed/internal/errors"
)

// DefaultBaseURL is the provider's REST root.
const DefaultBaseURL = "https://www150.statcan.gc.ca/t1/wds/rest"

// statusSuccess is the provider's item-level success marker.
const statusSuccess = "SUCCESS"

// Client talks to the provider. All requests are stateless; callers own
// retry policy and deadlines beyond the configured timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// postJSON sends a JSON payload and returns the response body, mapping
// connection failures and non-2xx statuses to TRANSPORT_ERROR.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// getJSON issues a GET and returns the response body under the same
// transport-error mapping as postJSON.
func (c *Client) getJSON(ctx context.Context, pathAndQuery string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Transport("HTTP request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport("failed to read response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Transport(
			fmt.Sprintf("provider returned HTTP %d: %s", resp.StatusCode, truncate(body, 200)), nil)
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
