package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx response from the daemon, carrying the server-side
// message when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("daemon returned %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the daemon HTTP API on behalf of the CLI.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs an API client for the daemon at bind (host:port).
func NewClient(bind string) *Client {
	return &Client{
		baseURL: "http://" + strings.TrimSpace(bind),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start requests a new timelapse job.
func (c *Client) Start(ctx context.Context, startDate, endDate string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/api/timelapse", StartRequest{StartDate: startDate, EndDate: endDate}, &out)
	return out, err
}

// Progress fetches the live progress snapshot.
func (c *Client) Progress(ctx context.Context) (ProgressResponse, error) {
	var out ProgressResponse
	err := c.do(ctx, http.MethodGet, "/api/progress", nil, &out)
	return out, err
}

// Cancel raises the cancel signal for the in-flight job, if any.
func (c *Client) Cancel(ctx context.Context) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/api/cancel", nil, &out)
	return out, err
}

// Status fetches the aggregated daemon status.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
