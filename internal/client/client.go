// Package client talks to a running curator API the way the browser UI does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"curator/internal/models"
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

type Image struct {
	ID       uint            `json:"id"`
	Filename string          `json:"filename"`
	Status   models.Status   `json:"status"`
	Data     json.RawMessage `json:"data"`
}

type StatusReport struct {
	Status          string               `json:"status"`
	Message         string               `json:"message,omitempty"`
	TableExists     bool                 `json:"table_exists"`
	TotalCount      int64                `json:"total_count"`
	StatusBreakdown []models.StatusCount `json:"status_breakdown"`
}

type ListOptions struct {
	Status string
	Search string
	Limit  *int
}

// APIError is a non-2xx answer carrying the server's {error} message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("curator API error %d: %s", e.StatusCode, e.Message)
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Option customizes a Client built by New.
type Option func(*Client)

// WithHTTPClient sends requests through hc instead of a private client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Setup(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/setup", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Status(ctx context.Context) (*StatusReport, error) {
	var out StatusReport
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context, opts ListOptions) ([]Image, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Limit != nil {
		q.Set("limit", strconv.Itoa(*opts.Limit))
	}

	var out []Image
	if err := c.do(ctx, http.MethodGet, "/api/images", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload posts a JSON document (expected to be an array) for batch ingest.
func (c *Client) Upload(ctx context.Context, document []byte) (string, error) {
	if !json.Valid(document) {
		return "", fmt.Errorf("upload document is not valid JSON")
	}

	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload", nil, json.RawMessage(document), &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id uint, status models.Status) (string, error) {
	var out messageResponse
	body := map[string]models.Status{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/images/%d", id), nil, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) UpdateData(ctx context.Context, id uint, data json.RawMessage) (string, error) {
	var out messageResponse
	body := map[string]json.RawMessage{"data": data}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/images/%d", id), nil, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
