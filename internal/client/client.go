// Package client is an HTTP client for the Kotae API, used by the CLI.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hyperjump/kotae/internal/models"
)

// DefaultTimeout bounds one API call. Queries wait on the model, so it is generous.
const DefaultTimeout = 2 * time.Minute

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Client calls a running Kotae server.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL. A non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server URL must have a host, got %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}, nil
}

// Upload sends the file at path to POST /upload.
func (c *Client) Upload(ctx context.Context, path string) (*models.UploadResponse, error) {
	var out models.UploadResponse
	req := c.http.R().SetContext(ctx).SetFile("file", path).SetResult(&out)
	if err := send(req, "POST", "/upload"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query asks a question.
func (c *Client) Query(ctx context.Context, q *models.QueryRequest) (*models.QueryResponse, error) {
	var out models.QueryResponse
	req := c.http.R().SetContext(ctx).SetBody(q).SetResult(&out)
	if err := send(req, "POST", "/query"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summarize asks for a summary of document id.
func (c *Client) Summarize(ctx context.Context, id string) (*models.SummaryResponse, error) {
	var out models.SummaryResponse
	req := c.http.R().SetContext(ctx).SetBody(&models.SummaryRequest{DocumentID: id}).SetResult(&out)
	if err := send(req, "POST", "/summarize"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Documents lists stored documents.
func (c *Client) Documents(ctx context.Context) (*models.DocumentList, error) {
	var out models.DocumentList
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := send(req, "GET", "/documents"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes document id.
func (c *Client) Delete(ctx context.Context, id string) (*models.DeleteResponse, error) {
	var out models.DeleteResponse
	req := c.http.R().SetContext(ctx).SetPathParam("id", id).SetResult(&out)
	if err := send(req, "DELETE", "/documents/{id}"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics fetches the query statistics.
func (c *Client) Analytics(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	var out models.AnalyticsSnapshot
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := send(req, "GET", "/analytics"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the server health.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if err := send(req, "GET", "/health"); err != nil {
		return nil, err
	}
	return &out, nil
}

func send(req *resty.Request, method, path string) error {
	var body errorBody
	resp, err := req.SetError(&body).Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		msg := body.Detail
		if msg == "" {
			msg = body.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
