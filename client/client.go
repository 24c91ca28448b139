// Package client talks to a DropBy server over its JSON API. Server
// errors come back as the same errors.TaskError values the server
// produced, so callers handle local and remote failures alike.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DropBy-app/dropby/api"
	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/tasks"
	"github.com/DropBy-app/dropby/tasks/board"
	"github.com/DropBy-app/dropby/tasks/compose"
)

// DefaultTimeout bounds a single request when none is given.
const DefaultTimeout = 45 * time.Second

// Client is a board.Board backed by a remote server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var _ board.Board = (*Client)(nil)

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid server URL %q", baseURL))
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(u.String(), "/"),
	}, nil
}

func (c *Client) ListAll(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCompleted(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/completed", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create validates req locally before sending it, so obviously bad
// input never leaves the process.
func (c *Client) Create(ctx context.Context, req tasks.CreateRequest) (string, error) {
	req.Normalize()
	if err := tasks.Validate(req); err != nil {
		return "", err
	}

	var resp api.CreateTaskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) MarkComplete(ctx context.Context, id string, notes string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.NewValidationError("task id is required")
	}

	path := "/tasks/" + url.PathEscape(id) + "/complete"
	return c.do(ctx, http.MethodPost, path, api.CompleteTaskRequest{Notes: notes}, nil)
}

func (c *Client) Compose(ctx context.Context, description string) (compose.Suggestion, error) {
	var s compose.Suggestion
	if err := c.do(ctx, http.MethodPost, "/compose", api.ComposeRequest{Description: description}, &s); err != nil {
		return compose.Suggestion{}, err
	}
	return s, nil
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var h api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return api.HealthResponse{}, err
	}
	return h, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.NewInternalError(fmt.Sprintf("encode request: %v", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.NewInternalError(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError("server unreachable", err, map[string]any{
			"url": c.baseURL,
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewTransportError("malformed server response", err)
	}
	return nil
}

// decodeError turns an error envelope back into a TaskError. Responses
// that are not envelopes (a proxy page, say) become transport errors.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var envelope api.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == "" {
		return errors.NewTransportError(fmt.Sprintf("unexpected server response: %s", resp.Status), nil, map[string]any{
			"status_code": resp.StatusCode,
		})
	}

	return errors.FromType(envelope.Type, envelope.Error, envelope.Details)
}
