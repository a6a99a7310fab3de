package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/speakerhub/frontend/internal/logging"
)

// Client talks to the shop backend. Every call goes through Do, which injects
// the bearer token when one is set and turns non-2xx responses into *APIError.
type Client struct {
	baseURL    string
	httpClient *http.Client

	token    atomic.Value // string
	inFlight atomic.Int64
}

func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	c.token.Store("")
	return c
}

// SetToken replaces the bearer token used for subsequent calls. An empty
// string makes the client anonymous again.
func (c *Client) SetToken(token string) {
	c.token.Store(token)
}

func (c *Client) Token() string {
	t, _ := c.token.Load().(string)
	return t
}

// Loading reports whether any call is currently in flight.
func (c *Client) Loading() bool {
	return c.inFlight.Load() > 0
}

func (c *Client) InFlight() int64 {
	return c.inFlight.Load()
}

// Do issues method path against the backend. body is JSON-encoded when
// non-nil, the response is decoded into out when non-nil. Non-2xx responses
// become *APIError carrying the server's error message.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t := c.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.FromContext(ctx).Warn("api_call_failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: messageFromBody(data, resp.StatusCode)}
		logging.FromContext(ctx).Warn("api_error", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// messageFromBody extracts the server-supplied error message; the backend uses
// either "error" or "msg" depending on the route.
func messageFromBody(data []byte, status int) string {
	var body struct {
		Error string `json:"error"`
		Msg   string `json:"msg"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Msg != "" {
			return body.Msg
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
