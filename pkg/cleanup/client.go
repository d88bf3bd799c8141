package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Backend is the hosted storage the client submits to and reads from.
type Backend interface {
	// Insert stores one record in table.
	Insert(ctx context.Context, table string, record any) error
	// InsertReturning stores one record and decodes the stored rows into out.
	InsertReturning(ctx context.Context, table string, record any, out any) error
	// Select reads up to limit rows of table, projected onto columns.
	Select(ctx context.Context, table string, columns []string, limit int, out any) error
	// RPC calls a server-side function with JSON params.
	RPC(ctx context.Context, fn string, params any, out any) error
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: %d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("backend: %d %s", e.Status, e.Title)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ Backend = (*Client)(nil)

// NewClient creates a Client. A zero timeout defaults to 30s.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Insert(ctx context.Context, table string, record any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+url.PathEscape(table), record, nil, nil)
}

func (c *Client) InsertReturning(ctx context.Context, table string, record any, out any) error {
	hdr := http.Header{"Prefer": []string{"return=representation"}}
	return c.do(ctx, http.MethodPost, "/rest/v1/"+url.PathEscape(table), record, hdr, out)
}

func (c *Client) Select(ctx context.Context, table string, columns []string, limit int, out any) error {
	q := url.Values{}
	if len(columns) > 0 {
		q.Set("select", strings.Join(columns, ","))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/rest/v1/" + url.PathEscape(table)
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

func (c *Client) RPC(ctx context.Context, fn string, params any, out any) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/rpc/"+url.PathEscape(fn), params, nil, out)
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/health", nil, nil, nil)
}

// do sends an authenticated JSON request and decodes a 2xx body into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, hdr http.Header, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(data) > 0 {
		var p APIError
		if json.Unmarshal(data, &p) == nil {
			if p.Title != "" {
				apiErr.Title = p.Title
			}
			apiErr.Detail = p.Detail
			apiErr.Type = p.Type
		}
	}
	return apiErr
}
