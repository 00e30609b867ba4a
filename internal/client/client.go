// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client calls a running paper-searcher HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

const defaultTimeout = 30 * time.Second

// AbstractResponse is the decoded /abstract envelope.
type AbstractResponse struct {
	Code int                   `json:"code"`
	Msg  string                `json:"msg"`
	Data []types.TitleAbstract `json:"data,omitempty"`
}

// Client talks to one API base URL.
type Client struct {
	baseURL    *url.URL
	hc         *http.Client
	maxRetries int
	progress   io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithMaxRetries sets how many times a 429 or 503 response is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithProgress sets where retry notices are written.
func WithProgress(w io.Writer) Option {
	return func(c *Client) { c.progress = w }
}

// New returns a Client for baseURL, which must be an http or https URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server URL %q: want http://host[:port]", baseURL)
	}
	c := &Client{
		baseURL:  u,
		hc:       &http.Client{Timeout: defaultTimeout},
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search sends raw to /search. A code=1 envelope is returned as a
// response, not an error; errors are transport or decoding failures.
func (c *Client) Search(ctx context.Context, raw query.RawRequest) (types.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", raw.Query)
	if raw.Venues.Present {
		params.Set("s", raw.Venues.Value)
	}
	if raw.Years.Present {
		params.Set("y", raw.Years.Value)
	}
	params.Set("offset", raw.Offset)
	params.Set("limit", raw.Limit)

	var resp types.SearchResponse
	err := c.get(ctx, "/search", params, &resp)
	return resp, err
}

// Abstract fetches /abstract/{id}.
func (c *Client) Abstract(ctx context.Context, id int64) (AbstractResponse, error) {
	var resp AbstractResponse
	err := c.get(ctx, "/abstract/"+strconv.FormatInt(id, 10), nil, &resp)
	return resp, err
}

// Health reports whether /healthz answers with code=0.
func (c *Client) Health(ctx context.Context) error {
	var resp types.DataResponse
	if err := c.get(ctx, "/healthz", nil, &resp); err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("health check: %s", resp.Msg)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(ctx, c.hc, req, c.maxRetries, c.progress)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("requesting %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
