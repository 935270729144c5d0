// Package jsonserver talks to the generic REST resource store: a json-server
// style CRUD API paginated with _limit/_page and sorted with _sort/_order.
//
// Every call returns its own Pagination alongside the decoded body, so
// concurrent calls never observe each other's headers.
package jsonserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookgraph/internal/apperr"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 50
	maxErrorBody   = 512
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Timeout time.Duration
	RPS     int
	Logger  *zap.Logger
	Metrics *Metrics
}

// Client issues HTTP calls to the resource store. It is safe for concurrent
// use and holds no per-call state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *Metrics
}

// Response is the per-call result metadata. The body is decoded into the
// caller's target.
type Response struct {
	StatusCode int
	Pagination Pagination
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Get fetches path and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post creates a resource and decodes the stored record into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Patch partially updates a resource and decodes the stored record into out.
func (c *Client) Patch(ctx context.Context, path string, in, out any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, in, out)
}

// Delete removes a resource. Whatever body the store returns is discarded.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Ping fetches path and discards the body. Unlike the other calls it is
// bound by ctx, so a caller's deadline cuts a slow store short.
func (c *Client) Ping(ctx context.Context, path string) error {
	_, err := c.send(ctx, http.MethodGet, path, nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (*Response, error) {
	// Abandoning the inbound request does not cancel calls already issued;
	// the client timeout bounds them instead.
	return c.send(context.WithoutCancel(ctx), method, path, in, out)
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Upstreamf(err, "%s %s: rate limit wait", method, path)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, apperr.Upstreamf(err, "%s %s: encode body", method, path)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+ensureSlash(path), body)
	if err != nil {
		return nil, apperr.Upstreamf(err, "%s %s: build request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, path, 0, time.Since(start))
		c.logger.Debug("upstream call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, apperr.Upstreamf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.metrics.observe(method, path, resp.StatusCode, elapsed)
	c.logger.Debug("upstream call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	)

	result := &Response{
		StatusCode: resp.StatusCode,
		Pagination: paginationFrom(resp.Header),
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return result, apperr.NotFoundf("%s %s: not found", method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return result, apperr.Upstreamf(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
			"%s %s", method, path,
		)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return result, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return result, apperr.Upstreamf(err, "%s %s: decode response", method, path)
	}
	return result, nil
}

func ensureSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
