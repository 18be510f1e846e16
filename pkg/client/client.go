// Package client is a typed HTTP client for the sheetmap API.
//
// Every document read returns the version the server reported in its ETag.
// Passing that version back on a write makes the write conditional; a
// stale version comes back as *domain.VersionConflictError. Any other
// non-2xx response is a *domain.NetworkError.
package client

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

	"sheetmap/internal/domain"
)

// Client talks to one sheetmap server.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Client for baseURL. token, when set, is sent as a
// bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

const apiPrefix = "/api/v1"

type request struct {
	method      string
	path        string // below /api/v1
	query       url.Values
	ifMatch     string
	body        io.Reader
	contentType string
}

// do sends req and decodes a 2xx JSON response into out (when non-nil). It
// returns the unquoted ETag.
func (c *Client) do(ctx context.Context, req request, out any) (string, error) {
	u := c.BaseURL + apiPrefix + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ifMatch != "" {
		httpReq.Header.Set("If-Match", strconv.Quote(req.ifMatch))
	}
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", responseError(req, resp)
	}

	etag := strings.Trim(strings.TrimPrefix(resp.Header.Get("ETag"), "W/"), `"`)
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return etag, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", &domain.ParseError{Source: req.path, Err: err}
	}
	return etag, nil
}

func responseError(req request, resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(data))
	}
	if resp.StatusCode == http.StatusPreconditionFailed {
		return &domain.VersionConflictError{
			Key:      strings.TrimPrefix(req.path, "/"),
			Expected: req.ifMatch,
		}
	}
	return &domain.NetworkError{
		Method:   req.method,
		Endpoint: req.path,
		Status:   resp.StatusCode,
		Message:  body.Message,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (string, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path, ifMatch string, in, out any) (string, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return "", fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, request{
		method:      method,
		path:        path,
		ifMatch:     ifMatch,
		body:        body,
		contentType: "application/json",
	}, out)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var nerr *domain.NetworkError
	if errors.As(err, &nerr) {
		return nerr.Status
	}
	var vc *domain.VersionConflictError
	if errors.As(err, &vc) {
		return http.StatusPreconditionFailed
	}
	var dup *domain.DuplicateLookupError
	if errors.As(err, &dup) {
		return http.StatusConflict
	}
	return 0
}
