// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatbot backend.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// MaxErrorBody is the maximum number of error-body bytes retained.
	// SECURITY: Bounded reads prevent memory exhaustion from a
	// misbehaving server.
	MaxErrorBody = 8 * 1024
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for all non-streaming requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for the chat stream. It carries no
	// client timeout: a response may legitimately stream for minutes, so
	// cancellation is controlled via context instead.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chatbot backend. It issues the streaming chat POST
// and the plain REST calls for session management. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for non-streaming requests.
// Tests use this to point at an httptest server with custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStreamingClient replaces the client used for the chat stream.
func WithStreamingClient(hc *http.Client) Option {
	return func(c *Client) { c.streamClient = hc }
}

// New creates a backend client. The token is sent as a bearer credential on
// every request and is treated as opaque.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		httpClient:   sharedHTTPClient,
		streamClient: sharedStreamingClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token, e.g. after a fresh login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// SESSION REST CALLS
// =============================================================================

// ListSessions fetches the user's chat sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var sessions []SessionSummary
	if err := c.doJSON(ctx, http.MethodGet, "/chats/", nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// History fetches the stored transcript of a session.
func (c *Client) History(ctx context.Context, sessionID int64) (*SessionHistory, error) {
	var history SessionHistory
	path := "/chats/" + strconv.FormatInt(sessionID, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return &history, nil
}

// DeleteSession removes a session and its transcript on the server.
func (c *Client) DeleteSession(ctx context.Context, sessionID int64) error {
	path := "/chats/" + strconv.FormatInt(sessionID, 10)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RenameSession sets a new title and returns the updated summary.
func (c *Client) RenameSession(ctx context.Context, sessionID int64, newTitle string) (*SessionSummary, error) {
	var updated SessionSummary
	path := "/chats/" + strconv.FormatInt(sessionID, 10)
	if err := c.doJSON(ctx, http.MethodPut, path, renameRequest{NewTitle: newTitle}, &updated); err != nil {
		return nil, fmt.Errorf("failed to rename session: %w", err)
	}
	return &updated, nil
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for an access token. The backend expects a
// form-encoded POST, not JSON. The returned token is opaque; it is not
// parsed or persisted by this client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newHTTPError(resp.StatusCode, readBounded(resp.Body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxErrorBody)).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("login response contained no access token")
	}
	return tok.AccessToken, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON performs one request/response exchange with JSON bodies. A nil out
// discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, readBounded(resp.Body))
	}

	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxErrorBody))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// authorize attaches the bearer token, if configured.
func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// readBounded reads at most MaxErrorBody bytes from an error body.
func readBounded(r io.Reader) []byte {
	data, _ := io.ReadAll(io.LimitReader(r, MaxErrorBody))
	return bytes.TrimSpace(data)
}
