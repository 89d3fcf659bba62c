// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the admin panel's REST surface: token
// authentication, the server inventory, and construction of the websocket
// console endpoint the session layer dials.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds every REST request.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize caps response bodies so a misbehaving panel cannot
	// exhaust memory.
	MaxResponseSize = 4 * 1024 * 1024
)

// sharedHTTPClient pools connections across all panel requests.
var sharedHTTPClient = &http.Client{
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

// Error variables for common panel errors.
var (
	// ErrNotConfigured indicates the panel URL is not set.
	ErrNotConfigured = errors.New("panel URL not configured")

	// ErrAuthFailed indicates the credentials or token were rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrServerNotFound indicates the server id does not exist.
	ErrServerNotFound = errors.New("server not found")

	// ErrServerNotRunning indicates the server exists but has no live
	// process to attach a console to.
	ErrServerNotRunning = errors.New("server is not running")

	// ErrRateLimited indicates the panel is throttling this client.
	ErrRateLimited = errors.New("rate limited")
)

// PanelError is a non-2xx response that does not map to a sentinel.
type PanelError struct {
	Status  int
	Message string
}

func (e *PanelError) Error() string {
	return fmt.Sprintf("panel error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// TokenResponse is the panel's answer to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ServerInfo is one entry of the server inventory.
type ServerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Game   string `json:"game_version,omitempty"`
}

// Running reports whether a console can be attached.
func (s ServerInfo) Running() bool {
	switch s.Status {
	case "running", "healthy", "starting":
		return true
	default:
		return false
	}
}

type apiErrorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one panel instance. The token is set after Login and
// rides along on every later request.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a panel client for the given base URL, e.g.
// "https://panel.example.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: sharedHTTPClient,
		userAgent:  "mcadmin-console/0.3.0",
	}
}

// WithToken sets a pre-existing access token, skipping Login.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// WithHTTPClient overrides the HTTP client; tests point it at httptest.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Token returns the current access token.
func (c *Client) Token() string { return c.token }

// IsConfigured reports whether a base URL is set.
func (c *Client) IsConfigured() bool { return c.baseURL != "" }

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login exchanges credentials for an access token and stores it on the
// client. The panel speaks the OAuth2 password form flow.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.mapError(resp.StatusCode, body)
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: empty token in response", ErrAuthFailed)
	}
	c.token = tok.AccessToken
	return nil
}

// =============================================================================
// SERVER INVENTORY
// =============================================================================

// ListServers returns the panel's server inventory.
func (c *Client) ListServers(ctx context.Context) ([]ServerInfo, error) {
	var out []ServerInfo
	if err := c.getJSON(ctx, "/api/servers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetServer returns one server's info.
func (c *Client) GetServer(ctx context.Context, id string) (*ServerInfo, error) {
	var out ServerInfo
	if err := c.getJSON(ctx, "/api/servers/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckConsoleReady verifies the server exists and is running before a
// console attach is attempted, so the session layer gets a clean error
// instead of a websocket handshake rejection.
func (c *Client) CheckConsoleReady(ctx context.Context, id string) error {
	info, err := c.GetServer(ctx, id)
	if err != nil {
		return err
	}
	if !info.Running() {
		return fmt.Errorf("%w: %s is %s", ErrServerNotRunning, id, info.Status)
	}
	return nil
}

// =============================================================================
// CONSOLE ENDPOINT
// =============================================================================

// ConsoleURL builds the websocket endpoint for a server's console. Called
// once per connection attempt so each attempt carries the current token
// and a fresh session id.
func (c *Client) ConsoleURL(serverID string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	if c.token == "" {
		return "", fmt.Errorf("%w: no access token", ErrAuthFailed)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing panel URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported panel scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/servers/" + url.PathEscape(serverID) + "/console"

	q := u.Query()
	q.Set("token", c.token)
	q.Set("session", uuid.NewString())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	req.Header.Del("Authorization")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.mapError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// mapError converts non-2xx responses to sentinels where possible.
func (c *Client) mapError(status int, body []byte) error {
	msg := string(body)
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		msg = apiErr.Detail
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrServerNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrServerNotRunning, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return &PanelError{Status: status, Message: msg}
	}
}

// readResponse reads a body with the size cap applied.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
