// Package sdk provides the diagramastext Go SDK: a CIAM session client
// managing anonymous sign-in and token refresh, and a diagram-generation
// client consuming the resulting bearer tokens.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diagramastext/diagramastext/sdk/go/headers"
)

const defaultBaseURL = "https://api.diagramastext.dev"
const defaultUserAgent = "diagramastext-sdk/" + Version

// HTTPDoer abstracts the outbound request mechanism so the SDK can be
// exercised against a mock transport in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config wires the base URL, token persistence, fingerprinting, and
// telemetry for the API client.
type Config struct {
	BaseURL     string
	HTTPClient  HTTPDoer
	Store       TokenStore
	Fingerprint FingerprintScanner
	Telemetry   TelemetryHooks
	UserAgent   string
}

// Client provides high-level helpers for interacting with the
// diagramastext API.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	telemetry  TelemetryHooks
	userAgent  string

	// Grouped service clients.
	Auth     *AuthClient
	Diagrams *DiagramsClient
}

// NewClient validates the configuration and returns a ready-to-use Client.
// The token bundle is restored from the configured store; an unparsable
// stored blob falls open to the anonymous state.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	scanner := cfg.Fingerprint
	if scanner == nil {
		scanner = UserAgentScanner{UserAgent: ua}
	}
	client := &Client{
		baseURL:    normalized,
		httpClient: httpClient,
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
	}
	client.Auth = newAuthClient(client, store, scanner)
	client.Diagrams = &DiagramsClient{client: client}
	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("sdk: base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("sdk: invalid base URL: %w", err)
	}
	if u.Scheme == "" {
		return "", errors.New("sdk: base URL missing scheme (http/https)")
	}
	if u.Host == "" {
		return "", errors.New("sdk: base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	injectTraceparent(ctx, req)
	return req, nil
}

func (c *Client) prepare(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get(headers.RequestID) == "" {
		req.Header.Set(headers.RequestID, uuid.NewString())
	}
}

// send dispatches the request with telemetry hooks attached. Status
// handling is left to the calling service group: the CIAM endpoints
// treat any non-200 as a hard failure while the diagram endpoint maps
// statuses to user-facing messages.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	c.prepare(req)
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(req.Context(), req)
	}
	c.telemetry.log(req.Context(), LogLevelInfo, "http_request", map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(req.Context(), req, resp, err, time.Since(start))
	}
	c.telemetry.metric(req.Context(), "sdk_http_request_latency_ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"path": req.URL.Path,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
