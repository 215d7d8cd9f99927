// Package crm is the client for the upstream member-management CRM's
// JSON:API-style REST interface. Every call carries the configured bearer
// token; responses are decoded into jsonapi.Document envelopes.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/cloverhq/clover/pkg/jsonapi"
	"github.com/cloverhq/clover/pkg/metrics"
)

const (
	// DefaultTimeout is the default request timeout
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// MaxRequestSize is the maximum request body size (5MB)
	MaxRequestSize = 5 * 1024 * 1024
)

// Config holds upstream client configuration
type Config struct {
	BaseURL            string
	BearerToken        string
	Timeout            time.Duration
	MaxIdleConns       int
	IdleConnTimeout    time.Duration
	DisableCompression bool
	DisableKeepAlives  bool
}

// DefaultConfig returns default client configuration for the given base URL
// and token.
func DefaultConfig(baseURL, token string) Config {
	return Config{
		BaseURL:         baseURL,
		BearerToken:     token,
		Timeout:         DefaultTimeout,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Client wraps the HTTP client with auth, logging, and size limits
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	logger  ectologger.Logger
}

// NewClient creates a new upstream CRM client
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("crm base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid crm base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:       cfg.MaxIdleConns,
		IdleConnTimeout:    cfg.IdleConnTimeout,
		DisableCompression: cfg.DisableCompression,
		DisableKeepAlives:  cfg.DisableKeepAlives,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.BearerToken,
		logger:  logger,
	}, nil
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Ping issues a cheap request to verify the upstream is reachable and the
// token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/resource_types", url.Values{"page[size]": []string{"1"}})
	return err
}

// do executes a request against the upstream and decodes the JSON:API
// envelope. Non-2xx responses become APIErrors; transport failures become
// the generic connectivity error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*jsonapi.Document, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		if len(payload) > MaxRequestSize {
			return nil, fmt.Errorf("request body too large: %d bytes (max %d)", len(payload), MaxRequestSize)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(duration.Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, "network_error").Inc()
		c.logger.WithContext(ctx).WithError(err).Errorf("CRM request failed: %s %s", method, reqURL)
		return nil, newNetworkError()
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response too large: %d bytes (max %d)", resp.ContentLength, MaxResponseSize)
	}

	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(respBody) > MaxResponseSize {
		return nil, fmt.Errorf("response body too large: %d bytes (max %d)", len(respBody), MaxResponseSize)
	}

	c.logger.WithContext(ctx).Debugf("CRM %s %s -> %d (%s)", method, reqURL, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, respBody)
	}

	if len(respBody) == 0 {
		return &jsonapi.Document{}, nil
	}

	var doc jsonapi.Document
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &doc, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*jsonapi.Document, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (*jsonapi.Document, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) put(ctx context.Context, path string, body any) (*jsonapi.Document, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}
