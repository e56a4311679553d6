// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/warden-project/warden/lib/clock"
	"github.com/warden-project/warden/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// APIBaseURL is the REST API base including the version prefix
	// (e.g., "https://discord.com/api/v10").
	APIBaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// Clock is used for rate-limit waits. If nil, clock.Real().
	Clock clock.Clock
}

// Client holds the API base URL and HTTP transport, shared across
// sessions. It performs no authentication itself — the token lives on
// the DirectSession.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.Clock
}

// NewClient creates a new unauthenticated Discord REST client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.APIBaseURL == "" {
		return nil, fmt.Errorf("platform: APIBaseURL is required")
	}
	// Validate structure; request URLs are built by concatenation so
	// the stored form never re-encodes paths.
	if _, err := url.Parse(config.APIBaseURL); err != nil {
		return nil, fmt.Errorf("platform: invalid APIBaseURL %q: %w", config.APIBaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.APIBaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		clock:      clk,
	}, nil
}

// SessionFromToken creates a DirectSession authenticated with the bot
// token. The session takes ownership of the buffer and closes it when
// the session is closed.
func (c *Client) SessionFromToken(token *secret.Buffer) *DirectSession {
	return &DirectSession{
		client: c,
		token:  token,
	}
}

// CloseIdleConnections drops idle HTTP connections so the next
// request opens a fresh socket. Useful after a network disruption to
// avoid reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// maxRateLimitRetries bounds how many 429 responses a single logical
// request will wait out before giving up.
const maxRateLimitRetries = 2

// doRequest performs an HTTP request against the API and returns the
// response body. On 2xx, returns the body. On 4xx/5xx, returns an
// *APIError. A 429 is waited out (per the server's retry_after) and
// retried a bounded number of times. reason, when non-empty, is sent
// as the audit-log reason header on privileged calls.
func (c *Client) doRequest(ctx context.Context, method, path string, token *secret.Buffer, requestBody any, reason string) ([]byte, error) {
	var encoded []byte
	if requestBody != nil {
		var err error
		encoded, err = json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("platform: failed to encode request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if encoded != nil {
			bodyReader = bytes.NewReader(encoded)
		}

		request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("platform: failed to create request: %w", err)
		}
		if encoded != nil {
			request.Header.Set("Content-Type", "application/json")
		}
		if token != nil {
			request.Header.Set("Authorization", "Bot "+token.String())
		}
		if reason != "" {
			// The audit-log header value must be URI-encoded.
			request.Header.Set("X-Audit-Log-Reason", url.PathEscape(reason))
		}

		response, err := c.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("platform: request to %s %s failed: %w", method, path, err)
		}

		responseBody, err := io.ReadAll(response.Body)
		response.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("platform: failed to read response body: %w", err)
		}

		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return responseBody, nil
		}

		if response.StatusCode == http.StatusTooManyRequests && attempt < maxRateLimitRetries {
			wait := parseRetryAfter(responseBody)
			c.logger.Warn("rate limited, waiting",
				"method", method,
				"path", path,
				"retry_after", wait,
				"attempt", attempt+1,
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("platform: rate-limit wait cancelled: %w", ctx.Err())
			case <-c.clock.After(wait):
			}
			continue
		}

		// All Discord error responses share the same JSON shape.
		var apiErr APIError
		if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil || apiErr.Message == "" {
			return nil, fmt.Errorf("platform: unexpected %d response from %s %s: %s",
				response.StatusCode, method, path, string(responseBody))
		}
		apiErr.StatusCode = response.StatusCode
		return nil, &apiErr
	}
}

// parseRetryAfter extracts the wait duration from a 429 body. Falls
// back to one second when the body is unparseable.
func parseRetryAfter(body []byte) time.Duration {
	var rateLimited struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &rateLimited); err != nil || rateLimited.RetryAfter <= 0 {
		return time.Second
	}
	return time.Duration(rateLimited.RetryAfter * float64(time.Second))
}
