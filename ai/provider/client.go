package provider

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client drives one adapter call end to end: format, POST, parse. It holds
// no per-request state and is safe to reuse across calls.
type Client struct {
	doer Doer
}

// NewClient creates a client over the given transport. A nil doer falls
// back to a default HTTP client with conservative timeouts.
func NewClient(doer Doer) *Client {
	if doer == nil {
		doer = defaultHTTPClient()
	}
	return &Client{doer: doer}
}

// Send issues one tagging request through the adapter and returns the
// normalized response. Configuration errors surface before any network
// traffic; HTTP failures carry the provider-extracted message.
func (c *Client) Send(ctx context.Context, a Adapter, prompt string) (*Response, error) {
	if err := a.ValidateConfig(); err != nil {
		return nil, err
	}

	headers, err := a.Headers()
	if err != nil {
		return nil, err
	}

	body, err := a.FormatRequest(prompt)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	slog.Debug("provider: sending request",
		"provider", a.Name(),
		"endpoint", a.Endpoint(),
		"request_id", requestID,
		"body_bytes", len(body),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		slog.Error("provider: request failed", "provider", a.Name(), "request_id", requestID, "error", err)
		return nil, &NetworkError{Provider: a.Name(), Status: "connection failed", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: a.Name(), Status: resp.Status, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := a.ExtractError(raw, nil)
		slog.Error("provider: non-2xx response",
			"provider", a.Name(),
			"request_id", requestID,
			"status", resp.Status,
			"message", msg,
		)
		return nil, &NetworkError{Provider: a.Name(), Status: resp.Status, Message: msg}
	}

	parsed, err := a.ParseResponse(raw)
	if err != nil {
		return nil, err
	}

	slog.Debug("provider: response parsed",
		"provider", a.Name(),
		"request_id", requestID,
		"strategy", parsed.Strategy,
		"tags", len(parsed.Tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return parsed, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
