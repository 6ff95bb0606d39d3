package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	maxErrorBody   = 1 << 20
	maxSuccessBody = 8 << 20
)

// Config holds what every upstream call needs
type Config struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Model   string
	Timeout time.Duration
}

// client implements the authenticated JSON POST both gateways use
type client struct {
	baseURL    string
	apiKey     string
	referer    string
	title      string
	httpClient *http.Client
}

func newClient(c Config) *client {
	return &client{
		baseURL:    strings.TrimRight(c.BaseURL, "/"),
		apiKey:     c.APIKey,
		referer:    c.Referer,
		title:      c.Title,
		httpClient: &http.Client{Timeout: c.Timeout},
	}
}

// errorMessage pulls a readable message out of an upstream error body
type errorMessage func(body []byte) string

// post sends payload to path and decodes a 2xx answer into out. Any other
// outcome becomes an *UpstreamError.
func (c *client) post(ctx context.Context, path string, payload, out any, msg errorMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request, %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request, %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}

	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		m := msg(raw)
		if m == "" {
			m = http.StatusText(resp.StatusCode)
		}

		return &UpstreamError{Status: resp.StatusCode, Message: m}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSuccessBody)).Decode(out); err != nil {
		return &UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "failed to decode upstream response: " + err.Error(),
			Err:     err,
		}
	}

	return nil
}

// rawBody reports the upstream body as-is
func rawBody(body []byte) string {
	return strings.TrimSpace(string(body))
}

// apiErrorBody prefers the {"error": {"message": ...}} envelope OpenRouter
// uses and falls back to the raw body.
func apiErrorBody(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}

	return rawBody(body)
}
