// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sgerrors "sqlsage/cli/internal/errors"
)

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client

	// defaults applied when the caller uses plain Complete
	defaultOpts Options
}

// Config holds the settings needed to reach the completions endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewHTTPClient builds a client for the configured endpoint. Timeout zero
// means 30 seconds.
func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		defaultOpts: Options{
			Temperature: 0.01,
			MaxTokens:   1024,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the prompt pair with the client defaults.
func (c *HTTPClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.CompleteWith(ctx, system, user, c.defaultOpts)
}

// CompleteWith sends the prompt pair with explicit sampling options.
func (c *HTTPClient) CompleteWith(ctx context.Context, system, user string, opts Options) (string, error) {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = c.defaultOpts.MaxTokens
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", sgerrors.Wrap(sgerrors.OracleUnreachable, "completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", sgerrors.Wrap(sgerrors.OracleUnreachable, "decode completion response", err)
	}
	if out.Error != nil {
		return "", sgerrors.New(sgerrors.OracleUnreachable, "completion error: "+out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", sgerrors.New(sgerrors.OracleUnreachable, "completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// statusError turns a non-200 response into a typed error, keeping the first
// part of the body for diagnostics.
func (c *HTTPClient) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))

	var payload chatResponse
	if json.Unmarshal(snippet, &payload) == nil && payload.Error != nil {
		msg = payload.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return sgerrors.New(sgerrors.OracleUnreachable,
			fmt.Sprintf("authentication failed (%d): %s", resp.StatusCode, msg))
	case http.StatusTooManyRequests:
		return sgerrors.New(sgerrors.OracleUnreachable,
			"rate limit exceeded: "+msg)
	default:
		return sgerrors.New(sgerrors.OracleUnreachable,
			fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, msg))
	}
}
