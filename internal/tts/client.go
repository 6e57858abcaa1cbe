/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package tts talks to the speech synthesis gateway.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client synthesizes announcement text to audio bytes over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient builds a synthesis client for the gateway base URL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		endpoint: baseURL + "/api/tts",
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "tts-client").Logger(),
	}
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

type synthesizeError struct {
	Error string `json:"error"`
}

// Synthesize converts text to audio bytes. A non-success status surfaces the
// gateway's error message as the failure reason.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr synthesizeError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gwErr); decodeErr == nil && gwErr.Error != "" {
			return nil, fmt.Errorf("speech synthesis failed: %s", gwErr.Error)
		}
		return nil, fmt.Errorf("speech synthesis failed: status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}

	c.logger.Debug().
		Int("text_len", len(text)).
		Int("audio_bytes", len(audio)).
		Dur("elapsed", time.Since(start)).
		Msg("synthesized announcement")

	return audio, nil
}
