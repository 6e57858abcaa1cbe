/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cards requests printable bingo card generation from the external
// card service. Only the generation summary is consumed here.
package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client calls the card generation endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient builds a card client. An empty baseURL disables generation.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	c := &Client{
		logger: logger.With().Str("component", "cards-client").Logger(),
	}
	if baseURL != "" {
		c.endpoint = baseURL + "/api/generate-cards"
		c.httpClient = &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

// Enabled reports whether a card service is configured.
func (c *Client) Enabled() bool { return c.endpoint != "" }

type generateRequest struct {
	VenueName    string `json:"venue_name"`
	NumPlayers   int    `json:"num_players"`
	OptimalSongs int    `json:"optimal_songs"`
}

// Result summarizes a card generation run.
type Result struct {
	NumCards int `json:"num_cards"`
	NumPages int `json:"num_pages"`
}

// Generate requests cards for the session.
func (c *Client) Generate(ctx context.Context, venueName string, numPlayers, optimalSongs int) (Result, error) {
	var result Result
	if !c.Enabled() {
		return result, fmt.Errorf("card service not configured")
	}

	body, err := json.Marshal(generateRequest{
		VenueName:    venueName,
		NumPlayers:   numPlayers,
		OptimalSongs: optimalSongs,
	})
	if err != nil {
		return result, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("generate cards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("generate cards: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("decode card result: %w", err)
	}

	c.logger.Info().Int("cards", result.NumCards).Int("pages", result.NumPages).Msg("bingo cards generated")
	return result, nil
}
