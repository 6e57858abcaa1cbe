/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// AICache stores fetched AI announcements between sessions.
type AICache interface {
	GetAIAnnouncements(ctx context.Context) (AIAnnouncements, bool)
	SetAIAnnouncements(ctx context.Context, ai AIAnnouncements)
}

// Settings is the announcement configuration supplied by the operator
// backend.
type Settings struct {
	VenueName           string   `json:"venue_name"`
	CustomAnnouncements []string `json:"custom_announcements"`
}

// Client fetches announcement settings and AI-generated copy. Both sources
// are optional; fetch failures degrade to defaults.
type Client struct {
	settingsURL string
	aiURL       string
	httpClient  *http.Client
	cache       AICache
	logger      zerolog.Logger
}

// NewClient builds an announcement client. Either URL may be empty, which
// disables that source. cache may be nil.
func NewClient(settingsURL, aiURL string, cache AICache, logger zerolog.Logger) *Client {
	return &Client{
		settingsURL: settingsURL,
		aiURL:       aiURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache:  cache,
		logger: logger.With().Str("component", "announce-client").Logger(),
	}
}

// FetchSettings returns the remote announcement settings, or defaults with
// the given venue when the source is absent or failing. Failures are logged,
// never surfaced.
func (c *Client) FetchSettings(ctx context.Context, defaultVenue string) Settings {
	fallback := Settings{VenueName: defaultVenue}
	if c.settingsURL == "" {
		return fallback
	}

	var settings Settings
	if err := c.getJSON(ctx, c.settingsURL, &settings); err != nil {
		c.logger.Warn().Err(err).Msg("announcement settings fetch failed, using defaults")
		return fallback
	}
	if settings.VenueName == "" {
		settings.VenueName = defaultVenue
	}
	return settings
}

// FetchAI returns the AI announcement map, or nil when the source is absent
// or failing. The selector treats nil as "use templates".
func (c *Client) FetchAI(ctx context.Context) AIAnnouncements {
	if c.aiURL == "" {
		return nil
	}

	if c.cache != nil {
		if ai, ok := c.cache.GetAIAnnouncements(ctx); ok {
			return ai
		}
	}

	var ai AIAnnouncements
	if err := c.getJSON(ctx, c.aiURL, &ai); err != nil {
		c.logger.Debug().Err(err).Msg("ai announcements unavailable, falling back to templates")
		return nil
	}

	if c.cache != nil && len(ai) > 0 {
		c.cache.SetAIAnnouncements(ctx, ai)
	}
	return ai
}

func (c *Client) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
