/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog supplies the playable track pool, either from a remote
// pool provider or from the local database.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/friendsincode/bragi_bingo/internal/models"
)

// Provider returns the full catalog of playable tracks. A failure here is
// fatal to session startup.
type Provider interface {
	Tracks(ctx context.Context) ([]models.Track, error)
}

// HTTPProvider fetches the pool from a remote endpoint.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPProvider creates a provider for GET <baseURL>/api/pool.
func NewHTTPProvider(baseURL string, logger zerolog.Logger) *HTTPProvider {
	return &HTTPProvider{
		url: baseURL + "/api/pool",
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "pool-provider").Logger(),
	}
}

type poolResponse struct {
	Songs []models.Track `json:"songs"`
}

// Tracks fetches and decodes the remote pool.
func (p *HTTPProvider) Tracks(ctx context.Context) ([]models.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch song pool: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch song pool: status %d", resp.StatusCode)
	}

	var pool poolResponse
	if err := json.NewDecoder(resp.Body).Decode(&pool); err != nil {
		return nil, fmt.Errorf("decode song pool: %w", err)
	}

	p.logger.Info().Int("songs", len(pool.Songs)).Msg("song pool loaded")
	return pool.Songs, nil
}

// DBProvider serves the pool from the local track table.
type DBProvider struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewDBProvider creates a database-backed pool provider.
func NewDBProvider(db *gorm.DB, logger zerolog.Logger) *DBProvider {
	return &DBProvider{
		db:     db,
		logger: logger.With().Str("component", "pool-provider").Logger(),
	}
}

// Tracks loads every catalog track ordered by title.
func (p *DBProvider) Tracks(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := p.db.WithContext(ctx).Order("title ASC").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("load track catalog: %w", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("track catalog is empty")
	}
	return tracks, nil
}
