/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the operator control surface: session lifecycle,
// pool inspection, jingle schedules and the live event stream.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/bragi_bingo/internal/auth"
	"github.com/friendsincode/bragi_bingo/internal/catalog"
	"github.com/friendsincode/bragi_bingo/internal/events"
	"github.com/friendsincode/bragi_bingo/internal/game"
	"github.com/friendsincode/bragi_bingo/internal/sequencer"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	jwtSecret []byte
	seq       *sequencer.Sequencer
	catalog   catalog.Provider
	bus       *events.Bus
	logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, jwtSecret []byte, seq *sequencer.Sequencer, cat catalog.Provider, bus *events.Bus, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		jwtSecret: jwtSecret,
		seq:       seq,
		catalog:   cat,
		bus:       bus,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all handlers under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(pr chi.Router) {
		pr.Get("/healthz", a.handleHealth)
		pr.Get("/session", a.handleGetSession)
		pr.Get("/pool", a.handleGetPool)
		pr.Get("/jingles", a.handleListJingles)
		pr.Get("/jingles/{jingleID}", a.handleGetJingle)

		// Mutations and the event stream require an operator token. The
		// WebSocket upgrade may carry it as ?token= since browsers cannot
		// set Authorization headers on WebSocket requests.
		pr.Group(func(opr chi.Router) {
			opr.Use(auth.Middleware(a.jwtSecret))
			opr.Get("/events/ws", a.handleEvents)
			opr.Post("/session/start", a.handleStartSession)
			opr.Post("/session/advance", a.handleAdvanceRound)
			opr.Post("/session/reset", a.handleResetSession)
			opr.Post("/jingles", a.handleCreateJingle)
			opr.Put("/jingles/{jingleID}", a.handleUpdateJingle)
			opr.Delete("/jingles/{jingleID}", a.handleDeleteJingle)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type startSessionRequest struct {
	NumPlayers int `json:"num_players"`
}

type startSessionResponse struct {
	Session game.Snapshot `json:"session"`
}

func (a *API) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.NumPlayers < 1 {
		writeError(w, http.StatusBadRequest, "num_players_required")
		return
	}

	snap, err := a.seq.StartSession(r.Context(), req.NumPlayers)
	if err != nil {
		a.logger.Error().Err(err).Msg("session start failed")
		writeError(w, http.StatusBadGateway, "pool_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, startSessionResponse{Session: snap})
}

func (a *API) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	err := a.seq.AdvanceRound(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, sequencer.ErrNoSession):
		writeError(w, http.StatusConflict, "no_session")
		return
	case errors.Is(err, game.ErrAlreadyPlaying):
		writeError(w, http.StatusConflict, "round_in_progress")
		return
	case errors.Is(err, sequencer.ErrSessionComplete):
		writeError(w, http.StatusConflict, "session_complete")
		return
	default:
		a.logger.Error().Err(err).Msg("round failed")
		writeError(w, http.StatusInternalServerError, "round_failed")
		return
	}

	snap, _ := a.seq.Snapshot()
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) handleResetSession(w http.ResponseWriter, r *http.Request) {
	a.seq.Reset()
	snap, ok := a.seq.Snapshot()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.seq.Snapshot()
	if !ok {
		writeError(w, http.StatusNotFound, "no_session")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) handleGetPool(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.catalog.Tracks(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("pool fetch failed")
		writeError(w, http.StatusBadGateway, "pool_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"songs": tracks,
		"count": len(tracks),
	})
}

func parseEventTypes(raw string) []events.EventType {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]events.EventType, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, events.EventType(part))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
