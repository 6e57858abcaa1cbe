/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/bragi_bingo/internal/events"
	"github.com/friendsincode/bragi_bingo/internal/models"
)

type jingleRequest struct {
	Name       string `json:"name"`
	AudioURL   string `json:"audio_url"`
	EverySongs int    `json:"every_songs"`
	Enabled    bool   `json:"enabled"`
}

func (req *jingleRequest) validate() string {
	if req.Name == "" {
		return "name_required"
	}
	if req.AudioURL == "" {
		return "audio_url_required"
	}
	if req.EverySongs < 1 {
		return "every_songs_invalid"
	}
	return ""
}

func (a *API) handleListJingles(w http.ResponseWriter, r *http.Request) {
	var jingles []models.JingleSchedule
	if err := a.db.WithContext(r.Context()).Order("name ASC").Find(&jingles).Error; err != nil {
		a.logger.Error().Err(err).Msg("jingle list failed")
		writeError(w, http.StatusInternalServerError, "database_error")
		return
	}
	writeJSON(w, http.StatusOK, jingles)
}

func (a *API) handleGetJingle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jingleID")

	var jingle models.JingleSchedule
	err := a.db.WithContext(r.Context()).First(&jingle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "jingle_not_found")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("jingle fetch failed")
		writeError(w, http.StatusInternalServerError, "database_error")
		return
	}
	writeJSON(w, http.StatusOK, jingle)
}

func (a *API) handleCreateJingle(w http.ResponseWriter, r *http.Request) {
	var req jingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	jingle := models.JingleSchedule{
		ID:         uuid.NewString(),
		Name:       req.Name,
		AudioURL:   req.AudioURL,
		EverySongs: req.EverySongs,
		Enabled:    req.Enabled,
	}
	if err := a.db.WithContext(r.Context()).Create(&jingle).Error; err != nil {
		a.logger.Error().Err(err).Msg("jingle create failed")
		writeError(w, http.StatusInternalServerError, "database_error")
		return
	}

	a.bus.Publish(events.EventJingleUpdated, events.Payload{"jingle_id": jingle.ID})
	writeJSON(w, http.StatusCreated, jingle)
}

func (a *API) handleUpdateJingle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jingleID")

	var jingle models.JingleSchedule
	err := a.db.WithContext(r.Context()).First(&jingle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "jingle_not_found")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("jingle fetch failed")
		writeError(w, http.StatusInternalServerError, "database_error")
		return
	}

	var req jingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	jingle.Name = req.Name
	jingle.AudioURL = req.AudioURL
	jingle.EverySongs = req.EverySongs
	jingle.Enabled = req.Enabled
	if err := a.db.WithContext(r.Context()).Save(&jingle).Error; err != nil {
		a.logger.Error().Err(err).Msg("jingle update failed")
		writeError(w, http.StatusInternalServerError, "database_error")
		return
	}

	a.bus.Publish(events.EventJingleUpdated, events.Payload{"jingle_id": jingle.ID})
	writeJSON(w, http.StatusOK, jingle)
}

func (a *API) handleDeleteJingle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jingleID")

	res := a.db.WithContext(r.Context()).Delete(&models.JingleSchedule{}, "id = ?", id)
	if res.Error != nil {
		a.logger.Error().Err(res.Error).Msg("jingle delete failed")
		writeError(w, http.StatusInternalServerError, "database_error")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "jingle_not_found")
		return
	}

	a.bus.Publish(events.EventJingleDeleted, events.Payload{"jingle_id": id})
	w.WriteHeader(http.StatusNoContent)
}
