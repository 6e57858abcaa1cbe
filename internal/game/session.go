/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package game

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/friendsincode/bragi_bingo/internal/models"
)

var (
	// ErrAlreadyPlaying indicates a round is still sequencing.
	ErrAlreadyPlaying = errors.New("round already playing")

	// ErrPoolExhausted indicates every selected track has been called.
	ErrPoolExhausted = errors.New("song pool exhausted")
)

// Session owns the called/remaining bookkeeping for one live game.
// All mutation goes through its methods; the zero value is not usable.
type Session struct {
	mu sync.Mutex

	pool      []models.Track // full catalog at load time, never mutated
	remaining []models.Track
	called    []models.Track
	current   *models.Track

	welcomeAnnounced bool
	halfwayAnnounced bool
	playing          bool

	songCap int
	rng     *rand.Rand
}

// Snapshot is a read-only copy of session state for the API and board UI.
type Snapshot struct {
	PoolSize         int            `json:"pool_size"`
	RemainingCount   int            `json:"remaining_count"`
	Called           []models.Track `json:"called"`
	CurrentTrack     *models.Track  `json:"current_track,omitempty"`
	WelcomeAnnounced bool           `json:"welcome_announced"`
	HalfwayAnnounced bool           `json:"halfway_announced"`
	IsPlaying        bool           `json:"is_playing"`
}

// NewSession selects a shuffled, capped subset of pool as the remaining
// queue. The pool slice is copied; callers keep ownership of their slice.
func NewSession(rng *rand.Rand, pool []models.Track, songCap int) *Session {
	s := &Session{rng: rng, songCap: songCap}
	s.pool = append([]models.Track(nil), pool...)
	s.reloadLocked()
	return s
}

// reloadLocked rebuilds remaining from pool. Caller holds mu (or is the
// constructor).
func (s *Session) reloadLocked() {
	shuffled := append([]models.Track(nil), s.pool...)
	Shuffle(s.rng, shuffled)
	n := s.songCap
	if n > len(shuffled) {
		n = len(shuffled)
	}
	s.remaining = shuffled[:n]
	s.called = nil
	s.current = nil
	s.welcomeAnnounced = false
	s.halfwayAnnounced = false
	s.playing = false
}

// BeginRound pops the next track, commits it to the called list, and takes
// the playing flag. Returns ErrAlreadyPlaying while a round is in flight and
// ErrPoolExhausted once remaining is empty.
func (s *Session) BeginRound() (models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		return models.Track{}, ErrAlreadyPlaying
	}
	if len(s.remaining) == 0 {
		return models.Track{}, ErrPoolExhausted
	}

	track := s.remaining[0]
	s.remaining = s.remaining[1:]
	s.called = append(s.called, track)
	s.current = &track
	s.playing = true
	return track, nil
}

// EndRound releases the playing flag. Safe to call from a deferred guard on
// every exit path of a round.
func (s *Session) EndRound() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

// NeedsWelcome reports whether the welcome milestone is still pending.
func (s *Session) NeedsWelcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.welcomeAnnounced
}

// MarkWelcomeAnnounced flips the one-shot welcome flag.
func (s *Session) MarkWelcomeAnnounced() {
	s.mu.Lock()
	s.welcomeAnnounced = true
	s.mu.Unlock()
}

// AtHalfway reports whether this round is the halfway milestone: the call
// count has just reached half the selected pool and the milestone has not
// fired yet.
func (s *Session) AtHalfway() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.halfwayAnnounced {
		return false
	}
	total := len(s.remaining) + len(s.called)
	return total > 0 && len(s.called) == total/2
}

// MarkHalfwayAnnounced flips the one-shot halfway flag.
func (s *Session) MarkHalfwayAnnounced() {
	s.mu.Lock()
	s.halfwayAnnounced = true
	s.mu.Unlock()
}

// IsPlaying reports whether a round is currently sequencing.
func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Remaining returns the count of uncalled tracks.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.remaining)
}

// CalledCount returns how many tracks have been called so far.
func (s *Session) CalledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.called)
}

// Current returns the most recently popped track, or nil before the first
// round and after a reset.
func (s *Session) Current() *models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	track := *s.current
	return &track
}

// Reset reshuffles a fresh capped subset from the pool and clears the call
// history, milestone flags, and current track.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked()
}

// Snapshot copies the visible state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		PoolSize:         len(s.remaining) + len(s.called),
		RemainingCount:   len(s.remaining),
		Called:           append([]models.Track(nil), s.called...),
		WelcomeAnnounced: s.welcomeAnnounced,
		HalfwayAnnounced: s.halfwayAnnounced,
		IsPlaying:        s.playing,
	}
	if s.current != nil {
		track := *s.current
		snap.CurrentTrack = &track
	}
	return snap
}
