/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sequencer drives a bingo session: it walks each round through
// its milestone announcements, the track announcement and the preview
// window, ducking the music bed under every spoken segment.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/bragi_bingo/internal/announce"
	"github.com/friendsincode/bragi_bingo/internal/audio"
	"github.com/friendsincode/bragi_bingo/internal/cards"
	"github.com/friendsincode/bragi_bingo/internal/catalog"
	"github.com/friendsincode/bragi_bingo/internal/config"
	"github.com/friendsincode/bragi_bingo/internal/events"
	"github.com/friendsincode/bragi_bingo/internal/game"
	"github.com/friendsincode/bragi_bingo/internal/models"
	"github.com/friendsincode/bragi_bingo/internal/telemetry"
)

var (
	// ErrNoSession is returned when a round is advanced before StartSession.
	ErrNoSession = errors.New("sequencer: no active session")
	// ErrSessionComplete is returned when every pooled track has been called.
	ErrSessionComplete = errors.New("sequencer: session complete")
)

// Synthesizer converts announcement text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Sequencer owns the session lifecycle and the per-round state machine.
type Sequencer struct {
	cfg      *config.Config
	catalog  catalog.Provider
	announce *announce.Client
	selector *announce.Selector
	synth    Synthesizer
	player   audio.Player
	ducker   *audio.Ducker
	cards    *cards.Client
	bus      *events.Bus
	logger   zerolog.Logger

	mu          sync.Mutex
	session     *game.Session
	ai          announce.AIAnnouncements
	roundCancel context.CancelFunc
	roundGen    uint64
	rng         *rand.Rand
}

// Deps bundles the collaborators a Sequencer composes.
type Deps struct {
	Catalog  catalog.Provider
	Announce *announce.Client
	Selector *announce.Selector
	Synth    Synthesizer
	Player   audio.Player
	Ducker   *audio.Ducker
	Cards    *cards.Client
	Bus      *events.Bus
	Rand     *rand.Rand
}

func New(cfg *config.Config, deps Deps, logger zerolog.Logger) *Sequencer {
	return &Sequencer{
		cfg:      cfg,
		catalog:  deps.Catalog,
		announce: deps.Announce,
		selector: deps.Selector,
		synth:    deps.Synth,
		player:   deps.Player,
		ducker:   deps.Ducker,
		cards:    deps.Cards,
		bus:      deps.Bus,
		rng:      deps.Rand,
		logger:   logger.With().Str("component", "sequencer").Logger(),
	}
}

// StartSession fetches the track catalog, sizes the game for numPlayers and
// shuffles a fresh pool. A catalog failure is fatal; announcement settings
// and AI text are fetched best-effort.
func (s *Sequencer) StartSession(ctx context.Context, numPlayers int) (game.Snapshot, error) {
	pool, err := s.catalog.Tracks(ctx)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load track pool: %w", err)
	}

	songCap := game.OptimalSongCount(numPlayers, s.cfg.TargetDurationMinutes, s.cfg.MinSongCount)
	if songCap > len(pool) {
		songCap = len(pool)
	}

	settings := s.announce.FetchSettings(ctx, s.cfg.VenueName)
	s.selector.SetVenue(settings.VenueName)
	if len(settings.CustomAnnouncements) > 0 {
		s.selector.SetWelcomeScripts(settings.CustomAnnouncements)
	}
	ai := s.announce.FetchAI(ctx)

	s.mu.Lock()
	if s.roundCancel != nil {
		s.roundCancel()
		s.roundCancel = nil
	}
	s.session = game.NewSession(s.rng, pool, songCap)
	s.ai = ai
	snap := s.session.Snapshot()
	s.mu.Unlock()

	s.logger.Info().
		Int("num_players", numPlayers).
		Int("pool_size", len(pool)).
		Int("song_cap", songCap).
		Int("estimated_minutes", game.EstimateDurationMinutes(songCap, s.cfg.SecondsPerSong)).
		Msg("session started")

	s.bus.Publish(events.EventSessionStarted, events.Payload{
		"num_players":       numPlayers,
		"song_count":        songCap,
		"estimated_minutes": game.EstimateDurationMinutes(songCap, s.cfg.SecondsPerSong),
	})

	if s.cards != nil && s.cards.Enabled() && numPlayers > 0 {
		if res, err := s.cards.Generate(ctx, settings.VenueName, numPlayers, songCap); err != nil {
			s.logger.Warn().Err(err).Msg("card generation failed, continuing without cards")
		} else {
			s.logger.Info().Int("num_cards", res.NumCards).Int("num_pages", res.NumPages).Msg("bingo cards generated")
		}
	}

	return snap, nil
}

// AdvanceRound runs one full round: welcome milestone on the first round,
// halfway milestone at the midpoint, the track announcement, then the track
// preview capped at the preview window. Milestone speech is best-effort; a
// failed track announcement aborts the round.
func (s *Sequencer) AdvanceRound(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	ai := s.ai
	s.mu.Unlock()
	if sess == nil {
		return ErrNoSession
	}

	track, err := sess.BeginRound()
	if err != nil {
		switch {
		case errors.Is(err, game.ErrAlreadyPlaying):
			s.logger.Debug().Msg("advance ignored, a round is already playing")
			return err
		case errors.Is(err, game.ErrPoolExhausted):
			s.logger.Info().Msg("all tracks called, session complete")
			s.bus.Publish(events.EventSessionComplete, events.Payload{
				"called": sess.CalledCount(),
			})
			return ErrSessionComplete
		}
		return err
	}

	roundCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.roundCancel = cancel
	s.roundGen++
	gen := s.roundGen
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		// After a reset a newer round may already own the playing flag;
		// only this round's own state gets cleared.
		current := s.roundGen == gen
		if current {
			s.roundCancel = nil
		}
		s.mu.Unlock()
		if current {
			sess.EndRound()
		}
	}()

	s.bus.Publish(events.EventRoundStarted, events.Payload{
		"track_id":  track.ID,
		"title":     track.Title,
		"artist":    track.Artist,
		"remaining": sess.Remaining(),
		"called":    sess.CalledCount(),
	})

	if sess.NeedsWelcome() {
		// A reset may have cancelled this round before it got going; the
		// fresh session's flags must stay untouched.
		if err := roundCtx.Err(); err != nil {
			return err
		}
		// Mark before the outcome is known: the welcome belongs to the
		// first round whether or not the speech made it out.
		sess.MarkWelcomeAnnounced()
		if err := s.speak(roundCtx, s.selector.SelectWelcome()); err != nil {
			s.logger.Warn().Err(err).Msg("welcome announcement failed")
		} else {
			s.bus.Publish(events.EventMilestoneWelcome, nil)
		}
		if err := s.pause(roundCtx, s.cfg.MilestonePause); err != nil {
			return err
		}
	}

	if sess.AtHalfway() {
		if err := roundCtx.Err(); err != nil {
			return err
		}
		sess.MarkHalfwayAnnounced()
		if err := s.speak(roundCtx, s.selector.SelectHalfway()); err != nil {
			s.logger.Warn().Err(err).Msg("halfway announcement failed")
		} else {
			s.bus.Publish(events.EventMilestoneHalfway, events.Payload{
				"called": sess.CalledCount(),
			})
		}
		if err := s.pause(roundCtx, s.cfg.MilestonePause); err != nil {
			return err
		}
	}

	text := s.selector.SelectTrackText(track, ai)
	if err := s.speak(roundCtx, text); err != nil {
		telemetry.RoundFailures.WithLabelValues("announce").Inc()
		s.bus.Publish(events.EventRoundFailed, events.Payload{
			"track_id": track.ID,
			"phase":    "announce",
			"error":    err.Error(),
		})
		return fmt.Errorf("announce track: %w", err)
	}

	s.bus.Publish(events.EventTrackCalled, events.Payload{
		"track_id":  track.ID,
		"title":     track.Title,
		"artist":    track.Artist,
		"remaining": sess.Remaining(),
		"called":    sess.CalledCount(),
	})

	if err := s.preview(roundCtx, track); err != nil {
		telemetry.RoundFailures.WithLabelValues("preview").Inc()
		s.bus.Publish(events.EventRoundFailed, events.Payload{
			"track_id": track.ID,
			"phase":    "preview",
			"error":    err.Error(),
		})
		return fmt.Errorf("preview track: %w", err)
	}

	telemetry.RoundsTotal.WithLabelValues("ok").Inc()
	return nil
}

// Reset abandons the current session. Any in-flight round is cancelled so
// its completion cannot touch the fresh state.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	if s.roundCancel != nil {
		s.roundCancel()
		s.roundCancel = nil
	}
	sess := s.session
	s.mu.Unlock()

	if sess != nil {
		sess.Reset()
	}
	s.logger.Info().Msg("session reset")
	s.bus.Publish(events.EventSessionReset, nil)
}

// Snapshot reports the current session state, or a zero snapshot when no
// session has been started.
func (s *Sequencer) Snapshot() (game.Snapshot, bool) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return game.Snapshot{}, false
	}
	return sess.Snapshot(), true
}

// speak synthesizes text and plays it over the ducked music bed, returning
// once the speech finishes or ctx is cancelled.
func (s *Sequencer) speak(ctx context.Context, text string) error {
	start := time.Now()
	data, err := s.synth.Synthesize(ctx, text)
	telemetry.SpeechSynthesisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	s.ducker.Duck()
	defer s.ducker.Restore()

	pb, err := s.player.Start(ctx, audio.Source{Data: data})
	if err != nil {
		return err
	}
	defer pb.Stop()

	select {
	case err := <-pb.Done():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// preview plays the track's preview clip, stopping it at the preview window
// if it has not finished by then.
func (s *Sequencer) preview(ctx context.Context, track models.Track) error {
	if track.PreviewURL == "" {
		return errors.New("track has no preview url")
	}

	pb, err := s.player.Start(ctx, audio.Source{URL: track.PreviewURL})
	if err != nil {
		return err
	}
	defer pb.Stop()

	timer := time.NewTimer(s.cfg.PreviewDuration)
	defer timer.Stop()

	select {
	case err := <-pb.Done():
		return err
	case <-timer.C:
		telemetry.PreviewCutoffs.Inc()
		s.bus.Publish(events.EventPreviewCutoff, events.Payload{
			"track_id": track.ID,
		})
		pb.Stop()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
