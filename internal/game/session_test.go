/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/friendsincode/bragi_bingo/internal/models"
)

func testPool(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:          fmt.Sprintf("track-%d", i),
			Title:       fmt.Sprintf("Song %d", i),
			Artist:      "Artist",
			ReleaseYear: 1960 + i,
		}
	}
	return tracks
}

func TestSessionCapsAndConserves(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSession(rng, testPool(100), 48)

	if s.Remaining() != 48 {
		t.Fatalf("remaining = %d, want 48", s.Remaining())
	}

	seen := make(map[string]bool)
	for i := 0; i < 48; i++ {
		track, err := s.BeginRound()
		if err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if seen[track.ID] {
			t.Fatalf("track %s called twice", track.ID)
		}
		seen[track.ID] = true
		s.EndRound()

		if got := s.Remaining() + s.CalledCount(); got != 48 {
			t.Fatalf("round %d: remaining+called = %d, want 48", i, got)
		}
	}

	if _, err := s.BeginRound(); err != ErrPoolExhausted {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestSessionRejectsConcurrentRound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSession(rng, testPool(10), 10)

	if _, err := s.BeginRound(); err != nil {
		t.Fatalf("first round: %v", err)
	}
	if _, err := s.BeginRound(); err != ErrAlreadyPlaying {
		t.Fatalf("expected ErrAlreadyPlaying, got %v", err)
	}

	s.EndRound()
	if _, err := s.BeginRound(); err != nil {
		t.Fatalf("round after release: %v", err)
	}
}

func TestSessionHalfwayFiresExactlyOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSession(rng, testPool(10), 10)

	fired := 0
	for i := 0; i < 10; i++ {
		if _, err := s.BeginRound(); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		if s.AtHalfway() {
			fired++
			if s.CalledCount() != 5 {
				t.Fatalf("halfway fired at called=%d, want 5", s.CalledCount())
			}
			s.MarkHalfwayAnnounced()
		}
		s.EndRound()
	}
	if fired != 1 {
		t.Fatalf("halfway fired %d times, want 1", fired)
	}
}

func TestSessionResetRestoresFreshState(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSession(rng, testPool(20), 20)

	for i := 0; i < 5; i++ {
		if _, err := s.BeginRound(); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
		s.EndRound()
	}
	s.MarkWelcomeAnnounced()

	s.Reset()

	if s.CalledCount() != 0 {
		t.Fatalf("called = %d after reset", s.CalledCount())
	}
	if s.Remaining() != 20 {
		t.Fatalf("remaining = %d after reset, want 20", s.Remaining())
	}
	if s.Current() != nil {
		t.Fatal("current track survived reset")
	}
	if !s.NeedsWelcome() {
		t.Fatal("welcome flag survived reset")
	}
	if s.IsPlaying() {
		t.Fatal("playing flag survived reset")
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSession(rng, testPool(6), 6)

	track, err := s.BeginRound()
	if err != nil {
		t.Fatalf("begin round: %v", err)
	}

	snap := s.Snapshot()
	if snap.PoolSize != 6 || snap.RemainingCount != 5 {
		t.Fatalf("snapshot pool=%d remaining=%d", snap.PoolSize, snap.RemainingCount)
	}
	if !snap.IsPlaying {
		t.Fatal("snapshot should show playing")
	}
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != track.ID {
		t.Fatal("snapshot current track mismatch")
	}
	if len(snap.Called) != 1 || snap.Called[0].ID != track.ID {
		t.Fatal("snapshot called list mismatch")
	}

	// Mutating the snapshot must not reach the session.
	snap.Called[0].ID = "mutated"
	if s.Snapshot().Called[0].ID != track.ID {
		t.Fatal("snapshot shares backing array with session")
	}
}
