/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/bragi_bingo/internal/announce"
	"github.com/friendsincode/bragi_bingo/internal/audio"
	"github.com/friendsincode/bragi_bingo/internal/config"
	"github.com/friendsincode/bragi_bingo/internal/events"
	"github.com/friendsincode/bragi_bingo/internal/game"
	"github.com/friendsincode/bragi_bingo/internal/models"
)

type fakeCatalog struct {
	tracks []models.Track
	err    error
}

func (f *fakeCatalog) Tracks(ctx context.Context) ([]models.Track, error) {
	return f.tracks, f.err
}

type fakeSynth struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.fail {
		return nil, errors.New("synthesis unavailable")
	}
	return []byte("riff"), nil
}

func (f *fakeSynth) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakePlayback struct {
	done    chan error
	mu      sync.Mutex
	stopped bool
}

func (p *fakePlayback) Done() <-chan error { return p.done }

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

func (p *fakePlayback) wasStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// fakePlayer completes every playback immediately unless holdPreviews is
// set, in which case URL playbacks (track previews) never finish on their
// own. started is signalled on each Start call when non-nil.
type fakePlayer struct {
	mu           sync.Mutex
	playbacks    []*fakePlayback
	holdPreviews bool
	holdAll      bool
	started      chan audio.Source
}

func (f *fakePlayer) Start(ctx context.Context, src audio.Source) (audio.Playback, error) {
	pb := &fakePlayback{done: make(chan error, 1)}
	hold := f.holdAll || (f.holdPreviews && src.URL != "")
	if !hold {
		pb.done <- nil
	}
	f.mu.Lock()
	f.playbacks = append(f.playbacks, pb)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- src
	}
	return pb, nil
}

func (f *fakePlayer) last() *fakePlayback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.playbacks) == 0 {
		return nil
	}
	return f.playbacks[len(f.playbacks)-1]
}

func testTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:          fmt.Sprintf("t%02d", i),
			Title:       fmt.Sprintf("Song %02d", i),
			Artist:      "Test Artist",
			ReleaseYear: 1990,
			PreviewURL:  fmt.Sprintf("https://previews.test/t%02d.m4a", i),
		}
	}
	return tracks
}

func testConfig() *config.Config {
	return &config.Config{
		VenueName:             "The Anchor",
		TargetDurationMinutes: 60,
		SecondsPerSong:        30,
		MinSongCount:          1,
		PreviewDuration:       25 * time.Millisecond,
		MilestonePause:        time.Millisecond,
		DuckFade:              0,
		DuckRatio:             0.3,
	}
}

func newTestSequencer(t *testing.T, cfg *config.Config, cat *fakeCatalog, synth *fakeSynth, player *fakePlayer) *Sequencer {
	t.Helper()
	logger := zerolog.Nop()
	ch := audio.NewSoftChannel(1.0, nil)
	return New(cfg, Deps{
		Catalog:  cat,
		Announce: announce.NewClient("", "", nil, logger),
		Selector: announce.NewSelector(rand.New(rand.NewSource(7)), cfg.VenueName, announce.Scripts{}),
		Synth:    synth,
		Player:   player,
		Ducker:   audio.NewDucker(ch, cfg.DuckFade, cfg.DuckRatio, logger),
		Bus:      events.NewBus(),
		Rand:     rand.New(rand.NewSource(7)),
	}, logger)
}

func TestStartSessionCapsPool(t *testing.T) {
	cfg := testConfig()
	seq := newTestSequencer(t, cfg, &fakeCatalog{tracks: testTracks(100)}, &fakeSynth{}, &fakePlayer{})

	snap, err := seq.StartSession(context.Background(), 25)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if snap.PoolSize != 48 {
		t.Errorf("pool size = %d, want 48 for 25 players", snap.PoolSize)
	}
	if snap.RemainingCount != 48 || len(snap.Called) != 0 || snap.IsPlaying {
		t.Errorf("fresh session snapshot off: %+v", snap)
	}
}

func TestStartSessionCatalogFailureIsFatal(t *testing.T) {
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{err: errors.New("pool endpoint down")}, &fakeSynth{}, &fakePlayer{})
	if _, err := seq.StartSession(context.Background(), 10); err == nil {
		t.Fatal("expected error when the catalog is unreachable")
	}
}

func TestAdvanceRoundWelcomeThenTrack(t *testing.T) {
	synth := &fakeSynth{}
	player := &fakePlayer{}
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, synth, player)

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := seq.AdvanceRound(context.Background()); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}

	calls := synth.calls()
	if len(calls) != 2 {
		t.Fatalf("synth calls = %d, want welcome + track announcement", len(calls))
	}
	if !strings.Contains(calls[0], "The Anchor") {
		t.Errorf("welcome %q should name the venue", calls[0])
	}

	snap, ok := seq.Snapshot()
	if !ok {
		t.Fatal("no snapshot after starting a session")
	}
	if len(snap.Called) != 1 || snap.IsPlaying || !snap.WelcomeAnnounced {
		t.Errorf("post-round snapshot off: %+v", snap)
	}

	// Second round: welcome must not repeat. The pool of 6 hits halfway at
	// three calls, so round two is just the track announcement.
	if err := seq.AdvanceRound(context.Background()); err != nil {
		t.Fatalf("AdvanceRound (2): %v", err)
	}
	if calls := synth.calls(); len(calls) != 3 {
		t.Fatalf("synth calls after round two = %d, want 3", len(calls))
	}
}

func TestHalfwayFiresOnce(t *testing.T) {
	synth := &fakeSynth{}
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(4)}, synth, &fakePlayer{})

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := seq.AdvanceRound(context.Background()); err != nil {
			t.Fatalf("AdvanceRound %d: %v", i+1, err)
		}
	}

	// Round 1: welcome + track. Round 2 (called == 2 of 4): halfway + track.
	// Rounds 3 and 4: track only.
	if calls := synth.calls(); len(calls) != 6 {
		t.Fatalf("synth calls = %d, want 6", len(calls))
	}
	snap, _ := seq.Snapshot()
	if !snap.HalfwayAnnounced {
		t.Error("halfway flag not set")
	}
}

func TestAdvanceWhileRoundInFlight(t *testing.T) {
	player := &fakePlayer{holdAll: true, started: make(chan audio.Source, 4)}
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, &fakeSynth{}, player)

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- seq.AdvanceRound(ctx) }()

	// Wait until the round is holding on its first playback, then try to
	// advance again.
	<-player.started
	if err := seq.AdvanceRound(context.Background()); !errors.Is(err, game.ErrAlreadyPlaying) {
		t.Fatalf("concurrent advance: err = %v, want ErrAlreadyPlaying", err)
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("held round: err = %v, want context.Canceled", err)
	}
	snap, _ := seq.Snapshot()
	if snap.IsPlaying {
		t.Error("playing flag stuck after cancelled round")
	}
}

func TestSessionCompleteAfterLastTrack(t *testing.T) {
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(1)}, &fakeSynth{}, &fakePlayer{})

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := seq.AdvanceRound(context.Background()); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}

	err := seq.AdvanceRound(context.Background())
	if !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("err = %v, want ErrSessionComplete", err)
	}
	snap, _ := seq.Snapshot()
	if snap.IsPlaying || len(snap.Called) != 1 {
		t.Errorf("completion must not disturb state: %+v", snap)
	}
}

func TestAnnouncementFailureAbortsRound(t *testing.T) {
	synth := &fakeSynth{fail: true}
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, synth, &fakePlayer{})

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	err := seq.AdvanceRound(context.Background())
	if err == nil {
		t.Fatal("expected round failure when the track announcement cannot be synthesized")
	}

	snap, _ := seq.Snapshot()
	if snap.IsPlaying {
		t.Error("playing flag stuck after failed round")
	}
	// The popped track stays on the called list so the game state matches
	// what players heard announced as "coming up".
	if len(snap.Called) != 1 {
		t.Errorf("called = %d, want 1", len(snap.Called))
	}
	// Welcome is first-round-only even when its speech failed.
	if !snap.WelcomeAnnounced {
		t.Error("welcome flag not set after failed first round")
	}
}

func TestPreviewCutoffAtWindow(t *testing.T) {
	player := &fakePlayer{holdPreviews: true}
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, &fakeSynth{}, player)

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	start := time.Now()
	if err := seq.AdvanceRound(context.Background()); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("round took %v, preview window not enforced", elapsed)
	}
	if pb := player.last(); pb == nil || !pb.wasStopped() {
		t.Error("preview playback was not stopped at the window")
	}
}

func TestResetRestoresFreshSession(t *testing.T) {
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, &fakeSynth{}, &fakePlayer{})

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := seq.AdvanceRound(context.Background()); err != nil {
			t.Fatalf("AdvanceRound %d: %v", i+1, err)
		}
	}

	seq.Reset()

	snap, ok := seq.Snapshot()
	if !ok {
		t.Fatal("snapshot unavailable after reset")
	}
	if len(snap.Called) != 0 || snap.CurrentTrack != nil || snap.WelcomeAnnounced || snap.HalfwayAnnounced || snap.IsPlaying {
		t.Errorf("reset did not restore fresh state: %+v", snap)
	}
	if snap.RemainingCount != 6 {
		t.Errorf("remaining = %d, want full reshuffled pool", snap.RemainingCount)
	}
}

func TestCancelledAdvanceLeavesMilestonesUntouched(t *testing.T) {
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, &fakeSynth{}, &fakePlayer{})

	if _, err := seq.StartSession(context.Background(), 8); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := seq.AdvanceRound(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	snap, _ := seq.Snapshot()
	if snap.WelcomeAnnounced {
		t.Error("welcome flag set by a cancelled round")
	}
	if snap.IsPlaying {
		t.Error("playing flag stuck after cancelled round")
	}
}

func TestAdvanceWithoutSession(t *testing.T) {
	seq := newTestSequencer(t, testConfig(), &fakeCatalog{tracks: testTracks(6)}, &fakeSynth{}, &fakePlayer{})
	if err := seq.AdvanceRound(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}
