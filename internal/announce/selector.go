/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package announce picks the spoken copy for welcome, halfway, and per-track
// announcements. Announcement text never contains the track title or artist;
// revealing the answer would defeat the game.
package announce

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/friendsincode/bragi_bingo/internal/models"
)

// AIEntry holds externally generated announcement copy for one track.
type AIEntry struct {
	Decade string `json:"decade"`
	Trivia string `json:"trivia"`
	Simple string `json:"simple"`
}

// AIAnnouncements maps track ID to its generated copy.
type AIAnnouncements map[string]AIEntry

// Category names for the template dispatch table.
const (
	CategoryDecade = "decade"
	CategoryTrivia = "trivia"
	CategorySimple = "simple"
)

// weightedCategory is one row of the dispatch table. Weights are relative;
// the table below encodes the even 1/3 split.
type weightedCategory struct {
	Name   string
	Weight int
}

var trackCategories = []weightedCategory{
	{CategoryDecade, 1},
	{CategoryTrivia, 1},
	{CategorySimple, 1},
}

// Selector chooses announcement text. Safe for use from one sequencing
// goroutine; the internal lock only protects the rand source.
type Selector struct {
	mu      sync.Mutex
	rng     *rand.Rand
	venue   string
	scripts Scripts
}

// NewSelector builds a selector for the venue. Empty script slices fall back
// to the defaults.
func NewSelector(rng *rand.Rand, venue string, scripts Scripts) *Selector {
	defaults := DefaultScripts()
	if len(scripts.Welcome) == 0 {
		scripts.Welcome = defaults.Welcome
	}
	if len(scripts.Halfway) == 0 {
		scripts.Halfway = defaults.Halfway
	}
	if len(scripts.Trivia) == 0 {
		scripts.Trivia = defaults.Trivia
	}
	if len(scripts.Simple) == 0 {
		scripts.Simple = defaults.Simple
	}
	if len(scripts.Eighties) == 0 {
		scripts.Eighties = defaults.Eighties
	}
	return &Selector{rng: rng, venue: venue, scripts: scripts}
}

// SetVenue replaces the venue name substituted into welcome scripts.
func (s *Selector) SetVenue(venue string) {
	if venue == "" {
		return
	}
	s.mu.Lock()
	s.venue = venue
	s.mu.Unlock()
}

// SetWelcomeScripts replaces the welcome pool, e.g. with operator-supplied
// custom announcements. The venue placeholder is still substituted.
func (s *Selector) SetWelcomeScripts(scripts []string) {
	if len(scripts) == 0 {
		return
	}
	s.mu.Lock()
	s.scripts.Welcome = append([]string(nil), scripts...)
	s.mu.Unlock()
}

// SelectWelcome returns one welcome script with the venue name filled in.
func (s *Selector) SelectWelcome() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	script := s.scripts.Welcome[s.rng.Intn(len(s.scripts.Welcome))]
	return strings.ReplaceAll(script, VenuePlaceholder, s.venue)
}

// SelectHalfway returns one halfway script.
func (s *Selector) SelectHalfway() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scripts.Halfway[s.rng.Intn(len(s.scripts.Halfway))]
}

// SelectTrackText returns the announcement for a track. AI-generated copy
// wins when present; the template table is the fallback.
func (s *Selector) SelectTrackText(track models.Track, ai AIAnnouncements) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := ai[track.ID]; ok {
		if text := s.pickAILocked(entry); text != "" {
			return text
		}
	}

	switch s.pickCategoryLocked() {
	case CategoryDecade:
		return s.decadeTextLocked(track.ReleaseYear)
	case CategoryTrivia:
		return s.scripts.Trivia[s.rng.Intn(len(s.scripts.Trivia))]
	default:
		return s.scripts.Simple[s.rng.Intn(len(s.scripts.Simple))]
	}
}

// pickAILocked chooses uniformly among the entry's non-empty categories.
func (s *Selector) pickAILocked(entry AIEntry) string {
	candidates := make([]string, 0, 3)
	for _, text := range []string{entry.Decade, entry.Trivia, entry.Simple} {
		if text != "" {
			candidates = append(candidates, text)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[s.rng.Intn(len(candidates))]
}

// pickCategoryLocked draws from the weighted dispatch table.
func (s *Selector) pickCategoryLocked() string {
	total := 0
	for _, c := range trackCategories {
		total += c.Weight
	}
	draw := s.rng.Intn(total)
	for _, c := range trackCategories {
		draw -= c.Weight
		if draw < 0 {
			return c.Name
		}
	}
	return trackCategories[len(trackCategories)-1].Name
}

// decadeTextLocked buckets the release year and returns its line. The
// eighties bucket carries multiple variants.
func (s *Selector) decadeTextLocked(year int) string {
	for _, bucket := range decadeLines {
		if year >= bucket.minYear {
			if bucket.minYear == 1980 {
				return s.scripts.Eighties[s.rng.Intn(len(s.scripts.Eighties))]
			}
			return bucket.line
		}
	}
	return oldiesLine
}
