/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package game holds the pure session mechanics: shuffling, sizing, and the
// called/remaining track bookkeeping.
package game

import "math/rand"

// baselineSongs is the reference pool size the player tiers scale from.
const baselineSongs = 24

// sizeTier maps an audience ceiling to a multiple of the baseline.
type sizeTier struct {
	maxPlayers int
	numerator  int // base = baselineSongs * numerator / denominator
	denominator int
}

var sizeTiers = []sizeTier{
	{maxPlayers: 10, numerator: 5, denominator: 2}, // 60 songs
	{maxPlayers: 25, numerator: 2, denominator: 1}, // 48 songs
	{maxPlayers: 40, numerator: 3, denominator: 2}, // 36 songs
}

// overflowTierBase applies above the last tier boundary.
const overflowTierBase = 31

// Shuffle permutes s in place using Fisher-Yates. Every permutation is
// equally likely given a uniform source.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// OptimalSongCount returns the song count for an audience size and target
// session length. Deterministic: larger audiences get shorter pools, and the
// result never drops below minSongs.
func OptimalSongCount(numPlayers, targetDurationMinutes, minSongs int) int {
	base := overflowTierBase
	for _, tier := range sizeTiers {
		if numPlayers <= tier.maxPlayers {
			base = baselineSongs * tier.numerator / tier.denominator
			break
		}
	}

	count := base
	if ceiling := targetDurationMinutes * 2; count > ceiling {
		count = ceiling
	}
	if count < minSongs {
		count = minSongs
	}
	return count
}

// EstimateDurationMinutes predicts session length from the pool size.
func EstimateDurationMinutes(numSongs, secondsPerSong int) int {
	return numSongs * secondsPerSong / 60
}
