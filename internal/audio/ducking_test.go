/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitForVolume(t *testing.T, ch Channel, want float64, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if v := ch.Volume(); v > want-0.001 && v < want+0.001 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("volume %v never reached %v", ch.Volume(), want)
}

func TestDuckerRampsDownAndBack(t *testing.T) {
	ch := NewSoftChannel(1.0, nil)
	d := NewDucker(ch, 60*time.Millisecond, 0.3, zerolog.Nop())

	d.Duck()
	waitForVolume(t, ch, 0.3, time.Second)

	d.Restore()
	waitForVolume(t, ch, 1.0, time.Second)
}

func TestDuckerZeroFadeIsImmediate(t *testing.T) {
	ch := NewSoftChannel(0.8, nil)
	d := NewDucker(ch, 0, 0.5, zerolog.Nop())

	d.Duck()
	if v := ch.Volume(); v < 0.399 || v > 0.401 {
		t.Fatalf("expected immediate duck to 0.4, got %v", v)
	}
	d.Restore()
	if v := ch.Volume(); v < 0.799 || v > 0.801 {
		t.Fatalf("expected immediate restore to 0.8, got %v", v)
	}
}

func TestDuckerNewerRampWins(t *testing.T) {
	ch := NewSoftChannel(1.0, nil)
	d := NewDucker(ch, 80*time.Millisecond, 0.3, zerolog.Nop())

	d.Duck()
	time.Sleep(20 * time.Millisecond)
	d.Restore()

	waitForVolume(t, ch, 1.0, time.Second)

	// Give the cancelled duck ramp time to misbehave if it were still live.
	time.Sleep(120 * time.Millisecond)
	if v := ch.Volume(); v < 0.999 {
		t.Fatalf("stale duck ramp overwrote restore: volume %v", v)
	}
}

func TestSoftChannelNotifiesOnChange(t *testing.T) {
	var last float64
	ch := NewSoftChannel(1.0, func(v float64) { last = v })

	ch.SetVolume(0.25)
	if last != 0.25 {
		t.Fatalf("change hook saw %v, want 0.25", last)
	}
	if ch.Volume() != 0.25 {
		t.Fatalf("volume = %v, want 0.25", ch.Volume())
	}

	ch.SetVolume(-1)
	if ch.Volume() != 0 {
		t.Fatalf("negative volume not clamped: %v", ch.Volume())
	}
}
