/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// fadeStep is the volume update interval during a fade ramp.
const fadeStep = 20 * time.Millisecond

// Ducker lowers the background channel around spoken segments: down to
// ratio * nominal before speech, back to nominal afterwards. Both moves are
// fire-and-forget ramps; callers never wait on a fade.
type Ducker struct {
	ch      Channel
	fade    time.Duration
	ratio   float64
	nominal float64
	logger  zerolog.Logger

	mu  sync.Mutex
	gen int // fade generation; a newer ramp cancels an older one
}

// NewDucker captures the channel's current volume as the nominal level.
func NewDucker(ch Channel, fade time.Duration, ratio float64, logger zerolog.Logger) *Ducker {
	return &Ducker{
		ch:      ch,
		fade:    fade,
		ratio:   ratio,
		nominal: ch.Volume(),
		logger:  logger.With().Str("component", "ducker").Logger(),
	}
}

// Duck ramps the channel down ahead of speech.
func (d *Ducker) Duck() {
	d.rampTo(d.nominal * d.ratio)
}

// Restore ramps the channel back to nominal after speech completes.
func (d *Ducker) Restore() {
	d.rampTo(d.nominal)
}

func (d *Ducker) rampTo(target float64) {
	d.mu.Lock()
	d.gen++
	myGen := d.gen
	d.mu.Unlock()

	start := d.ch.Volume()
	if d.fade <= 0 || start == target {
		d.ch.SetVolume(target)
		return
	}

	go func() {
		steps := int(d.fade / fadeStep)
		if steps < 1 {
			steps = 1
		}
		delta := (target - start) / float64(steps)

		ticker := time.NewTicker(fadeStep)
		defer ticker.Stop()

		for i := 1; i <= steps; i++ {
			<-ticker.C

			d.mu.Lock()
			stale := myGen != d.gen
			d.mu.Unlock()
			if stale {
				return
			}

			if i == steps {
				d.ch.SetVolume(target)
				return
			}
			d.ch.SetVolume(start + delta*float64(i))
		}
	}()
}
