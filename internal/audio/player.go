/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audio defines the playback adapter surface the sequencer drives:
// a one-shot player for previews and speech, and a background channel whose
// volume the ducking policy shapes.
package audio

import (
	"context"
	"sync"
)

// Source is one playable audio input: either a remote/local URL or raw
// synthesized bytes, never both.
type Source struct {
	URL  string
	Data []byte
}

// Playback is one in-flight play operation. Done delivers exactly one value:
// nil on natural end, the playback error otherwise. Stop force-ends playback;
// a stopped playback completes Done with nil.
type Playback interface {
	Done() <-chan error
	Stop()
}

// Player starts playback of a source. Load or start failures surface as the
// returned error; everything after a successful start arrives via Done.
type Player interface {
	Start(ctx context.Context, src Source) (Playback, error)
}

// Channel is a volume-controllable background audio channel.
type Channel interface {
	Volume() float64
	SetVolume(v float64)
}

// SoftChannel is an in-process Channel. The optional onChange hook forwards
// volume updates to whatever renders the background music.
type SoftChannel struct {
	mu       sync.Mutex
	volume   float64
	onChange func(float64)
}

// NewSoftChannel creates a channel at the given nominal volume.
func NewSoftChannel(volume float64, onChange func(float64)) *SoftChannel {
	return &SoftChannel{volume: volume, onChange: onChange}
}

// Volume returns the current channel volume.
func (c *SoftChannel) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// SetVolume updates the channel volume and notifies the change hook.
func (c *SoftChannel) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	c.mu.Lock()
	c.volume = v
	hook := c.onChange
	c.mu.Unlock()
	if hook != nil {
		hook(v)
	}
}
