/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventSessionStarted  EventType = "session.started"
	EventSessionReset    EventType = "session.reset"
	EventSessionComplete EventType = "session.complete"

	EventRoundStarted EventType = "round.started"
	EventRoundFailed  EventType = "round.failed"
	EventTrackCalled  EventType = "track.called"

	EventMilestoneWelcome EventType = "milestone.welcome"
	EventMilestoneHalfway EventType = "milestone.halfway"

	EventPreviewCutoff EventType = "preview.cutoff"

	// Jingle schedule CRUD events (for board refresh).
	EventJingleUpdated EventType = "jingle.updated"
	EventJingleDeleted EventType = "jingle.deleted"
)

// SessionEvents lists everything a bingo board cares about during play.
var SessionEvents = []EventType{
	EventSessionStarted,
	EventSessionReset,
	EventSessionComplete,
	EventRoundStarted,
	EventRoundFailed,
	EventTrackCalled,
	EventMilestoneWelcome,
	EventMilestoneHalfway,
	EventPreviewCutoff,
}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to subscribers. Slow subscribers drop events rather
// than block the publisher. The read lock is held across the sends so a
// concurrent Unsubscribe cannot close a channel mid-send.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	b.subs[eventType] = subs
	close(sub)
}
