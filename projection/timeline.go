// Package projection builds local timelines from observed events.
// Handles ordering and projections.
// Does not emit events or interact with UI directly.
package projection

import (
	"context"
	"sync"
	"time"

	"promenade/domain"
	"promenade/domain/event"
)

type PresenceKind string

const (
	KindJoined PresenceKind = "joined"
	KindLeft   PresenceKind = "left"
)

// PresenceChange is one join or leave observed by the projection,
// together with the room occupancy right after it.
type PresenceChange struct {
	ID          domain.ConnectionID
	DisplayName string
	Kind        PresenceKind
	Occupancy   int
	At          time.Time
}

// Timeline projects join/leave events into an occupancy history.
// It is a permanent sink: it sees every broadcast event and keeps only
// the presence transitions.
type Timeline struct {
	mu        sync.RWMutex
	changes   []PresenceChange
	occupancy int
	peak      int
	names     map[domain.ConnectionID]string
}

func NewTimeline() *Timeline {
	return &Timeline{names: make(map[domain.ConnectionID]string)}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt := e.(type) {
	case event.ParticipantJoined:
		if _, known := t.names[evt.Participant.ID]; known {
			// Re-join of an already-registered connection, no transition
			t.names[evt.Participant.ID] = evt.Participant.DisplayName
			return nil
		}
		t.names[evt.Participant.ID] = evt.Participant.DisplayName
		t.occupancy++
		if t.occupancy > t.peak {
			t.peak = t.occupancy
		}
		t.changes = append(t.changes, PresenceChange{
			ID:          evt.Participant.ID,
			DisplayName: evt.Participant.DisplayName,
			Kind:        KindJoined,
			Occupancy:   t.occupancy,
			At:          time.Now().UTC(),
		})
	case event.ParticipantLeft:
		name, known := t.names[evt.ID]
		if !known {
			return nil
		}
		delete(t.names, evt.ID)
		t.occupancy--
		t.changes = append(t.changes, PresenceChange{
			ID:          evt.ID,
			DisplayName: name,
			Kind:        KindLeft,
			Occupancy:   t.occupancy,
			At:          time.Now().UTC(),
		})
	}
	return nil
}

func (t *Timeline) Occupancy() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.occupancy
}

func (t *Timeline) Peak() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.peak
}

// Changes returns a copy of the presence history, oldest first.
func (t *Timeline) Changes() []PresenceChange {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]PresenceChange, len(t.changes))
	copy(out, t.changes)
	return out
}
