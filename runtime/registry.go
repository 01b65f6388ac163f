package runtime

import (
	"sync"

	"promenade/contract"
	"promenade/domain"
)

type session struct {
	participant domain.Participant
	sink        contract.EventSink
}

// Registry is the authoritative mapping connection id -> participant
// for the process lifetime. It is pure in-memory state: a restart drops
// every entry and clients rejoin from scratch.
//
// All mutation goes through the orchestrator's event-handling path, but
// the lock stays because handlers run on one goroutine per connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.ConnectionID]*session)}
}

// Register inserts the participant keyed by its connection id together
// with the connection's sink. A second register for the same id
// overwrites the entry wholesale; replaced reports that case so the
// caller can decide what to rebroadcast.
func (r *Registry) Register(id domain.ConnectionID, p domain.Participant, sink contract.EventSink) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.sessions[id]
	r.sessions[id] = &session{participant: p, sink: sink}
	return p, replaced
}

// Update overwrites position, yaw and motion wholesale. A movement for
// an unknown id (move before join, or after disconnect) reports
// ok=false and mutates nothing; the caller drops it silently.
func (r *Registry) Update(id domain.ConnectionID, m domain.Movement) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return domain.Participant{}, false
	}
	entry.participant.Apply(m)
	return entry.participant, true
}

// Remove deletes and returns the entry. Disconnect before join is a
// benign race: ok=false, nothing to announce.
func (r *Registry) Remove(id domain.ConnectionID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.sessions, id)
	return entry.participant, true
}

func (r *Registry) Lookup(id domain.ConnectionID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[id]
	if !ok {
		return domain.Participant{}, false
	}
	return entry.participant, true
}

// Snapshot returns a copy of every current participant in unspecified
// order. Used to populate a joining client's initial view of the room.
func (r *Registry) Snapshot() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Participant, 0, len(r.sessions))
	for _, entry := range r.sessions {
		out = append(out, entry.participant)
	}
	return out
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) SinkFor(id domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return entry.sink, true
}

// SinksExcept retrieves the sinks of every joined connection but one.
// This is the fan-out set for moved and joined broadcasts, which are
// never echoed back to their origin.
func (r *Registry) SinksExcept(id domain.ConnectionID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for sessionID, entry := range r.sessions {
		if sessionID == id {
			continue
		}
		sinks = append(sinks, entry.sink)
	}
	return sinks
}

// AllSinks retrieves every joined connection's sink, the fan-out set
// for chat messages.
func (r *Registry) AllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, entry := range r.sessions {
		sinks = append(sinks, entry.sink)
	}
	return sinks
}
