package client

import (
	"encoding/json"
	"sync"
	"time"

	"promenade/domain"
	"promenade/infrastructure/ws"
)

// Presenter is the presentation layer the reconciler drives: spawning,
// moving and despawning remote avatars and showing chat. It is never
// consulted for state; the reconciler's mirror is overwritten only by
// relayed events.
type Presenter interface {
	Spawn(p domain.Participant)
	Update(p domain.Participant)
	Despawn(id domain.ConnectionID)
	ShowChat(entry domain.ChatEntry)
}

// Reconciler mirrors the other participants' public state from relayed
// events. The mirror is non-authoritative: every field is last-write-
// wins from the server, nothing is interpolated or extrapolated here.
type Reconciler struct {
	mu        sync.RWMutex
	remote    map[domain.ConnectionID]domain.Participant
	chatLog   *domain.ChatLog
	presenter Presenter
}

func NewReconciler(presenter Presenter) *Reconciler {
	return &Reconciler{
		remote:    make(map[domain.ConnectionID]domain.Participant),
		chatLog:   domain.NewChatLog(domain.DefaultChatLogCap),
		presenter: presenter,
	}
}

// Apply folds one server envelope into the mirror. Unknown types and
// undecodable payloads are reported but never fatal.
func (r *Reconciler) Apply(envelope ws.RawEnvelope) error {
	switch envelope.Type {
	case ws.EventRosterSnapshot:
		var payload []ws.ParticipantPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return err
		}
		for _, p := range payload {
			r.upsert(toParticipant(p))
		}
	case ws.EventJoined:
		var payload ws.ParticipantPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return err
		}
		r.upsert(toParticipant(payload))
	case ws.EventMoved:
		var payload ws.MovedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return err
		}
		r.move(payload)
	case ws.EventChatMessage:
		var payload ws.ChatMessagePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return err
		}
		r.chat(payload)
	case ws.EventLeft:
		var payload ws.LeftPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return err
		}
		r.remove(domain.ConnectionID(payload.ConnectionID))
	}
	return nil
}

// upsert creates or overwrites one remote participant. A joined event
// for an id already known (snapshot overlap, re-join) merges instead of
// spawning a duplicate avatar.
func (r *Reconciler) upsert(p domain.Participant) {
	r.mu.Lock()
	_, known := r.remote[p.ID]
	r.remote[p.ID] = p
	r.mu.Unlock()

	if r.presenter == nil {
		return
	}
	if known {
		r.presenter.Update(p)
		return
	}
	r.presenter.Spawn(p)
}

// move overwrites the participant's kinematic state. A move for an id
// that has not been announced yet is dropped; the snapshot or joined
// event that is still in flight will carry fresher state anyway.
func (r *Reconciler) move(payload ws.MovedPayload) {
	id := domain.ConnectionID(payload.ConnectionID)

	r.mu.Lock()
	p, known := r.remote[id]
	if !known {
		r.mu.Unlock()
		return
	}
	p.Apply(domain.Movement{
		Position: domain.Vec3{X: payload.Position.X, Y: payload.Position.Y, Z: payload.Position.Z},
		Yaw:      payload.Yaw,
		Motion:   domain.ParseMotion(payload.MotionState),
	})
	r.remote[id] = p
	r.mu.Unlock()

	if r.presenter != nil {
		r.presenter.Update(p)
	}
}

func (r *Reconciler) chat(payload ws.ChatMessagePayload) {
	entry := domain.ChatEntry{
		From:        domain.ConnectionID(payload.ConnectionID),
		DisplayName: payload.DisplayName,
		Message:     payload.Message,
		Lang:        payload.Lang,
		At:          time.Now().UTC(),
	}
	r.chatLog.Append(entry)

	if r.presenter != nil {
		r.presenter.ShowChat(entry)
	}
}

// remove despawns the participant. A left event for an unknown id is a
// no-op, it only means this client never saw the join.
func (r *Reconciler) remove(id domain.ConnectionID) {
	r.mu.Lock()
	_, known := r.remote[id]
	delete(r.remote, id)
	r.mu.Unlock()

	if known && r.presenter != nil {
		r.presenter.Despawn(id)
	}
}

// Remote returns a copy of one mirrored participant.
func (r *Reconciler) Remote(id domain.ConnectionID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.remote[id]
	return p, ok
}

// Roster returns a copy of every mirrored participant.
func (r *Reconciler) Roster() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Participant, 0, len(r.remote))
	for _, p := range r.remote {
		out = append(out, p)
	}
	return out
}

// ChatHistory returns the bounded chat log, oldest first.
func (r *Reconciler) ChatHistory() []domain.ChatEntry {
	return r.chatLog.Entries()
}

func toParticipant(p ws.ParticipantPayload) domain.Participant {
	return domain.Participant{
		ID:          domain.ConnectionID(p.ConnectionID),
		DisplayName: p.DisplayName,
		Position:    domain.Vec3{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z},
		Yaw:         p.Yaw,
		Motion:      domain.ParseMotion(p.MotionState),
	}
}
