// Package ws carries the relay protocol over websocket connections.
// Every frame is a JSON envelope {type, payload}; unknown or malformed
// frames are skipped, never fatal.
package ws

import (
	"encoding/json"

	"github.com/samber/lo"

	"promenade/domain"
	"promenade/domain/event"
)

const (
	EventJoin           = "join"
	EventMove           = "move"
	EventChat           = "chat"
	EventRosterSnapshot = "roster-snapshot"
	EventJoined         = "joined"
	EventMoved          = "moved"
	EventChatMessage    = "chat-message"
	EventLeft           = "left"
)

// Envelope frames one outbound event.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RawEnvelope frames one inbound event; the payload stays raw until the
// type is known.
type RawEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Vec3Payload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type JoinPayload struct {
	DisplayName string      `json:"displayName" validate:"max=32"`
	Position    Vec3Payload `json:"position"`
	Yaw         float64     `json:"yaw"`
	MotionState string      `json:"motionState"`
}

type MovePayload struct {
	Position    Vec3Payload `json:"position"`
	Yaw         float64     `json:"yaw"`
	MotionState string      `json:"motionState"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

// ParticipantPayload is the wire shape of one participant, used both in
// roster snapshots and joined announcements.
type ParticipantPayload struct {
	ConnectionID string      `json:"connectionId"`
	DisplayName  string      `json:"displayName"`
	Position     Vec3Payload `json:"position"`
	Yaw          float64     `json:"yaw"`
	MotionState  string      `json:"motionState"`
}

type MovedPayload struct {
	ConnectionID string      `json:"connectionId"`
	Position     Vec3Payload `json:"position"`
	Yaw          float64     `json:"yaw"`
	MotionState  string      `json:"motionState"`
}

type ChatMessagePayload struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	Message      string `json:"message"`
	Lang         string `json:"lang,omitempty"`
}

type LeftPayload struct {
	ConnectionID string `json:"connectionId"`
}

// Movement converts the join payload's kinematic fields. Unknown motion
// states default to idle instead of being rejected.
func (p JoinPayload) Movement() domain.Movement {
	return domain.Movement{
		Position: domain.Vec3{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z},
		Yaw:      p.Yaw,
		Motion:   domain.ParseMotion(p.MotionState),
	}
}

func (p MovePayload) Movement() domain.Movement {
	return domain.Movement{
		Position: domain.Vec3{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z},
		Yaw:      p.Yaw,
		Motion:   domain.ParseMotion(p.MotionState),
	}
}

// FromDomainEvent maps a pipeline event onto its wire envelope.
// Events with no wire representation report ok=false.
func FromDomainEvent(evt event.DomainEvent) (Envelope, bool) {
	switch e := evt.(type) {
	case event.RosterSnapshot:
		return Envelope{
			Type: EventRosterSnapshot,
			Payload: lo.Map(e.Participants, func(p domain.Participant, _ int) ParticipantPayload {
				return toParticipantPayload(p)
			}),
		}, true
	case event.ParticipantJoined:
		return Envelope{Type: EventJoined, Payload: toParticipantPayload(e.Participant)}, true
	case event.ParticipantMoved:
		return Envelope{Type: EventMoved, Payload: MovedPayload{
			ConnectionID: string(e.ID),
			Position:     toVec3Payload(e.Position),
			Yaw:          e.Yaw,
			MotionState:  string(e.Motion),
		}}, true
	case event.ChatMessage:
		return Envelope{Type: EventChatMessage, Payload: ChatMessagePayload{
			ConnectionID: string(e.ID),
			DisplayName:  e.DisplayName,
			Message:      e.Message,
			Lang:         e.Lang,
		}}, true
	case event.ParticipantLeft:
		return Envelope{Type: EventLeft, Payload: LeftPayload{ConnectionID: string(e.ID)}}, true
	default:
		return Envelope{}, false
	}
}

func toParticipantPayload(p domain.Participant) ParticipantPayload {
	return ParticipantPayload{
		ConnectionID: string(p.ID),
		DisplayName:  p.DisplayName,
		Position:     toVec3Payload(p.Position),
		Yaw:          p.Yaw,
		MotionState:  string(p.Motion),
	}
}

func toVec3Payload(v domain.Vec3) Vec3Payload {
	return Vec3Payload{X: v.X, Y: v.Y, Z: v.Z}
}
