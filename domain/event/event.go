// Package event defines the events flowing through the relay pipeline.
package event

import (
	"time"

	"promenade/domain"
)

// DomainEvent is anything the fanout can deliver to connection sinks.
// Origin is the connection the event is about; the fanout uses it to
// decide echo behavior per event type.
type DomainEvent interface {
	Origin() domain.ConnectionID
}

// RosterSnapshot carries the room state sent to a joining connection.
// It is addressed to that connection only and excludes the joiner.
type RosterSnapshot struct {
	Target       domain.ConnectionID
	Participants []domain.Participant
}

func (e RosterSnapshot) Origin() domain.ConnectionID { return e.Target }

// ParticipantJoined announces a new participant to everyone else.
type ParticipantJoined struct {
	Participant domain.Participant
}

func (e ParticipantJoined) Origin() domain.ConnectionID { return e.Participant.ID }

// ParticipantMoved carries a wholesale kinematic update. Never echoed
// back to the sender.
type ParticipantMoved struct {
	ID       domain.ConnectionID
	Position domain.Vec3
	Yaw      float64
	Motion   domain.Motion
}

func (e ParticipantMoved) Origin() domain.ConnectionID { return e.ID }

// ParticipantLeft bears just the departed connection id.
type ParticipantLeft struct {
	ID domain.ConnectionID
}

func (e ParticipantLeft) Origin() domain.ConnectionID { return e.ID }

// ChatPosted is a raw chat message as received from a joined
// connection, before moderation.
type ChatPosted struct {
	ID          domain.ConnectionID
	DisplayName string
	Message     string
	At          time.Time
}

func (e ChatPosted) Origin() domain.ConnectionID { return e.ID }

// ChatMessage is the sanitized chat message delivered to every
// connection, the sender included.
type ChatMessage struct {
	ID            domain.ConnectionID
	DisplayName   string
	Message       string
	Lang          string
	CensoredWords []string
	At            time.Time
}

func (e ChatMessage) Origin() domain.ConnectionID { return e.ID }
