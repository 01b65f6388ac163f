// Package domain contains core concepts of the social room.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "strings"

// ConnectionID identifies one live connection. It is assigned by the
// transport layer at upgrade time and is the key for every event about
// the participant behind that connection.
type ConnectionID string

// Vec3 is a position in the room. No range is enforced server-side.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Motion is the locomotion intent reported by a client.
// It is cosmetic: the server relays it without any physics validation.
type Motion string

const (
	MotionIdle         Motion = "idle"
	MotionWalkForward  Motion = "walk-forward"
	MotionWalkBackward Motion = "walk-backward"
	MotionStrafeLeft   Motion = "strafe-left"
	MotionStrafeRight  Motion = "strafe-right"
)

// ParseMotion maps a wire value to a known Motion.
// Unknown or empty values default to idle instead of being rejected.
func ParseMotion(s string) Motion {
	switch Motion(s) {
	case MotionWalkForward, MotionWalkBackward, MotionStrafeLeft, MotionStrafeRight:
		return Motion(s)
	default:
		return MotionIdle
	}
}

// Participant is the authoritative record of one joined connection.
type Participant struct {
	ID          ConnectionID
	DisplayName string
	Position    Vec3
	Yaw         float64
	Motion      Motion
}

// Movement is the wholesale kinematic state carried by a move event.
type Movement struct {
	Position Vec3
	Yaw      float64
	Motion   Motion
}

// Apply overwrites the participant's kinematic fields.
// Last write wins, there is no partial merge or delta accumulation.
func (p *Participant) Apply(m Movement) {
	p.Position = m.Position
	p.Yaw = m.Yaw
	p.Motion = m.Motion
}

const fallbackNameRunes = 6

// DisplayNameOrFallback returns the trimmed chosen name, or a generated
// "Player_" name derived from the connection id when the choice is
// blank. Deriving from the id keeps the fallback stable per connection.
func DisplayNameOrFallback(name string, id ConnectionID) string {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		return trimmed
	}

	suffix := make([]rune, 0, fallbackNameRunes)
	for _, r := range string(id) {
		if r == '-' {
			continue
		}
		suffix = append(suffix, r)
		if len(suffix) == fallbackNameRunes {
			break
		}
	}
	return "Player_" + string(suffix)
}
