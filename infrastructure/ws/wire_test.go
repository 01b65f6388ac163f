package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"promenade/domain"
	"promenade/domain/event"
)

func Test_FromDomainEvent_Maps_Types(t *testing.T) {
	req := require.New(t)

	envelope, ok := FromDomainEvent(event.RosterSnapshot{
		Target:       "c1",
		Participants: []domain.Participant{{ID: "c2", DisplayName: "Bob"}},
	})
	req.True(ok)
	req.Equal(EventRosterSnapshot, envelope.Type)
	payload := envelope.Payload.([]ParticipantPayload)
	req.Len(payload, 1)
	req.Equal("c2", payload[0].ConnectionID)

	envelope, ok = FromDomainEvent(event.ParticipantMoved{
		ID:       "c1",
		Position: domain.Vec3{X: 1, Z: 3},
		Motion:   domain.MotionWalkForward,
	})
	req.True(ok)
	req.Equal(EventMoved, envelope.Type)
	moved := envelope.Payload.(MovedPayload)
	req.Equal("walk-forward", moved.MotionState)
	req.Equal(1.0, moved.Position.X)

	envelope, ok = FromDomainEvent(event.ParticipantLeft{ID: "c1"})
	req.True(ok)
	req.Equal(EventLeft, envelope.Type)
}

func Test_FromDomainEvent_Raw_Chat_Has_No_Wire_Shape(t *testing.T) {
	req := require.New(t)

	// Unsanitized chat must never be serialized toward clients
	_, ok := FromDomainEvent(event.ChatPosted{ID: "c1", Message: "raw"})
	req.False(ok)
}

func Test_Inbound_Payload_Movement_Defaults_Motion(t *testing.T) {
	req := require.New(t)

	m := MovePayload{Position: Vec3Payload{X: 2}, Yaw: 1, MotionState: "teleport"}.Movement()
	req.Equal(domain.MotionIdle, m.Motion)
	req.Equal(domain.Vec3{X: 2}, m.Position)

	j := JoinPayload{MotionState: "strafe-left"}.Movement()
	req.Equal(domain.MotionStrafeLeft, j.Motion)
}
