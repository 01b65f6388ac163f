package runtime

import (
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"promenade/domain"
	"promenade/domain/event"
	"promenade/observability"
	"promenade/runtime/workers"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	telemetryChan := make(chan event.Event, 16)
	sup := workers.NewSupervisor(log, telemetryChan, 10*time.Millisecond)
	return NewOrchestrator(log, sup, NewRegistry(), nil,
		observability.NewRoomStats(log), telemetryChan,
		16, time.Second, time.Minute, '*', 2, 256)
}

// nextEvent pops one emitted event without blocking the test forever.
func nextEvent(t *testing.T, o *Orchestrator) event.DomainEvent {
	t.Helper()
	select {
	case evt := <-o.rawEvents:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event emitted")
		return nil
	}
}

func requireNoEvent(t *testing.T, o *Orchestrator) {
	t.Helper()
	select {
	case evt := <-o.rawEvents:
		t.Fatalf("unexpected event emitted: %#v", evt)
	default:
	}
}

func Test_Join_Empty_Room_Gets_Empty_Snapshot(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)

	// When the first connection joins
	o.Join("c1", "Alice", domain.Movement{Position: domain.Vec3{Z: 2}}, nopSink{})

	// Then it receives an empty roster followed by its own announcement
	snapshot, ok := nextEvent(t, o).(event.RosterSnapshot)
	req.True(ok)
	req.Equal(domain.ConnectionID("c1"), snapshot.Target)
	req.Empty(snapshot.Participants)

	joined, ok := nextEvent(t, o).(event.ParticipantJoined)
	req.True(ok)
	req.Equal("Alice", joined.Participant.DisplayName)
	req.Equal(domain.Vec3{Z: 2}, joined.Participant.Position)
}

func Test_Join_Blank_Name_Gets_Generated_One(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)

	o.Join("c1", "Alice", domain.Movement{Position: domain.Vec3{Z: 2}}, nopSink{})
	nextEvent(t, o) // snapshot
	nextEvent(t, o) // joined

	// When a second connection joins with a blank name
	o.Join("4f6a1b2c-aaaa-bbbb-cccc-000000000000", "   ", domain.Movement{}, nopSink{})

	// Then the joiner sees Alice in its snapshot
	snapshot, ok := nextEvent(t, o).(event.RosterSnapshot)
	req.True(ok)
	req.Len(snapshot.Participants, 1)
	req.Equal("Alice", snapshot.Participants[0].DisplayName)

	// And everyone else learns the generated name
	joined, ok := nextEvent(t, o).(event.ParticipantJoined)
	req.True(ok)
	req.Regexp(regexp.MustCompile(`^Player_[0-9a-zA-Z]{6}$`), joined.Participant.DisplayName)
}

func Test_Move_Emits_Moved_And_Mutates_Registry(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)

	o.Join("c1", "Alice", domain.Movement{}, nopSink{})
	nextEvent(t, o)
	nextEvent(t, o)

	// When the joined connection moves
	o.Move("c1", domain.Movement{
		Position: domain.Vec3{X: 1, Z: 3},
		Yaw:      0.5,
		Motion:   domain.MotionWalkForward,
	})

	moved, ok := nextEvent(t, o).(event.ParticipantMoved)
	req.True(ok)
	req.Equal(domain.ConnectionID("c1"), moved.ID)
	req.Equal(domain.Vec3{X: 1, Z: 3}, moved.Position)
	req.Equal(domain.MotionWalkForward, moved.Motion)

	p, _ := o.registry.Lookup("c1")
	req.Equal(domain.Vec3{X: 1, Z: 3}, p.Position)
}

func Test_Move_Before_Join_Is_Dropped_Silently(t *testing.T) {
	o := newTestOrchestrator(t)

	o.Move("ghost", domain.Movement{Position: domain.Vec3{X: 1}})

	requireNoEvent(t, o)
}

func Test_Chat_Stamps_Authoritative_Name(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)

	o.Join("c1", "Alice", domain.Movement{}, nopSink{})
	nextEvent(t, o)
	nextEvent(t, o)

	o.Chat("c1", "hello room")

	posted, ok := nextEvent(t, o).(event.ChatPosted)
	req.True(ok)
	req.Equal(domain.ConnectionID("c1"), posted.ID)
	req.Equal("Alice", posted.DisplayName)
	req.Equal("hello room", posted.Message)
	req.False(posted.At.IsZero())
}

func Test_Chat_Before_Join_Is_Dropped_Silently(t *testing.T) {
	o := newTestOrchestrator(t)

	o.Chat("ghost", "anyone there?")

	requireNoEvent(t, o)
}

func Test_Chat_Is_Truncated_To_Max_Length(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)
	o.maxMessageLength = 5

	o.Join("c1", "Alice", domain.Movement{}, nopSink{})
	nextEvent(t, o)
	nextEvent(t, o)

	o.Chat("c1", "0123456789")

	posted := nextEvent(t, o).(event.ChatPosted)
	req.Equal("01234", posted.Message)
}

func Test_Disconnect_Announces_Left_Only_If_Joined(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)

	// Given a socket that connected but never joined
	o.Disconnect("never-joined")
	requireNoEvent(t, o)

	// Given a joined connection
	o.Join("c1", "Alice", domain.Movement{}, nopSink{})
	nextEvent(t, o)
	nextEvent(t, o)

	// When it disconnects
	o.Disconnect("c1")

	// Then exactly one left event is emitted
	left, ok := nextEvent(t, o).(event.ParticipantLeft)
	req.True(ok)
	req.Equal(domain.ConnectionID("c1"), left.ID)

	// And disconnecting again announces nothing
	o.Disconnect("c1")
	requireNoEvent(t, o)
}

func Test_Duplicate_Join_Overwrites_And_Resends_Snapshot(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator(t)

	o.Join("c1", "Alice", domain.Movement{}, nopSink{})
	nextEvent(t, o)
	nextEvent(t, o)
	o.Join("c2", "Bob", domain.Movement{}, nopSink{})
	nextEvent(t, o)
	nextEvent(t, o)

	// When c1 joins a second time under a new name
	o.Join("c1", "Alicia", domain.Movement{}, nopSink{})

	// Then it gets a fresh snapshot that excludes itself
	snapshot, ok := nextEvent(t, o).(event.RosterSnapshot)
	req.True(ok)
	req.Len(snapshot.Participants, 1)
	req.Equal("Bob", snapshot.Participants[0].DisplayName)

	// And its entry was overwritten, not duplicated
	joined := nextEvent(t, o).(event.ParticipantJoined)
	req.Equal("Alicia", joined.Participant.DisplayName)
	req.Equal(1+1, o.registry.Size())
}
