package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"promenade/contract"
	"promenade/domain"
	"promenade/domain/event"
	"promenade/observability"
)

// recordingSink captures everything it consumes.
type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Received() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// stubRegistry wires fixed sinks per connection for fan-out tests.
type stubRegistry struct {
	sinks map[domain.ConnectionID]contract.EventSink
}

func (r *stubRegistry) Register(id domain.ConnectionID, p domain.Participant, sink contract.EventSink) (domain.Participant, bool) {
	r.sinks[id] = sink
	return p, false
}
func (r *stubRegistry) Update(domain.ConnectionID, domain.Movement) (domain.Participant, bool) {
	return domain.Participant{}, false
}
func (r *stubRegistry) Remove(domain.ConnectionID) (domain.Participant, bool) {
	return domain.Participant{}, false
}
func (r *stubRegistry) Lookup(domain.ConnectionID) (domain.Participant, bool) {
	return domain.Participant{}, false
}
func (r *stubRegistry) Snapshot() []domain.Participant { return nil }
func (r *stubRegistry) Size() int                      { return len(r.sinks) }
func (r *stubRegistry) SinkFor(id domain.ConnectionID) (contract.EventSink, bool) {
	sink, ok := r.sinks[id]
	return sink, ok
}
func (r *stubRegistry) SinksExcept(id domain.ConnectionID) []contract.EventSink {
	var out []contract.EventSink
	for sid, sink := range r.sinks {
		if sid == id {
			continue
		}
		out = append(out, sink)
	}
	return out
}
func (r *stubRegistry) AllSinks() []contract.EventSink {
	out := make([]contract.EventSink, 0, len(r.sinks))
	for _, sink := range r.sinks {
		out = append(out, sink)
	}
	return out
}

func newFanoutFixture() (*EventFanout, *recordingSink, *recordingSink, *recordingSink) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	alice := &recordingSink{}
	bob := &recordingSink{}
	permanent := &recordingSink{}

	registry := &stubRegistry{sinks: map[domain.ConnectionID]contract.EventSink{
		"alice": alice,
		"bob":   bob,
	}}

	fanout := NewEventFanout(log, registry,
		[]contract.EventSink{permanent}, make(chan event.DomainEvent),
		observability.NewRoomStats(log), time.Second)
	return fanout, alice, bob, permanent
}

func Test_Fanout_Snapshot_Goes_To_Target_Only(t *testing.T) {
	req := require.New(t)
	fanout, alice, bob, permanent := newFanoutFixture()

	// When a roster snapshot addressed to alice is fanned out
	fanout.Fanout(context.Background(), event.RosterSnapshot{Target: "alice"})

	// Then only alice and the permanent sinks see it
	req.Len(alice.Received(), 1)
	req.Empty(bob.Received())
	req.Len(permanent.Received(), 1)
}

func Test_Fanout_Joined_And_Moved_Exclude_Origin(t *testing.T) {
	req := require.New(t)
	fanout, alice, bob, _ := newFanoutFixture()

	fanout.Fanout(context.Background(), event.ParticipantJoined{
		Participant: domain.Participant{ID: "alice"},
	})
	fanout.Fanout(context.Background(), event.ParticipantMoved{ID: "alice"})

	// Then alice never receives her own echo
	req.Empty(alice.Received())
	req.Len(bob.Received(), 2)
}

func Test_Fanout_Chat_Includes_Sender(t *testing.T) {
	req := require.New(t)
	fanout, alice, bob, permanent := newFanoutFixture()

	// When alice's chat message is fanned out
	fanout.Fanout(context.Background(), event.ChatMessage{ID: "alice", Message: "hi"})

	// Then everyone gets it, the sender included
	req.Len(alice.Received(), 1)
	req.Len(bob.Received(), 1)
	req.Len(permanent.Received(), 1)
}

func Test_Fanout_Left_Goes_To_All_Remaining(t *testing.T) {
	req := require.New(t)
	fanout, alice, bob, _ := newFanoutFixture()

	// The origin's sink is already detached by the time left is fanned
	// out in production; here it just demonstrates the all-sinks rule.
	fanout.Fanout(context.Background(), event.ParticipantLeft{ID: "gone"})

	req.Len(alice.Received(), 1)
	req.Len(bob.Received(), 1)
}

func Test_Fanout_Raw_Events_Never_Reach_Connections(t *testing.T) {
	req := require.New(t)
	fanout, alice, bob, permanent := newFanoutFixture()

	// When an unsanitized chat event reaches the fanout
	fanout.Fanout(context.Background(), event.ChatPosted{ID: "alice", Message: "raw"})

	// Then no connection sees it, only the permanent sinks
	req.Empty(alice.Received())
	req.Empty(bob.Received())
	req.Len(permanent.Received(), 1)
}
