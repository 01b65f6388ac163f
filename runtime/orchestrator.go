package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"promenade/contract"
	"promenade/domain"
	"promenade/domain/event"
	"promenade/moderation"
	"promenade/observability"
	"promenade/projection"
	"promenade/repositories"
	"promenade/runtime/workers"
	"promenade/sink"
)

//go:embed censored/*
var censoredFolder embed.FS

// Orchestrator owns the presence transitions and the event pipeline.
// Registry mutations happen synchronously on the caller's goroutine so
// each connection observes its own operations in order; everything
// downstream flows through one moderation worker and one fanout worker,
// which is what keeps the whole pipeline FIFO.
type Orchestrator struct {
	mu                   sync.Mutex
	log                  *slog.Logger
	supervisor           contract.ISupervisor
	registry             contract.IRegistry
	history              repositories.IHistoryRepository
	timeline             *projection.Timeline
	stats                *observability.RoomStats
	permanentSinks       []contract.EventSink
	rawEvents            chan event.DomainEvent
	domainEvents         chan event.DomainEvent
	telemetryChan        chan event.Event
	sinkTimeout          time.Duration
	metricInterval       time.Duration
	charReplacement      rune
	lowCapacityThreshold int
	maxMessageLength     int
}

func NewOrchestrator(log *slog.Logger, supervisor *workers.Supervisor,
	registry *Registry, history repositories.IHistoryRepository,
	stats *observability.RoomStats, telemetryChan chan event.Event,
	bufferSize int, sinkTimeout, metricInterval time.Duration,
	charReplacement rune, lowCapacityThreshold, maxMessageLength int) *Orchestrator {
	return &Orchestrator{
		log:                  log,
		supervisor:           supervisor,
		registry:             registry,
		history:              history,
		timeline:             projection.NewTimeline(),
		stats:                stats,
		rawEvents:            make(chan event.DomainEvent, bufferSize),
		domainEvents:         make(chan event.DomainEvent, bufferSize),
		telemetryChan:        telemetryChan,
		sinkTimeout:          sinkTimeout,
		metricInterval:       metricInterval,
		charReplacement:      charReplacement,
		lowCapacityThreshold: lowCapacityThreshold,
		maxMessageLength:     maxMessageLength,
	}
}

func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

func (o *Orchestrator) Timeline() *projection.Timeline {
	return o.timeline
}

// Join registers the connection and emits its roster snapshot followed
// by the joined announcement. The snapshot is captured under the same
// lock as the registration, so the joiner never appears in its own
// snapshot and no other join can slip between the two.
//
// A second join on the same connection overwrites the entry, resends a
// fresh snapshot and rebroadcasts joined with the new display name.
func (o *Orchestrator) Join(id domain.ConnectionID, name string, m domain.Movement, connSink contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()

	roster := lo.Filter(o.registry.Snapshot(), func(p domain.Participant, _ int) bool {
		return p.ID != id
	})

	participant := domain.Participant{
		ID:          id,
		DisplayName: domain.DisplayNameOrFallback(name, id),
		Position:    m.Position,
		Yaw:         m.Yaw,
		Motion:      m.Motion,
	}
	_, replaced := o.registry.Register(id, participant, connSink)

	o.emit(event.RosterSnapshot{Target: id, Participants: roster})
	o.emit(event.ParticipantJoined{Participant: participant})

	if replaced {
		o.log.Debug(fmt.Sprintf("Re-join on connection %s, entry overwritten", id))
		return
	}
	o.stats.IncrJoined()
	o.log.Info(fmt.Sprintf("%s joined the room", participant.DisplayName), "connection", id)
	o.reportOccupancy()
}

// Move overwrites the participant's kinematic state and broadcasts it.
// A move on an unknown connection (before join, after disconnect) is
// dropped silently.
func (o *Orchestrator) Move(id domain.ConnectionID, m domain.Movement) {
	participant, ok := o.registry.Update(id, m)
	if !ok {
		return
	}
	o.emit(event.ParticipantMoved{
		ID:       id,
		Position: participant.Position,
		Yaw:      participant.Yaw,
		Motion:   participant.Motion,
	})
}

// Chat stamps the message with the authoritative display name and hands
// it to the moderation stage. Chat from an unknown connection is
// dropped silently, like moves.
func (o *Orchestrator) Chat(id domain.ConnectionID, message string) {
	participant, ok := o.registry.Lookup(id)
	if !ok {
		return
	}
	if o.maxMessageLength > 0 {
		if runes := []rune(message); len(runes) > o.maxMessageLength {
			message = string(runes[:o.maxMessageLength])
		}
	}
	o.emit(event.ChatPosted{
		ID:          id,
		DisplayName: participant.DisplayName,
		Message:     message,
		At:          time.Now().UTC(),
	})
}

// Disconnect removes the connection and announces the departure, but
// only if the connection had actually joined. A socket that connected
// and dropped without joining leaves no trace.
func (o *Orchestrator) Disconnect(id domain.ConnectionID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	participant, ok := o.registry.Remove(id)
	if !ok {
		return
	}
	o.emit(event.ParticipantLeft{ID: id})
	o.stats.IncrLeft()
	o.log.Info(fmt.Sprintf("%s left the room", participant.DisplayName), "connection", id)
	o.reportOccupancy()
}

// emit pushes onto the raw channel without blocking the connection's
// read loop. A full channel drops the event: the relay favors liveness
// over completeness, and moves self-heal on the next update.
func (o *Orchestrator) emit(evt event.DomainEvent) {
	select {
	case o.rawEvents <- evt:
		o.reportCapacity()
	default:
		o.stats.IncrDropped()
		o.log.Warn("Raw event channel full, dropping event")
	}
}

func (o *Orchestrator) reportCapacity() {
	o.reportTelemetry(event.Event{
		Type:      event.ChannelCapacityType,
		CreatedAt: time.Now().UTC(),
		Payload: event.ChannelCapacity{
			ChannelName: "rawEvents",
			Capacity:    cap(o.rawEvents),
			Length:      len(o.rawEvents),
		},
	})
}

func (o *Orchestrator) reportOccupancy() {
	o.reportTelemetry(event.Event{
		Type:      event.RoomOccupancyType,
		CreatedAt: time.Now().UTC(),
		Payload: event.RoomOccupancy{
			Current: o.registry.Size(),
			Peak:    o.timeline.Peak(),
			Joined:  atomic.LoadUint64(&o.stats.JoinedTotal),
			Left:    atomic.LoadUint64(&o.stats.LeftTotal),
		},
	})
}

func (o *Orchestrator) reportTelemetry(evt event.Event) {
	if o.telemetryChan == nil {
		return
	}
	select {
	case o.telemetryChan <- evt:
	default:
		// Telemetry is advisory, never worth blocking the hot path
	}
}

// Start initiates the orchestrator by preparing all components (workers, moderation, pipeline)
// and then starting the supervisor. It uses a preparation pattern to minimize mutex locking time.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	// Heavy tasks like I/O (loading files) and CPU (Aho-Corasick build) are done here.
	moderationWorker, err := o.prepareModeration(o.charReplacement)
	if err != nil {
		return err
	}

	fanoutWorker, newSinks := o.preparePipeline()

	telemetryWorker := workers.NewTelemetryWorker(o.log, o.telemetryChan, []event.Handler{
		event.NewChannelCapacityHandler(o.log, o.lowCapacityThreshold),
		event.NewOccupancyHandler(o.log),
	})

	heartbeatWorker := workers.NewHeartbeatWorker(o.log, o.registry, o.timeline, o.stats, o.metricInterval)

	// 2. Critical Section (Short Lock)
	// We only lock to update the internal state and the supervisor.
	o.mu.Lock()
	o.permanentSinks = append(o.permanentSinks, newSinks...)
	o.supervisor.Add(moderationWorker, fanoutWorker, telemetryWorker, heartbeatWorker)
	o.mu.Unlock()

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// prepareModeration loads censored words and builds the Aho-Corasick automaton.
func (o *Orchestrator) prepareModeration(charReplacement rune) (contract.Worker, error) {
	loader := NewCensoredLoader(censoredFolder)
	data, err := loader.LoadAll("censored")
	if err != nil {
		return nil, err
	}

	o.log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	o.log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	moderator, err := moderation.NewModerator(data.Words, charReplacement)
	if err != nil {
		return nil, err
	}

	return workers.NewModerationWorker(moderator, o.rawEvents, o.domainEvents, o.log), nil
}

// preparePipeline initializes the permanent sinks and the fanout worker.
func (o *Orchestrator) preparePipeline() (contract.Worker, []contract.EventSink) {
	newSinks := []contract.EventSink{
		o.timeline,
		sink.NewDiskSink(o.history, o.log),
	}

	allSinks := append(o.permanentSinks, newSinks...)

	fanoutWorker := workers.NewEventFanout(
		o.log,
		o.registry,
		allSinks,
		o.domainEvents,
		o.stats,
		o.sinkTimeout,
	)
	return fanoutWorker, newSinks
}

// Stop initiates a graceful shutdown of the orchestrator by canceling
// the supervision context, which signals every worker to stop.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
