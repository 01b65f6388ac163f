package workers

import (
	"context"
	"log/slog"
	"time"

	"promenade/contract"
	"promenade/domain/event"
	"promenade/observability"
)

// EventFanout delivers pipeline events to connection sinks with the
// echo rules of the relay protocol, and to the permanent sinks
// (history, projections) unconditionally.
//
// Fan-out is best-effort with no delivery guarantee, no retry and no
// acknowledgement. A dropped move event is self-healing because the
// next one overwrites the whole state.
//
// Delivery is sequential on purpose: a single fanout worker draining a
// single channel is what preserves per-connection event order end to
// end. Sinks bound the time one slow consumer can hold the loop via
// the delivery timeout.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	domainEvents   chan event.DomainEvent
	stats          *observability.RoomStats
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	permanentSinks []contract.EventSink, domainEvents chan event.DomainEvent,
	stats *observability.RoomStats, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		registry:       registry,
		permanentSinks: permanentSinks,
		domainEvents:   domainEvents,
		stats:          stats,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.domainEvents:
			if !ok {
				w.log.Debug("Domain event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout applies the echo rules and delivers.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanentSinks {
		w.deliver(ctx, sink, evt)
	}
	for _, sink := range w.connectionTargets(evt) {
		w.deliver(ctx, sink, evt)
	}
	if w.stats != nil {
		w.stats.IncrEventsRelayed()
	}
}

// connectionTargets resolves the fan-out set for one event:
//   - roster snapshots go to the joining connection only
//   - chat messages go to everyone, the sender included, so every UI
//     renders its own message through the same path as everyone else's
//   - joined and moved go to everyone but their origin
//   - left goes to everyone remaining (the origin is already gone)
func (w *EventFanout) connectionTargets(evt event.DomainEvent) []contract.EventSink {
	switch e := evt.(type) {
	case event.RosterSnapshot:
		sink, ok := w.registry.SinkFor(e.Target)
		if !ok {
			return nil
		}
		return []contract.EventSink{sink}
	case event.ChatMessage:
		if w.stats != nil {
			w.stats.IncrChatMessages()
		}
		return w.registry.AllSinks()
	case event.ParticipantJoined, event.ParticipantMoved:
		return w.registry.SinksExcept(evt.Origin())
	case event.ParticipantLeft:
		return w.registry.AllSinks()
	default:
		// Raw events never reach connections
		return nil
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	deliveryCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	if err := sink.Consume(deliveryCtx, evt); err != nil {
		if w.stats != nil {
			w.stats.IncrDropped()
		}
		w.log.Debug("Sink delivery failed", "error", err)
	}
}
