// Package sink contains EventSink implementations: per-connection
// delivery buffers and permanent side-effect consumers.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"promenade/domain/event"
	"promenade/errors"
)

// ConnSink buffers events bound for one websocket connection.
// Consume never blocks the fanout longer than the delivery timeout: a
// consumer that stalls past it loses the event (fire-and-forget
// broadcast, a later move supersedes a lost one).
type ConnSink struct {
	log             *slog.Logger
	events          chan event.DomainEvent
	done            chan struct{}
	closeOnce       sync.Once
	deliveryTimeout time.Duration
	dropped         atomic.Uint64
}

func NewConnSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *ConnSink {
	return &ConnSink{
		log:             log,
		events:          make(chan event.DomainEvent, bufferSize),
		done:            make(chan struct{}),
		deliveryTimeout: deliveryTimeout,
	}
}

func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()

	select {
	case s.events <- e:
		return nil
	case <-s.done:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.dropped.Add(1)
		s.log.Warn("Dropping event for slow connection",
			"origin", string(e.Origin()),
			"dropped_total", s.dropped.Load())
		return errors.ErrDeliveryTimeout
	}
}

// Events is drained by the connection's writer goroutine.
func (s *ConnSink) Events() <-chan event.DomainEvent { return s.events }

// Close detaches the sink from the fanout. Safe to call more than once;
// the buffered channel is left open so a concurrent Consume never
// panics, it simply starts failing with ErrSinkClosed.
func (s *ConnSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *ConnSink) Dropped() uint64 { return s.dropped.Load() }
