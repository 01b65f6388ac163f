//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"promenade/domain"
	"promenade/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the authoritative session registry: the single source of
// truth for who is connected and their last-known public state.
// Update and Remove surface presence explicitly so callers make the
// silent-drop decision at the call site.
type IRegistry interface {
	Register(id domain.ConnectionID, p domain.Participant, sink EventSink) (domain.Participant, bool)
	Update(id domain.ConnectionID, m domain.Movement) (domain.Participant, bool)
	Remove(id domain.ConnectionID) (domain.Participant, bool)
	Lookup(id domain.ConnectionID) (domain.Participant, bool)
	Snapshot() []domain.Participant
	Size() int
	SinkFor(id domain.ConnectionID) (EventSink, bool)
	SinksExcept(id domain.ConnectionID) []EventSink
	AllSinks() []EventSink
}

type IPresence interface {
	Join(id domain.ConnectionID, name string, m domain.Movement, sink EventSink)
	Move(id domain.ConnectionID, m domain.Movement)
	Chat(id domain.ConnectionID, message string)
	Disconnect(id domain.ConnectionID)
}
