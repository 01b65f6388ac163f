package sink

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"promenade/domain/event"
	"promenade/repositories"
)

// DiskSink archives sanitized chat messages. Presence events pass
// through untouched: only chat leaves a trace on disk.
type DiskSink struct {
	repository repositories.IHistoryRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IHistoryRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.ChatMessage:
		return d.repository.StoreMessage(toStoredMessage(evt))
	default:
		return nil
	}
}

func toStoredMessage(evt event.ChatMessage) repositories.StoredMessage {
	return repositories.StoredMessage{
		ID:          uuid.New(),
		From:        string(evt.ID),
		DisplayName: evt.DisplayName,
		Content:     evt.Message,
		Lang:        evt.Lang,
		At:          evt.At,
	}
}
