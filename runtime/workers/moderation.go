package workers

import (
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"promenade/domain/event"
	"promenade/moderation"
)

// ModerationWorker sanitizes chat before it reaches the fanout.
// Every other event passes through untouched and in order: a single
// moderation worker between the raw and domain channels keeps the
// pipeline FIFO, so a chat message can never be overtaken by a move
// sent after it on the same connection.
type ModerationWorker struct {
	moderator    moderation.Moderator
	rawEvents    chan event.DomainEvent
	domainEvents chan event.DomainEvent
	log          *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator,
	rawEvents, domainEvents chan event.DomainEvent, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator:    moderator,
		rawEvents:    rawEvents,
		domainEvents: domainEvents,
		log:          log,
	}
}

func (w ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}

			out := e
			if posted, isChat := e.(event.ChatPosted); isChat {
				out = w.toSanitizedEvent(posted)
			}

			select {
			case <-ctx.Done():
				w.log.Debug("Stopping worker")
				return nil
			case w.domainEvents <- out:
			}
		}
	}
}

func (w ModerationWorker) toSanitizedEvent(evt event.ChatPosted) event.ChatMessage {
	info := whatlanggo.Detect(evt.Message)
	langCode := info.Lang.Iso6391()

	sanitized, foundWords := w.moderator.Censor(evt.Message)
	if len(foundWords) > 0 {
		w.log.Warn("Censored chat message",
			"author", evt.DisplayName,
			"lang", langCode,
			"words", len(foundWords))
	}

	return event.ChatMessage{
		ID:            evt.ID,
		DisplayName:   evt.DisplayName,
		Message:       sanitized,
		Lang:          langCode,
		CensoredWords: foundWords,
		At:            evt.At,
	}
}
