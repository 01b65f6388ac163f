package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"promenade/domain/event"
	"promenade/moderation"
)

func newModerationFixture(t *testing.T, words []string) (*ModerationWorker, chan event.DomainEvent, chan event.DomainEvent) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator(words, '*')
	require.NoError(t, err)

	rawEvents := make(chan event.DomainEvent, 8)
	domainEvents := make(chan event.DomainEvent, 8)
	return NewModerationWorker(moderator, rawEvents, domainEvents, log), rawEvents, domainEvents
}

func receiveEvent(t *testing.T, ch chan event.DomainEvent) event.DomainEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event forwarded")
		return nil
	}
}

func Test_Moderation_Sanitizes_Chat(t *testing.T) {
	req := require.New(t)
	worker, rawEvents, domainEvents := newModerationFixture(t, []string{"badger"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a raw chat message with a censored word flows through
	rawEvents <- event.ChatPosted{
		ID:          "c1",
		DisplayName: "Alice",
		Message:     "the badger is here",
		At:          time.Now().UTC(),
	}

	// Then the sanitized message comes out the other side
	msg, ok := receiveEvent(t, domainEvents).(event.ChatMessage)
	req.True(ok)
	req.Equal("the ****** is here", msg.Message)
	req.Equal([]string{"badger"}, msg.CensoredWords)
	req.Equal("Alice", msg.DisplayName)
	req.NotEmpty(msg.Lang)
}

func Test_Moderation_Passes_Presence_Events_Through_In_Order(t *testing.T) {
	req := require.New(t)
	worker, rawEvents, domainEvents := newModerationFixture(t, []string{"badger"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// Given a chat between two moves from the same connection
	rawEvents <- event.ParticipantMoved{ID: "c1", Yaw: 1}
	rawEvents <- event.ChatPosted{ID: "c1", Message: "hello"}
	rawEvents <- event.ParticipantMoved{ID: "c1", Yaw: 2}

	// Then the order is preserved: the chat is never overtaken
	first, ok := receiveEvent(t, domainEvents).(event.ParticipantMoved)
	req.True(ok)
	req.Equal(1.0, first.Yaw)

	_, ok = receiveEvent(t, domainEvents).(event.ChatMessage)
	req.True(ok)

	last, ok := receiveEvent(t, domainEvents).(event.ParticipantMoved)
	req.True(ok)
	req.Equal(2.0, last.Yaw)
}
