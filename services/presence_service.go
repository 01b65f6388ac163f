//go:generate go run go.uber.org/mock/mockgen -source=presence_service.go -destination=../mocks/mock_presence_service.go -package=mocks
package services

import (
	"context"

	"promenade/contract"
	"promenade/domain"
	"promenade/repositories"
	"promenade/runtime"
)

// IPresenceService is the application facade the transport layer talks
// to. It hides the orchestrator and the history repository behind one
// surface.
type IPresenceService interface {
	Join(id domain.ConnectionID, name string, m domain.Movement, sink contract.EventSink)
	Move(id domain.ConnectionID, m domain.Movement)
	Chat(id domain.ConnectionID, message string)
	Leave(id domain.ConnectionID)
	History(cursor *string) ([]repositories.StoredMessage, *string, error)
	Search(ctx context.Context, terms string, limit int) ([]repositories.StoredMessage, uint64, error)
}

type PresenceService struct {
	orchestrator *runtime.Orchestrator
	history      repositories.IHistoryRepository
}

func NewPresenceService(o *runtime.Orchestrator, history repositories.IHistoryRepository) *PresenceService {
	return &PresenceService{orchestrator: o, history: history}
}

func (s *PresenceService) Join(id domain.ConnectionID, name string, m domain.Movement, sink contract.EventSink) {
	s.orchestrator.Join(id, name, m, sink)
}

func (s *PresenceService) Move(id domain.ConnectionID, m domain.Movement) {
	s.orchestrator.Move(id, m)
}

func (s *PresenceService) Chat(id domain.ConnectionID, message string) {
	s.orchestrator.Chat(id, message)
}

func (s *PresenceService) Leave(id domain.ConnectionID) {
	s.orchestrator.Disconnect(id)
}

func (s *PresenceService) History(cursor *string) ([]repositories.StoredMessage, *string, error) {
	return s.history.GetMessages(cursor)
}

func (s *PresenceService) Search(ctx context.Context, terms string, limit int) ([]repositories.StoredMessage, uint64, error) {
	return s.history.Search(ctx, terms, limit)
}
