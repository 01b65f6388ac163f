package event

import (
	"fmt"
	"log/slog"

	"promenade/errors"
)

// OccupancyHandler logs room population changes reported by the
// orchestrator after joins and leaves.
type OccupancyHandler struct {
	log *slog.Logger
}

func NewOccupancyHandler(log *slog.Logger) *OccupancyHandler {
	return &OccupancyHandler{log: log}
}

func (h OccupancyHandler) Handle(event Event) {
	switch event.Type {
	case RoomOccupancyType:
		payload, ok := event.Payload.(RoomOccupancy)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Info(fmt.Sprintf("Room occupancy %d (peak %d, joined %d, left %d)",
			payload.Current, payload.Peak, payload.Joined, payload.Left))
	case RestartedAfterPanicType:
		payload, ok := event.Payload.(WorkerRestartedAfterPanic)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.log.Warn(fmt.Sprintf("Worker restarted after panic : %s", payload.WorkerName))
	}
}
