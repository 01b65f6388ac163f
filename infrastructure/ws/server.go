package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"promenade/domain"
	"promenade/services"
	"promenade/sink"
)

// Server upgrades HTTP requests to websocket connections and bridges
// each connection to the presence service: one goroutine reading and
// dispatching, one goroutine draining the connection's sink.
type Server struct {
	log             *slog.Logger
	service         services.IPresenceService
	validate        *validator.Validate
	upgrader        websocket.Upgrader
	connBufferSize  int
	deliveryTimeout time.Duration
}

func NewServer(log *slog.Logger, service services.IPresenceService,
	connBufferSize int, deliveryTimeout time.Duration) *Server {
	return &Server{
		log:      log,
		service:  service,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			// The relay trusts its clients; same-origin enforcement is
			// the reverse proxy's concern.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		connBufferSize:  connBufferSize,
		deliveryTimeout: deliveryTimeout,
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("Websocket upgrade failed", "error", err)
			return
		}

		id := domain.ConnectionID(uuid.NewString())
		connSink := sink.NewConnSink(s.log, s.connBufferSize, s.deliveryTimeout)
		done := make(chan struct{})

		defer func() {
			// Leave resolves to at most one remove and one left
			// broadcast; the service drops it silently if the
			// connection never joined.
			s.service.Leave(id)
			connSink.Close()
			close(done)
			_ = conn.Close()
		}()

		var writeMu sync.Mutex
		go s.writeLoop(conn, &writeMu, connSink, done)

		s.log.Debug("Connection established", "connection", string(id))
		s.readLoop(conn, id, connSink)
	}
}

// readLoop decodes inbound envelopes and dispatches them on the
// connection's goroutine, which preserves per-connection order all the
// way into the pipeline. It returns on the first transport error.
func (s *Server) readLoop(conn *websocket.Conn, id domain.ConnectionID, connSink *sink.ConnSink) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug("Connection closed", "connection", string(id), "error", err)
			return
		}

		var envelope RawEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}

		switch envelope.Type {
		case EventJoin:
			var payload JoinPayload
			if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
				continue
			}
			if err := s.validate.Struct(payload); err != nil {
				// Defaulting over rejection: an oversized name falls
				// back to the generated one.
				s.log.Debug(fmt.Sprintf("Join payload rejected by validation, defaulting : %v", err))
				payload.DisplayName = ""
			}
			s.service.Join(id, payload.DisplayName, payload.Movement(), connSink)
		case EventMove:
			var payload MovePayload
			if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
				continue
			}
			s.service.Move(id, payload.Movement())
		case EventChat:
			var payload ChatPayload
			if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
				continue
			}
			s.service.Chat(id, payload.Message)
		default:
			s.log.Debug("Unknown envelope type skipped", "type", envelope.Type)
		}
	}
}

// writeLoop drains the connection's sink and writes envelopes out.
// A write error ends the loop; the read loop notices the broken
// connection on its own.
func (s *Server) writeLoop(conn *websocket.Conn, writeMu *sync.Mutex, connSink *sink.ConnSink, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case evt := <-connSink.Events():
			envelope, ok := FromDomainEvent(evt)
			if !ok {
				continue
			}
			writeMu.Lock()
			err := conn.WriteJSON(envelope)
			writeMu.Unlock()
			if err != nil {
				s.log.Debug("Connection write failed", "error", err)
				return
			}
		}
	}
}
