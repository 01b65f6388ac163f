package ws_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"promenade/domain/event"
	"promenade/infrastructure/ws"
	"promenade/observability"
	"promenade/repositories"
	"promenade/runtime"
	"promenade/runtime/workers"
	"promenade/services"
)

// startRelay spins up the full pipeline behind an httptest server and
// returns the websocket URL.
func startRelay(t *testing.T) string {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(database.DefaultPath)
	req.NoError(err)
	t.Cleanup(func() { database.CleanupDB(badgerDB, blugeWriter) })

	telemetryChan := make(chan event.Event, 64)
	sup := workers.NewSupervisor(log, telemetryChan, 10*time.Millisecond)
	history := repositories.NewHistoryRepository(badgerDB, blugeWriter, log, nil)
	orchestrator := runtime.NewOrchestrator(log, sup, runtime.NewRegistry(), history,
		observability.NewRoomStats(log), telemetryChan,
		64, time.Second, time.Minute, '*', 2, 256)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = orchestrator.Start(ctx) }()
	t.Cleanup(orchestrator.Stop)

	service := services.NewPresenceService(orchestrator, history)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.NewServer(log, service, 64, time.Second).Handler())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ws.Envelope{Type: eventType, Payload: payload}))
}

// waitFor reads frames until one of the wanted type arrives.
func waitFor(t *testing.T, conn *websocket.Conn, eventType string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var envelope ws.RawEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			t.Fatalf("waiting for %q: %v", eventType, err)
		}
		if envelope.Type == eventType {
			return envelope.Payload
		}
	}
}

func Test_Relay_Join_Move_Chat_Leave_Flow(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	// Given Alice joins an empty room
	alice := dial(t, url)
	send(t, alice, ws.EventJoin, ws.JoinPayload{
		DisplayName: "Alice",
		Position:    ws.Vec3Payload{Z: 2},
	})

	var aliceRoster []ws.ParticipantPayload
	req.NoError(json.Unmarshal(waitFor(t, alice, ws.EventRosterSnapshot), &aliceRoster))
	req.Empty(aliceRoster)

	// When Bob joins with a blank name
	bob := dial(t, url)
	send(t, bob, ws.EventJoin, ws.JoinPayload{})

	var bobRoster []ws.ParticipantPayload
	req.NoError(json.Unmarshal(waitFor(t, bob, ws.EventRosterSnapshot), &bobRoster))
	req.Len(bobRoster, 1)
	req.Equal("Alice", bobRoster[0].DisplayName)
	req.Equal(2.0, bobRoster[0].Position.Z)

	// Then Alice learns Bob's generated name
	var joined ws.ParticipantPayload
	req.NoError(json.Unmarshal(waitFor(t, alice, ws.EventJoined), &joined))
	req.Regexp(`^Player_`, joined.DisplayName)
	bobID := joined.ConnectionID

	// When Alice moves, Bob sees it and Alice gets no echo
	send(t, alice, ws.EventMove, ws.MovePayload{
		Position:    ws.Vec3Payload{X: 1, Z: 3},
		Yaw:         0.5,
		MotionState: "walk-forward",
	})

	var moved ws.MovedPayload
	req.NoError(json.Unmarshal(waitFor(t, bob, ws.EventMoved), &moved))
	req.Equal(1.0, moved.Position.X)
	req.Equal("walk-forward", moved.MotionState)

	// When Bob chats, everyone receives it, Bob included
	send(t, bob, ws.EventChat, ws.ChatPayload{Message: "hello room"})

	var bobEcho ws.ChatMessagePayload
	req.NoError(json.Unmarshal(waitFor(t, bob, ws.EventChatMessage), &bobEcho))
	req.Equal("hello room", bobEcho.Message)
	req.Equal(bobID, bobEcho.ConnectionID)

	var aliceCopy ws.ChatMessagePayload
	req.NoError(json.Unmarshal(waitFor(t, alice, ws.EventChatMessage), &aliceCopy))
	req.Equal("hello room", aliceCopy.Message)

	// When Bob disconnects, Alice is told exactly who left
	req.NoError(bob.Close())

	var left ws.LeftPayload
	req.NoError(json.Unmarshal(waitFor(t, alice, ws.EventLeft), &left))
	req.Equal(bobID, left.ConnectionID)
}

func Test_Relay_Disconnect_Without_Join_Announces_Nothing(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	alice := dial(t, url)
	send(t, alice, ws.EventJoin, ws.JoinPayload{DisplayName: "Alice"})
	waitFor(t, alice, ws.EventRosterSnapshot)

	// Given a socket that connects and drops without joining
	ghost := dial(t, url)
	req.NoError(ghost.Close())

	// Then Alice never hears about it; the next real join arrives first
	carol := dial(t, url)
	send(t, carol, ws.EventJoin, ws.JoinPayload{DisplayName: "Carol"})

	var joined ws.ParticipantPayload
	req.NoError(json.Unmarshal(waitFor(t, alice, ws.EventJoined), &joined))
	req.Equal("Carol", joined.DisplayName)
}
