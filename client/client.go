// Package client connects to a relay server and mirrors the room state
// it broadcasts. It is the Go counterpart of the browser clients.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"promenade/domain"
	"promenade/infrastructure/ws"
)

// Client wraps one websocket connection to the relay. Sends are
// serialized by a mutex; received envelopes are handed to the
// reconciler on a single goroutine, which preserves server order.
type Client struct {
	log        *slog.Logger
	conn       *websocket.Conn
	writeMu    sync.Mutex
	reconciler *Reconciler
}

// Dial connects to the relay endpoint (ws://host:port/ws) and starts
// the receive loop. The caller owns the reconciler's presenter.
func Dial(ctx context.Context, log *slog.Logger, url string, reconciler *Reconciler) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{log: log, conn: conn, reconciler: reconciler}
	go c.readLoop()
	return c, nil
}

// Join announces this client to the room.
func (c *Client) Join(name string, position domain.Vec3, yaw float64, motion domain.Motion) error {
	return c.send(ws.Envelope{Type: ws.EventJoin, Payload: ws.JoinPayload{
		DisplayName: name,
		Position:    ws.Vec3Payload{X: position.X, Y: position.Y, Z: position.Z},
		Yaw:         yaw,
		MotionState: string(motion),
	}})
}

// Move reports this client's new kinematic state.
func (c *Client) Move(position domain.Vec3, yaw float64, motion domain.Motion) error {
	return c.send(ws.Envelope{Type: ws.EventMove, Payload: ws.MovePayload{
		Position:    ws.Vec3Payload{X: position.X, Y: position.Y, Z: position.Z},
		Yaw:         yaw,
		MotionState: string(motion),
	}})
}

// Chat sends a chat message to the room.
func (c *Client) Chat(message string) error {
	return c.send(ws.Envelope{Type: ws.EventChat, Payload: ws.ChatPayload{Message: message}})
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(envelope ws.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(envelope)
}

func (c *Client) readLoop() {
	for {
		var envelope ws.RawEnvelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			c.log.Debug("Relay connection closed", "error", err)
			return
		}
		if err := c.reconciler.Apply(envelope); err != nil {
			c.log.Debug("Skipping envelope", "type", envelope.Type, "error", err)
		}
	}
}
