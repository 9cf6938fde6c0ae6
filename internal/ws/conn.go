package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/rs/xid"
	"nhooyr.io/websocket"
)

// Conn wraps one websocket connection. The id is assigned at accept time
// and is what the room package knows the connection by.
type Conn struct {
	id  string
	ws  *websocket.Conn
	log *slog.Logger
	out chan []byte
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

func NewConn(ws *websocket.Conn, log *slog.Logger) *Conn {
	return &Conn{
		id:  xid.New().String(),
		ws:  ws,
		log: log,
		out: make(chan []byte, 256),
	}
}

// ID returns the connection id, stable for the connection's lifetime.
func (c *Conn) ID() string { return c.id }

// Send queues an event frame without blocking. A full buffer drops the
// frame; a slow reader must not stall the room.
func (c *Conn) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case c.out <- raw:
	default:
		c.log.Debug("ws.send.drop", "conn", c.id, "event", event)
	}
}

// Read blocks until it receives a text/binary message
// Returns false if connection is closed
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop sends outbound frames + periodic pings
// Exits when ctx is cancelled
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close closes the websocket connection normally
func (c *Conn) Close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }
