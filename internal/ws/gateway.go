package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/room"
	"github.com/UTKARSHJHA-2005/CODIFY/pkg/metrics"
	"github.com/UTKARSHJHA-2005/CODIFY/pkg/ratelimit"
)

const (
	// Per-connection inbound message budget. Editor keystroke batches
	// arrive fast; these bounds only stop floods.
	messagesPerSecond = 100
	messageBurst      = 200

	aiTimeout = 30 * time.Second
)

// Analyzer produces a free-form review of a piece of code. Failures are
// surfaced to the room as chat, never propagated.
type Analyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, code string) (string, error)
}

// Gateway terminates websocket connections and feeds decoded events into
// the coordinator.
type Gateway struct {
	log   *slog.Logger
	coord *room.Coordinator
	ai    Analyzer
}

func NewGateway(log *slog.Logger, coord *room.Coordinator, ai Analyzer) *Gateway {
	return &Gateway{log: log, coord: coord, ai: ai}
}

// ServeWS handles a new /ws connection for its whole lifetime. When the
// read loop ends, for any reason, the connection is treated as
// disconnected and swept from every room.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sock, err := Accept(w, r)
	if err != nil {
		g.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(sock, g.log)
	g.log.Info("ws.connected", "conn", c.ID(), "remote", r.RemoteAddr)
	metrics.ConnectionsActive.Inc()

	go c.WriteLoop(ctx)

	bucket := ratelimit.NewBucket(messagesPerSecond, messageBurst)
	for {
		raw, ok := c.Read(ctx)
		if !ok {
			break
		}
		if !bucket.Allow() {
			g.log.Warn("ws.ratelimited", "conn", c.ID())
			continue
		}
		g.dispatch(c, raw)
	}

	g.coord.Disconnect(c)
	_ = c.Close()
	metrics.ConnectionsActive.Dec()
	g.log.Info("ws.closed", "conn", c.ID())
}

// dispatch decodes one inbound frame and routes it to the matching
// coordinator handler. A malformed frame affects nobody but its sender,
// and even then only by being ignored.
func (g *Gateway) dispatch(c room.Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.log.Debug("ws.frame.bad", "conn", c.ID(), "err", err)
		return
	}

	switch env.Event {
	case evtJoin:
		var m joinMsg
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		g.coord.Join(c, m.RoomID, m.Username)

	case evtLeave:
		var m leaveMsg
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		g.coord.Leave(c, m.RoomID)

	case evtCodeChange:
		var m codeMsg
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		g.coord.CodeChange(c, m.RoomID, m.Code)

	case evtChatMessage:
		var m chatMsg
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		g.coord.Chat(c, m.RoomID, m.Username, m.Message)

	case evtSyncCode:
		var m syncMsg
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		g.coord.SyncCode(c, m.RoomID, m.Code, m.SocketID)

	case evtAnalyzeCode:
		var m analyzeMsg
		if json.Unmarshal(env.Data, &m) != nil {
			return
		}
		g.analyze(c, m.RoomID, m.Code)

	default:
		g.log.Debug("ws.event.unknown", "conn", c.ID(), "event", env.Event)
	}
}

// analyze runs the AI call off the event path and reports the outcome to
// the room as a chat message from the synthetic "AI" sender. Only a
// member of the room may trigger it; anyone else is a no-op, same as the
// other relay events.
func (g *Gateway) analyze(c room.Client, roomID, code string) {
	if !g.coord.IsMember(c.ID(), roomID) {
		return
	}
	if g.ai == nil || !g.ai.Enabled() {
		g.coord.SystemChat(roomID, "AI", "AI analysis is not configured on this server.")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
		defer cancel()

		result, err := g.ai.Analyze(ctx, code)
		if err != nil {
			g.log.Warn("ai.analyze", "room", roomID, "err", err)
			g.coord.SystemChat(roomID, "AI", "Error analyzing the code. Please try again later.")
			return
		}
		g.coord.SystemChat(roomID, "AI", result)
	}()
}
