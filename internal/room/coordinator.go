package room

import (
	"context"
	"encoding/json"
	"sync"

	"log/slog"

	"github.com/UTKARSHJHA-2005/CODIFY/pkg/metrics"
)

// Client is the coordinator's view of one live connection. Send must not
// block; delivery to a connection that is already gone is a no-op.
type Client interface {
	ID() string
	Send(event string, payload any)
}

// Bus forwards room events to other server instances. Publish is
// fire-and-forget; local delivery never depends on it.
type Bus interface {
	Publish(ctx context.Context, evt BusEvent) error
}

// Coordinator owns the registry and every room's member set. All event
// handlers run under one mutex, so concurrent join/leave on the same room
// stay consistent and the roster never observes a half-applied join.
type Coordinator struct {
	log  *slog.Logger
	bus  Bus
	reg  *Registry
	pubq chan BusEvent

	mu    sync.Mutex
	rooms map[string]map[string]Client // roomID -> connID -> client
}

func NewCoordinator(log *slog.Logger, bus Bus) *Coordinator {
	c := &Coordinator{
		log:   log,
		bus:   bus,
		reg:   NewRegistry(),
		rooms: map[string]map[string]Client{},
	}
	if bus != nil {
		c.pubq = make(chan BusEvent, 256)
		go c.publishLoop()
	}
	return c
}

// Join records the connection's username, adds it to the room and
// broadcasts the refreshed roster to every member, joiner included.
// A room springs into existence with its first member.
func (c *Coordinator) Join(cl Client, roomID, username string) {
	if roomID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reg.Set(cl.ID(), username)
	members := c.rooms[roomID]
	if members == nil {
		members = map[string]Client{}
		c.rooms[roomID] = members
		metrics.RoomsActive.Inc()
	}
	members[cl.ID()] = cl

	c.broadcastLocked(roomID, EventJoined, JoinedPayload{
		Clients:  c.rosterLocked(roomID),
		Username: username,
		SocketID: cl.ID(),
	}, "")
	c.log.Info("room.join", "room", roomID, "conn", cl.ID(), "username", username, "members", len(members))
}

// Leave removes the connection from the room and the registry, then tells
// the remaining members. Leaving a room the connection is not in, or
// leaving twice, does nothing and broadcasts nothing.
func (c *Coordinator) Leave(cl Client, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	members := c.rooms[roomID]
	if _, ok := members[cl.ID()]; !ok {
		return
	}
	// Snapshot before the registry entry goes away; the left payload
	// needs the name.
	username, _ := c.reg.Get(cl.ID())
	c.removeLocked(roomID, cl.ID())
	c.reg.Remove(cl.ID())

	c.broadcastLocked(roomID, EventLeft, LeftPayload{
		Username: username,
		Clients:  c.rosterLocked(roomID),
	}, "")
	c.log.Info("room.leave", "room", roomID, "conn", cl.ID(), "username", username)
}

// Disconnect handles an abrupt transport-level close: the connection is
// swept out of every room it belongs to, each affected room gets exactly
// one left broadcast and the registry entry is released.
func (c *Coordinator) Disconnect(cl Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	username, _ := c.reg.Get(cl.ID())
	for roomID, members := range c.rooms {
		if _, ok := members[cl.ID()]; !ok {
			continue
		}
		c.removeLocked(roomID, cl.ID())
		c.broadcastLocked(roomID, EventLeft, LeftPayload{
			Username: username,
			Clients:  c.rosterLocked(roomID),
		}, "")
		c.log.Info("room.disconnect", "room", roomID, "conn", cl.ID(), "username", username)
	}
	c.reg.Remove(cl.ID())
}

// CodeChange relays an editor snapshot to every member of the room except
// the sender. A sender that is not a member yields an empty broadcast set.
func (c *Coordinator) CodeChange(cl Client, roomID, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms[roomID][cl.ID()]; !ok {
		return
	}
	payload := CodePayload{Code: code}
	c.broadcastLocked(roomID, EventCodeChange, payload, cl.ID())
	c.publish(roomID, EventCodeChange, payload)
}

// Chat relays a chat line to the sender's room, sender excluded; the
// client appends its own message locally before sending. An empty roomID
// infers the room from the sender's membership; a named room requires the
// sender to be a member. Either way a chat from outside is silently
// dropped.
func (c *Coordinator) Chat(cl Client, roomID, username, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if roomID == "" {
		roomID = c.roomOfLocked(cl.ID())
		if roomID == "" {
			return
		}
	} else if _, ok := c.rooms[roomID][cl.ID()]; !ok {
		return
	}
	payload := ChatPayload{Username: username, Message: message}
	c.broadcastLocked(roomID, EventChatMessage, payload, cl.ID())
	c.publish(roomID, EventChatMessage, payload)
}

// SystemChat delivers a chat line to every member of the room, including
// whoever triggered it. Used for the synthetic AI sender.
func (c *Coordinator) SystemChat(roomID, username, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rooms[roomID] == nil {
		return
	}
	payload := ChatPayload{Username: username, Message: message}
	c.broadcastLocked(roomID, EventChatMessage, payload, "")
	c.publish(roomID, EventChatMessage, payload)
}

// SyncCode delivers the sender's editor contents to a single target
// connection, bringing a newcomer up to date. Both sides must be members
// of the room or nothing is sent.
func (c *Coordinator) SyncCode(cl Client, roomID, code, targetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	members := c.rooms[roomID]
	if _, ok := members[cl.ID()]; !ok {
		return
	}
	target, ok := members[targetID]
	if !ok {
		return
	}
	target.Send(EventCodeChange, CodePayload{Code: code})
}

// ApplyRemote fans an event published by another instance out to the
// local members of the room. Membership stays per-instance; only content
// events travel on the bus, so there is no sender to exclude here.
func (c *Coordinator) ApplyRemote(evt BusEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rooms[evt.Room] == nil {
		return
	}
	c.broadcastLocked(evt.Room, evt.Event, evt.Payload, "")
}

// Roster returns the current participants of a room, recomputed from the
// live member set. Order is not meaningful.
func (c *Coordinator) Roster(roomID string) []Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rosterLocked(roomID)
}

// IsMember reports whether the connection currently belongs to the room.
func (c *Coordinator) IsMember(connID, roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID][connID]
	return ok
}

// RoomCount reports the number of non-empty rooms.
func (c *Coordinator) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

func (c *Coordinator) rosterLocked(roomID string) []Member {
	members := c.rooms[roomID]
	out := make([]Member, 0, len(members))
	for id := range members {
		// A missing registry entry shows up as an empty username
		// rather than failing the broadcast.
		name, _ := c.reg.Get(id)
		out = append(out, Member{SocketID: id, Username: name})
	}
	return out
}

// removeLocked drops a connection from a room and reclaims the room's
// map entry once the last member is gone.
func (c *Coordinator) removeLocked(roomID, connID string) {
	members := c.rooms[roomID]
	delete(members, connID)
	if len(members) == 0 {
		delete(c.rooms, roomID)
		metrics.RoomsActive.Dec()
		c.log.Debug("room.empty", "room", roomID)
	}
}

func (c *Coordinator) broadcastLocked(roomID, event string, payload any, except string) {
	for id, cl := range c.rooms[roomID] {
		if id == except {
			continue
		}
		cl.Send(event, payload)
	}
	metrics.BroadcastsTotal.WithLabelValues(event).Inc()
}

// publish hands a content event to the cross-instance bus. Enqueueing
// happens under the coordinator mutex and a single worker drains the
// queue, so events reach the bus in the same order members saw them.
// Delivery is at-most-once: a full backlog drops the event and failures
// only get logged; local members already have it.
func (c *Coordinator) publish(roomID, event string, payload any) {
	if c.bus == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case c.pubq <- BusEvent{Room: roomID, Event: event, Payload: raw}:
	default:
		c.log.Warn("room.bus.backlog", "room", roomID, "event", event)
	}
}

func (c *Coordinator) publishLoop() {
	for evt := range c.pubq {
		if err := c.bus.Publish(context.Background(), evt); err != nil {
			c.log.Debug("room.bus.publish", "room", evt.Room, "event", evt.Event, "err", err)
		}
	}
}

func (c *Coordinator) roomOfLocked(connID string) string {
	for roomID, members := range c.rooms {
		if _, ok := members[connID]; ok {
			return roomID
		}
	}
	return ""
}
