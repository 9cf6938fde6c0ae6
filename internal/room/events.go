package room

import "encoding/json"

// Wire event names shared with the browser client.
const (
	EventJoined      = "joined"
	EventLeft        = "left"
	EventCodeChange  = "code_change"
	EventChatMessage = "chat_message"
)

// Member is one roster entry: a live connection and its display name.
type Member struct {
	SocketID string `json:"socketid"`
	Username string `json:"username"`
}

// JoinedPayload announces a new member to everyone in the room,
// the joiner included, together with the full refreshed roster.
type JoinedPayload struct {
	Clients  []Member `json:"clients"`
	Username string   `json:"username"`
	SocketID string   `json:"socketid"`
}

// LeftPayload carries the departed member's name and the remaining roster.
type LeftPayload struct {
	Username string   `json:"username"`
	Clients  []Member `json:"clients"`
}

// CodePayload relays an editor snapshot to the rest of the room.
type CodePayload struct {
	Code string `json:"code"`
}

// ChatPayload relays a chat line. The server never stores these.
type ChatPayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// BusEvent is one room event on the cross-instance bus. Payload stays raw
// so receiving instances forward it without re-encoding.
type BusEvent struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Origin  string          `json:"origin"`
}
