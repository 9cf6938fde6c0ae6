package ws

import "encoding/json"

// Envelope is the JSON frame shared with the browser client:
// an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event names.
const (
	evtJoin        = "join"
	evtLeave       = "leave"
	evtCodeChange  = "code_change"
	evtChatMessage = "chat_message"
	evtSyncCode    = "sync_code"
	evtAnalyzeCode = "analyze_code"
)

// Inbound payloads. Field names match the client's emits.

type joinMsg struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type leaveMsg struct {
	RoomID string `json:"roomId"`
}

type codeMsg struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type chatMsg struct {
	RoomID   string `json:"roomId"` // optional, inferred from membership when empty
	Username string `json:"username"`
	Message  string `json:"message"`
}

type syncMsg struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	SocketID string `json:"socketid"`
}

type analyzeMsg struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}
