package models

import "encoding/json"

// Change feed event types, mirroring the row-level events the storage layer
// publishes after each mutation.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Table names carried in change records.
const (
	TableActiveListeners = "active_listeners"
	TableMatches         = "matches"
	TableChatMessages    = "chat_messages"
)

// Change is one row-level event on the store's change feed: event type plus
// the new and old row images, encoded so subscribers can decode into the
// table's model type.
type Change struct {
	Table string          `json:"table"`
	Event string          `json:"event"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
}

// ClientCommand is one action a connected client sends over its WebSocket.
type ClientCommand struct {
	UserID string `json:"-"`

	Action  string `json:"action"` // "load_song", "open_chat", "send_message", "close_chat", "remove_match", "stop_listening"
	Song    *Song  `json:"song,omitempty"`
	MatchID string `json:"match_id,omitempty"`
	Content string `json:"content,omitempty"`
}

// ClientEvent is one push from the server to a connected client.
type ClientEvent struct {
	Type    string `json:"type"` // "toast", "match_found", "no_match", "chat", "chat_closed", "message", "listener_count", "connected_users"
	Payload any    `json:"payload,omitempty"`
}

// Toast is a fire-and-forget UI notification. The engine never depends on its
// outcome.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListenerCount reports the current active-listener count for one song.
type ListenerCount struct {
	SongID string `json:"song_id"`
	Count  int64  `json:"count"`
}
