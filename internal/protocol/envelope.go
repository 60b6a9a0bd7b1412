package protocol

import "time"

// MessageType enumerates the closed set of wire message kinds.
type MessageType string

const (
	// Client -> server requests.
	MessageTypeHandshake MessageType = "handshake"
	MessageTypeChat      MessageType = "chat"
	MessageTypeEmote     MessageType = "emote"
	MessageTypeWhisper   MessageType = "whisper"
	MessageTypeRoom      MessageType = "room"
	MessageTypeUsername  MessageType = "username"
	MessageTypeListUsers MessageType = "list_users"

	// Server -> client responses and deliveries. Chat and emote
	// envelopes travel in both directions.
	MessageTypeConfirm MessageType = "confirm"
	MessageTypeDenied  MessageType = "denied"
	MessageTypeNotice  MessageType = "notice"
	MessageTypeTell    MessageType = "tell"
)

// Envelope wraps every payload sent over the wire.
type Envelope struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// HandshakeRequest establishes or re-establishes a username-bound session.
// First is true for the initial handshake and false after a reconnect.
type HandshakeRequest struct {
	First    bool   `json:"first"`
	Username string `json:"username"`
	Channel  string `json:"channel,omitempty"`
}

// ConfirmPayload acknowledges a handshake or rename. Username carries the
// accepted name so the client cache only changes on confirmation; Conn is
// the server-assigned connection id, sent on handshake confirms.
type ConfirmPayload struct {
	Username string `json:"username,omitempty"`
	Conn     string `json:"conn,omitempty"`
}

// DeniedPayload rejects a handshake or rename.
type DeniedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ChatMessage is a user-authored or system-generated delivery. Username is
// the author of chat/emote messages; From and To are set on whispers.
type ChatMessage struct {
	Username string `json:"username,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Message  string `json:"message"`
}

// WhisperRequest asks for a private message to a single user.
type WhisperRequest struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// RoomRequest joins (and implicitly creates) a room. An absent or empty
// room name means the default room.
type RoomRequest struct {
	Room string `json:"room,omitempty"`
}

// RenameRequest asks to change the session's username.
type RenameRequest struct {
	Username string `json:"username"`
}
