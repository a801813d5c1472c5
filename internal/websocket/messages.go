package websocket

import "encoding/json"

// ClientInMessage is the envelope for messages from client to server.
// Types: "interaction" | "chat"
type ClientInMessage struct {
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// ServerEnvelope is the envelope for messages from server to client.
// Type: "event" | "reply" | "error"
type ServerEnvelope struct {
	Type          string      `json:"type"`
	Event         string      `json:"event,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Payload       interface{} `json:"payload,omitempty"`
}

// Client message types.
const (
	ClientMessageTypeInteraction = "interaction"
	ClientMessageTypeChat        = "chat"
)

// Server event types.
const (
	ServerEventAnnouncement        = "announcement"
	ServerEventAnnouncementEdited  = "announcement_edited"
	ServerEventAnnouncementDeleted = "announcement_deleted"
	ServerEventPrompt              = "prompt"
	ServerEventPromptEdited        = "prompt_edited"
	ServerEventChat                = "chat"
)

// Server envelope types.
const (
	ServerTypeEvent = "event"
	ServerTypeReply = "reply"
	ServerTypeError = "error"
)

// MaxChatMessageLength is the maximum allowed length for a chat message.
const MaxChatMessageLength = 2000

// MaxClientMessageTypeLength limits the "type" field to prevent abuse.
const MaxClientMessageTypeLength = 64

// ValidClientMessageTypes are the only allowed values for ClientInMessage.Type.
var ValidClientMessageTypes = map[string]bool{
	ClientMessageTypeInteraction: true,
	ClientMessageTypeChat:        true,
}

type chatIn struct {
	Message string `json:"message"`
}

type chatOut struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Message     string `json:"message"`
}

type errorOut struct {
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
}
