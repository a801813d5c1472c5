package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/interaction"
	"github.com/vntrieu/werewolf/internal/ratelimit"
)

// EventHandler handles messages sent by connected clients.
type EventHandler struct {
	hub         *Hub
	router      interaction.Handler
	rateLimiter ratelimit.Limiter
}

// NewEventHandler creates a new EventHandler. hub may be nil when building
// the hub. rateLimiter is optional; when set, chat and interactions are
// rate-limited per player.
func NewEventHandler(hub *Hub, router interaction.Handler, rateLimiter ratelimit.Limiter) *EventHandler {
	return &EventHandler{
		hub:         hub,
		router:      router,
		rateLimiter: rateLimiter,
	}
}

// HandleClientMessage processes an incoming client message (interaction, chat).
// Rejects unknown or invalid message types with an error envelope.
func (h *EventHandler) HandleClientMessage(ctx context.Context, client *Client, msg *ClientInMessage) {
	if msg == nil {
		sendErrorToClient(client, "", "invalid message")
		return
	}
	// Validate type: allowlist and length to prevent abuse
	if len(msg.Type) > MaxClientMessageTypeLength {
		sendErrorToClient(client, msg.CorrelationID, "invalid message type")
		return
	}
	if !ValidClientMessageTypes[msg.Type] {
		sendErrorToClient(client, msg.CorrelationID, "unsupported message type")
		return
	}
	if !h.allow(client, msg) {
		return
	}
	switch msg.Type {
	case ClientMessageTypeInteraction:
		h.handleInteraction(ctx, client, msg)
	case ClientMessageTypeChat:
		h.handleChat(client, msg)
	}
}

func (h *EventHandler) allow(client *Client, msg *ClientInMessage) bool {
	if h.rateLimiter == nil || client.RateLimitKey == "" {
		return true
	}
	allowed, retryAfter := h.rateLimiter.Allow(client.RateLimitKey)
	if !allowed {
		sendEnvelopeToClient(client, &ServerEnvelope{
			Type:          ServerTypeError,
			CorrelationID: msg.CorrelationID,
			Payload:       errorOut{Message: "rate limit exceeded; try again later", RetryAfter: retryAfter},
		})
	}
	return allowed
}

// handleInteraction routes a button press or menu selection and answers the
// sender only. Identity comes from the connection, never from the payload.
func (h *EventHandler) handleInteraction(ctx context.Context, client *Client, msg *ClientInMessage) {
	if h.router == nil {
		sendErrorToClient(client, msg.CorrelationID, "interactions not available")
		return
	}
	var in interaction.Interaction
	if err := json.Unmarshal(msg.Payload, &in); err != nil || in.CustomID == "" {
		sendErrorToClient(client, msg.CorrelationID, "invalid interaction payload")
		return
	}
	in.PlayerID = client.PlayerID
	in.PlayerName = client.DisplayName
	in.ChannelID = client.ChannelID

	reply := h.router.Handle(ctx, in)
	sendEnvelopeToClient(client, &ServerEnvelope{
		Type:          ServerTypeReply,
		CorrelationID: msg.CorrelationID,
		Payload:       reply,
	})
}

// handleChat broadcasts a chat message to the other clients in the channel.
func (h *EventHandler) handleChat(client *Client, msg *ClientInMessage) {
	if h.hub == nil {
		return
	}
	var in chatIn
	if err := json.Unmarshal(msg.Payload, &in); err != nil {
		sendErrorToClient(client, msg.CorrelationID, "invalid chat payload")
		return
	}
	message := trimToMax(strings.TrimSpace(in.Message), MaxChatMessageLength)
	if message == "" {
		return
	}
	envelope := &ServerEnvelope{
		Type:  ServerTypeEvent,
		Event: ServerEventChat,
		Payload: chatOut{
			PlayerID:    client.PlayerID,
			DisplayName: client.DisplayName,
			Message:     message,
		},
	}
	h.hub.BroadcastEnvelopeExcept(client.ChannelID, envelope, client)
}

func sendErrorToClient(client *Client, correlationID, message string) {
	sendEnvelopeToClient(client, &ServerEnvelope{Type: ServerTypeError, CorrelationID: correlationID, Payload: errorOut{Message: message}})
}

func sendEnvelopeToClient(client *Client, envelope *ServerEnvelope) {
	defer func() {
		// send may already be closed by the hub
		if recover() != nil {
			log.Debug().Str("player_id", client.PlayerID).Msg("client gone; envelope dropped")
		}
	}()
	select {
	case client.send <- envelope:
	default:
		log.Warn().Str("player_id", client.PlayerID).Msg("could not send envelope to client (channel full)")
	}
}

// trimToMax cuts s to at most max bytes without splitting a UTF-8 sequence.
func trimToMax(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.ToValidUTF8(s[:max], "")
}
