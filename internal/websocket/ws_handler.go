package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/auth"
)

// WSHandler upgrades authenticated channel connections.
type WSHandler struct {
	hub         *Hub
	tokenSecret []byte
	ctx         context.Context
}

// NewWSHandler creates a new WSHandler. Connections live until ctx is done
// or the peer goes away; if tokenSecret is empty every upgrade is rejected.
func NewWSHandler(ctx context.Context, hub *Hub, tokenSecret []byte) *WSHandler {
	return &WSHandler{
		hub:         hub,
		tokenSecret: tokenSecret,
		ctx:         ctx,
	}
}

// tokenFromRequest reads the token from the query or a Bearer header.
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	const prefix = "Bearer "
	if v := r.Header.Get("Authorization"); strings.HasPrefix(v, prefix) {
		return strings.TrimSpace(v[len(prefix):])
	}
	return ""
}

// HandleChannelWebSocket handles GET /ws/channels/{channel_id}. The token
// must have been issued for the same channel.
func (h *WSHandler) HandleChannelWebSocket(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channel_id")
	if channelID == "" {
		http.Error(w, "channel_id is required", http.StatusBadRequest)
		return
	}
	token := tokenFromRequest(r)
	if token == "" || len(h.tokenSecret) == 0 {
		reject(w, "missing or invalid token")
		return
	}
	claims, err := auth.VerifyToken(token, h.tokenSecret)
	if err != nil {
		log.Debug().Err(err).Str("channel_id", channelID).Msg("websocket auth failed")
		reject(w, "unauthorized")
		return
	}
	if claims.ChannelID != channelID {
		reject(w, "channel does not match token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("websocket upgrade failed")
		return
	}
	client := &Client{
		hub:          h.hub,
		conn:         conn,
		send:         make(chan *ServerEnvelope, sendBuffer),
		ID:           uuid.NewString(),
		ChannelID:    channelID,
		PlayerID:     claims.UserID,
		DisplayName:  claims.DisplayName,
		RateLimitKey: "ws:" + claims.UserID,
		ctx:          h.ctx,
	}
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// reject responds with 401 before upgrade.
func reject(w http.ResponseWriter, reason string) {
	http.Error(w, reason, http.StatusUnauthorized)
}
