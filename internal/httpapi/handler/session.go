package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/auth"
)

// Session validation limits.
const (
	IDMaxLen          = 128
	DisplayNameMaxLen = 64
)

// SessionRequest is the body for POST /api/sessions.
type SessionRequest struct {
	ChannelID   string `json:"channel_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// SessionResponse carries the player's bearer token.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// SessionHandler issues player session tokens.
type SessionHandler struct {
	tokenSecret []byte
	tokenTTL    time.Duration
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(tokenSecret []byte, tokenTTL time.Duration) *SessionHandler {
	if tokenTTL <= 0 {
		tokenTTL = auth.DefaultTokenExpiry
	}
	return &SessionHandler{tokenSecret: tokenSecret, tokenTTL: tokenTTL}
}

func (req *SessionRequest) validate() string {
	req.ChannelID = strings.TrimSpace(req.ChannelID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	switch {
	case req.ChannelID == "" || len(req.ChannelID) > IDMaxLen:
		return "channel_id is required and must be at most 128 characters"
	case req.UserID == "" || len(req.UserID) > IDMaxLen:
		return "user_id is required and must be at most 128 characters"
	case req.DisplayName == "":
		return "display_name is required"
	case utf8.RuneCountInString(req.DisplayName) > DisplayNameMaxLen:
		return "display_name must be at most 64 characters"
	}
	return ""
}

// CreateSession handles POST /api/sessions.
//
// The identity in the body is trusted as given; expose this route to the chat
// gateway only.
//
// @Summary      Create session
// @Description  Issue a bearer token identifying a player inside one channel. The token authenticates the REST endpoints and the channel websocket.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      SessionRequest  true  "Player identity"
// @Success      201   {object}  SessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	token, expiresAt, err := auth.GenerateToken(req.ChannelID, req.UserID, req.DisplayName, h.tokenSecret, h.tokenTTL)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("issue session token")
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Token: token, ExpiresAt: expiresAt.Format(time.RFC3339)})
}
