package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/interaction"
)

// LobbyRequest is the optional body for opening or joining a lobby.
type LobbyRequest struct {
	Password string `json:"password,omitempty"`
}

// LobbyResponse is returned when a lobby is opened.
type LobbyResponse struct {
	GameID int64 `json:"game_id"`
}

// InteractionRequest is the body for POST /api/interactions.
type InteractionRequest struct {
	CustomID string   `json:"custom_id"`
	PromptID string   `json:"prompt_id,omitempty"`
	Values   []string `json:"values,omitempty"`
	Password string   `json:"password,omitempty"`
}

// GameHandler handles game-related HTTP requests.
type GameHandler struct {
	manager *games.Manager
	router  interaction.Handler
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(manager *games.Manager, router interaction.Handler) *GameHandler {
	return &GameHandler{manager: manager, router: router}
}

// decodeOptional decodes a JSON body that may be empty.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// OpenLobby handles POST /api/channels/{channel_id}/games.
//
// @Summary      Open lobby
// @Description  Open a lobby in the channel, owned by the caller. A channel holds one active game. An optional password gates joining.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        channel_id  path      string        true   "Chat channel id"
// @Param        body        body      LobbyRequest  false  "Optional lobby password"
// @Success      201         {object}  LobbyResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {string}  string  "Unauthorized"
// @Failure      403         {object}  errorResponse  "Token issued for another channel"
// @Failure      409         {object}  errorResponse  "A game is already running in this channel"
// @Security     BearerAuth
// @Router       /api/channels/{channel_id}/games [post]
func (h *GameHandler) OpenLobby(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromRequest(r)
	channelID := chi.URLParam(r, "channel_id")
	if claims == nil || claims.ChannelID != channelID {
		writeError(w, http.StatusForbidden, "token is not valid for this channel")
		return
	}
	var req LobbyRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := h.manager.OpenLobby(r.Context(), channelID, claims.UserID, claims.DisplayName, req.Password)
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	log.Info().Str("request_id", requestID(r)).Int64("game_id", id).Str("player_id", claims.UserID).Msg("lobby opened over http")
	writeJSON(w, http.StatusCreated, LobbyResponse{GameID: id})
}

// GetGame handles GET /api/games/{game_id}.
//
// @Summary      Get game
// @Description  Public view of a game. Roles stay hidden until the game has ended.
// @Tags         games
// @Produce      json
// @Param        game_id  path      int  true  "Game id"
// @Success      200      {object}  games.View
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/games/{game_id} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "game_id must be a positive integer")
		return
	}
	view, err := h.manager.Snapshot(r.Context(), id)
	if err != nil {
		writeGameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// JoinGame handles POST /api/games/{game_id}/players.
//
// @Summary      Join lobby
// @Description  Join a lobby that is still open.
// @Tags         games
// @Accept       json
// @Param        game_id  path  int           true   "Game id"
// @Param        body     body  LobbyRequest  false  "Lobby password when one is set"
// @Success      204
// @Failure      403  {object}  errorResponse  "Wrong password"
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse  "Already joined or lobby closed"
// @Security     BearerAuth
// @Router       /api/games/{game_id}/players [post]
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "game_id must be a positive integer")
		return
	}
	var req LobbyRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims := ClaimsFromRequest(r)
	if err := h.manager.AddPlayer(r.Context(), id, claims.UserID, claims.DisplayName, req.Password); err != nil {
		writeGameError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveGame handles DELETE /api/games/{game_id}/players/me.
//
// @Summary      Leave lobby
// @Description  Leave a lobby that is still open. The owner cannot leave.
// @Tags         games
// @Param        game_id  path  int  true  "Game id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/games/{game_id}/players/me [delete]
func (h *GameHandler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "game_id must be a positive integer")
		return
	}
	if err := h.manager.RemovePlayer(r.Context(), id, ClaimsFromRequest(r).UserID); err != nil {
		writeGameError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Interact handles POST /api/interactions.
//
// @Summary      Press a button
// @Description  Route a button press or menu selection. Always answers 200 with the private reply; failed actions set "failed".
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Param        body  body      InteractionRequest  true  "Component id and selected values"
// @Success      200   {object}  interaction.Reply
// @Failure      400   {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/interactions [post]
func (h *GameHandler) Interact(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomID == "" {
		writeError(w, http.StatusBadRequest, "custom_id is required")
		return
	}
	claims := ClaimsFromRequest(r)
	reply := h.router.Handle(r.Context(), interaction.Interaction{
		PlayerID:   claims.UserID,
		PlayerName: claims.DisplayName,
		ChannelID:  claims.ChannelID,
		PromptID:   req.PromptID,
		CustomID:   req.CustomID,
		Values:     req.Values,
		Password:   req.Password,
	})
	writeJSON(w, http.StatusOK, reply)
}
