package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/games"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// ClaimsContextKey is the context key for the verified session claims (set by RequireUser middleware).
const ClaimsContextKey contextKey = "claims"

// WithClaims returns ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromRequest returns the session claims if set by the auth middleware; otherwise nil.
func ClaimsFromRequest(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ClaimsContextKey).(*auth.Claims)
	return claims
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeGameError maps game errors to status codes. Unknown errors are logged
// and hidden behind a 500.
func writeGameError(w http.ResponseWriter, r *http.Request, err error) {
	if sentinel, ok := games.IsInvalidState(err); ok {
		status := http.StatusConflict
		switch {
		case errors.Is(sentinel, games.ErrNotOwner), errors.Is(sentinel, games.ErrWrongPassword):
			status = http.StatusForbidden
		case errors.Is(sentinel, games.ErrInvalidTarget):
			status = http.StatusBadRequest
		}
		writeError(w, status, sentinel.Error())
		return
	}
	if games.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Error().Err(err).Str("request_id", requestID(r)).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// gameIDParam parses the {game_id} path parameter.
func gameIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "game_id"), 10, 64)
	return id, err == nil && id > 0
}
