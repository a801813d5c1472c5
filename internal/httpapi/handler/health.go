package handler

import (
	"net/http"
)

// healthResponse is the JSON body for GET /healthz.
type healthResponse struct {
	Status      string `json:"status"`
	ActiveGames int    `json:"active_games"`
}

// GameCounter reports how many games are in memory.
type GameCounter interface {
	Len() int
}

// Healthz returns the GET /healthz handler.
//
// @Summary      Health check
// @Description  Liveness check with the number of games held in memory. No authentication required.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /healthz [get]
func Healthz(games GameCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{Status: "ok"}
		if games != nil {
			resp.ActiveGames = games.Len()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
