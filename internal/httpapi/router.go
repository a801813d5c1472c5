package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/httpapi/handler"
	"github.com/vntrieu/werewolf/internal/interaction"
	"github.com/vntrieu/werewolf/internal/ratelimit"
	"github.com/vntrieu/werewolf/internal/websocket"

	_ "github.com/vntrieu/werewolf/docs" // swag docs
)

// Deps are the services the HTTP surface exposes.
type Deps struct {
	Manager     *games.Manager
	Router      interaction.Handler
	WebSocket   *websocket.WSHandler
	TokenSecret []byte
	TokenTTL    time.Duration

	// RateLimiter is optional; nil disables limiting.
	RateLimiter    ratelimit.Limiter
	AllowedOrigins []string
}

// NewRouter builds the root HTTP router.
//
// @title            Werewolf API
// @version          1.0
// @description      Lobbies, game views and button interactions for chat-channel Werewolf games.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(d Deps) http.Handler {
	limiter := d.RateLimiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handler.Healthz(d.Manager))

	// Swagger UI and generated spec (from swag comments)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	if d.WebSocket != nil {
		r.Get("/ws/channels/{channel_id}", d.WebSocket.HandleChannelWebSocket)
	}

	sessions := handler.NewSessionHandler(d.TokenSecret, d.TokenTTL)
	gameHandler := handler.NewGameHandler(d.Manager, d.Router)
	requireUser := RequireUser(d.TokenSecret)

	r.Route("/api", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(RateLimitMiddleware(limiter, RateLimitKeyByIP)).Post("/sessions", sessions.CreateSession)
		r.Get("/games/{game_id}", gameHandler.GetGame)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Use(RateLimitMiddleware(limiter, RateLimitKeyByUser))
			r.Post("/channels/{channel_id}/games", gameHandler.OpenLobby)
			r.Post("/games/{game_id}/players", gameHandler.JoinGame)
			r.Delete("/games/{game_id}/players/me", gameHandler.LeaveGame)
			r.Post("/interactions", gameHandler.Interact)
		})
	})

	return r
}
