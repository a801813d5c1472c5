package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/config"
	"github.com/vntrieu/werewolf/internal/database"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/httpapi"
	"github.com/vntrieu/werewolf/internal/interaction"
	"github.com/vntrieu/werewolf/internal/logging"
	"github.com/vntrieu/werewolf/internal/ratelimit"
	"github.com/vntrieu/werewolf/internal/render"
	"github.com/vntrieu/werewolf/internal/store"
	"github.com/vntrieu/werewolf/internal/websocket"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("setup logging")
	}
	if cfg.UsingDevSecret() {
		log.Warn().Msg("TOKEN_SECRET not set, using the development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, pool := openRepository(ctx, cfg.DatabaseURL)
	if pool != nil {
		defer pool.Close()
	}
	limiter := openLimiter(ctx, cfg)

	hub := websocket.NewHub(nil)
	go hub.Run(ctx)

	manager := games.NewManager(games.Options{
		Repository: repo,
		Surface:    websocket.NewSurface(hub),
		Renderer:   render.New(),
		Timings:    cfg.Timings(),
		PublicURL:  cfg.PublicURL,
	})
	if _, err := manager.RecoverStale(ctx); err != nil {
		log.Error().Err(err).Msg("recover stale games")
	}

	router := interaction.NewRouter(manager)
	hub.SetEventHandler(websocket.NewEventHandler(hub, router, limiter))

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Manager:        manager,
			Router:         router,
			WebSocket:      websocket.NewWSHandler(ctx, hub, cfg.TokenSecret),
			TokenSecret:    cfg.TokenSecret,
			TokenTTL:       cfg.TokenTTL,
			RateLimiter:    limiter,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("werewolf server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	manager.Shutdown()
	cancel()
}

// openRepository picks Postgres when a DSN is configured and the in-memory
// store otherwise.
func openRepository(ctx context.Context, dsn string) (games.Repository, *pgxpool.Pool) {
	if dsn == "" {
		log.Warn().Msg("DATABASE_URL not set, games are kept in memory only")
		return store.NewMemory(), nil
	}
	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect")
	}
	log.Info().Msg("connected to database")

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("database migrate")
	}
	log.Info().Msg("migrations up to date")
	return store.NewPostgres(pool), pool
}

func openLimiter(ctx context.Context, cfg *config.Config) ratelimit.Limiter {
	if cfg.RatePerMinute == 0 {
		return ratelimit.Noop{}
	}
	if cfg.RedisURL == "" {
		return ratelimit.NewTokenBucket(cfg.RatePerMinute, cfg.RatePerMinute)
	}
	client, err := ratelimit.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}
	log.Info().Msg("rate limiting through redis")
	return ratelimit.NewRedis(client, "werewolf:rl", cfg.RatePerMinute, time.Minute)
}
