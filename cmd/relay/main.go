package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/handlers"
	"github.com/mossy-p/socio-relay/internal/media"
	"github.com/mossy-p/socio-relay/internal/mongo"
	"github.com/mossy-p/socio-relay/internal/redis"
	"github.com/mossy-p/socio-relay/internal/relay"
)

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Str("module", "main").Msg("failed to load config")
	}
	setupLogger(cfg)

	deps := handlers.Deps{}

	// Presence mirroring is best effort; the relay works without Redis.
	var presenceStore relay.PresenceStore
	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	rdb, err := redis.Connect(dialCtx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Str("module", "main").Msg("Redis unavailable, presence will not be mirrored")
	} else {
		defer rdb.Close()
		store := redis.NewPresenceStore(rdb, cfg.Presence)
		presenceStore = store
		deps.Presence = store
		log.Info().Str("module", "main").Msg("Redis connection established")
	}

	docs, err := mongo.Connect(dialCtx, cfg.Mongo)
	if err != nil {
		dialCancel()
		log.Fatal().Err(err).Str("module", "main").Msg("failed to connect to MongoDB")
	}
	if err := docs.EnsureIndexes(dialCtx); err != nil {
		log.Warn().Err(err).Str("module", "main").Msg("failed to ensure indexes")
	}
	deps.Users = docs.Users()
	deps.Messages = docs.Messages()
	log.Info().Str("module", "main").Str("database", cfg.Mongo.Database).Msg("MongoDB connection established")

	uploader, err := media.NewUploader(dialCtx, cfg.Media)
	if err != nil {
		log.Warn().Err(err).Str("module", "main").Msg("media storage unavailable, uploads disabled")
	} else {
		deps.Uploader = uploader
	}
	dialCancel()

	hub := relay.NewHub(presenceStore)
	go hub.Run(ctx)
	deps.Hub = hub

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(cfg, deps),
	}

	go func() {
		log.Info().Str("module", "main").Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("relay server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("module", "main").Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Str("module", "main").Msg("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Str("module", "main").Msg("server forced to shutdown")
	}
	if err := docs.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Str("module", "main").Msg("mongo disconnect")
	}
	log.Info().Str("module", "main").Msg("Server exited gracefully")
}
