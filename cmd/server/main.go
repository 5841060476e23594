package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	wssignal "github.com/confmesh/signaling/internal/adapters/signal"
	"github.com/confmesh/signaling/internal/auth"
	"github.com/confmesh/signaling/internal/config"
	"github.com/confmesh/signaling/internal/core"
	"github.com/confmesh/signaling/internal/store"

	router "github.com/confmesh/signaling/internal/adapters/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open meeting store")
	}

	resolver, err := auth.NewResolver(cfg.AuthSecret)
	if err != nil {
		log.Warn().Err(err).Msg("session auth disabled, all callers join as guests")
		resolver = nil
	}

	limiter := core.NewJoinLimiter(core.SystemClock, cfg.JoinRequestLimit, cfg.JoinRequestWindow)
	ctl := &wssignal.Controller{
		Meetings: db,
		Auth:     resolver,
		Registry: core.NewRegistry(cfg.RoomEmptyGrace),
		Router:   core.NewRouter(limiter),
		Cfg:      cfg,
	}

	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
