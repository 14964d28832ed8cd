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

	"github.com/voxline/voxline/internal/adapters/directory"
	"github.com/voxline/voxline/internal/adapters/httpapi"
	"github.com/voxline/voxline/internal/adapters/roomstore"
	wsignal "github.com/voxline/voxline/internal/adapters/signal"
	"github.com/voxline/voxline/internal/app"
	"github.com/voxline/voxline/internal/app/orch"
	"github.com/voxline/voxline/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, flags, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	rooms := roomstore.NewStore()
	registry := app.NewCallRegistry()
	reconciler := app.NewReconciler(flags, rooms, registry)
	resolver := directory.NewClient(cfg.DirectoryURL, cfg.DirectoryTimeout)
	sessions := wsignal.NewDialer(cfg.SignalURL)
	feed := httpapi.NewEventFeed()

	handler := orch.NewCallHandler(registry, reconciler, resolver, rooms, feed, sessions)
	handler.OnCallStateChanged(feed.PublishState)
	handler.OnCallRoomChanged(feed.PublishRoomChange)

	r := httpapi.SetupRouter(cfg, handler, rooms, feed)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("voxline server started")
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
