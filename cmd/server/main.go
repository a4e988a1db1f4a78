package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/adapters/chatstore"
	router "github.com/dkeye/Plaza/internal/adapters/http"
	"github.com/dkeye/Plaza/internal/adapters/identity"
	"github.com/dkeye/Plaza/internal/adapters/rooms"
	"github.com/dkeye/Plaza/internal/adapters/ws"
	"github.com/dkeye/Plaza/internal/app"
	"github.com/dkeye/Plaza/internal/config"
	"github.com/dkeye/Plaza/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if cfg.AuthSecret == "" {
		log.Error().Msg("auth_secret is required")
		os.Exit(1)
	}

	store, err := chatstore.New(cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("chat store unavailable")
		os.Exit(1)
	}
	defer store.Close()

	registry := app.NewRegistry()
	presence := app.NewBroadcaster(registry)
	relay := app.NewRelay(registry)
	limiter := app.NewSlidingLimiter(cfg.ChatBurst, cfg.ChatWindow)
	chat := app.NewChat(registry, store, limiter, cfg.HistoryLimit)
	go chat.Run(ctx)

	orch := app.NewOrchestrator(registry, presence, relay, chat)
	verifier := identity.NewHMACVerifier(cfg.AuthSecret)
	directory := rooms.NewHTTPDirectory(cfg.RoomServiceURL, cfg.RoomCacheTTL)
	ctl := ws.NewController(orch, verifier, directory, cfg)

	r := router.SetupRouter(ctx, cfg, ctl, registry)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Plaza server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
