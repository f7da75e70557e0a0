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

	"github.com/zatekoja/akutvagt/backend/internal/api/handlers"
	"github.com/zatekoja/akutvagt/backend/internal/api/middleware"
	"github.com/zatekoja/akutvagt/backend/internal/app"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
)

// Standalone statistics stream server. It only sees events published by the
// API when both share Redis, so the in-memory store is refused.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store.Backend == config.StoreMemory {
		fmt.Fprintln(os.Stderr, "The stream server needs STORE_BACKEND=redis or postgres")
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-sse", cfg.Server.Env, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	sseHandler := handlers.NewSSEHandler(container.EventBus, container.Providers)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/stats/stream", sseHandler.StreamAnalytics)
	mux.HandleFunc("GET /api/stats/stream/providers/{id}", sseHandler.StreamProviderAnalytics)

	mux.HandleFunc("GET /api/stats/stream/clients", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connectedClients": %d}`, sseHandler.GetClientCount())
	})

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(handler)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("SSE server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("SSE server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("SSE server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing clients")
	}

	log.Info().Msg("SSE server stopped")
}
