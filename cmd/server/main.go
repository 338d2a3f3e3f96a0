/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tax engine API server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored)
  2. Initialize logging
  3. Open SQLite store
  4. Seed the tax facade from persisted settings, if any
  5. Configure the HTTP router and start serving

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection

ENVIRONMENT:
  PORT          HTTP port (default 8080)
  DB_PATH       SQLite database path (default gastroboard.db, ":memory:" works)
  LOG_LEVEL     zerolog level (default info)
  LOG_FORMAT    console or json (default console)
  CORS_ORIGINS  Comma-separated allowed origins

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite: Persistence
*/
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

	"github.com/gastroboard/tax-engine/api"
	"github.com/gastroboard/tax-engine/config"
	"github.com/gastroboard/tax-engine/logger"
	"github.com/gastroboard/tax-engine/store/sqlite"
	"github.com/gastroboard/tax-engine/taxes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("failed to initialize database")
	}
	defer store.Close()

	taxService := taxes.NewDefaultService()
	if persisted, found, err := store.LoadSettings(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted tax settings, using defaults")
	} else if found {
		if taxService, err = taxes.NewService(persisted); err != nil {
			log.Fatal().Err(err).Msg("persisted tax settings are invalid")
		}
		log.Info().Str("vat_rate", persisted.VATRate.String()).Msg("loaded persisted tax settings")
	}

	handler := api.NewHandler(store, taxService)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
