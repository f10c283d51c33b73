package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Karaoke/internal/adapters/http"
	"github.com/dkeye/Karaoke/internal/adapters/events"
	"github.com/dkeye/Karaoke/internal/adapters/search"
	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/app/orch"
	"github.com/dkeye/Karaoke/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	sink, closeEvents, err := events.New(events.Config{
		URL:           cfg.NATS.URL,
		Subject:       cfg.NATS.Subject,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect session event sink")
	}
	defer closeEvents()

	clock := clockwork.NewRealClock()
	o := &orch.Orchestrator{
		Registry:      app.NewRegistry(),
		Sessions:      app.NewStore(app.RandomCodes{}, clock, cfg.MaxCodeAttempts),
		Policy:        app.SimplePolicy{},
		Events:        sink,
		Clock:         clock,
		Grace:         cfg.GracePeriod,
		StrictReorder: cfg.StrictReorder,
	}
	defer o.Shutdown()

	searcher := search.NewClient(search.Config{
		BaseURL: cfg.Search.BaseURL,
		Suffix:  cfg.Search.Suffix,
		Limit:   cfg.Search.Limit,
		Timeout: cfg.Search.Timeout,
	})

	r := router.SetupRouter(ctx, cfg, o, searcher)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router.WithCORS(r, cfg.CORSOrigins),
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Karaoke server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Int("sessions", o.Sessions.Len()).Msg("Server exited gracefully")
}

// setupLogger keeps the console writer for debug runs and switches to
// plain JSON otherwise.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
