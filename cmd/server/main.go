// Command server runs the debate chat backend: REST API, websocket rooms,
// and the AI engine proxies, over a SQLite store.
//
// Configuration comes from the environment (optionally a .env file); see
// internal/config for every knob.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nchalk/go-debate-backend/docs"
	"github.com/nchalk/go-debate-backend/internal/config"
	"github.com/nchalk/go-debate-backend/internal/engine"
	httpapi "github.com/nchalk/go-debate-backend/internal/http"
	"github.com/nchalk/go-debate-backend/internal/hub"
	"github.com/nchalk/go-debate-backend/internal/observability"
	"github.com/nchalk/go-debate-backend/internal/repo"
	"github.com/nchalk/go-debate-backend/internal/services"
	"github.com/nchalk/go-debate-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// @title           Debate Chat Backend API
// @version         1.0
// @description     Multi-room debate chat with AI sparring partners: accounts, topics, live rooms, and speech endpoints.
//
// @contact.name    API Support
//
// @license.name    MIT
//
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file, using process environment")
	}

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.Version = version

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("could not open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	topicSvc := services.NewTopicService(db)
	if err := topicSvc.SeedDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("topic seeding failed")
	}

	// Base system prompt for /query. A missing file is not fatal; topics
	// still carry their own steering prompts.
	basePrompt := ""
	if raw, err := os.ReadFile(cfg.Engine.PromptPath); err == nil {
		basePrompt = string(raw)
	} else {
		log.Warn().Err(err).Str("path", cfg.Engine.PromptPath).Msg("base prompt not loaded")
	}

	// Scratch space for audio uploads
	if err := os.MkdirAll(cfg.TempAudioDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.TempAudioDir).Msg("could not create temp audio dir")
	}
	if n, err := engine.PurgeStaleAudio(cfg.TempAudioDir, cfg.TempMaxAge); err != nil {
		log.Warn().Err(err).Msg("startup audio purge failed")
	} else if n > 0 {
		log.Info().Int("removed", n).Msg("purged stale audio files")
	}

	// External AI engines
	engines := httpapi.Engines{
		Generator: engine.NewGenerator(
			cfg.Engine.GeminiBaseURL,
			cfg.Engine.GeminiAPIKey,
			cfg.Engine.GeminiModel,
			cfg.Engine.GeminiTemperature,
			cfg.Engine.Timeout,
		),
		Transcriber: engine.NewTranscriber(cfg.Engine.STTBaseURL, cfg.Engine.Timeout),
		Synthesizer: engine.NewSynthesizer(cfg.Engine.TTSBaseURL, cfg.Engine.Timeout),
	}

	liveHub := hub.New(services.NewHistoryService(db))

	r := gin.New()
	httpapi.RegisterRoutes(r, db, liveHub, engines, basePrompt, cfg)

	// Background janitors
	sessionSvc := services.NewSessionService(db, cfg.SessionTTL)
	go sweepSessions(ctx, sessionSvc, cfg.SessionSweepInterval)
	go sweepTempAudio(ctx, cfg.TempAudioDir, cfg.TempMaxAge, cfg.TempSweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// sweepSessions periodically purges expired session rows.
func sweepSessions(ctx context.Context, sessions *services.SessionService, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := sessions.SweepExpired(ctx); err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
			} else if n > 0 {
				log.Info().Int64("purged", n).Msg("swept expired sessions")
			}
		}
	}
}

// sweepTempAudio periodically removes orphaned scratch audio files.
func sweepTempAudio(ctx context.Context, dir string, maxAge, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := engine.PurgeStaleAudio(dir, maxAge); err != nil {
				log.Warn().Err(err).Msg("audio sweep failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale audio files")
			}
		}
	}
}
