// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/config"
	"github.com/nchalk/go-debate-backend/internal/http/handlers"
	"github.com/nchalk/go-debate-backend/internal/http/middleware"
	"github.com/nchalk/go-debate-backend/internal/hub"
	"github.com/nchalk/go-debate-backend/internal/services"
)

// Engines bundles the external AI clients injected into the HTTP layer. They
// are constructed in main from config so tests can substitute fakes.
type Engines struct {
	Generator   handlers.Generator
	Transcriber handlers.Transcriber
	Synthesizer handlers.Synthesizer
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), rate limiting, CORS and security
// headers, the health endpoint, the versioned REST API, and the websocket
// room endpoint.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with credential scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (audio upload endpoint gets its own larger cap)
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Gzip for REST responses (websocket and audio excluded)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, liveHub *hub.Hub, eng Engines, basePrompt string, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	sttPath := strings.TrimRight(apiBase, "/") + "/speech-to-text"
	ttsPath := strings.TrimRight(apiBase, "/") + "/text-to-speech"

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Session tokens ride in the query
	// string on websocket upgrades, so they are masked there too.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders:     []string{"Authorization"},
		MaskQueryParams: []string{"token"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); the audio upload endpoint is capped
	// separately by MaxAudioUploadSize.
	r.Use(limitBody(1<<20, map[string]int64{
		sttPath: cfg.MaxAudioUploadSize,
	}))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// 9) Gzip for REST; upgrades and audio payloads pass through untouched.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`^/ws/`}),
		gzip.WithExcludedPaths([]string{"/metrics", sttPath, ttsPath}),
	))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: services ← repo/db
	sessionSvc := services.NewSessionService(db, cfg.SessionTTL)
	authSvc := services.NewAuthService(db, sessionSvc)
	topicSvc := services.NewTopicService(db)
	historySvc := services.NewHistoryService(db)

	h := handlers.New(handlers.Deps{
		DB:                 db,
		Auth:               authSvc,
		Topics:             topicSvc,
		History:            historySvc,
		Hub:                liveHub,
		Generator:          eng.Generator,
		Transcriber:        eng.Transcriber,
		Synthesizer:        eng.Synthesizer,
		BasePrompt:         basePrompt,
		TempAudioDir:       cfg.TempAudioDir,
		FFmpegPath:         cfg.Engine.FFmpegPath,
		MaxAudioUploadSize: cfg.MaxAudioUploadSize,
		HistoryPrefix:      cfg.HistoryPrefix,
		WSReadLimit:        cfg.WSReadLimit,
		WSWriteWait:        cfg.WSWriteWait,
		WSPongWait:         cfg.WSPongWait,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
	})

	// Liveness/health with dependency probes
	r.GET("/health", h.Health)

	// Live rooms (session token rides in the query string; browsers cannot
	// set headers on websocket upgrades)
	r.GET("/ws/:topicID", h.LiveRoom)

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Accounts. Logout only needs the raw token (revoking an already-dead
		// session is still a 204), so it skips RequireSession.
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)

		// Topics and history (public reads)
		api.GET("/topics", h.ListTopics)
		api.GET("/topics/:id", h.GetTopic)
		api.GET("/topics/:id/messages", h.ListMessages)

		// Session-guarded endpoints
		authed := api.Group("", middleware.RequireSession(authSvc))
		{
			authed.GET("/auth/me", h.Me)
			authed.POST("/query", h.Query)
			authed.POST("/speech-to-text", h.SpeechToText)
			authed.POST("/text-to-speech", h.TextToSpeech)
		}
	}

	// Swagger UI (optional)
	if cfg.SwaggerEnabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// limitBody returns a Gin middleware that caps the request body size using
// http.MaxBytesReader. Paths in overrides get their own cap instead of the
// default; websocket upgrades carry no body and are unaffected.
func limitBody(maxBytes int64, overrides map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if n, ok := overrides[c.Request.URL.Path]; ok && n > 0 {
			limit = n
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
