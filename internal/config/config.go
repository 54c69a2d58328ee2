// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, session policy, AI engine
// endpoints, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-debate-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// EngineConfig holds the endpoints and tuning for the external AI engines.
type EngineConfig struct {
	GeminiBaseURL     string        // GEMINI_BASE_URL
	GeminiAPIKey      string        // GEMINI_API_KEY (required for /query)
	GeminiModel       string        // GEMINI_MODEL
	GeminiTemperature float64       // GEMINI_TEMPERATURE in [0..2]
	STTBaseURL        string        // STT_BASE_URL (whisper-style server)
	TTSBaseURL        string        // TTS_BASE_URL (synthesis server)
	Timeout           time.Duration // ENGINE_TIMEOUT per round trip
	FFmpegPath        string        // FFMPEG_PATH, binary used for audio decode
	PromptPath        string        // PROMPT_PATH, base system prompt file
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath string // SQLite path

	// Sessions
	SessionTTL           time.Duration // validity of issued tokens
	SessionSweepInterval time.Duration // how often expired rows are purged

	// Live rooms
	WSReadLimit   int64         // max inbound websocket frame, bytes
	WSWriteWait   time.Duration // per-frame write deadline
	WSPongWait    time.Duration // read deadline refreshed by pongs
	HistoryPrefix int           // messages replayed to a joining client

	// Audio scratch space
	TempAudioDir       string        // where uploaded/converted clips land
	TempMaxAge         time.Duration // clips older than this are purged
	TempSweepInterval  time.Duration // how often the janitor runs
	MaxAudioUploadSize int64         // bytes, speech-to-text upload cap

	// Engines
	Engine EngineConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "app.db"),

		// Sessions
		SessionTTL:           getdur("SESSION_TTL", 30*24*time.Hour),
		SessionSweepInterval: getdur("SESSION_SWEEP_INTERVAL", time.Hour),

		// Live rooms
		WSReadLimit:   int64(getint("WS_READ_LIMIT", 16<<10)),
		WSWriteWait:   getdur("WS_WRITE_WAIT", 10*time.Second),
		WSPongWait:    getdur("WS_PONG_WAIT", 60*time.Second),
		HistoryPrefix: getint("WS_HISTORY_PREFIX", 50),

		// Audio scratch space
		TempAudioDir:       getenv("TEMP_AUDIO_DIR", "temp_audio"),
		TempMaxAge:         getdur("TEMP_MAX_AGE", time.Hour),
		TempSweepInterval:  getdur("TEMP_SWEEP_INTERVAL", 15*time.Minute),
		MaxAudioUploadSize: int64(getint("MAX_AUDIO_UPLOAD_BYTES", 32<<20)),

		// Engines
		Engine: EngineConfig{
			GeminiBaseURL:     getenv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey:      getenv("GEMINI_API_KEY", ""),
			GeminiModel:       getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiTemperature: getfloat("GEMINI_TEMPERATURE", 0.7),
			STTBaseURL:        getenv("STT_BASE_URL", "http://localhost:8178"),
			TTSBaseURL:        getenv("TTS_BASE_URL", "http://localhost:5002"),
			Timeout:           getdur("ENGINE_TIMEOUT", 60*time.Second),
			FFmpegPath:        getenv("FFMPEG_PATH", "ffmpeg"),
			PromptPath:        getenv("PROMPT_PATH", "prompt.txt"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-debate-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.SessionSweepInterval <= 0 {
		return cfg, errors.New("SESSION_SWEEP_INTERVAL must be > 0")
	}
	if cfg.WSReadLimit <= 0 {
		return cfg, errors.New("WS_READ_LIMIT must be > 0")
	}
	if cfg.WSWriteWait <= 0 || cfg.WSPongWait <= 0 {
		return cfg, errors.New("websocket deadlines must be positive durations")
	}
	if cfg.HistoryPrefix < 0 {
		return cfg, errors.New("WS_HISTORY_PREFIX must be >= 0")
	}
	if strings.TrimSpace(cfg.TempAudioDir) == "" {
		return cfg, errors.New("TEMP_AUDIO_DIR must not be empty")
	}
	if cfg.TempMaxAge <= 0 || cfg.TempSweepInterval <= 0 {
		return cfg, errors.New("temp audio intervals must be positive durations")
	}
	if cfg.MaxAudioUploadSize <= 0 {
		return cfg, errors.New("MAX_AUDIO_UPLOAD_BYTES must be > 0")
	}
	if cfg.Engine.GeminiTemperature < 0 || cfg.Engine.GeminiTemperature > 2 {
		return cfg, errors.New("GEMINI_TEMPERATURE must be in [0,2]")
	}
	if cfg.Engine.Timeout <= 0 {
		return cfg, errors.New("ENGINE_TIMEOUT must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
