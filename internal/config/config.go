// Package config loads the service configuration from the environment,
// optionally seeded from a .env file. Malformed values are errors rather
// than silent fallbacks, and all problems are reported together.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port              string        // PORT
	ReadTimeout       time.Duration // READ_TIMEOUT
	ReadHeaderTimeout time.Duration // READ_HEADER_TIMEOUT
	WriteTimeout      time.Duration // WRITE_TIMEOUT
	IdleTimeout       time.Duration // IDLE_TIMEOUT
	ShutdownTimeout   time.Duration // SHUTDOWN_TIMEOUT
	MaxHeaderBytes    int           // MAX_HEADER_BYTES
}

// DBConfig holds the SQLite settings.
type DBConfig struct {
	Path         string        // DB_PATH; ":memory:" for a throwaway store
	MaxOpenConns int           // DB_MAX_OPEN_CONNS
	BusyTimeout  time.Duration // DB_BUSY_TIMEOUT
	SlowQuery    time.Duration // DB_SLOW_QUERY; statements above it are logged
}

// CORSConfig lists allowed browser origins; empty allows any origin without
// credentials.
type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, comma separated
}

// SecurityConfig controls HSTS.
type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

// AuthConfig defines session token settings.
type AuthConfig struct {
	JWTSecret string        // JWT_SECRET (HS256 signing key)
	JWTTTL    time.Duration // JWT_TTL
	Required  bool          // AUTH_REQUIRED: reject unauthenticated writes
}

// CacheConfig defines the optional Redis cache used for catalog listings.
type CacheConfig struct {
	RedisURL   string        // REDIS_URL; empty disables caching
	CatalogTTL time.Duration // CATALOG_CACHE_TTL
}

// ImageConfig controls how uploaded recipe images are normalized.
type ImageConfig struct {
	MaxWidth    int // IMAGE_MAX_WIDTH in pixels
	JPEGQuality int // IMAGE_JPEG_QUALITY in [1,100]
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0,1]
}

// Config is the full service configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig

	GinMode        string // GIN_MODE: debug|release|test
	LogLevel       string // LOG_LEVEL: debug|info|warn|error|fatal|panic
	LogPretty      bool   // LOG_PRETTY: console writer for development
	SwaggerEnabled bool   // SWAGGER_ENABLED
	APIBasePath    string // API_BASE_PATH

	CatalogSeedPath string  // CATALOG_SEED_PATH: optional YAML of items and videos
	PublicBaseURL   string  // PUBLIC_BASE_URL: prefix of recipe share links
	MaxUploadBytes  int64   // MAX_UPLOAD_BYTES: request body cap
	SearchMinScore  float64 // SEARCH_MIN_SCORE: Jaccard floor for search hits
	Image           ImageConfig

	Auth  AuthConfig
	Cache CacheConfig

	RateRPS   float64 // RATE_RPS: tokens per second per user or IP
	RateBurst int     // RATE_BURST

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration // IDEMPOTENCY_TTL: lifetime of a stored key

	OTEL OTELConfig
}

// MustLoad is Load for main: it panics on any error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads ENV_FILE (default ".env", missing is fine) without overriding
// variables already set, then parses, normalizes and validates.
func Load() (Config, error) {
	if err := loadDotEnv(getenv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	var e env
	cfg := Config{
		Server: ServerConfig{
			Port:              getenv("PORT", "8080"),
			ReadTimeout:       e.duration("READ_TIMEOUT", 15*time.Second),
			ReadHeaderTimeout: e.duration("READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      e.duration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       e.duration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:   e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
		},
		DB: DBConfig{
			Path:         getenv("DB_PATH", "mealplan.db"),
			MaxOpenConns: e.integer("DB_MAX_OPEN_CONNS", 10),
			BusyTimeout:  e.duration("DB_BUSY_TIMEOUT", 5*time.Second),
			SlowQuery:    e.duration("DB_SLOW_QUERY", 200*time.Millisecond),
		},

		GinMode:        strings.ToLower(getenv("GIN_MODE", "release")),
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      e.flag("LOG_PRETTY", false),
		SwaggerEnabled: e.flag("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		CatalogSeedPath: getenv("CATALOG_SEED_PATH", ""),
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		MaxUploadBytes:  int64(e.integer("MAX_UPLOAD_BYTES", 8<<20)),
		SearchMinScore:  e.real("SEARCH_MIN_SCORE", 0.05),
		Image: ImageConfig{
			MaxWidth:    e.integer("IMAGE_MAX_WIDTH", 1024),
			JPEGQuality: e.integer("IMAGE_JPEG_QUALITY", 85),
		},

		Auth: AuthConfig{
			JWTSecret: getenv("JWT_SECRET", "dev-only-change-me"),
			JWTTTL:    e.duration("JWT_TTL", 24*time.Hour),
			Required:  e.flag("AUTH_REQUIRED", false),
		},
		Cache: CacheConfig{
			RedisURL:   getenv("REDIS_URL", ""),
			CatalogTTL: e.duration("CATALOG_CACHE_TTL", 5*time.Minute),
		},

		RateRPS:   e.real("RATE_RPS", 5),
		RateBurst: e.integer("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: e.flag("ENABLE_HSTS", false),
			HSTSMaxAge: e.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: e.duration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     e.flag("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-mealplan-backend"),
			SampleRatio: e.real("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	if err := errors.Join(append(e.errs, cfg.validate()...)...); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rule is one validation check: when bad holds, msg is reported.
type rule struct {
	bad bool
	msg string
}

func (c Config) validate() []error {
	s := c.Server
	rules := []rule{
		{!oneOf(c.LogLevel, "debug", "info", "warn", "error", "fatal", "panic"),
			"LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{strings.TrimSpace(s.Port) == "", "PORT must not be empty"},
		{s.ReadTimeout <= 0 || s.ReadHeaderTimeout <= 0 || s.WriteTimeout <= 0 || s.IdleTimeout <= 0,
			"server timeouts must be positive durations"},
		{s.ShutdownTimeout <= 0, "SHUTDOWN_TIMEOUT must be > 0"},
		{s.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{strings.TrimSpace(c.DB.Path) == "", "DB_PATH must not be empty"},
		{c.DB.MaxOpenConns < 1, "DB_MAX_OPEN_CONNS must be >= 1"},
		{c.DB.BusyTimeout < 0, "DB_BUSY_TIMEOUT must be >= 0"},
		{c.MaxUploadBytes < 1<<10, "MAX_UPLOAD_BYTES must be >= 1024"},
		{c.SearchMinScore < 0 || c.SearchMinScore > 1, "SEARCH_MIN_SCORE must be in [0,1]"},
		{c.Image.MaxWidth < 16, "IMAGE_MAX_WIDTH must be >= 16"},
		{c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100, "IMAGE_JPEG_QUALITY must be in [1,100]"},
		{len(c.Auth.JWTSecret) < 8, "JWT_SECRET must be at least 8 bytes"},
		{c.Auth.JWTTTL <= 0, "JWT_TTL must be > 0"},
		{c.Cache.CatalogTTL < 0, "CATALOG_CACHE_TTL must be >= 0"},
		{c.RateRPS < 0, "RATE_RPS must be >= 0"},
		{c.RateBurst < 1, "RATE_BURST must be >= 1"},
		{c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	var errs []error
	for _, r := range rules {
		if r.bad {
			errs = append(errs, errors.New(r.msg))
		}
	}
	return errs
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// loadDotEnv loads path into the process environment; a missing file is
// not an error.
func loadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// getenv returns the variable or def when unset or empty.
func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

// env parses typed variables and remembers every malformed one.
type env struct {
	errs []error
}

func lookup[T any](e *env, k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	out, err := parse(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: cannot parse %q", k, v))
		return def
	}
	return out
}

func (e *env) integer(k string, def int) int { return lookup(e, k, def, strconv.Atoi) }

func (e *env) real(k string, def float64) float64 {
	return lookup(e, k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (e *env) duration(k string, def time.Duration) time.Duration {
	return lookup(e, k, def, time.ParseDuration)
}

func (e *env) flag(k string, def bool) bool {
	return lookup(e, k, def, parseBool)
}

// parseBool accepts the usual switch spellings, case-insensitively.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns "/" or a path with a leading and no trailing
// slash.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}
