// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the failure journal database, rate limiting, search and
// observability settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-description:"comma separated origin allow-list"`
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool          `env:"ENABLE_HSTS"  env-default:"false"`
	HSTSMaxAge time.Duration `env:"HSTS_MAX_AGE" env-default:"4320h"`
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED"                env-default:"false"`
	Exporter    string  `env:"OTEL_EXPORTER"               env-default:"otlp"             env-description:"otlp|stdout"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"true"`
	ServiceName string  `env:"OTEL_SERVICE_NAME"           env-default:"go-error-catalog"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG"     env-default:"1.0"              env-description:"in [0,1]"`
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        `env:"PORT"                env-default:"8080"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT"        env-default:"15s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" env-default:"10s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       env-default:"20s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"        env-default:"60s"`
	MaxHeaderBytes    int           `env:"MAX_HEADER_BYTES"    env-default:"1048576"`
	GinMode           string        `env:"GIN_MODE"            env-default:"release" env-description:"debug|release|test"`

	// Logging / Docs
	LogLevel       string `env:"LOG_LEVEL"       env-default:"info" env-description:"debug|info|warn|error|fatal|panic"`
	LogPretty      bool   `env:"LOG_PRETTY"      env-default:"false"`
	SwaggerEnabled bool   `env:"SWAGGER_ENABLED" env-default:"false"`
	GzipEnabled    bool   `env:"GZIP_ENABLED"    env-default:"true"`
	APIBasePath    string `env:"API_BASE_PATH"   env-default:"/api/v1"`

	// Failure journal
	DBPath string `env:"DB_PATH" env-default:"errors.db"`

	// Catalog search
	SearchLimit int `env:"SEARCH_LIMIT" env-default:"5" env-description:"max hits for ?q= searches, 1..50"`

	// Rate limiting
	RateRPS   float64 `env:"RATE_RPS"   env-default:"5"`
	RateBurst int     `env:"RATE_BURST" env-default:"10"`

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" env-default:"24h"`

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
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	normalize(&cfg)
	return cfg, validate(cfg)
}

// Usage returns a human readable description of every supported variable.
func Usage() string {
	var cfg Config
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}

func normalize(cfg *Config) {
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	cfg.OTEL.Exporter = strings.ToLower(strings.TrimSpace(cfg.OTEL.Exporter))
	cfg.APIBasePath = normalizeBasePath(cfg.APIBasePath)
	cfg.CORS.AllowedOrigins = compact(cfg.CORS.AllowedOrigins)
}

func validate(cfg Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if cfg.SearchLimit < 1 || cfg.SearchLimit > 50 {
		return errors.New("SEARCH_LIMIT must be between 1 and 50")
	}
	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	switch cfg.OTEL.Exporter {
	case "otlp", "stdout":
	default:
		return errors.New("OTEL_EXPORTER must be one of: otlp, stdout")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// compact trims every item and drops the empty ones.
func compact(in []string) []string {
	var out []string
	for _, p := range in {
		if t := strings.TrimSpace(p); t != "" {
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
