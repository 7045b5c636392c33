package infra

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string   `env:"APP_ENV" envDefault:"development"`
	LogLevel           string   `env:"LOG_LEVEL"`
	AppTitle           string   `env:"APP_TITLE" envDefault:"QRKot charity fund"`
	AppDescription     string   `env:"APP_DESCRIPTION" envDefault:"Collects donations for targeted projects supporting cats"`
	Port               string   `env:"PORT" envDefault:"8080"`
	DatabaseURL        string   `env:"DATABASE_URL" envDefault:"sqlite:./qrkot.db"`
	JWTSecret          string   `env:"JWT_SECRET"`
	JWTIssuer          string   `env:"JWT_ISSUER" envDefault:"qrkot"`
	FirstSuperuserID   string   `env:"FIRST_SUPERUSER_ID"`
	GeoIPDBPath        string   `env:"GEOIP_DB_PATH"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	OTELEndpoint       string   `env:"OTEL_ENDPOINT"`
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	ReadTimeoutSecs    int `env:"HTTP_READ_TIMEOUT_SECONDS" envDefault:"15"`
	WriteTimeoutSecs   int `env:"HTTP_WRITE_TIMEOUT_SECONDS" envDefault:"30"`
	IdleTimeoutSecs    int `env:"HTTP_IDLE_TIMEOUT_SECONDS" envDefault:"60"`
	RateLimitPerMin    int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	DBMaxConns         int `env:"DB_MAX_CONNS" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.HTTPReadTimeout = time.Second * time.Duration(cfg.ReadTimeoutSecs)
	cfg.HTTPWriteTimeout = time.Second * time.Duration(cfg.WriteTimeoutSecs)
	cfg.HTTPIdleTimeout = time.Second * time.Duration(cfg.IdleTimeoutSecs)
	cfg.CORSAllowedOrigins = normalizeOrigins(cfg.CORSAllowedOrigins)

	return cfg, nil
}

// DatabaseDriver reports which storage backend the DATABASE_URL points at.
func (c *Config) DatabaseDriver() string {
	if strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// SQLitePath strips the sqlite: scheme from DATABASE_URL.
func (c *Config) SQLitePath() string {
	path := strings.TrimPrefix(c.DatabaseURL, "sqlite://")
	return strings.TrimPrefix(path, "sqlite:")
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
