package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger from APP_ENV and LOG_LEVEL. Development
// gets a console writer at debug level; other environments log JSON at info.
func NewLogger(cfg *Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg.AppEnv, cfg.LogLevel)
}

func newLogger(out io.Writer, appEnv, levelName string) zerolog.Logger {
	development := appEnv == "development"

	level := zerolog.InfoLevel
	if development {
		level = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelName))); err == nil && levelName != "" {
		level = parsed
	}

	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "qrkot").
		Str("env", appEnv).
		Logger()
}
