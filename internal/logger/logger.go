package logger

import (
	"io"
	"os"
	"time"

	"github.com/example/sprint-sense/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func New(cfg config.Config) zerolog.Logger {
	return to(cfg, os.Stdout)
}

// NewStderr builds a logger writing to stderr. The stdio MCP transport
// owns stdout, so everything else must stay off it.
func NewStderr(cfg config.Config) zerolog.Logger {
	return to(cfg, os.Stderr)
}

func to(cfg config.Config, w io.Writer) zerolog.Logger {
	if cfg.AppEnv == "dev" {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		logger := zerolog.New(output).With().Timestamp().Logger()
		log.Logger = logger
		return logger
	}
	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
