package logging

import (
	"io"
	"os"
	"time"

	"github.com/jrsteele09/go-bank-session/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a logger for the given settings writing to w (stderr when nil).
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.GetLogFormat() != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup builds the logger and installs it as the package-global zerolog logger.
func Setup(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	logger := New(cfg, w)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger
}
