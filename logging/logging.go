package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a console logger on stdout.
func New() zerolog.Logger {
	return NewWithFormat(FormatConsole, "info")
}

// NewWithFormat picks the console writer for local runs and plain JSON lines
// otherwise. An unknown level falls back to info.
func NewWithFormat(format string, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return NewWithWriter(out).Level(lvl)
}

func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

var defaultLogger = New()

func init() {
	if zerolog.DefaultContextLogger == nil {
		zerolog.DefaultContextLogger = &defaultLogger
	}
}

func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the request logger, or the shared default one.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

func WithFields(logger zerolog.Logger, fields map[string]any) zerolog.Logger {
	lctx := logger.With()
	for k, v := range fields {
		lctx = lctx.Interface(k, v)
	}
	return lctx.Logger()
}
