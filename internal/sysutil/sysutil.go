// Package sysutil holds process-level helpers for the entrypoint.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogOptions configures the process logger.
type LogOptions struct {
	Level   string    // LOG_LEVEL; unknown values mean info
	Pretty  bool      // console output instead of JSON lines
	Service string    // stamped on every line when set
	Version string    // stamped on every line when set
	Out     io.Writer // default os.Stderr
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level. "warning" is
// accepted for warn; anything unrecognized is info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}

// ConfigureLogger sets the global level and replaces log.Logger, which
// every package logs through.
func ConfigureLogger(o LogOptions) zerolog.Logger {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	if o.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	zerolog.SetGlobalLevel(ParseLevel(o.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	ctx := zerolog.New(out).With().Timestamp()
	if o.Service != "" {
		ctx = ctx.Str("service", o.Service)
	}
	if o.Version != "" {
		ctx = ctx.Str("version", o.Version)
	}
	l := ctx.Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &log.Logger
	return l
}
