// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimeFormat is used for both the JSON time field and console output.
const TimeFormat = "20060102-150405.000"

// Options selects log outputs and verbosity.
type Options struct {
	Level string
	File  string
	Quiet bool
	// Console overrides os.Stdout for the console writer (tests).
	Console io.Writer
}

// Configure installs the global logger. It returns a closer for the log
// file, which is a no-op when no file is configured.
func Configure(opts Options) (func() error, error) {
	zerolog.TimeFieldFormat = TimeFormat

	var writers []io.Writer
	if !opts.Quiet {
		out := opts.Console
		if out == nil {
			out = os.Stdout
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: TimeFormat})
	}

	closer := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return closer, err
		}
		writers = append(writers, f)
		closer = f.Close
	}

	switch len(writers) {
	case 0:
		log.Logger = zerolog.Nop()
	case 1:
		log.Logger = zerolog.New(writers[0]).With().Timestamp().Logger()
	default:
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	}

	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	return closer, nil
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
