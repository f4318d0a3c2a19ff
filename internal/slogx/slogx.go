// Package slogx builds the process logger and carries request-scoped loggers
// through contexts.
package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the process logger. The zero value logs info and above as
// JSON to stdout.
type Config struct {
	Service string
	Version string
	Env     string
	Level   string // see ParseLevel
	Format  string // "json" or "text"
	Output  io.Writer
}

// New builds the logger described by cfg and installs it as the slog
// default. An unparsable level falls back to info; config.Validate rejects
// those before a server gets here.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{AddSource: cfg.Env == "dev", Level: level}

	var h slog.Handler = slog.NewJSONHandler(out, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h).With("service", cfg.Service, "env", cfg.Env)
	if cfg.Version != "" {
		logger = logger.With("version", cfg.Version)
	}
	slog.SetDefault(logger)
	return logger
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case,
// plus slog's offset form such as "info+2". Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return slog.LevelInfo, nil
	case strings.EqualFold(s, "warning"):
		return slog.LevelWarn, nil
	}
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}
