// Package logging builds the structured logger and carries it through
// context.Context so adapters never reach for a global.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/openkraft/portcore/internal/domain"
)

type ctxKey struct{}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// New builds a logger from the logging section of the config. Invalid levels
// fall back to info and unopenable files fall back to stderr, with a warning
// written to the resulting logger.
func New(cfg domain.LoggingConfig) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var openErr error
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		l.SetOutput(os.Stderr)
	case "stdout":
		l.SetOutput(os.Stdout)
	default:
		f, ferr := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr != nil {
			openErr = ferr
			l.SetOutput(os.Stderr)
		} else {
			l.SetOutput(f)
		}
	}

	if err != nil && cfg.Level != "" {
		l.Warnf("invalid log level %q, using info", cfg.Level)
	}
	if openErr != nil {
		l.Warnf("failed to open log file %q, using stderr: %v", cfg.Output, openErr)
	}
	return l
}

// WithLogger returns a copy of ctx carrying the given logger.
func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a logger that discards
// everything when none was attached.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
			return l
		}
	}
	return discard
}
