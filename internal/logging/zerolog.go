package logging

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// zerologger adapts zerolog.Logger to the Logger interface.
type zerologger struct {
	logger zerolog.Logger
}

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(l zerolog.Logger) Logger {
	return &zerologger{logger: l}
}

func newZerolog(cfg Config, out io.Writer) Logger {
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	l := zerolog.New(out).Level(zerologLevel(cfg.Level)).With().Timestamp().Logger()
	return &zerologger{logger: l}
}

func (z *zerologger) With(fields ...Field) Logger {
	return &zerologger{logger: z.logger.With().Fields(toFields(fields)).Logger()}
}

func (z *zerologger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.logger.Debug().Ctx(ctx).Fields(toFields(fields)).Msg(msg)
}

func (z *zerologger) Info(ctx context.Context, msg string, fields ...Field) {
	z.logger.Info().Ctx(ctx).Fields(toFields(fields)).Msg(msg)
}

func (z *zerologger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.logger.Warn().Ctx(ctx).Fields(toFields(fields)).Msg(msg)
}

func (z *zerologger) Error(ctx context.Context, msg string, fields ...Field) {
	z.logger.Error().Ctx(ctx).Fields(toFields(fields)).Msg(msg)
}

// toFields converts fields to a map for zerolog.
func toFields(fields []Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
