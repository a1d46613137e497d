package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(service string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for run phases

func (l *Logger) LogRunStart(ctx context.Context, check string, scope string, mode string) {
	l.WithContext(ctx).Info().
		Str("check", check).
		Str("scope", scope).
		Str("mode", mode).
		Msg("starting compliance run")
}

func (l *Logger) LogRunComplete(ctx context.Context, check string, objects int, findings int) {
	l.WithContext(ctx).Info().
		Str("check", check).
		Int("objects", objects).
		Int("findings", findings).
		Msg("compliance run complete")
}

func (l *Logger) LogFinding(ctx context.Context, objectID string, check string, detail string) {
	l.WithContext(ctx).Info().
		Str("object_id", objectID).
		Str("check", check).
		Str("detail", detail).
		Msg("finding recorded")
}

func (l *Logger) LogMutationError(ctx context.Context, objectID string, operation string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("object_id", objectID).
		Str("operation", operation).
		Msg("mutating call failed")
}
