package logging

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// ZerologLogger implements ports.Logger as JSON lines using zerolog.
type ZerologLogger struct {
	base   zerolog.Logger
	fields []interface{}
	layer  string
}

// NewZerolog creates the JSON adapter.
func NewZerolog(opts Options) (*ZerologLogger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	ctx := zerolog.New(opts.Writer).Level(level).With().Timestamp()
	if opts.ReportCaller {
		ctx = ctx.Caller()
	}

	layer := opts.Layer
	if layer == "" {
		layer = "infrastructure"
	}

	return &ZerologLogger{base: ctx.Logger(), fields: baseFields(opts), layer: layer}, nil
}

// Debug emits a debug log entry.
func (l *ZerologLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.DebugLevel, msg, fields...)
}

// Info emits an info log entry.
func (l *ZerologLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.InfoLevel, msg, fields...)
}

// Warn emits a warning log entry.
func (l *ZerologLogger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.WarnLevel, msg, fields...)
}

// Error emits an error log entry.
func (l *ZerologLogger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, zerolog.ErrorLevel, msg, fields...)
}

// With derives a new logger with persistent fields.
func (l *ZerologLogger) With(fields ...interface{}) ports.Logger {
	if l == nil {
		return Discard
	}
	next := make([]interface{}, len(l.fields), len(l.fields)+len(fields))
	copy(next, l.fields)
	return &ZerologLogger{base: l.base, fields: append(next, fields...), layer: l.layer}
}

func (l *ZerologLogger) log(ctx context.Context, level zerolog.Level, msg string, fields ...interface{}) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	if event == nil {
		return
	}

	payload := mergeFields(l.fields, fields, contextFields(ctx, l.layer))
	for i := 0; i+1 < len(payload); i += 2 {
		key := payload[i].(string)
		switch v := payload[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

var _ ports.Logger = (*ZerologLogger)(nil)
