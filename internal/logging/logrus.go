package logging

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to Logger. Key–value pairs become fields;
// a dangling key is stored under "!BADKEY" like slog does.
type LogrusLogger struct {
	e *logrus.Entry
}

func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{e: logrus.NewEntry(l)}
}

func toFields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			f["!BADKEY"] = args[i]
			break
		}
		f[fmt.Sprint(args[i])] = args[i+1]
	}
	return f
}

func (g *LogrusLogger) entry(ctx context.Context, args []any) *logrus.Entry {
	e := g.e.WithContext(ctx).WithFields(toFields(args))
	if id := RequestID(ctx); id != "" {
		e = e.WithField("request_id", id)
	}
	return e
}

func (g *LogrusLogger) Debug(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Debug(msg)
}

func (g *LogrusLogger) Info(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Info(msg)
}

func (g *LogrusLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Warn(msg)
}

func (g *LogrusLogger) Error(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Error(msg)
}

func (g *LogrusLogger) With(args ...any) Logger {
	return &LogrusLogger{e: g.e.WithFields(toFields(args))}
}
