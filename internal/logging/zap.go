package logging

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a zap sugared logger to Logger.
type ZapLogger struct {
	l *zap.SugaredLogger
}

func NewZapLogger(l *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{l: l}
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.l.Debugw(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, args ...any) {
	z.l.Infow(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.l.Warnw(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, args ...any) {
	z.l.Errorw(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}
