package log

import (
	"context"

	"go.uber.org/zap"
)

/**
 * @file: log_rewrite.go
 * @description: package level helpers over the global sugar
 */

// WithContext returns the global logger enriched with the trace and span ids
// of the span carried by ctx, if any.
func WithContext(ctx context.Context) *zap.SugaredLogger {
	return GetLogger().With(traceFields(ctx)...)
}

func Info(args ...any) { GetLogger().Info(args...) }

func Infof(format string, args ...any) { GetLogger().Infof(format, args...) }

func Infow(msg string, keysAndValues ...any) { GetLogger().Infow(msg, keysAndValues...) }

func Debug(args ...any) { GetLogger().Debug(args...) }

func Debugf(format string, args ...any) { GetLogger().Debugf(format, args...) }

func Debugw(msg string, keysAndValues ...any) { GetLogger().Debugw(msg, keysAndValues...) }

func Warn(args ...any) { GetLogger().Warn(args...) }

func Warnf(format string, args ...any) { GetLogger().Warnf(format, args...) }

func Warnw(msg string, keysAndValues ...any) { GetLogger().Warnw(msg, keysAndValues...) }

func Error(args ...any) { GetLogger().Error(args...) }

func Errorf(format string, args ...any) { GetLogger().Errorf(format, args...) }

func Errorw(msg string, keysAndValues ...any) { GetLogger().Errorw(msg, keysAndValues...) }

func Fatalf(format string, args ...any) { GetLogger().Fatalf(format, args...) }
