//go:build debug_trace
// +build debug_trace

package logger

import (
	"context"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// Tracef is just a shorthand for Logf(ctx, logger.LevelTrace, ...)
func Tracef(ctx context.Context, format string, args ...any) {
	logger.Tracef(ctx, format, args...)
}

// TraceDump logs the output of dump at the trace level.
func TraceDump(ctx context.Context, message string, dump func() string) {
	logger.Tracef(ctx, "%s:\n%s", message, dump())
}
