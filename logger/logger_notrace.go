//go:build !debug_trace
// +build !debug_trace

// logger_notrace.go compiles the trace level out unless the debug_trace build tag is set.

package logger

import (
	"context"
)

// Tracef is just a shorthand for Logf(ctx, logger.LevelTrace, ...)
func Tracef(ctx context.Context, format string, args ...any) {}

// TraceDump is a no-op without the debug_trace build tag, so the
// (potentially expensive) dump function is never called.
func TraceDump(ctx context.Context, message string, dump func() string) {}
