// closure_signaler.go implements a one-shot close notification carrying the cause.

// Package closuresignaler notifies any amount of waiters that an object
// was closed, and why.
package closuresignaler

import (
	"context"
	"sync"

	"github.com/xaionaro-go/avencbuf/logger"
)

type ClosureSignaler struct {
	closeOnce sync.Once
	c         chan struct{}
	cause     error
}

func New() *ClosureSignaler {
	return &ClosureSignaler{
		c: make(chan struct{}),
	}
}

// CloseChan is closed on the first Close.
func (c *ClosureSignaler) CloseChan() <-chan struct{} {
	return c.c
}

// Close closes with the given cause; only the first call has an effect.
func (c *ClosureSignaler) Close(ctx context.Context, cause error) {
	c.closeOnce.Do(func() {
		logger.Debugf(ctx, "closing: %v", cause)
		c.cause = cause
		close(c.c)
	})
}

func (c *ClosureSignaler) IsClosed() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}

// Cause returns the cause given to Close, or nil while not closed.
func (c *ClosureSignaler) Cause() error {
	if !c.IsClosed() {
		return nil
	}
	return c.cause
}

// Wait blocks until closed and returns the cause, or returns the error
// of the context.
func (c *ClosureSignaler) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.c:
		return c.cause
	}
}
