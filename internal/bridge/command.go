// Package bridge provides the only legal path from background goroutines into
// host-API-touching code: commands queued for the host main thread, a FIFO
// queue, and the event bridge that drains it.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"archagent/pkg/agenttypes"
)

// Command is one unit of work awaiting execution on the host main thread.
// Its result channel is resolved exactly once: success, fault, or
// cancellation, regardless of execution path.
type Command struct {
	ctx  context.Context
	fn   func(sess agenttypes.Session) (any, error)
	once sync.Once
	done chan struct{}

	result any
	err    error
}

// NewCommand creates a command wrapping fn. The context carries the caller's
// cancellation signal; if it is canceled before the main thread reaches the
// command, fn never runs.
func NewCommand(ctx context.Context, fn func(sess agenttypes.Session) (any, error)) *Command {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Command{
		ctx:  ctx,
		fn:   fn,
		done: make(chan struct{}),
	}
}

// complete resolves the command. Only the first call has any effect.
func (c *Command) complete(result any, err error) {
	c.once.Do(func() {
		c.result = result
		c.err = err
		close(c.done)
	})
}

// Cancel completes the command with the given error without running its
// delegate. Used by CancelAll and by enqueue paths that fail after the
// command was queued.
func (c *Command) Cancel(err error) {
	c.complete(nil, err)
}

// Execute runs the command body on the caller's thread. It must only be
// called by the main-thread drain loop. A command that was already resolved
// (canceled, or completed with a signaling error after enqueue) is skipped:
// its caller was told it failed, so the delegate must never run. A delegate
// panic is captured and surfaces to the awaiting caller as a fault, never as
// an unhandled failure on the main thread.
func (c *Command) Execute(sess agenttypes.Session) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case <-c.ctx.Done():
		c.complete(nil, c.ctx.Err())
		return
	default:
	}

	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("command panicked on main thread: %v", r)
			}
		}()
		result, err = c.fn(sess)
	}()
	c.complete(result, err)
}

// Await blocks until the command is resolved and returns its outcome.
// It does not return early on context cancellation: once a command body has
// started on the main thread it runs to its natural conclusion, and a command
// canceled before execution is resolved by the drain loop or CancelAll.
func (c *Command) Await() (any, error) {
	<-c.done
	return c.result, c.err
}
