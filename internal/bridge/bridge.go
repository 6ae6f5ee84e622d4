package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

var (
	// ErrNotInitialized is returned when the bridge is used before plugin
	// startup registered the host signal.
	ErrNotInitialized = errors.New("main-thread bridge not initialized")
	// ErrSignalDenied is returned when the host refuses the wake signal,
	// typically because it is busy or showing a modal dialog.
	ErrSignalDenied = errors.New("host denied main-thread signal (busy or modal)")
	// ErrSignalTimedOut is returned when the host does not accept the wake
	// signal in time.
	ErrSignalTimedOut = errors.New("host main-thread signal timed out")
)

// Bridge marshals work from background goroutines onto the host main thread.
// Callers enqueue a command and raise the host's cross-thread signal; the
// host then invokes Drain on its main thread, which executes pending commands
// strictly one at a time in FIFO order.
type Bridge struct {
	queue *Queue
	log   *log.Logger

	mu    sync.RWMutex
	event agenttypes.ExternalEvent
}

// New creates a bridge with an empty queue. The bridge is unusable until
// Initialize registers the host's signal primitive.
func New() *Bridge {
	return &Bridge{
		queue: NewQueue(),
		log:   logger.NewStyledLogger("Bridge"),
	}
}

// Initialize registers the host-provided external event that wakes the main
// thread. Must be called once during plugin startup, before any RunOnMainThread.
func (b *Bridge) Initialize(event agenttypes.ExternalEvent) error {
	if event == nil {
		return fmt.Errorf("initialize bridge: external event is nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.event != nil {
		return fmt.Errorf("initialize bridge: already initialized")
	}
	b.event = event
	return nil
}

// Queue exposes the underlying command queue, primarily for shutdown and tests.
func (b *Bridge) Queue() *Queue {
	return b.queue
}

// submit enqueues cmd and raises the host signal. When the host refuses the
// signal the command is completed with a descriptive error rather than left
// dangling; a concurrent drain that already picked the command up wins, since
// completion is exactly-once.
func (b *Bridge) submit(cmd *Command) error {
	b.mu.RLock()
	event := b.event
	b.mu.RUnlock()
	if event == nil {
		return ErrNotInitialized
	}

	b.queue.Enqueue(cmd)

	switch result := event.Raise(); result {
	case agenttypes.RaiseAccepted:
		return nil
	case agenttypes.RaiseDenied:
		b.log.Warn("host denied wake signal", "pending", b.queue.Len())
		cmd.Cancel(ErrSignalDenied)
		return ErrSignalDenied
	case agenttypes.RaiseTimedOut:
		b.log.Warn("host wake signal timed out", "pending", b.queue.Len())
		cmd.Cancel(ErrSignalTimedOut)
		return ErrSignalTimedOut
	default:
		err := fmt.Errorf("host signal returned unknown result %d", result)
		cmd.Cancel(err)
		return err
	}
}

// RunOnMainThread runs an action on the host main thread and blocks until it
// completes. The returned error is the action's error, a signaling error, or
// the context's error if canceled before execution began.
func (b *Bridge) RunOnMainThread(ctx context.Context, action func(sess agenttypes.Session) error) error {
	cmd := NewCommand(ctx, func(sess agenttypes.Session) (any, error) {
		return nil, action(sess)
	})
	if err := b.submit(cmd); err != nil {
		return err
	}
	_, err := cmd.Await()
	return err
}

// RunValue runs a function on the host main thread and returns its typed
// result. Each caller gets its own command and its own awaitable; execution
// on the main thread remains strictly serialized.
func RunValue[T any](ctx context.Context, b *Bridge, fn func(sess agenttypes.Session) (T, error)) (T, error) {
	cmd := NewCommand(ctx, func(sess agenttypes.Session) (any, error) {
		return fn(sess)
	})
	var zero T
	if err := b.submit(cmd); err != nil {
		return zero, err
	}
	result, err := cmd.Await()
	if err != nil {
		return zero, err
	}
	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("main-thread command returned %T, want %T", result, zero)
	}
	return value, nil
}

// Drain executes every pending command in FIFO order. It must be called only
// from the host main thread, as the external event's handler. Commands run to
// completion one at a time; Drain is never re-entrant because the host
// delivers events serially on the one main thread.
func (b *Bridge) Drain(sess agenttypes.Session) {
	for {
		cmd, ok := b.queue.Dequeue()
		if !ok {
			return
		}
		cmd.Execute(sess)
	}
}

// Shutdown cancels all pending commands. Safe to call more than once.
func (b *Bridge) Shutdown() {
	b.queue.CancelAll()
}
