package bridge

import (
	"context"
	"sync"
)

// Queue is an ordered, thread-safe holding area for commands awaiting
// main-thread execution. Multiple background producers may enqueue
// concurrently; the main thread is the single consumer.
type Queue struct {
	mu    sync.Mutex
	items []*Command
}

// NewQueue creates an empty command queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a command to the tail of the queue.
func (q *Queue) Enqueue(cmd *Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, cmd)
}

// Dequeue removes and returns the head of the queue, or false when empty.
func (q *Queue) Dequeue() (*Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	cmd := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return cmd, true
}

// Len returns the number of currently queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// CancelAll completes every still-pending command with a cancellation fault
// so no awaiter hangs forever. Used during plugin shutdown.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	pending := q.items
	q.items = nil
	q.mu.Unlock()

	for _, cmd := range pending {
		cmd.Cancel(context.Canceled)
	}
}
