package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/radius"
)

// WorkItem pairs an inbound message with the client it arrived from. The
// receiver owns it until enqueued, the queue until dequeued, then the worker.
type WorkItem struct {
	Msg    *radius.Message
	Client *clients.Client
}

var (
	// ErrQueueFull is returned when the queue is at capacity. Ownership of
	// the item stays with the caller.
	ErrQueueFull = errors.New("gateway: job queue full")
	// ErrQueueClosed is returned once intake has been shut down.
	ErrQueueClosed = errors.New("gateway: job queue closed")
)

// Queue is a bounded FIFO of work items. Enqueue never blocks: when the
// queue is at capacity it rejects immediately, making backpressure explicit
// instead of growing memory without bound.
type Queue struct {
	ch chan WorkItem

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue holding at most capacity items.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan WorkItem, capacity)}
}

// Enqueue adds an item without blocking. It fails with ErrQueueFull at
// capacity and ErrQueueClosed after Close; in both cases the caller keeps
// ownership of the item.
func (q *Queue) Enqueue(item WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue blocks until an item is available, the queue is closed and empty,
// or ctx is cancelled. ok is false on shutdown.
func (q *Queue) Dequeue(ctx context.Context) (item WorkItem, ok bool) {
	select {
	case item, ok = <-q.ch:
		return item, ok
	case <-ctx.Done():
		return WorkItem{}, false
	}
}

// Close shuts down intake. Items already queued can still be dequeued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// TryDrain removes one leftover item without blocking, for shutdown cleanup
// after workers have exited.
func (q *Queue) TryDrain() (WorkItem, bool) {
	select {
	case item, ok := <-q.ch:
		return item, ok
	default:
		return WorkItem{}, false
	}
}

// Len returns the number of queued items.
func (q *Queue) Len() int { return len(q.ch) }
