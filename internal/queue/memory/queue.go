// Package memory provides the in-process dispatch queue.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cividex/portalwatch/internal/portal"
)

// Queue is a bounded in-memory dispatch queue with context-aware
// operations.
type Queue struct {
	ch      chan portal.Dispatch
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan portal.Dispatch, capacity),
	}
}

// Enqueue pushes a dispatch into the queue or returns if the context ends.
func (q *Queue) Enqueue(ctx context.Context, d portal.Dispatch) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- d:
		return nil
	}
}

// Dequeue pops the next dispatch, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (portal.Dispatch, error) {
	select {
	case <-ctx.Done():
		return portal.Dispatch{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case d, ok := <-q.ch:
		if !ok {
			return portal.Dispatch{}, errors.New("queue closed")
		}
		return d, nil
	}
}

// Len reports the number of dispatches waiting in the queue.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
