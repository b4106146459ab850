// Package queue provides the action queue that carries discrete actions
// from connected clients to the local consumer.
//
// Producers (client sessions, HTTP handlers) push action ids with Submit,
// which never blocks. The consumer pulls them in arrival order with
// TryDrain, which never blocks either. Close tears the queue down: further
// submits fail with ErrQueueClosed, already queued actions can still be
// drained, and once the queue is empty TryDrain reports ErrProducerGone.
package queue

import (
	"errors"
	"sync"
)

var (
	ErrQueueClosed  = errors.New("action queue closed")
	ErrProducerGone = errors.New("action queue producer gone")
)

// Queue is an unbounded FIFO of action ids. It is safe for any number of
// producers and a single consumer.
type Queue struct {
	mu     sync.Mutex
	items  []string
	closed bool
}

// New creates an empty queue
func New() *Queue {
	return &Queue{}
}

// Submit appends an action id
func (q *Queue) Submit(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, id)
	return nil
}

// TryDrain removes and returns the oldest action id. ok is false when the
// queue is empty.
func (q *Queue) TryDrain() (id string, ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		if q.closed {
			return "", false, ErrProducerGone
		}
		return "", false, nil
	}

	id = q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// release the drained backing array
		q.items = nil
	}
	return id, true, nil
}

// Close marks the queue as torn down. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Closed reports whether Close has been called
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of pending actions
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
