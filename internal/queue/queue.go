// Package queue holds records between the pollers that produce them and the
// single processor that stores them.
package queue

import (
	"sync"

	"greenhouse/internal/models"
)

// Queue is an unbounded FIFO. Push never blocks; any number of goroutines may
// push while one goroutine pops.
type Queue struct {
	mu    sync.Mutex
	items []models.Record
	ready chan struct{}
}

func New() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends rec and wakes the consumer.
func (q *Queue) Push(rec models.Record) {
	q.mu.Lock()
	q.items = append(q.items, rec)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryPop removes the oldest record, or reports false when the queue is empty.
func (q *Queue) TryPop() (models.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	rec := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return rec, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready receives a value after at least one Push since the last receive.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
