package crawl

import "sync"

// Queue is an unbounded, thread-safe FIFO shared by multiple producers
// and consumers. Both the work queue and the result queue are Queues.
//
// Unboundedness is deliberate: a wide, shallow tree can park arbitrarily
// many pending tasks, trading memory for the absence of a deadlock-prone
// backpressure path. Consumers poll with TryPop rather than block so they
// can observe the stop signal between attempts.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends an item. Never blocks.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest item, or reports that the queue
// was empty at the time of the call.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
