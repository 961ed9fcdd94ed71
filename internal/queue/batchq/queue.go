// Bounded FIFO hand-off between tailers and the publisher
package batchq

import (
	"context"
	"fmt"
)

// Queue Constructor
func New(namespace []string, capacity int) (queue *Queue, err error) {
	if capacity <= 0 {
		err = fmt.Errorf("queue capacity must be positive, got %d", capacity)
		return
	}

	queue = &Queue{
		Namespace: namespace,
		ch:        make(chan Batch, capacity),
		Metrics:   &MetricStorage{},
	}
	return
}

// Push a batch, blocking while the queue is full.
// Returns false when the context is cancelled before the push lands.
func (queue *Queue) PushBlocking(ctx context.Context, batch Batch) (ok bool) {
	select {
	case <-ctx.Done():
		return
	case queue.ch <- batch:
		queue.Metrics.enqueued(batch)
		ok = true
		return
	}
}

// Pop the oldest batch, blocking while the queue is empty.
// Returns false when the context is cancelled before a batch arrives.
func (queue *Queue) Pop(ctx context.Context) (batch Batch, ok bool) {
	select {
	case <-ctx.Done():
		return
	case batch = <-queue.ch:
		queue.Metrics.drained(batch)
		ok = true
		return
	}
}

// Current number of queued batches
func (queue *Queue) Depth() (depth int) {
	depth = len(queue.ch)
	return
}

// Configured capacity
func (queue *Queue) Capacity() (capacity int) {
	capacity = cap(queue.ch)
	return
}
