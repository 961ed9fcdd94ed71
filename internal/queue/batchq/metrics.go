package batchq

import (
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Pushed atomic.Uint64 // batches accepted
	Popped atomic.Uint64 // batches handed to the consumer
	Depth  atomic.Uint64 // batches currently queued
	Bytes  atomic.Uint64 // payload bytes currently queued
}

// Account for a batch entering the queue
func (metrics *MetricStorage) enqueued(batch Batch) {
	metrics.Pushed.Add(1)
	metrics.Depth.Add(1)
	metrics.Bytes.Add(uint64(batch.Size()))
}

// Account for a batch leaving the queue
func (metrics *MetricStorage) drained(batch Batch) {
	metrics.Popped.Add(1)
	subtract(&metrics.Depth, 1)
	subtract(&metrics.Bytes, uint64(batch.Size()))
}

// CAS subtract clamped at zero so the gauges can never underflow
func subtract(source *atomic.Uint64, value uint64) {
	retryInterval := 10 * time.Microsecond

	for i := 0; i < 4; i++ {
		current := source.Load()
		if current == 0 {
			return
		}

		newValue := uint64(0)
		if value < current {
			newValue = current - value
		}

		if source.CompareAndSwap(current, newValue) {
			return
		}

		// CAS failed due to contention, retry
		time.Sleep(retryInterval)
		retryInterval *= 2
	}
}
