package publish

import "sync/atomic"

type MetricStorage struct {
	TotalBatches atomic.Uint64 // batches acknowledged by the broker
	TotalLines   atomic.Uint64 // lines acknowledged by the broker
	Retries      atomic.Uint64 // transient failures retried
}
