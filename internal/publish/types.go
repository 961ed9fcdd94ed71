package publish

import (
	"tailf/internal/broker"
	"tailf/internal/positions"
	"tailf/internal/queue/batchq"
)

// Single worker draining the batch queue into the broker. Exactly one
// consumer, so per-path submission order is preserved through to the broker.
type Publisher struct {
	Namespace []string
	inbox     *batchq.Queue
	client    broker.Client
	store     *positions.Store
	fatal     func(err error) // invoked on a non-retryable publish failure
	Metrics   *MetricStorage
}
