// Drains the batch queue, publishes to the broker, and commits offsets
package publish

import (
	"context"
	"runtime/debug"
	"tailf/internal/broker"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/positions"
	"tailf/internal/queue/batchq"
	"time"
)

// Publisher Constructor
func New(namespace []string, inbox *batchq.Queue, client broker.Client, store *positions.Store, fatal func(err error)) (publisher *Publisher) {
	publisher = &Publisher{
		Namespace: append(namespace, global.NSWorker),
		inbox:     inbox,
		client:    client,
		store:     store,
		fatal:     fatal,
		Metrics:   &MetricStorage{},
	}
	return
}

func (publisher *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		alive := func() (ok bool) {
			// Record panics and continue working
			defer func() {
				if fatalError := recover(); fatalError != nil {
					stack := debug.Stack()
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"panic in publisher worker thread: %v\n%s", fatalError, stack)
					ok = true
				}
			}()

			batch, popped := publisher.inbox.Pop(ctx)
			if !popped {
				return
			}

			if !publisher.publishBatch(ctx, batch) {
				return
			}

			// The broker acknowledged every line below batch.Offset
			publisher.store.Advance(batch.Path, batch.Offset)

			publisher.Metrics.TotalBatches.Add(1)
			publisher.Metrics.TotalLines.Add(uint64(len(batch.Lines)))

			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
				"Published %d lines for '%s', committed offset %d\n", len(batch.Lines), batch.Path, batch.Offset)
			ok = true
			return
		}()
		if !alive {
			return
		}
	}
}

// Publish one batch, retrying transient broker failures indefinitely.
// Returns false when cancelled or when a failure is not retryable.
func (publisher *Publisher) publishBatch(ctx context.Context, batch batchq.Batch) (published bool) {
	for {
		err := publisher.client.Publish(batch.Topic, batch.Lines)
		if err == nil {
			published = true
			return
		}

		if !broker.IsRetryable(err) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Failed to publish batch for '%s' to topic '%s': %v\n", batch.Path, batch.Topic, err)
			if publisher.fatal != nil {
				publisher.fatal(err)
			}
			return
		}

		publisher.Metrics.Retries.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Broker unavailable for topic '%s', retrying: %v\n", batch.Topic, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(global.PublishRetryBackoff):
		}
	}
}

// Capacity for the publisher inbox derived from the per-wake drain bound
func QueueCapacity(maxBatches int) (capacity int) {
	capacity = maxBatches * global.QueueCapacityFactor
	return
}
