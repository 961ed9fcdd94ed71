// Periodic pipeline metrics snapshot logging
package metrics

import (
	"context"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"time"

	"github.com/pbnjay/memory"
)

// Point-in-time pipeline counters gathered from the running components
type Snapshot struct {
	LinesRead        uint64
	BatchesSubmitted uint64
	BatchesPublished uint64
	LinesPublished   uint64
	PublishRetries   uint64
	QueueDepth       int
	QueueCapacity    int
	QueueBytes       uint64
	TrackedFiles     int
}

// Collects and logs a snapshot at a fixed cadence
type Collector struct {
	Namespace []string
	gather    func() Snapshot
	interval  time.Duration
}

// Collector Constructor
func New(namespace []string, interval time.Duration, gather func() Snapshot) (collector *Collector) {
	collector = &Collector{
		Namespace: append(namespace, global.NSMetric),
		gather:    gather,
		interval:  interval,
	}
	return
}

func (collector *Collector) Run(ctx context.Context) {
	ticker := time.NewTicker(collector.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := collector.gather()
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
				"tracked=%d lines_read=%d batches_published=%d lines_published=%d retries=%d queue=%d/%d queue_bytes=%d free_mem=%d\n",
				snapshot.TrackedFiles,
				snapshot.LinesRead,
				snapshot.BatchesPublished,
				snapshot.LinesPublished,
				snapshot.PublishRetries,
				snapshot.QueueDepth,
				snapshot.QueueCapacity,
				snapshot.QueueBytes,
				memory.FreeMemory())
		}
	}
}
