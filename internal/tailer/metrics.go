package tailer

import "sync/atomic"

type MetricStorage struct {
	LinesRead        atomic.Uint64
	BatchesSubmitted atomic.Uint64
}
