package tailer

import (
	"bufio"
	"context"
	"sync"
	"tailf/internal/positions"
	"tailf/internal/queue/batchq"

	"github.com/spf13/afero"
)

// Drains newly appended bytes from one file into batches without breaking
// line boundaries. One tailer per tracked file.
type Tailer struct {
	Namespace     []string
	tracked       *positions.TrackedFile
	outbox        *batchq.Queue
	maxBatchLines int // lines per batch
	maxBatches    int // drain iterations per wake
	reader        *bufio.Reader
	readOffset    int64 // bytes consumed through the last complete line
	wake          chan struct{}
	Metrics       *MetricStorage
}

// Holds running tailer instances keyed by path
type Manager struct {
	Mu            sync.Mutex
	Instances     map[string]*Instance
	fsys          afero.Fs
	store         *positions.Store
	outbox        *batchq.Queue
	maxBatchLines int
	maxBatches    int
	ctx           context.Context
}

type Instance struct {
	Worker *Tailer
	wg     sync.WaitGroup
	cancel context.CancelFunc
}
