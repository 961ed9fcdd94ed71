package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"tailf/internal/broker"
	"tailf/internal/metrics"
	"tailf/internal/pattern"
	"tailf/internal/positions"
	"tailf/internal/publish"
	"tailf/internal/queue/batchq"
	"tailf/internal/reaper"
	"tailf/internal/tailer"
	"tailf/internal/watch"

	"github.com/spf13/afero"
)

// Owns every pipeline component and its lifetime: constructed at startup,
// torn down on shutdown signal
type Engine struct {
	cfg    Config
	fsys   afero.Fs
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	failed atomic.Bool

	// Pipeline components (data-flow order)
	registry  *pattern.Registry
	store     *positions.Store
	tailers   *tailer.Manager
	modify    *watch.ModifyWatcher
	directory *watch.DirectoryWatcher
	queue     *batchq.Queue
	client    broker.Client
	publisher *publish.Publisher
	sweeper   *reaper.Reaper
	collector *metrics.Collector
}
