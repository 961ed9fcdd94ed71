// Manages tailer worker instances, one per tracked file
package tailer

import (
	"context"
	"fmt"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/positions"
	"tailf/internal/queue/batchq"

	"github.com/spf13/afero"
)

// Creates new instance manager
func NewManager(ctx context.Context, fsys afero.Fs, store *positions.Store, outbox *batchq.Queue, maxBatchLines int, maxBatches int) (manager *Manager) {
	manager = &Manager{
		Instances:     make(map[string]*Instance),
		fsys:          fsys,
		store:         store,
		outbox:        outbox,
		maxBatchLines: maxBatchLines,
		maxBatches:    maxBatches,
		ctx:           ctx,
	}
	return
}

// Open the tracked file and start its tailer worker
func (manager *Manager) AddInstance(tracked *positions.TrackedFile) (err error) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	_, present := manager.Instances[tracked.Path]
	if present {
		return
	}

	worker := New(logctx.GetTagList(manager.ctx), tracked, manager.outbox, manager.maxBatchLines, manager.maxBatches)
	err = worker.Open(manager.fsys)
	if err != nil {
		err = fmt.Errorf("failed to open '%s' for tailing: %v", tracked.Path, err)
		return
	}

	newInstance := &Instance{Worker: worker}
	manager.Instances[tracked.Path] = newInstance

	// Create new context
	workerCtx, cancelInstance := context.WithCancel(context.Background())
	workerCtx = context.WithValue(workerCtx, global.LoggerKey, logctx.GetLogger(manager.ctx))
	workerCtx = logctx.OverwriteCtxTag(workerCtx, worker.Namespace)
	newInstance.cancel = cancelInstance

	path := tracked.Path
	newInstance.wg.Add(1)
	go func() {
		defer newInstance.wg.Done()

		failed := worker.Run(workerCtx)
		if failed {
			// Read error path: drop the entry so the next scan re-tracks it
			manager.Mu.Lock()
			delete(manager.Instances, path)
			manager.Mu.Unlock()
			manager.store.Remove(path)
		}
	}()
	return
}

// Stop a tailer and wait for it to observe cancellation
func (manager *Manager) RemoveInstance(path string) {
	manager.Mu.Lock()
	instance, present := manager.Instances[path]
	if present {
		delete(manager.Instances, path)
	}
	manager.Mu.Unlock()

	if !present {
		return
	}

	if instance.cancel != nil {
		instance.cancel()
	}
	instance.wg.Wait()
}

// Wake the tailer for a path. Returns false when no tailer owns the path.
func (manager *Manager) Wake(path string) (found bool) {
	manager.Mu.Lock()
	instance, present := manager.Instances[path]
	manager.Mu.Unlock()

	if present {
		instance.Worker.Wake()
		found = true
	}
	return
}

// Paths with a running tailer
func (manager *Manager) Paths() (paths []string) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	for path := range manager.Instances {
		paths = append(paths, path)
	}
	return
}

// Sum read counters across running tailers
func (manager *Manager) CollectMetrics() (linesRead uint64, batchesSubmitted uint64) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	for _, instance := range manager.Instances {
		linesRead += instance.Worker.Metrics.LinesRead.Load()
		batchesSubmitted += instance.Worker.Metrics.BatchesSubmitted.Load()
	}
	return
}

// Stop all tailers and wait for each to exit
func (manager *Manager) Shutdown() {
	manager.Mu.Lock()
	instances := make([]*Instance, 0, len(manager.Instances))
	for path, instance := range manager.Instances {
		instances = append(instances, instance)
		delete(manager.Instances, path)
	}
	manager.Mu.Unlock()

	for _, instance := range instances {
		if instance.cancel != nil {
			instance.cancel()
		}
		instance.wg.Wait()
	}
}
