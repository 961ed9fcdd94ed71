// Daemon engine: couples watchers, tailers, the publisher, and timers
package engine

import (
	"context"
	"fmt"
	"os"
	"tailf/internal/broker"
	"tailf/internal/global"
	"tailf/internal/lifecycle"
	"tailf/internal/logctx"
	"tailf/internal/metrics"
	"tailf/internal/pattern"
	"tailf/internal/positions"
	"tailf/internal/publish"
	"tailf/internal/queue/batchq"
	"tailf/internal/reaper"
	"tailf/internal/tailer"
	"tailf/internal/watch"
	"time"

	"github.com/spf13/afero"
)

// Create new engine instance
func NewEngine(cfg Config) (eng *Engine) {
	ctx, cancel := context.WithCancel(context.Background())
	eng = &Engine{
		cfg:    cfg,
		fsys:   afero.NewOsFs(),
		ctx:    ctx,
		cancel: cancel,
	}
	return
}

// Starts pipeline worker threads in background - gracefully shuts down if startup error is encountered
func (eng *Engine) Start(globalCtx context.Context) (err error) {
	// New context for the engine
	eng.ctx, eng.cancel = context.WithCancel(context.Background())
	eng.ctx = context.WithValue(eng.ctx, global.LoggerKey, logctx.GetLogger(globalCtx))

	// Top level tag for engine logs
	eng.ctx = logctx.AppendCtxTag(eng.ctx, global.NSTailf)
	defer func() { eng.ctx = logctx.RemoveLastCtxTag(eng.ctx) }()

	logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %v", err)
		return
	}
	global.PID = os.Getpid()

	// Resolve file specs into watched directories and matchers
	eng.registry, err = pattern.NewRegistry(eng.cfg.Files)
	if err != nil {
		err = fmt.Errorf("error building pattern registry: %v", err)
		return
	}

	// Broker client
	eng.client, err = eng.newBrokerClient()
	if err != nil {
		err = fmt.Errorf("error creating broker client: %v", err)
		return
	}

	// Position store with restart filter
	eng.store = positions.NewStore(eng.fsys, eng.cfg.PositionFile)
	err = eng.store.Load(eng.ctx)
	if err != nil {
		err = fmt.Errorf("error loading position file: %v", err)
		eng.client.Close()
		return
	}

	// Bounded hand-off between tailers and the publisher
	eng.queue, err = batchq.New(logctx.GetTagList(logctx.AppendCtxTag(eng.ctx, global.NSQueue)),
		publish.QueueCapacity(eng.cfg.MaxBatches))
	if err != nil {
		err = fmt.Errorf("error creating publisher queue: %v", err)
		eng.client.Close()
		return
	}

	// Publisher worker
	publisherCtx := logctx.AppendCtxTag(eng.ctx, global.NSPublish)
	eng.publisher = publish.New(logctx.GetTagList(publisherCtx), eng.queue, eng.client, eng.store, eng.fatalFailure)
	workerCtx := logctx.OverwriteCtxTag(publisherCtx, eng.publisher.Namespace)
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		eng.publisher.Run(workerCtx)
	}()

	// Tailer pool
	eng.tailers = tailer.NewManager(eng.ctx, eng.fsys, eng.store, eng.queue, eng.cfg.MaxBatchLines, eng.cfg.MaxBatches)

	// Scan directories for pre-existing files the position file missed
	err = eng.recoverFiles()
	if err != nil {
		err = fmt.Errorf("error scanning configured directories: %v", err)
		eng.Shutdown()
		return
	}

	// Watchers
	watcherCtx := logctx.AppendCtxTag(eng.ctx, global.NSWatcher)
	eng.modify, err = watch.NewModifyWatcher(logctx.GetTagList(watcherCtx), eng.tailers)
	if err != nil {
		eng.Shutdown()
		return
	}
	eng.directory, err = watch.NewDirectoryWatcher(logctx.GetTagList(watcherCtx), eng.registry, eng.store, eng.tailers, eng.modify)
	if err != nil {
		eng.Shutdown()
		return
	}

	// Bring tailers up for everything tracked so far
	eng.startTailers()

	modifyCtx := logctx.AppendCtxTag(watcherCtx, global.NSoMod)
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		eng.modify.Run(modifyCtx)
	}()

	directoryCtx := logctx.AppendCtxTag(watcherCtx, global.NSoDir)
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		eng.directory.Run(directoryCtx)
	}()

	// Position file reflects the post-recovery state
	err = eng.store.Flush()
	if err != nil {
		err = fmt.Errorf("error writing initial position file: %v", err)
		eng.Shutdown()
		return
	}

	// Reaper
	if eng.cfg.DeleteOldTailedFiles {
		eng.sweeper = reaper.New(logctx.GetTagList(eng.ctx), eng.fsys, eng.store, eng.cfg.PostDeleteCommand)
	}

	// Timer loop for flush and reap cadences
	timerCtx := logctx.AppendCtxTag(eng.ctx, global.NSTimer)
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		eng.timerLoop(timerCtx)
	}()

	// Metrics Collector
	eng.collector = metrics.New(logctx.GetTagList(eng.ctx), global.MetricInterval, eng.gatherMetrics)
	collectorCtx := eng.ctx
	eng.wg.Add(1)
	go func() {
		defer eng.wg.Done()
		eng.collector.Run(collectorCtx)
	}()

	// Handle exit signals
	go signalHandler(eng)

	if notifyErr := lifecycle.NotifyReady(eng.ctx); notifyErr != nil {
		logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.WarnLog,
			"Service manager notify failed: %v\n", notifyErr)
	}

	logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

// Select the broker client for the configured destination
func (eng *Engine) newBrokerClient() (client broker.Client, err error) {
	switch {
	case !eng.cfg.Produce:
		client = broker.NewDiscard()
	case eng.cfg.BeatsEndpoint != "":
		client, err = broker.NewBeats(eng.cfg.BeatsEndpoint)
	default:
		client, err = broker.NewKafka(eng.cfg.Brokers, eng.cfg.ProducerType)
	}
	return
}

// Non-retryable publish failure: operator-visible, stop the daemon
func (eng *Engine) fatalFailure(failure error) {
	logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.ErrorLog,
		"Publisher failed permanently: %v\n", failure)
	eng.failed.Store(true)
	eng.cancel()
}

// Whether the engine stopped because of an unrecoverable failure
func (eng *Engine) Failed() (failed bool) {
	failed = eng.failed.Load()
	return
}

// Blocking engine waiter
func (eng *Engine) Run() {
	<-eng.ctx.Done()
}

// Gracefully shutdown pipeline worker threads
func (eng *Engine) Shutdown() {
	logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.InfoLog, "Engine shutdown started...\n")
	lifecycle.NotifyStopping(eng.ctx)

	// Stop watching before stopping tailers so no new instances appear
	if eng.directory != nil {
		eng.directory.Close()
	}
	if eng.modify != nil {
		eng.modify.Close()
	}

	// Tailers observe cancellation and close their handles
	if eng.tailers != nil {
		eng.tailers.Shutdown()
	}

	// Let the publisher drain queued batches before stopping it
	if eng.queue != nil {
		drained, remaining := eng.drainPublisherQueue(global.ShutdownTimeout)
		if !drained {
			logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.WarnLog,
				"Publisher queue did not empty in time: %d batches unshipped\n", remaining)
		}
	}

	// Stop the publisher, timers, and collector
	eng.cancel()

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		eng.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(global.ShutdownTimeout):
		logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: engine did not shutdown within %v seconds\n", global.ShutdownTimeout.Seconds())
	}

	// Final position flush covers offsets committed up to the stop
	if eng.store != nil {
		if flushErr := eng.store.Flush(); flushErr != nil {
			logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.ErrorLog,
				"Failed final position flush: %v\n", flushErr)
		}
	}

	if eng.client != nil {
		eng.client.Close()
	}

	logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.InfoLog, "Engine shutdown completed.\n")
}

// Wait for the publisher to empty its queue, requiring a few consecutive
// zero observations so an in-flight push between depth reads is not
// mistaken for a drained queue. Backs off between polls until the deadline.
func (eng *Engine) drainPublisherQueue(timeout time.Duration) (drained bool, remaining uint64) {
	const quietStreakCount = 3

	backoff := 50 * time.Millisecond
	maxBackoff := 1 * time.Second

	deadline := time.Now().Add(timeout)
	quietStreak := 0

	for {
		remaining = eng.queue.Metrics.Depth.Load()

		if remaining == 0 {
			quietStreak++
			if quietStreak >= quietStreakCount {
				drained = true
				return
			}
		} else {
			quietStreak = 0
		}

		left := time.Until(deadline)
		if left <= 0 {
			return
		}

		sleep := backoff
		if sleep > left {
			sleep = left
		}
		time.Sleep(sleep)

		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

func (eng *Engine) gatherMetrics() (snapshot metrics.Snapshot) {
	linesRead, batchesSubmitted := eng.tailers.CollectMetrics()
	snapshot = metrics.Snapshot{
		LinesRead:        linesRead,
		BatchesSubmitted: batchesSubmitted,
		BatchesPublished: eng.publisher.Metrics.TotalBatches.Load(),
		LinesPublished:   eng.publisher.Metrics.TotalLines.Load(),
		PublishRetries:   eng.publisher.Metrics.Retries.Load(),
		QueueDepth:       eng.queue.Depth(),
		QueueCapacity:    eng.queue.Capacity(),
		QueueBytes:       eng.queue.Metrics.Bytes.Load(),
		TrackedFiles:     len(eng.store.Snapshot()),
	}
	return
}
