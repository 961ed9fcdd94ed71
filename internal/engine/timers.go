package engine

import (
	"context"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"time"
)

// Single timekeeping task: position flush at the configured interval,
// reap sweep at a fixed cadence when enabled
func (eng *Engine) timerLoop(ctx context.Context) {
	flushTicker := time.NewTicker(eng.cfg.FlushInterval)
	defer flushTicker.Stop()

	reapTicker := time.NewTicker(global.ReapInterval)
	defer reapTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-flushTicker.C:
			if flushErr := eng.store.Flush(); flushErr != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
					"Failed position flush: %v\n", flushErr)
			}
		case <-reapTicker.C:
			if eng.sweeper != nil {
				eng.sweeper.Sweep(ctx)
			}
		}
	}
}
