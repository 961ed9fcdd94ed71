package engine

import (
	"os"
	"os/signal"
	"syscall"
	"tailf/internal/global"
	"tailf/internal/logctx"
)

// Handle exit requests and initiate graceful shutdown on signal reception
func signalHandler(eng *Engine) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigChan

	logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.InfoLog,
		"Received signal: %v\n", sig)

	// Start engine shutdown
	eng.Shutdown()
	logger := logctx.GetLogger(eng.ctx)
	logger.Wake()
	logger.Wait()
	os.Exit(0)
}
