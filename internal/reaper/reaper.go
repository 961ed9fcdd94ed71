// Deletes fully shipped rotated files that are no longer the active time bucket
package reaper

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/pattern"
	"tailf/internal/positions"
	"time"

	"github.com/spf13/afero"
)

// Reaper Constructor
func New(namespace []string, fsys afero.Fs, store *positions.Store, command string) (reaper *Reaper) {
	reaper = &Reaper{
		Namespace: append(namespace, global.NSReaper),
		fsys:      fsys,
		store:     store,
		command:   command,
		now:       time.Now,
		Metrics:   &MetricStorage{},
	}
	return
}

// One pass over the tracked table. A file is reaped when its name no longer
// belongs to the current time bucket, its inode is unchanged, every byte has
// been acknowledged, and it has been quiet for the grace period. The tracked
// entry itself is removed by the delete event this raises, not here.
func (reaper *Reaper) Sweep(ctx context.Context) {
	var reapedCount int

	reaper.store.WithLock(func(records []positions.Record) {
		now := reaper.now()

		for _, record := range records {
			if !reaper.shouldReap(record, now) {
				continue
			}

			if removeErr := reaper.fsys.Remove(record.Path); removeErr != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Failed to reap '%s': %v\n", record.Path, removeErr)
				continue
			}

			reaper.Metrics.Reaped.Add(1)
			reapedCount++
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
				"Reaped fully shipped file '%s'\n", record.Path)
		}
	})

	// Post-delete commands run outside the store mutex
	for i := 0; i < reapedCount; i++ {
		reaper.runPostDeleteCommand(ctx)
	}
}

func (reaper *Reaper) shouldReap(record positions.Record, now time.Time) (reap bool) {
	// Still the active time bucket
	expected := pattern.Materialize(record.TimePattern, now)
	if strings.Contains(filepath.Base(record.Path), expected) {
		return
	}

	info, statErr := reaper.fsys.Stat(record.Path)
	if statErr != nil {
		return
	}

	// Rotated under the same name
	if positions.InodeOn(reaper.fsys, record.Path) != record.Inode {
		return
	}

	// Unshipped bytes remain
	if info.Size() != record.Offset {
		return
	}

	// Recently written, give late appends a chance to ship
	if now.Sub(info.ModTime()) <= global.ReapGracePeriod {
		return
	}

	reap = true
	return
}

// Run the configured command in a subshell, capturing combined output.
// Failure is logged, never fatal.
func (reaper *Reaper) runPostDeleteCommand(ctx context.Context) {
	if reaper.command == "" {
		return
	}

	command := exec.Command("/bin/sh", "-c", reaper.command)
	output, runErr := command.CombinedOutput()
	if runErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Post-delete command failed: %v (output: %s)\n", runErr, strings.TrimSpace(string(output)))
		return
	}

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
		"Post-delete command completed (output: %s)\n", strings.TrimSpace(string(output)))
}
