// Startup recovery: reconcile the position file with filesystem reality
package engine

import (
	"fmt"
	"path/filepath"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/positions"

	"github.com/spf13/afero"
)

// Enumerate configured directories for pre-existing matching files and track
// any the loaded position file does not already cover. Accepted position
// records win over the scan, so resumed files keep their offsets.
func (eng *Engine) recoverFiles() (err error) {
	for _, watchDir := range eng.registry.Directories() {
		entries, readErr := afero.ReadDir(eng.fsys, watchDir)
		if readErr != nil {
			err = fmt.Errorf("failed to read directory '%s': %v", watchDir, readErr)
			return
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			spec, matched := eng.registry.Match(watchDir, entry.Name())
			if !matched {
				continue
			}

			path := filepath.Join(watchDir, entry.Name())
			if _, present := eng.store.Get(path); present {
				continue
			}

			// New discovery: honor the from-beginning setting
			var offset int64
			if !eng.cfg.FromBeginning {
				offset = entry.Size()
			}

			inode := positions.InodeOn(eng.fsys, path)
			eng.store.Upsert(path, spec.TimePattern, spec.Topic, inode, offset)

			logctx.LogEvent(eng.ctx, global.VerbosityProgress, global.InfoLog,
				"Discovered existing file '%s' for topic '%s' at offset %d\n", path, spec.Topic, offset)
		}
	}
	return
}

// Start one tailer per tracked file and register each with the modify watcher
func (eng *Engine) startTailers() {
	for _, record := range eng.store.Snapshot() {
		tracked, present := eng.store.Get(record.Path)
		if !present {
			continue
		}

		if addErr := eng.tailers.AddInstance(tracked); addErr != nil {
			// The file vanished between scan and open; drop and move on
			logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.WarnLog,
				"Dropping '%s': %v\n", record.Path, addErr)
			eng.store.Remove(record.Path)
			continue
		}

		if watchErr := eng.modify.Add(record.Path); watchErr != nil {
			logctx.LogEvent(eng.ctx, global.VerbosityStandard, global.WarnLog, "%v\n", watchErr)
		}
	}
}
