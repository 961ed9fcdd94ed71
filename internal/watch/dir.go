// Tracks files appearing in and disappearing from watched directories
package watch

import (
	"context"
	"fmt"
	"os"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/pattern"
	"tailf/internal/positions"
	"tailf/internal/tailer"

	"github.com/fsnotify/fsnotify"
)

// DirectoryWatcher Constructor. Subscribes to every registered directory.
func NewDirectoryWatcher(namespace []string, registry *pattern.Registry, store *positions.Store, tailers *tailer.Manager, modify *ModifyWatcher) (directory *DirectoryWatcher, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err = fmt.Errorf("failed to create directory watcher: %v", err)
		return
	}

	for _, watchDir := range registry.Directories() {
		err = watcher.Add(watchDir)
		if err != nil {
			watcher.Close()
			err = fmt.Errorf("failed to watch directory '%s': %v", watchDir, err)
			return
		}
	}

	directory = &DirectoryWatcher{
		Namespace: append(namespace, global.NSoDir),
		watcher:   watcher,
		registry:  registry,
		store:     store,
		tailers:   tailers,
		modify:    modify,
	}
	return
}

// Dispatch create/move-in and delete/move-out events until cancelled
func (directory *DirectoryWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-directory.watcher.Events:
			if !open {
				return
			}
			switch {
			case event.Has(fsnotify.Create):
				directory.handleCreate(ctx, event.Name)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				directory.handleRemove(ctx, event.Name)
			}
		case watchErr, open := <-directory.watcher.Errors:
			if !open {
				return
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Directory watcher error: %v\n", watchErr)
		}
	}
}

// A new file (or one moved in) starts at offset 0 regardless of the
// startup from-beginning setting
func (directory *DirectoryWatcher) handleCreate(ctx context.Context, path string) {
	spec, matched := directory.registry.Lookup(path)
	if !matched {
		return
	}

	info, statErr := os.Stat(path)
	if statErr != nil || info.IsDir() {
		return
	}

	if _, present := directory.store.Get(path); present {
		return
	}

	inode, inodeErr := positions.Inode(path)
	if inodeErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed to stat new file '%s': %v\n", path, inodeErr)
		return
	}

	tracked := directory.store.Upsert(path, spec.TimePattern, spec.Topic, inode, 0)
	if addErr := directory.tailers.AddInstance(tracked); addErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to start tailer for '%s': %v\n", path, addErr)
		directory.store.Remove(path)
		return
	}

	if watchErr := directory.modify.Add(path); watchErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "%v\n", watchErr)
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Tracking new file '%s' for topic '%s'\n", path, spec.Topic)
}

// A deleted or moved-out tracked file stops its tailer first, then drops
// the tracked entry
func (directory *DirectoryWatcher) handleRemove(ctx context.Context, path string) {
	if _, present := directory.store.Get(path); !present {
		return
	}

	directory.tailers.RemoveInstance(path)
	directory.modify.Remove(path)
	directory.store.Remove(path)

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Stopped tracking removed file '%s'\n", path)
}

func (directory *DirectoryWatcher) Close() (err error) {
	err = directory.watcher.Close()
	return
}
