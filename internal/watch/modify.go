// Wakes tailers when their files are appended to
package watch

import (
	"context"
	"fmt"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/tailer"

	"github.com/fsnotify/fsnotify"
)

// ModifyWatcher Constructor
func NewModifyWatcher(namespace []string, tailers *tailer.Manager) (modify *ModifyWatcher, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err = fmt.Errorf("failed to create modify watcher: %v", err)
		return
	}

	modify = &ModifyWatcher{
		Namespace: append(namespace, global.NSoMod),
		watcher:   watcher,
		tailers:   tailers,
	}
	return
}

// Register a newly opened tailed file
func (modify *ModifyWatcher) Add(path string) (err error) {
	err = modify.watcher.Add(path)
	if err != nil {
		err = fmt.Errorf("failed to watch '%s' for modification: %v", path, err)
	}
	return
}

// Deregister a file whose tracked entry is being removed
func (modify *ModifyWatcher) Remove(path string) {
	// The kernel drops the watch with the file; an error here only means
	// it is already gone
	modify.watcher.Remove(path)
}

// Dispatch modify events until cancelled
func (modify *ModifyWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-modify.watcher.Events:
			if !open {
				return
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if !modify.tailers.Wake(event.Name) {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Dropping modify event for '%s': no running tailer\n", event.Name)
			}
		case watchErr, open := <-modify.watcher.Errors:
			if !open {
				return
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Modify watcher error: %v\n", watchErr)
		}
	}
}

func (modify *ModifyWatcher) Close() (err error) {
	err = modify.watcher.Close()
	return
}
