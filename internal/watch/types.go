package watch

import (
	"tailf/internal/pattern"
	"tailf/internal/positions"
	"tailf/internal/tailer"

	"github.com/fsnotify/fsnotify"
)

// Watches configured directories for files appearing and disappearing,
// starting and stopping tailers to match
type DirectoryWatcher struct {
	Namespace []string
	watcher   *fsnotify.Watcher
	registry  *pattern.Registry
	store     *positions.Store
	tailers   *tailer.Manager
	modify    *ModifyWatcher
}

// Watches every currently open tailed file for modify events and wakes
// the owning tailer
type ModifyWatcher struct {
	Namespace []string
	watcher   *fsnotify.Watcher
	tailers   *tailer.Manager
}
