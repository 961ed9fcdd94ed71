package positions

import (
	"sync"

	"github.com/spf13/afero"
)

// One currently tracked file. Created at discovery, destroyed on
// delete/move-out or after a reap's delete event.
type TrackedFile struct {
	Path        string // absolute path
	TimePattern string // strftime-style pattern the file matched
	Topic       string // destination topic
	Inode       uint64 // inode at the time tracking started
	Offset      int64  // committed offset, advanced only after broker ack

	// Read state, owned by the tailer
	Mu        sync.Mutex // guards handle position and remainder
	Handle    afero.File // open read handle, nil until the tailer opens it
	Remainder []byte     // partial line carried across reads
}

// Snapshot view of one tracked file, safe to use outside the store mutex
type Record struct {
	Path        string
	TimePattern string
	Topic       string
	Inode       uint64
	Offset      int64
}

// Durable mapping path -> (pattern, topic, inode, offset).
// Owns the tracked file table and all committed offset mutation.
type Store struct {
	fs    afero.Fs
	path  string // position file path
	mutex sync.Mutex
	table map[string]*TrackedFile
}
