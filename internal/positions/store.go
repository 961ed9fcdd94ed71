// Owns the durable path -> offset mapping and its on-disk text representation
package positions

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"tailf/internal/global"
	"tailf/internal/logctx"

	"github.com/spf13/afero"
)

// Store Constructor
func NewStore(fsys afero.Fs, positionFilePath string) (store *Store) {
	store = &Store{
		fs:    fsys,
		path:  positionFilePath,
		table: make(map[string]*TrackedFile),
	}
	return
}

// Parse the position file and accept each record iff the file still exists,
// its inode is unchanged, and it has not shrunk below the recorded offset.
// Rejected records are dropped; the directory scan re-tracks those paths at 0.
func (store *Store) Load(ctx context.Context) (err error) {
	positionFile, openErr := store.fs.Open(store.path)
	if openErr != nil {
		if os.IsNotExist(openErr) {
			// First run, nothing to restore
			return
		}
		err = fmt.Errorf("failed to open position file '%s': %v", store.path, openErr)
		return
	}
	defer positionFile.Close()

	store.mutex.Lock()
	defer store.mutex.Unlock()

	scanner := bufio.NewScanner(positionFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 5 {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Skipping malformed position record: '%s'\n", line)
			continue
		}

		inode, inodeErr := strconv.ParseUint(fields[3], 10, 64)
		offset, offsetErr := strconv.ParseInt(fields[4], 10, 64)
		if inodeErr != nil || offsetErr != nil || offset < 0 {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Skipping malformed position record: '%s'\n", line)
			continue
		}

		path := fields[0]
		info, statErr := store.fs.Stat(path)
		if statErr != nil {
			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
				"Dropping position record for missing file '%s'\n", path)
			continue
		}
		if currentInode := InodeOn(store.fs, path); currentInode != inode {
			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
				"Dropping position record for rotated file '%s' (inode %d != %d)\n", path, currentInode, inode)
			continue
		}
		if info.Size() < offset {
			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
				"Dropping position record for truncated file '%s' (size %d < offset %d)\n", path, info.Size(), offset)
			continue
		}

		store.table[path] = &TrackedFile{
			Path:        path,
			TimePattern: fields[1],
			Topic:       fields[2],
			Inode:       inode,
			Offset:      offset,
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		err = fmt.Errorf("failed to read position file '%s': %v", store.path, scanErr)
	}
	return
}

// Add a tracked file. Idempotent on path: an existing entry wins.
func (store *Store) Upsert(path string, timePattern string, topic string, inode uint64, offset int64) (tracked *TrackedFile) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	tracked, present := store.table[path]
	if present {
		return
	}

	tracked = &TrackedFile{
		Path:        path,
		TimePattern: timePattern,
		Topic:       topic,
		Inode:       inode,
		Offset:      offset,
	}
	store.table[path] = tracked
	return
}

// Advance the committed offset for a path. Monotonic per path;
// only the publisher calls this, after broker acknowledgement.
func (store *Store) Advance(path string, offset int64) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	tracked, present := store.table[path]
	if !present {
		return
	}
	if offset > tracked.Offset {
		tracked.Offset = offset
	}
}

// Remove a tracked file, closing its handle if still open
func (store *Store) Remove(path string) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	tracked, present := store.table[path]
	if !present {
		return
	}

	tracked.Mu.Lock()
	if tracked.Handle != nil {
		tracked.Handle.Close()
		tracked.Handle = nil
	}
	tracked.Mu.Unlock()

	delete(store.table, path)
}

// Retrieve a tracked file by path
func (store *Store) Get(path string) (tracked *TrackedFile, present bool) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	tracked, present = store.table[path]
	return
}

// Point-in-time view of the table, ordered by path
func (store *Store) Snapshot() (records []Record) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	records = store.snapshotLocked()
	return
}

// Run fn over a table view while holding the store mutex
func (store *Store) WithLock(fn func(records []Record)) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	fn(store.snapshotLocked())
}

func (store *Store) snapshotLocked() (records []Record) {
	records = make([]Record, 0, len(store.table))
	for _, tracked := range store.table {
		records = append(records, Record{
			Path:        tracked.Path,
			TimePattern: tracked.TimePattern,
			Topic:       tracked.Topic,
			Inode:       tracked.Inode,
			Offset:      tracked.Offset,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return
}

// Rewrite the position file from the current table.
// Writes a temp file in the same directory and renames it into place.
func (store *Store) Flush() (err error) {
	records := store.Snapshot()

	tempPath := store.path + ".new"
	tempFile, err := store.fs.Create(tempPath)
	if err != nil {
		err = fmt.Errorf("failed to create temp position file '%s': %v", tempPath, err)
		return
	}

	for _, record := range records {
		_, err = fmt.Fprintf(tempFile, "%s %s %s %d %d\n",
			record.Path, record.TimePattern, record.Topic, record.Inode, record.Offset)
		if err != nil {
			tempFile.Close()
			err = fmt.Errorf("failed to write position record: %v", err)
			return
		}
	}

	err = tempFile.Close()
	if err != nil {
		err = fmt.Errorf("failed to close temp position file: %v", err)
		return
	}

	err = store.fs.Rename(tempPath, store.path)
	if err != nil {
		err = fmt.Errorf("failed to replace position file '%s': %v", store.path, err)
		return
	}
	return
}
