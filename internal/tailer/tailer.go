// Reads appended lines from one tracked file and hands batches to the publisher
package tailer

import (
	"bufio"
	"context"
	"io"
	"strings"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/positions"
	"tailf/internal/queue/batchq"

	"github.com/spf13/afero"
)

const readBufferSize = 65536

// Tailer Constructor
func New(namespace []string, tracked *positions.TrackedFile, outbox *batchq.Queue, maxBatchLines int, maxBatches int) (tailer *Tailer) {
	tailer = &Tailer{
		Namespace:     append(namespace, global.NSTailer),
		tracked:       tracked,
		outbox:        outbox,
		maxBatchLines: maxBatchLines,
		maxBatches:    maxBatches,
		wake:          make(chan struct{}, 1),
		Metrics:       &MetricStorage{},
	}
	return
}

// Open the file read-only and seek to the committed offset
func (tailer *Tailer) Open(fsys afero.Fs) (err error) {
	tracked := tailer.tracked

	tracked.Mu.Lock()
	defer tracked.Mu.Unlock()

	handle, err := fsys.Open(tracked.Path)
	if err != nil {
		return
	}

	_, err = handle.Seek(tracked.Offset, io.SeekStart)
	if err != nil {
		handle.Close()
		return
	}

	tracked.Handle = handle
	tailer.reader = bufio.NewReaderSize(handle, readBufferSize)
	tailer.readOffset = tracked.Offset
	return
}

// Request a drain pass. Non-blocking; a pending wake is enough.
func (tailer *Tailer) Wake() {
	select {
	case tailer.wake <- struct{}{}:
	default:
	}
}

// Drain until end of file, then suspend until woken by a modify event.
// Each wake performs up to maxBatches drain iterations so one very
// active file cannot monopolize the queue.
// Returns failed=true on a filesystem read error; the caller drops the
// tracked file and lets the next scan rediscover it.
func (tailer *Tailer) Run(ctx context.Context) (failed bool) {
	// Catch up on content that accumulated while the process was not running
	for {
		submitted, reachedEOF, err := tailer.drainBatch(ctx)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Read error on '%s', dropping file: %v\n", tailer.tracked.Path, err)
			tailer.closeHandle()
			failed = true
			return
		}
		if reachedEOF && !submitted {
			break
		}
	}

	for {
		select {
		case <-ctx.Done():
			tailer.closeHandle()
			return
		case <-tailer.wake:
			for i := 0; i < tailer.maxBatches; i++ {
				submitted, reachedEOF, err := tailer.drainBatch(ctx)
				if err != nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"Read error on '%s', dropping file: %v\n", tailer.tracked.Path, err)
					tailer.closeHandle()
					failed = true
					return
				}
				if reachedEOF {
					break
				}
				if i == tailer.maxBatches-1 && submitted {
					// Bound exhausted with data likely remaining, re-arm
					tailer.Wake()
				}
			}
		}
	}
}

// Read up to maxBatchLines complete lines and submit them as one batch.
// A trailing line fragment stays in the tracked file's remainder and is
// prepended to the first line of the next batch.
func (tailer *Tailer) drainBatch(ctx context.Context) (submitted bool, reachedEOF bool, err error) {
	tracked := tailer.tracked

	tracked.Mu.Lock()

	if tracked.Handle == nil {
		tracked.Mu.Unlock()
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"File '%s' already closed, dropping drain request\n", tracked.Path)
		reachedEOF = true
		return
	}

	lines := make([]string, 0, tailer.maxBatchLines)
	for len(lines) < tailer.maxBatchLines {
		segment, readErr := tailer.reader.ReadBytes('\n')

		if len(segment) > 0 {
			if segment[len(segment)-1] == '\n' {
				// Line complete, join any held fragment
				full := segment
				if len(tracked.Remainder) > 0 {
					full = append(append([]byte(nil), tracked.Remainder...), segment...)
					tracked.Remainder = nil
				}
				tailer.readOffset += int64(len(full))
				lines = append(lines, strings.TrimSpace(string(full)))
				tailer.Metrics.LinesRead.Add(1)
			} else {
				// No newline yet, hold as remainder
				tracked.Remainder = append(tracked.Remainder, segment...)
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				reachedEOF = true
			} else {
				err = readErr
			}
			break
		}
	}

	batchOffset := tailer.readOffset
	topic := tracked.Topic
	path := tracked.Path
	tracked.Mu.Unlock()

	if err != nil || len(lines) == 0 {
		return
	}

	// Submit outside the file mutex; a full queue blocks here by design
	batch := batchq.Batch{
		Path:   path,
		Topic:  topic,
		Lines:  lines,
		Offset: batchOffset,
	}
	if tailer.outbox.PushBlocking(ctx, batch) {
		submitted = true
		tailer.Metrics.BatchesSubmitted.Add(1)
	}
	return
}

func (tailer *Tailer) closeHandle() {
	tracked := tailer.tracked

	tracked.Mu.Lock()
	defer tracked.Mu.Unlock()

	if tracked.Handle != nil {
		tracked.Handle.Close()
		tracked.Handle = nil
	}
}
