package tailer

import (
	"context"
	"io"
	"os"
	"tailf/internal/global"
	"tailf/internal/logctx"
	"tailf/internal/positions"
	"tailf/internal/queue/batchq"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func newTestContext(t *testing.T) (ctx context.Context, cancel context.CancelFunc) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	ctx, cancel = context.WithCancel(context.Background())
	ctx = logctx.New(ctx, global.NSTest, global.VerbosityNone, done)
	return
}

func appendTo(t *testing.T, fsys afero.Fs, path string, data string) {
	t.Helper()
	handle, err := fsys.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer handle.Close()
	if _, err = handle.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	if _, err = handle.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
}

func popBatch(t *testing.T, queue *batchq.Queue) (batch batchq.Batch) {
	t.Helper()
	waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	batch, ok := queue.Pop(waitCtx)
	if !ok {
		t.Fatalf("timed out waiting for batch")
	}
	return
}

func TestInitialDrainFromOffset(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/var/log/app.log", []byte("skip\nread1\nread2\n"), 0644)

	tracked := &positions.TrackedFile{Path: "/var/log/app.log", Topic: "topic", Offset: 5}

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	worker := New([]string{global.NSTest}, tracked, queue, 1024, 10)
	if err := worker.Open(fsys); err != nil {
		t.Fatal(err)
	}
	go worker.Run(ctx)

	batch := popBatch(t, queue)
	if len(batch.Lines) != 2 || batch.Lines[0] != "read1" || batch.Lines[1] != "read2" {
		t.Errorf("unexpected lines: %v", batch.Lines)
	}
	if batch.Offset != 17 {
		t.Errorf("expected batch offset 17, got %d", batch.Offset)
	}
	if batch.Topic != "topic" {
		t.Errorf("expected topic carried on batch, got '%s'", batch.Topic)
	}
}

func TestPartialLineAcrossReads(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/var/log/app.log", []byte("x\ny\nz"), 0644)

	tracked := &positions.TrackedFile{Path: "/var/log/app.log", Topic: "topic"}

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	worker := New([]string{global.NSTest}, tracked, queue, 2, 10)
	if err := worker.Open(fsys); err != nil {
		t.Fatal(err)
	}
	go worker.Run(ctx)

	first := popBatch(t, queue)
	if len(first.Lines) != 2 || first.Lines[0] != "x" || first.Lines[1] != "y" {
		t.Fatalf("unexpected first batch: %v", first.Lines)
	}
	// Offset covers only complete lines; the dangling "z" stays held
	if first.Offset != 4 {
		t.Errorf("expected offset 4 after first batch, got %d", first.Offset)
	}

	appendTo(t, fsys, "/var/log/app.log", "zz\n")
	worker.Wake()

	second := popBatch(t, queue)
	if len(second.Lines) != 1 || second.Lines[0] != "zzz" {
		t.Fatalf("expected joined line 'zzz', got %v", second.Lines)
	}
	if second.Offset != 8 {
		t.Errorf("expected offset 8 after joined line, got %d", second.Offset)
	}
}

func TestWhitespaceStripping(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/var/log/app.log", []byte("  padded  \r\n"), 0644)

	tracked := &positions.TrackedFile{Path: "/var/log/app.log", Topic: "topic"}

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	worker := New([]string{global.NSTest}, tracked, queue, 1024, 10)
	if err := worker.Open(fsys); err != nil {
		t.Fatal(err)
	}
	go worker.Run(ctx)

	batch := popBatch(t, queue)
	if len(batch.Lines) != 1 || batch.Lines[0] != "padded" {
		t.Errorf("expected stripped line 'padded', got %v", batch.Lines)
	}
	// Offset still counts the raw bytes including the stripped whitespace
	if batch.Offset != 12 {
		t.Errorf("expected offset 12, got %d", batch.Offset)
	}
}

func TestBatchSplitAtMaxLines(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/var/log/app.log", []byte("1\n2\n3\n4\n5\n"), 0644)

	tracked := &positions.TrackedFile{Path: "/var/log/app.log", Topic: "topic"}

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	worker := New([]string{global.NSTest}, tracked, queue, 2, 10)
	if err := worker.Open(fsys); err != nil {
		t.Fatal(err)
	}
	go worker.Run(ctx)

	var all []string
	for len(all) < 5 {
		batch := popBatch(t, queue)
		if len(batch.Lines) > 2 {
			t.Fatalf("batch exceeds max lines: %v", batch.Lines)
		}
		all = append(all, batch.Lines...)
	}
	for i, expect := range []string{"1", "2", "3", "4", "5"} {
		if all[i] != expect {
			t.Errorf("expected line '%s' at %d, got '%s'", expect, i, all[i])
		}
	}
}

func TestWakeOnClosedHandleDropsEvent(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/var/log/app.log", []byte("a\n"), 0644)

	tracked := &positions.TrackedFile{Path: "/var/log/app.log", Topic: "topic"}

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	worker := New([]string{global.NSTest}, tracked, queue, 1024, 10)
	if err := worker.Open(fsys); err != nil {
		t.Fatal(err)
	}
	go worker.Run(ctx)

	popBatch(t, queue)

	// Close the handle out from under the tailer, then wake it
	tracked.Mu.Lock()
	tracked.Handle.Close()
	tracked.Handle = nil
	tracked.Mu.Unlock()

	worker.Wake()
	time.Sleep(50 * time.Millisecond)

	if queue.Depth() != 0 {
		t.Errorf("expected no batch after wake on closed handle")
	}
}

func TestManagerLifecycle(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/var/log/app.log", []byte("a\n"), 0644)

	store := positions.NewStore(fsys, "/state/positions")
	tracked := store.Upsert("/var/log/app.log", "%Y", "topic", 0, 0)

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	manager := NewManager(ctx, fsys, store, queue, 1024, 10)
	if err := manager.AddInstance(tracked); err != nil {
		t.Fatal(err)
	}

	popBatch(t, queue)

	if !manager.Wake("/var/log/app.log") {
		t.Errorf("expected wake to find running tailer")
	}
	if manager.Wake("/var/log/unknown.log") {
		t.Errorf("expected wake to miss unknown path")
	}

	// Duplicate add is a no-op
	if err := manager.AddInstance(tracked); err != nil {
		t.Fatal(err)
	}
	if got := len(manager.Paths()); got != 1 {
		t.Errorf("expected 1 instance, got %d", got)
	}

	manager.RemoveInstance("/var/log/app.log")
	if got := len(manager.Paths()); got != 0 {
		t.Errorf("expected 0 instances after remove, got %d", got)
	}

	// Handle released on cancellation
	tracked.Mu.Lock()
	handleOpen := tracked.Handle != nil
	tracked.Mu.Unlock()
	if handleOpen {
		t.Errorf("expected handle closed after instance removal")
	}
}

func TestManagerAddMissingFile(t *testing.T) {
	ctx, cancel := newTestContext(t)
	defer cancel()

	fsys := afero.NewMemMapFs()
	store := positions.NewStore(fsys, "/state/positions")
	tracked := store.Upsert("/var/log/gone.log", "%Y", "topic", 0, 0)

	queue, err := batchq.New([]string{global.NSTest}, 8)
	if err != nil {
		t.Fatal(err)
	}

	manager := NewManager(ctx, fsys, store, queue, 1024, 10)
	if err := manager.AddInstance(tracked); err == nil {
		t.Errorf("expected error adding tailer for missing file")
	}
}
