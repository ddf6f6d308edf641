package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitEvent(t *testing.T, w *Watcher, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				t.Fatalf("events closed before %s", want)
			}
			if ev.Path == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event on %s", want)
		}
	}
}

func TestWatcherReportsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "**/*.log")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, "app.log")

	// New subdirectories are picked up.
	sub := filepath.Join(dir, "svc")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "worker.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, "svc/worker.log")
}

func TestWatcherDirsWhileRunning(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, "**/*.log")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := len(w.Dirs()); got != 1 {
		t.Fatalf("expected 1 watched dir, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			if err := os.Mkdir(filepath.Join(dir, fmt.Sprintf("d%d", i)), 0o755); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	deadline := time.After(2 * time.Second)
	for {
		dirs := w.Dirs()
		if len(dirs) == 6 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected 6 watched dirs, got %v", dirs)
		case <-time.After(5 * time.Millisecond):
		}
	}
	<-done

	// Callers get a copy.
	dirs := w.Dirs()
	dirs[0] = "mutated"
	if w.Dirs()[0] == "mutated" {
		t.Error("Dirs must not expose the internal slice")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), "*.log"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatcherBadPattern(t *testing.T) {
	if _, err := New(t.TempDir(), "[unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
