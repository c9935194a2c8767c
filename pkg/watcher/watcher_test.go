package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitForChange(t *testing.T, w *Watcher, timeout time.Duration) string {
	t.Helper()
	select {
	case path := <-w.Changed():
		return path
	case <-time.After(timeout):
		t.Fatal("no change notification")
		return ""
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "essay.md")
	writeFile(t, target, "v1")

	w, err := New(dir, WithDebounceDuration(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Give the backend a beat to arm before mutating.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, target, "v2")

	got := waitForChange(t, w, 3*time.Second)
	if got != target {
		t.Errorf("changed path = %q, want %q", got, target)
	}
}

func TestWatcherPollingModeDetectsNewFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithDebounceDuration(10*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("forced poll mode not active")
	}

	// First scan establishes the baseline; the file must land after it.
	time.Sleep(60 * time.Millisecond)
	target := filepath.Join(dir, "new.md")
	writeFile(t, target, "hello")

	got := waitForChange(t, w, 3*time.Second)
	if got != target {
		t.Errorf("changed path = %q, want %q", got, target)
	}
}

func TestWatcherIgnoresInternalState(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".lineweave"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(dir, WithDebounceDuration(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(dir, ".lineweave", "lineweave.db"), "graph save")
	writeFile(t, filepath.Join(dir, ".hidden"), "dotfile")

	select {
	case path := <-w.Changed():
		t.Errorf("internal write leaked a notification: %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStartTwice(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v", err)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	w.Stop()
	w.Stop()
	if w.IsStarted() {
		t.Error("still started after Stop")
	}
}

func TestIgnored(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/repo/essay.md", false},
		{"/repo/.lineweave", true},
		{"/repo/.lineweave/lineweave.db", true},
		{"/repo/.git", true},
		{"/repo/notes/draft.md", false},
	}
	for _, tt := range tests {
		if got := ignored(tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v", tt.path, got)
		}
	}
}
