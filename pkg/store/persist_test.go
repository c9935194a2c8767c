package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/testutil"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls []model.GraphDoc
	paths []string
	fail  bool
}

func (f *fakeSaver) SaveGraphData(repoPath string, doc model.GraphDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.calls = append(f.calls, doc)
	f.paths = append(f.paths, repoPath)
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSaver) last() model.GraphDoc {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeSaver) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func waitForSaves(t *testing.T, f *fakeSaver, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d saves, got %d", n, f.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPersisterCoalescesBurst(t *testing.T) {
	saver := &fakeSaver{}
	p := NewPersister(saver, "/tmp/repo", 30*time.Millisecond, nil)
	defer p.Close()

	for i := 1; i <= 5; i++ {
		p.Schedule(testutil.Doc(testutil.Nodes(i), nil))
		time.Sleep(5 * time.Millisecond)
	}

	waitForSaves(t, saver, 1)
	time.Sleep(80 * time.Millisecond)
	if saver.count() != 1 {
		t.Fatalf("burst produced %d saves, want 1", saver.count())
	}
	if got := len(saver.last().Nodes); got != 5 {
		t.Errorf("saved doc has %d nodes, want the last scheduled 5", got)
	}
}

func TestPersisterFlushWritesImmediately(t *testing.T) {
	saver := &fakeSaver{}
	p := NewPersister(saver, "/tmp/repo", time.Hour, nil)
	defer p.Close()

	p.Schedule(testutil.Doc(testutil.Nodes(2), nil))
	p.Flush()

	if saver.count() != 1 {
		t.Fatalf("Flush wrote %d times", saver.count())
	}
	if saver.paths[0] != "/tmp/repo" {
		t.Errorf("repo path = %q", saver.paths[0])
	}

	// Nothing pending anymore: a second flush is a no-op.
	p.Flush()
	if saver.count() != 1 {
		t.Errorf("empty Flush wrote again, count = %d", saver.count())
	}
}

func TestPersisterRetriesFailedSave(t *testing.T) {
	saver := &fakeSaver{}
	saver.setFail(true)
	p := NewPersister(saver, "/tmp/repo", time.Hour, nil)
	defer p.Close()

	p.Schedule(testutil.Doc(testutil.Nodes(3), nil))
	p.Flush()
	if saver.count() != 0 {
		t.Fatalf("failing saver recorded a call")
	}

	// The document stays pending and the next flush delivers it.
	saver.setFail(false)
	p.Flush()
	if saver.count() != 1 {
		t.Fatalf("retry did not happen, count = %d", saver.count())
	}
	if got := len(saver.last().Nodes); got != 3 {
		t.Errorf("retried doc has %d nodes", got)
	}
}

func TestPersisterCloseFlushesAndStops(t *testing.T) {
	saver := &fakeSaver{}
	p := NewPersister(saver, "/tmp/repo", time.Hour, nil)

	p.Schedule(testutil.Doc(testutil.Nodes(1), nil))
	p.Close()
	if saver.count() != 1 {
		t.Fatalf("Close did not flush, count = %d", saver.count())
	}

	p.Schedule(testutil.Doc(testutil.Nodes(2), nil))
	p.Flush()
	if saver.count() != 1 {
		t.Errorf("Schedule after Close still wrote, count = %d", saver.count())
	}
}
