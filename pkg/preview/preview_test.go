package preview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

type fakeLoader struct {
	content     string
	contentErr  error
	commits     []model.Commit
	commitsErr  error
	contentHits atomic.Int64

	// release, when set, blocks LoadProjectContent until closed. Used to
	// hold concurrent fetches in flight.
	release chan struct{}
}

func (f *fakeLoader) LoadProjectContent(ctx context.Context, path string) (string, error) {
	f.contentHits.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.content, f.contentErr
}

func (f *fakeLoader) LoadProjectCommits(ctx context.Context, path string) ([]model.Commit, error) {
	return f.commits, f.commitsErr
}

func project(content, path string) model.Project {
	return model.Project{
		ID:        "proj-1",
		Name:      "Essay",
		Content:   content,
		Path:      path,
		UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchPrefersDraft(t *testing.T) {
	loader := &fakeLoader{content: "disk content"}
	c := NewCache(loader)

	got, err := c.Fetch(context.Background(), project("draft text", "essay.md"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != SourceDraft || got.Content != "draft text" {
		t.Errorf("got %+v", got)
	}
	if loader.contentHits.Load() != 0 {
		t.Error("draft tier should not hit the loader")
	}
}

func TestFetchFallsBackToLoaderContent(t *testing.T) {
	loader := &fakeLoader{content: "disk content"}
	c := NewCache(loader)

	got, err := c.Fetch(context.Background(), project("", "essay.md"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != SourceDraft || got.Content != "disk content" {
		t.Errorf("got %+v", got)
	}
}

func TestFetchFallsBackToLatestCommit(t *testing.T) {
	loader := &fakeLoader{
		contentErr: errors.New("unreadable"),
		commits: []model.Commit{
			{ID: "c2", CommitNumber: 2, Content: "second"},
			{ID: "c5", CommitNumber: 5, Content: "fifth"},
			{ID: "c3", CommitNumber: 3, Content: "third"},
		},
	}
	c := NewCache(loader)

	got, err := c.Fetch(context.Background(), project("", "essay.md"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != SourceCommit || got.Content != "fifth" {
		t.Errorf("got %+v, want highest commit number", got)
	}
}

func TestFetchEmptyState(t *testing.T) {
	tests := []struct {
		name   string
		loader *fakeLoader
		proj   model.Project
	}{
		{"no path", &fakeLoader{content: "ignored"}, project("", "")},
		{"all tiers fail", &fakeLoader{contentErr: errors.New("x"), commitsErr: errors.New("y")}, project("", "essay.md")},
		{"commits present but empty content", &fakeLoader{commits: []model.Commit{{ID: "c1", CommitNumber: 1}}}, project("", "essay.md")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCache(tt.loader).Fetch(context.Background(), tt.proj)
			if err != nil {
				t.Fatal(err)
			}
			if got.Source != SourceEmpty || got.Content != EmptyContent {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestFetchNilLoader(t *testing.T) {
	got, err := NewCache(nil).Fetch(context.Background(), project("", "essay.md"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != SourceEmpty {
		t.Errorf("got %+v", got)
	}
}

func TestGetRequiresMatchingFingerprint(t *testing.T) {
	c := NewCache(nil)
	p := project("draft", "")
	fp := FingerprintFor(p, 3)

	if _, ok := c.Get(p.ID, fp); ok {
		t.Fatal("empty cache hit")
	}

	c.Put(p.ID, fp, Preview{Content: "cached", Source: SourceDraft})
	got, ok := c.Get(p.ID, fp)
	if !ok || got.Content != "cached" {
		t.Fatalf("roundtrip failed: %+v %v", got, ok)
	}

	// A new commit bumps the count and must miss.
	if _, ok := c.Get(p.ID, FingerprintFor(p, 4)); ok {
		t.Error("stale fingerprint hit")
	}
	// So must a content edit.
	edited := p
	edited.UpdatedAt = p.UpdatedAt.Add(time.Minute)
	if _, ok := c.Get(p.ID, FingerprintFor(edited, 3)); ok {
		t.Error("stale updatedAt hit")
	}
}

func TestInvalidateDropsEntry(t *testing.T) {
	c := NewCache(nil)
	fp := Fingerprint{UpdatedAtUnixNano: 1, CommitCount: 0}
	c.Put("gone", fp, Preview{Content: "x", Source: SourceDraft})

	c.Invalidate("gone")
	if _, ok := c.Get("gone", fp); ok {
		t.Error("entry survived invalidation")
	}
}

func TestConcurrentFetchesDeduplicate(t *testing.T) {
	loader := &fakeLoader{content: "disk content", release: make(chan struct{})}
	c := NewCache(loader)
	p := project("", "essay.md")

	const workers = 8
	var wg sync.WaitGroup
	results := make([]Preview, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			got, err := c.Fetch(context.Background(), p)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = got
		}(i)
	}

	// Let the goroutines pile up on the in-flight call, then release it.
	time.Sleep(50 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	if hits := loader.contentHits.Load(); hits != 1 {
		t.Errorf("loader hit %d times, want 1", hits)
	}
	for i, r := range results {
		if r.Content != "disk content" {
			t.Errorf("worker %d got %+v", i, r)
		}
	}
}
