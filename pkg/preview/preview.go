// Package preview fetches and caches hover preview content for canvas nodes.
//
// Fetching is tiered: in-memory draft content, then the direct content
// loader, then the most recent commit, then a literal empty-state string.
// Results are cached per node behind a fingerprint (updatedAt + commit
// count), so edits and new commits invalidate naturally.
//
// The cache itself never decides staleness across hover changes. Fetch runs
// off the program loop; the interaction controller compares the response's
// node id and generation against the node currently hovered and only then
// calls Put. A superseded response is dropped without ever touching the
// cache or the screen.
package preview

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// EmptyContent is rendered when a project has no draft, no content on disk,
// and no commits.
const EmptyContent = "(no content yet)"

// Source tells where preview content came from.
type Source string

const (
	SourceDraft  Source = "draft"
	SourceCommit Source = "commit"
	SourceEmpty  Source = "empty"
)

// Preview is one resolved hover preview.
type Preview struct {
	Content string
	Source  Source
}

// Fingerprint keys cache validity: a changed updatedAt or commit count makes
// the cached entry stale.
type Fingerprint struct {
	UpdatedAtUnixNano int64
	CommitCount       int
}

// FingerprintFor derives a project's fingerprint.
func FingerprintFor(p model.Project, commitCount int) Fingerprint {
	return Fingerprint{
		UpdatedAtUnixNano: p.UpdatedAt.UnixNano(),
		CommitCount:       commitCount,
	}
}

// ContentLoader is the external collaborator that resolves project content
// from its backing store. The backend (native IPC, directory handle, plain
// files) is opaque here.
type ContentLoader interface {
	LoadProjectContent(ctx context.Context, path string) (string, error)
	LoadProjectCommits(ctx context.Context, path string) ([]model.Commit, error)
}

type entry struct {
	fp      Fingerprint
	preview Preview
}

// Cache is a race-safe preview cache. Concurrent fetches for the same node
// are deduplicated via singleflight.
type Cache struct {
	loader ContentLoader

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// NewCache creates a cache backed by the given loader.
func NewCache(loader ContentLoader) *Cache {
	return &Cache{
		loader:  loader,
		entries: make(map[string]entry),
	}
}

// Get returns the cached preview for nodeID when the fingerprint matches.
func (c *Cache) Get(nodeID string, fp Fingerprint) (Preview, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[nodeID]
	if !ok || e.fp != fp {
		return Preview{}, false
	}
	return e.preview, true
}

// Put stores a resolved preview. Callers must have verified the response is
// still current before writing.
func (c *Cache) Put(nodeID string, fp Fingerprint, p Preview) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[nodeID] = entry{fp: fp, preview: p}
}

// Invalidate drops the entry for one node (entity deleted or renamed).
func (c *Cache) Invalidate(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, nodeID)
}

// Fetch resolves preview content for a project through the fallback chain:
// draft -> content loader -> latest commit -> empty state. Loader errors are
// stepped over, not surfaced: an unreadable tier just falls through to the
// next one.
func (c *Cache) Fetch(ctx context.Context, p model.Project) (Preview, error) {
	v, err, _ := c.group.Do(p.ID, func() (any, error) {
		return c.fetchUncached(ctx, p), nil
	})
	if err != nil {
		return Preview{}, fmt.Errorf("preview %s: %w", p.ID, err)
	}
	return v.(Preview), nil
}

func (c *Cache) fetchUncached(ctx context.Context, p model.Project) Preview {
	if p.Content != "" {
		return Preview{Content: p.Content, Source: SourceDraft}
	}

	if c.loader != nil && p.Path != "" {
		if content, err := c.loader.LoadProjectContent(ctx, p.Path); err == nil && content != "" {
			return Preview{Content: content, Source: SourceDraft}
		}

		if commits, err := c.loader.LoadProjectCommits(ctx, p.Path); err == nil && len(commits) > 0 {
			latest := commits[0]
			for _, commit := range commits[1:] {
				if commit.CommitNumber > latest.CommitNumber {
					latest = commit
				}
			}
			if latest.Content != "" {
				return Preview{Content: latest.Content, Source: SourceCommit}
			}
		}
	}

	return Preview{Content: EmptyContent, Source: SourceEmpty}
}
