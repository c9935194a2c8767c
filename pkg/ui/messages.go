package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/preview"
)

// Async results carry the node id and hover generation they were requested
// for. Update compares both against current state before applying a result,
// so a stale response can never overwrite a newer hover or selection.

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type commitsLoadedMsg struct {
	nodeID     string
	generation uint64
	commits    []model.Commit
	err        error
}

type previewLoadedMsg struct {
	nodeID      string
	generation  uint64
	preview     preview.Preview
	fingerprint preview.Fingerprint
	err         error
}

type projectCreatedMsg struct {
	project model.Project
	// merge context, set when the create came from a merge
	mergeSources []string
	mergedX      float64
	mergedY      float64
	err          error
}

type projectDeletedMsg struct {
	nodeID string
	err    error
}

type projectRenamedMsg struct {
	oldID   string
	project model.Project
	err     error
}

type contentSavedMsg struct {
	project model.Project
	err     error
}

type commitCreatedMsg struct {
	nodeID string
	commit model.Commit
	err    error
}

type commitDeletedMsg struct {
	commitID string
	err      error
}

type fileChangedMsg struct {
	path string
}

type exportDoneMsg struct {
	path string
	err  error
}

type clipboardMsg struct {
	err error
}

type statusExpiredMsg struct {
	seq int
}

type errMsg struct {
	err error
}

// loadProjectsCmd lists every project in the repository.
func (m *Model) loadProjectsCmd() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.svc.ListProjects(context.Background())
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

// loadCommitsCmd loads a project's commit history for the commits scope.
func (m *Model) loadCommitsCmd(p model.Project, generation uint64) tea.Cmd {
	key := m.svc.CommitKey(p)
	return func() tea.Msg {
		commits, err := m.svc.LoadProjectCommits(context.Background(), key)
		return commitsLoadedMsg{nodeID: p.ID, generation: generation, commits: commits, err: err}
	}
}

// loadPreviewCmd resolves hover preview content, consulting the cache under
// the project's current fingerprint before falling back to a fetch.
func (m *Model) loadPreviewCmd(p model.Project, generation uint64) tea.Cmd {
	cache := m.previews
	svc := m.svc
	key := svc.CommitKey(p)
	return func() tea.Msg {
		ctx := context.Background()
		commits, _ := svc.LoadProjectCommits(ctx, key)
		fp := preview.FingerprintFor(p, len(commits))
		if pv, ok := cache.Get(p.ID, fp); ok {
			return previewLoadedMsg{nodeID: p.ID, generation: generation, preview: pv, fingerprint: fp}
		}
		pv, err := cache.Fetch(ctx, p)
		return previewLoadedMsg{
			nodeID:      p.ID,
			generation:  generation,
			preview:     pv,
			fingerprint: fp,
			err:         err,
		}
	}
}

func statusExpireCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// watchChangesCmd blocks on the watcher channel and resubscribes after each
// delivery.
func watchChangesCmd(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return fileChangedMsg{path: path}
	}
}
