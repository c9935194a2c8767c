package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/lineweave/internal/datasource"
	"github.com/vanderheijden86/lineweave/pkg/model"
)

func openTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestCreateProject(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "  Essay  ", "draft text")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" {
		t.Error("no id minted")
	}
	if p.Name != "Essay" {
		t.Errorf("name = %q, want trimmed", p.Name)
	}

	if _, err := svc.CreateProject(ctx, "   ", ""); !errors.Is(err, model.ErrEmptyName) {
		t.Errorf("blank name error = %v", err)
	}
	if _, err := svc.CreateProject(ctx, "essay", ""); !errors.Is(err, ErrNameTaken) {
		t.Errorf("case-insensitive clash error = %v", err)
	}

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Errorf("got %d projects", len(projects))
	}
}

func TestRenameProjectKeepsID(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Essay", "")
	if err != nil {
		t.Fatal(err)
	}
	other, err := svc.CreateProject(ctx, "Notes", "")
	if err != nil {
		t.Fatal(err)
	}

	renamed, err := svc.RenameProject(ctx, p.ID, "Essay v2")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.ID != p.ID {
		t.Errorf("rename minted a new id: %s -> %s", p.ID, renamed.ID)
	}
	if renamed.Name != "Essay v2" {
		t.Errorf("name = %q", renamed.Name)
	}

	// Renaming onto another project's name is rejected.
	if _, err := svc.RenameProject(ctx, p.ID, "notes"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("clash error = %v", err)
	}
	// Renaming to the current name is a no-op, not a clash.
	if _, err := svc.RenameProject(ctx, other.ID, "Notes"); err != nil {
		t.Errorf("same-name rename: %v", err)
	}
	if _, err := svc.RenameProject(ctx, "ghost", "X"); !errors.Is(err, datasource.ErrNotFound) {
		t.Errorf("missing project error = %v", err)
	}
}

func TestCommitNumbering(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Essay", "v1")
	if err != nil {
		t.Fatal(err)
	}

	c1, err := svc.CommitProject(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c1.CommitNumber != 1 || c1.Content != "v1" {
		t.Errorf("first commit = %+v", c1)
	}

	if _, err := svc.UpdateContent(ctx, p.ID, "v2"); err != nil {
		t.Fatal(err)
	}
	c2, err := svc.CommitProject(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c2.CommitNumber != 2 || c2.Content != "v2" {
		t.Errorf("second commit = %+v", c2)
	}

	commits, err := svc.LoadProjectCommits(ctx, svc.CommitKey(p))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 || commits[0].CommitNumber != 2 {
		t.Errorf("history = %+v", commits)
	}

	if err := svc.DeleteCommit(ctx, c1.ID); err != nil {
		t.Fatal(err)
	}
	// The next number continues from the highest survivor.
	c3, err := svc.CommitProject(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c3.CommitNumber != 3 {
		t.Errorf("after delete, next number = %d", c3.CommitNumber)
	}
}

func TestCommitKeyFallsBackToID(t *testing.T) {
	svc := openTestService(t)

	draft := model.Project{ID: "p1"}
	if got := svc.CommitKey(draft); got != "p1" {
		t.Errorf("draft key = %q", got)
	}
	backed := model.Project{ID: "p1", Path: "essay.md"}
	if got := svc.CommitKey(backed); got != "essay.md" {
		t.Errorf("file-backed key = %q", got)
	}
}

func TestLoadProjectContent(t *testing.T) {
	dir := t.TempDir()
	svc, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "essay.md"), []byte("# Title"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := svc.LoadProjectContent(ctx, "essay.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Title" {
		t.Errorf("content = %q", got)
	}

	abs := filepath.Join(dir, "essay.md")
	if got, err := svc.LoadProjectContent(ctx, abs); err != nil || got != "# Title" {
		t.Errorf("absolute path: %q, %v", got, err)
	}

	if _, err := svc.LoadProjectContent(ctx, ""); err == nil {
		t.Error("empty path accepted")
	}
	if _, err := svc.LoadProjectContent(ctx, "missing.md"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestDeleteProjectRemovesHistory(t *testing.T) {
	svc := openTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Essay", "v1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CommitProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProject(ctx, p.ID); !errors.Is(err, datasource.ErrNotFound) {
		t.Errorf("project survived: %v", err)
	}
	commits, err := svc.LoadProjectCommits(ctx, svc.CommitKey(p))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 0 {
		t.Errorf("%d orphaned commits", len(commits))
	}
}

func TestCancelledContext(t *testing.T) {
	svc := openTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.ListProjects(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListProjects error = %v", err)
	}
	if _, err := svc.CreateProject(ctx, "X", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("CreateProject error = %v", err)
	}
}
