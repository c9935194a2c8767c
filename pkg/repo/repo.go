// Package repo is the service layer between the UI and persistence. It owns
// project lifecycle (create, rename, delete), commit snapshots, and content
// resolution for both database-backed drafts and file-backed projects.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanderheijden86/lineweave/internal/datasource"
	"github.com/vanderheijden86/lineweave/pkg/model"
)

// ErrNameTaken is returned when a create or rename would duplicate an
// existing project name.
var ErrNameTaken = errors.New("repo: project name already in use")

// Service coordinates project records, commits, and on-disk content for one
// repository directory.
type Service struct {
	dir string
	db  *datasource.DB
}

// Open opens the repository rooted at dir.
func Open(dir string) (*Service, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve repo dir: %w", err)
	}
	db, err := datasource.Open(abs)
	if err != nil {
		return nil, err
	}
	return &Service{dir: abs, db: db}, nil
}

// Close releases the underlying database.
func (s *Service) Close() error { return s.db.Close() }

// Dir returns the repository root. It doubles as the graph persistence key.
func (s *Service) Dir() string { return s.dir }

// DB exposes the datasource for graph persistence wiring.
func (s *Service) DB() *datasource.DB { return s.db }

// ListProjects returns every project in the repository.
func (s *Service) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db.ListProjects()
}

// GetProject returns one project by id.
func (s *Service) GetProject(ctx context.Context, id string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	return s.db.GetProject(id)
}

// CreateProject stores a new project with a freshly minted id. Ids are
// opaque UUIDs that survive renames, so graph edges never need rewriting
// when a project changes name.
func (s *Service) CreateProject(ctx context.Context, name, content string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, model.ErrEmptyName
	}
	if err := s.checkNameFree(name, ""); err != nil {
		return model.Project{}, err
	}

	p := model.Project{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.db.InsertProject(p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// RenameProject changes a project's display name. The id is stable, so the
// returned project carries the same id it was called with.
func (s *Service) RenameProject(ctx context.Context, id, newName string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return model.Project{}, model.ErrEmptyName
	}
	p, err := s.db.GetProject(id)
	if err != nil {
		return model.Project{}, err
	}
	if p.Name == newName {
		return p, nil
	}
	if err := s.checkNameFree(newName, id); err != nil {
		return model.Project{}, err
	}

	p.Name = newName
	p.UpdatedAt = time.Now().UTC()
	if err := s.db.UpdateProject(p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// UpdateContent rewrites a project's draft content.
func (s *Service) UpdateContent(ctx context.Context, id, content string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	p, err := s.db.GetProject(id)
	if err != nil {
		return model.Project{}, err
	}
	p.Content = content
	p.UpdatedAt = time.Now().UTC()
	if err := s.db.UpdateProject(p); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// DeleteProject removes a project and its commits.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.DeleteProject(id)
}

// LoadProjectContent resolves a project's content by path. File-backed
// projects read from disk relative to the repository root; absolute paths
// are honored as-is.
func (s *Service) LoadProjectContent(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("load content: empty path")
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.dir, path)
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("load content %s: %w", path, err)
	}
	return string(raw), nil
}

// LoadProjectCommits returns a project's commit history, newest first.
func (s *Service) LoadProjectCommits(ctx context.Context, path string) ([]model.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db.LoadProjectCommits(path)
}

// CommitProject snapshots the project's current content as its next commit.
// Commit numbers are monotonic per project and already-stored numbers are
// never overwritten.
func (s *Service) CommitProject(ctx context.Context, id string) (model.Commit, error) {
	if err := ctx.Err(); err != nil {
		return model.Commit{}, err
	}
	p, err := s.db.GetProject(id)
	if err != nil {
		return model.Commit{}, err
	}
	key := s.commitKey(p)

	existing, err := s.db.LoadProjectCommits(key)
	if err != nil {
		return model.Commit{}, err
	}
	next := 1
	if len(existing) > 0 {
		next = existing[0].CommitNumber + 1
	}

	c := model.Commit{
		ID:           uuid.NewString(),
		CommitNumber: next,
		Timestamp:    time.Now().UTC(),
		Content:      p.Content,
	}
	if err := s.db.SaveProjectCommits(key, []model.Commit{c}); err != nil {
		return model.Commit{}, err
	}
	return c, nil
}

// DeleteCommit removes one commit by id.
func (s *Service) DeleteCommit(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.DeleteCommit(id)
}

// commitKey returns the path commits are stored under. File-backed projects
// use their file path; draft-only projects fall back to their id.
func (s *Service) commitKey(p model.Project) string {
	if p.Path != "" {
		return p.Path
	}
	return p.ID
}

// CommitKey exposes the commit storage key for a project.
func (s *Service) CommitKey(p model.Project) string { return s.commitKey(p) }

func (s *Service) checkNameFree(name, exceptID string) error {
	projects, err := s.db.ListProjects()
	if err != nil {
		return err
	}
	for _, p := range projects {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return fmt.Errorf("%w: %q", ErrNameTaken, name)
		}
	}
	return nil
}
