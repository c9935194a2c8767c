// Package datasource provides the SQLite-backed persistence layer: the graph
// document per repository, the project records, and the append-only commit
// store. One database file lives under each repository's .lineweave
// directory.
package datasource

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("datasource: not found")

const dbFileName = "lineweave.db"

const schema = `
CREATE TABLE IF NOT EXISTS graphs (
	repo_path TEXT PRIMARY KEY,
	doc       TEXT NOT NULL,
	saved_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS commits (
	id            TEXT PRIMARY KEY,
	project_path  TEXT NOT NULL,
	commit_number INTEGER NOT NULL,
	timestamp     TIMESTAMP NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	UNIQUE(project_path, commit_number)
);
CREATE INDEX IF NOT EXISTS idx_commits_project ON commits(project_path);
`

// DB wraps the repository database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database for a repository directory.
func Open(repoDir string) (*DB, error) {
	stateDir := filepath.Join(repoDir, ".lineweave")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFileName)
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// --- graph documents ---------------------------------------------------

// LoadGraphData returns the persisted graph document for a repository path.
// A missing document is not an error: new repositories start empty.
func (d *DB) LoadGraphData(repoPath string) (model.GraphDoc, error) {
	var raw string
	err := d.db.QueryRow(`SELECT doc FROM graphs WHERE repo_path = ?`, repoPath).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GraphDoc{}, nil
	}
	if err != nil {
		return model.GraphDoc{}, fmt.Errorf("load graph %s: %w", repoPath, err)
	}

	var doc model.GraphDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.GraphDoc{}, fmt.Errorf("decode graph %s: %w", repoPath, err)
	}
	return doc, nil
}

// SaveGraphData upserts the graph document for a repository path.
func (d *DB) SaveGraphData(repoPath string, doc model.GraphDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode graph %s: %w", repoPath, err)
	}
	_, err = d.db.Exec(`
		INSERT INTO graphs (repo_path, doc, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(repo_path) DO UPDATE SET doc = excluded.doc, saved_at = excluded.saved_at`,
		repoPath, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save graph %s: %w", repoPath, err)
	}
	return nil
}

// --- projects ------------------------------------------------------------

// ListProjects returns all project records, most recently updated first.
func (d *DB) ListProjects() ([]model.Project, error) {
	rows, err := d.db.Query(`SELECT id, name, content, path, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Content, &p.Path, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// GetProject returns one project by id.
func (d *DB) GetProject(id string) (model.Project, error) {
	var p model.Project
	err := d.db.QueryRow(
		`SELECT id, name, content, path, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Content, &p.Path, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// InsertProject stores a new project record.
func (d *DB) InsertProject(p model.Project) error {
	_, err := d.db.Exec(
		`INSERT INTO projects (id, name, content, path, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Content, p.Path, p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert project %s: %w", p.ID, err)
	}
	return nil
}

// UpdateProject rewrites a project's mutable fields.
func (d *DB) UpdateProject(p model.Project) error {
	res, err := d.db.Exec(
		`UPDATE projects SET name = ?, content = ?, path = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Content, p.Path, p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project record and its commits.
func (d *DB) DeleteProject(id string) error {
	p, err := d.GetProject(id)
	if err != nil {
		return err
	}
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	defer tx.Rollback()

	// Commits live under the file path for file-backed projects and under
	// the id for draft-only ones; clear both keys.
	key := p.Path
	if key == "" {
		key = p.ID
	}
	if _, err := tx.Exec(`DELETE FROM commits WHERE project_path = ?`, key); err != nil {
		return fmt.Errorf("delete commits of %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return tx.Commit()
}

// --- commits ---------------------------------------------------------

// LoadProjectCommits returns a project's commits ordered by commit number,
// newest first.
func (d *DB) LoadProjectCommits(projectPath string) ([]model.Commit, error) {
	rows, err := d.db.Query(`
		SELECT id, commit_number, timestamp, content
		FROM commits WHERE project_path = ? ORDER BY commit_number DESC`, projectPath)
	if err != nil {
		return nil, fmt.Errorf("load commits %s: %w", projectPath, err)
	}
	defer rows.Close()

	var commits []model.Commit
	for rows.Next() {
		var c model.Commit
		if err := rows.Scan(&c.ID, &c.CommitNumber, &c.Timestamp, &c.Content); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

// SaveProjectCommits appends commits for a project. Commits are immutable:
// existing commit numbers are left untouched and re-saves of the same number
// are ignored.
func (d *DB) SaveProjectCommits(projectPath string, commits []model.Commit) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("save commits %s: %w", projectPath, err)
	}
	defer tx.Rollback()

	for _, c := range commits {
		if err := c.Validate(); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO commits (id, project_path, commit_number, timestamp, content)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(project_path, commit_number) DO NOTHING`,
			c.ID, projectPath, c.CommitNumber, c.Timestamp.UTC(), c.Content)
		if err != nil {
			return fmt.Errorf("insert commit %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteCommit removes a single commit by id. Commits are individually
// deletable even though they are otherwise immutable.
func (d *DB) DeleteCommit(id string) error {
	res, err := d.db.Exec(`DELETE FROM commits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete commit %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("commit %s: %w", id, ErrNotFound)
	}
	return nil
}
