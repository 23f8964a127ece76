// Package store persists projects and their task sets in a local SQLite
// database. It is the persistence collaborator of the scheduling engine:
// it loads a full snapshot before an engine call and writes back the tasks
// the engine changed.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/gantt/internal/task"
)

var (
	// ErrProjectNotFound is returned when a project ID or name is unknown.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectExists is returned when creating a project whose name is taken.
	ErrProjectExists = errors.New("project already exists")
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    id              TEXT NOT NULL,
    position        INTEGER NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    start_date      TEXT NOT NULL,
    end_date        TEXT NOT NULL,
    completed_at    TEXT,
    status          TEXT NOT NULL,
    priority        TEXT NOT NULL,
    progress        INTEGER NOT NULL DEFAULT 0,
    estimated_hours REAL NOT NULL DEFAULT 0,
    parent_id       TEXT NOT NULL DEFAULT '',
    updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (project_id, id)
);

CREATE TABLE IF NOT EXISTS dependencies (
    project_id TEXT NOT NULL,
    task_id    TEXT NOT NULL,
    depends_on TEXT NOT NULL,
    position   INTEGER NOT NULL,
    PRIMARY KEY (project_id, task_id, depends_on),
    FOREIGN KEY (project_id, task_id) REFERENCES tasks(project_id, id) ON DELETE CASCADE
);
`

// Project is a named collection of tasks.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Store is a SQLite-backed project store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode,
// busy timeout and foreign keys, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite supports one writer; a single connection also keeps the
	// per-connection PRAGMAs below in effect for every statement.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateProject inserts a new project with a generated ID.
func (s *Store) CreateProject(ctx context.Context, name string) (Project, error) {
	if _, err := s.ProjectByName(ctx, name); err == nil {
		return Project{}, fmt.Errorf("%w: %q", ErrProjectExists, name)
	} else if !errors.Is(err, ErrProjectNotFound) {
		return Project{}, err
	}

	p := Project{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	const q = `INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.Name, p.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return Project{}, fmt.Errorf("store: create project %q: %w", name, err)
	}
	return p, nil
}

// Projects returns every project ordered by name.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: query projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate projects: %w", err)
	}
	return out, nil
}

// Project resolves ref as a project ID first, then as a name.
func (s *Store) Project(ctx context.Context, ref string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE id = ?`, ref)
	p, err := scanProject(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProjectNotFound) {
		return Project{}, err
	}
	return s.ProjectByName(ctx, ref)
}

// ProjectByName returns the project with the given name.
func (s *Store) ProjectByName(ctx context.Context, name string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE name = ?`, name)
	return scanProject(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (Project, error) {
	var p Project
	var ts string
	err := sc.Scan(&p.ID, &p.Name, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrProjectNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("store: scan project: %w", err)
	}
	created, err := parseTimestamp(ts)
	if err != nil {
		return Project{}, fmt.Errorf("store: parse project timestamp: %w", err)
	}
	p.CreatedAt = created
	return p, nil
}

// timestampFormats lists the layouts SQLite and this package write.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseTimestamp attempts to parse a stored timestamp using known formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ensureProject returns ErrProjectNotFound if projectID does not exist.
func (s *Store) ensureProject(ctx context.Context, q querier, projectID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return fmt.Errorf("store: look up project %s: %w", projectID, err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// statusOK guards values written to the status column.
func statusOK(t *task.Task) error {
	if !t.Status.Valid() || !t.Priority.Valid() {
		return fmt.Errorf("%w: %s has status %q priority %q", task.ErrInvalidTask, t.ID, t.Status, t.Priority)
	}
	return nil
}
