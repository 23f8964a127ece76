package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/papapumpkin/gantt/internal/task"
)

const taskColumns = `id, title, start_date, end_date, completed_at, status, priority,
    progress, estimated_hours, parent_id`

// ImportTasks replaces every task of the project with the contents of s,
// preserving set order.
func (s *Store) ImportTasks(ctx context.Context, projectID string, set *task.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := s.ensureProject(ctx, tx, projectID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("store: clear dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("store: clear tasks: %w", err)
	}

	w, err := prepareWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.close()

	for i, t := range set.Tasks() {
		if err := w.put(ctx, projectID, t, i); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit import: %w", err)
	}
	return nil
}

// SaveTasks upserts the given tasks and replaces their dependency lists.
// Tasks new to the project are appended after the existing ones. All writes
// happen in one transaction, in slice order.
func (s *Store) SaveTasks(ctx context.Context, projectID string, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := s.ensureProject(ctx, tx, projectID); err != nil {
		return err
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE project_id = ?`, projectID,
	).Scan(&next); err != nil {
		return fmt.Errorf("store: next position: %w", err)
	}

	w, err := prepareWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.close()

	for _, t := range tasks {
		pos := next
		err := tx.QueryRowContext(ctx,
			`SELECT position FROM tasks WHERE project_id = ? AND id = ?`, projectID, t.ID,
		).Scan(&pos)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			next++
		case err != nil:
			return fmt.Errorf("store: look up %s: %w", t.ID, err)
		}
		if err := w.put(ctx, projectID, t, pos); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}
	return nil
}

// LoadTasks reads the project's tasks into a fresh snapshot in stored order.
func (s *Store) LoadTasks(ctx context.Context, projectID string) (*task.Set, error) {
	if err := s.ensureProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY position, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	byID := make(map[string]*task.Task)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate tasks: %w", err)
	}
	rows.Close()

	deps, err := s.db.QueryContext(ctx,
		`SELECT task_id, depends_on FROM dependencies WHERE project_id = ? ORDER BY task_id, position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: query dependencies: %w", err)
	}
	defer deps.Close()
	for deps.Next() {
		var id, on string
		if err := deps.Scan(&id, &on); err != nil {
			return nil, fmt.Errorf("store: scan dependency: %w", err)
		}
		if t, ok := byID[id]; ok {
			t.Dependencies = append(t.Dependencies, on)
		}
	}
	if err := deps.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate dependencies: %w", err)
	}

	return task.NewSet(tasks...)
}

// AddDependency persists the edge dependent → prerequisite. Adding an edge
// that already exists is a no-op. Cycle checks are the caller's job.
func (s *Store) AddDependency(ctx context.Context, projectID, dependent, prerequisite string) error {
	if err := s.requireTasks(ctx, projectID, dependent, prerequisite); err != nil {
		return err
	}
	const q = `
INSERT INTO dependencies (project_id, task_id, depends_on, position)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM dependencies WHERE project_id = ? AND task_id = ?))
ON CONFLICT(project_id, task_id, depends_on) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, projectID, dependent, prerequisite, projectID, dependent); err != nil {
		return fmt.Errorf("store: add dependency %s -> %s: %w", dependent, prerequisite, err)
	}
	return nil
}

// RemoveDependency deletes the edge dependent → prerequisite if present.
func (s *Store) RemoveDependency(ctx context.Context, projectID, dependent, prerequisite string) error {
	if err := s.requireTasks(ctx, projectID, dependent); err != nil {
		return err
	}
	const q = `DELETE FROM dependencies WHERE project_id = ? AND task_id = ? AND depends_on = ?`
	if _, err := s.db.ExecContext(ctx, q, projectID, dependent, prerequisite); err != nil {
		return fmt.Errorf("store: remove dependency %s -> %s: %w", dependent, prerequisite, err)
	}
	return nil
}

func (s *Store) requireTasks(ctx context.Context, projectID string, ids ...string) error {
	if err := s.ensureProject(ctx, s.db, projectID); err != nil {
		return err
	}
	for _, id := range ids {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM tasks WHERE project_id = ? AND id = ?`, projectID, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("store: look up %s: %w", id, err)
		}
	}
	return nil
}

// taskWriter holds the prepared statements used to write a task row and its
// dependency list inside one transaction.
type taskWriter struct {
	upsert    *sql.Stmt
	clearDeps *sql.Stmt
	insertDep *sql.Stmt
}

func prepareWriter(ctx context.Context, tx *sql.Tx) (*taskWriter, error) {
	upsert, err := tx.PrepareContext(ctx, `
INSERT INTO tasks (project_id, id, position, title, start_date, end_date, completed_at,
    status, priority, progress, estimated_hours, parent_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(project_id, id) DO UPDATE SET
    title = excluded.title,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    completed_at = excluded.completed_at,
    status = excluded.status,
    priority = excluded.priority,
    progress = excluded.progress,
    estimated_hours = excluded.estimated_hours,
    parent_id = excluded.parent_id,
    updated_at = excluded.updated_at`)
	if err != nil {
		return nil, fmt.Errorf("store: prepare task upsert: %w", err)
	}
	clearDeps, err := tx.PrepareContext(ctx,
		`DELETE FROM dependencies WHERE project_id = ? AND task_id = ?`)
	if err != nil {
		upsert.Close()
		return nil, fmt.Errorf("store: prepare dependency delete: %w", err)
	}
	insertDep, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO dependencies (project_id, task_id, depends_on, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		upsert.Close()
		clearDeps.Close()
		return nil, fmt.Errorf("store: prepare dependency insert: %w", err)
	}
	return &taskWriter{upsert: upsert, clearDeps: clearDeps, insertDep: insertDep}, nil
}

func (w *taskWriter) put(ctx context.Context, projectID string, t *task.Task, pos int) error {
	if err := statusOK(t); err != nil {
		return err
	}
	var completed any
	if t.Completed != nil {
		completed = formatTime(*t.Completed)
	}
	if _, err := w.upsert.ExecContext(ctx,
		projectID, t.ID, pos, t.Title, formatTime(t.Start), formatTime(t.End), completed,
		string(t.Status), string(t.Priority), t.Progress, t.EstimatedHours, t.ParentID,
		formatTime(time.Now()),
	); err != nil {
		return fmt.Errorf("store: write task %s: %w", t.ID, err)
	}
	if _, err := w.clearDeps.ExecContext(ctx, projectID, t.ID); err != nil {
		return fmt.Errorf("store: clear dependencies of %s: %w", t.ID, err)
	}
	for i, dep := range t.Dependencies {
		if _, err := w.insertDep.ExecContext(ctx, projectID, t.ID, dep, i); err != nil {
			return fmt.Errorf("store: write dependency %s -> %s: %w", t.ID, dep, err)
		}
	}
	return nil
}

func (w *taskWriter) close() {
	w.upsert.Close()
	w.clearDeps.Close()
	w.insertDep.Close()
}

func scanTask(sc scanner) (*task.Task, error) {
	var (
		t                            task.Task
		start, end, status, priority string
		completed                    sql.NullString
	)
	if err := sc.Scan(&t.ID, &t.Title, &start, &end, &completed, &status, &priority,
		&t.Progress, &t.EstimatedHours, &t.ParentID); err != nil {
		return nil, fmt.Errorf("store: scan task: %w", err)
	}
	var err error
	if t.Start, err = parseTimestamp(start); err != nil {
		return nil, fmt.Errorf("store: task %s start: %w", t.ID, err)
	}
	if t.End, err = parseTimestamp(end); err != nil {
		return nil, fmt.Errorf("store: task %s end: %w", t.ID, err)
	}
	if completed.Valid {
		done, err := parseTimestamp(completed.String)
		if err != nil {
			return nil, fmt.Errorf("store: task %s completed: %w", t.ID, err)
		}
		t.Completed = &done
	}
	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	return &t, nil
}
