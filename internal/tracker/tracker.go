// Package tracker is the service layer between the CLI and the scheduling
// engine. Each operation loads a fresh snapshot of one project from the
// store, runs the engine over it, persists what changed and journals it.
// Operations on the same project are serialised; different projects proceed
// independently.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/journal"
	"github.com/papapumpkin/gantt/internal/log"
	"github.com/papapumpkin/gantt/internal/schedule"
	"github.com/papapumpkin/gantt/internal/task"
)

var (
	// ErrDerivedProgress is returned when setting progress on a parent task,
	// whose progress is always computed from its children.
	ErrDerivedProgress = errors.New("progress of a parent task is derived from its children")
	// ErrInvalidProgress is returned for a progress value outside 0..100.
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")
	// ErrCancelled is returned when completing a cancelled task.
	ErrCancelled = errors.New("task is cancelled")
)

// Store is the persistence the tracker needs. *store.Store satisfies it.
type Store interface {
	LoadTasks(ctx context.Context, projectID string) (*task.Set, error)
	SaveTasks(ctx context.Context, projectID string, tasks []*task.Task) error
	AddDependency(ctx context.Context, projectID, dependent, prerequisite string) error
	RemoveDependency(ctx context.Context, projectID, dependent, prerequisite string) error
}

// Tracker coordinates the store, the engine and the journal.
type Tracker struct {
	store   Store
	journal *journal.Emitter
	opts    schedule.Options
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithJournal records every change to j. A nil emitter disables journaling.
func WithJournal(j *journal.Emitter) Option {
	return func(t *Tracker) { t.journal = j }
}

// WithScheduleOptions overrides the reschedule tolerance and gap.
func WithScheduleOptions(opts schedule.Options) Option {
	return func(t *Tracker) { t.opts = opts }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker backed by st.
func New(st Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: st,
		opts:  schedule.DefaultOptions(),
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// lock acquires the per-project mutex and returns its release func.
func (t *Tracker) lock(projectID string) func() {
	t.mu.Lock()
	m, ok := t.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		t.locks[projectID] = m
	}
	t.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (t *Tracker) emit(evt journal.Event) {
	if err := t.journal.Emit(evt); err != nil {
		log.Project(evt.ProjectID).WithError(err).Warn("journal write failed")
	}
}

// Snapshot returns the project's current tasks.
func (t *Tracker) Snapshot(ctx context.Context, projectID string) (*task.Set, error) {
	defer t.lock(projectID)()
	return t.store.LoadTasks(ctx, projectID)
}

// Link records that dependent waits on prerequisite. The edge is checked
// against the current graph before anything is written; a self reference or
// an edge that would close a cycle is rejected with a *dag.GraphError.
func (t *Tracker) Link(ctx context.Context, projectID, dependent, prerequisite string) error {
	defer t.lock(projectID)()

	set, err := t.store.LoadTasks(ctx, projectID)
	if err != nil {
		return err
	}
	if err := dag.FromSet(set).AddEdge(dependent, prerequisite); err != nil {
		return err
	}
	dt, _ := set.Get(dependent)
	if dt.DependsOn(prerequisite) {
		return nil
	}
	if err := set.Link(dependent, prerequisite); err != nil {
		return err
	}
	if err := t.store.AddDependency(ctx, projectID, dependent, prerequisite); err != nil {
		return fmt.Errorf("tracker: link %s -> %s: %w", dependent, prerequisite, err)
	}

	log.Project(projectID).WithFields(logrus.Fields{
		"task":         dependent,
		"prerequisite": prerequisite,
	}).Info("dependency added")
	t.emit(journal.Event{
		Kind:      journal.KindLink,
		ProjectID: projectID,
		TaskID:    dependent,
		Data:      journal.EdgeData{Prerequisite: prerequisite},
	})
	return nil
}

// Unlink removes the edge dependent → prerequisite. Removing an edge that
// does not exist is a no-op.
func (t *Tracker) Unlink(ctx context.Context, projectID, dependent, prerequisite string) error {
	defer t.lock(projectID)()

	set, err := t.store.LoadTasks(ctx, projectID)
	if err != nil {
		return err
	}
	removed, err := set.Unlink(dependent, prerequisite)
	if err != nil || !removed {
		return err
	}
	if err := t.store.RemoveDependency(ctx, projectID, dependent, prerequisite); err != nil {
		return fmt.Errorf("tracker: unlink %s -> %s: %w", dependent, prerequisite, err)
	}

	log.Project(projectID).WithFields(logrus.Fields{
		"task":         dependent,
		"prerequisite": prerequisite,
	}).Info("dependency removed")
	t.emit(journal.Event{
		Kind:      journal.KindUnlink,
		ProjectID: projectID,
		TaskID:    dependent,
		Data:      journal.EdgeData{Prerequisite: prerequisite},
	})
	return nil
}

// Completion is the outcome of completing a task.
type Completion struct {
	Task   *task.Task
	Shifts []schedule.Shift
}

// Complete marks id completed at the given time and pushes its open
// dependents forward if it finished late. The completed task is persisted
// first, then every shifted task in cascade order, in one transaction.
func (t *Tracker) Complete(ctx context.Context, projectID, id string, at time.Time) (*Completion, error) {
	defer t.lock(projectID)()

	set, err := t.store.LoadTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	done, err := set.Get(id)
	if err != nil {
		return nil, err
	}
	if done.Status == task.StatusCancelled {
		return nil, fmt.Errorf("%w: %s", ErrCancelled, id)
	}
	done.MarkCompleted(at)

	shifts, err := schedule.NewRescheduler(t.opts).Plan(id, set)
	if err != nil {
		return nil, err
	}
	changed := append([]*task.Task{done}, schedule.Tasks(shifts)...)
	if err := t.store.SaveTasks(ctx, projectID, changed); err != nil {
		return nil, fmt.Errorf("tracker: complete %s: %w", id, err)
	}

	entry := log.Project(projectID).WithField("task", id)
	entry.WithFields(logrus.Fields{
		"variance_days": done.CompletionVarianceDays(),
		"shifted":       len(shifts),
	}).Info("task completed")
	t.emit(journal.Event{
		Kind:      journal.KindComplete,
		ProjectID: projectID,
		TaskID:    id,
		Data: journal.CompleteData{
			CompletedAt:  at,
			VarianceDays: done.CompletionVarianceDays(),
			ShiftedTasks: len(shifts),
		},
	})
	for _, sh := range shifts {
		log.Project(projectID).WithFields(logrus.Fields{
			"task":  sh.Task.ID,
			"cause": sh.Cause,
			"delta": sh.Delta().String(),
		}).Debug("task shifted")
		t.emit(journal.Event{
			Kind:      journal.KindShift,
			ProjectID: projectID,
			TaskID:    sh.Task.ID,
			Data: journal.ShiftData{
				Cause:     sh.Cause,
				FromStart: sh.FromStart,
				ToStart:   sh.Task.Start,
				ToEnd:     sh.Task.End,
			},
		})
	}
	return &Completion{Task: done, Shifts: shifts}, nil
}

// SetProgress stores pct as the progress of leaf task id. Parents are
// rejected with ErrDerivedProgress.
func (t *Tracker) SetProgress(ctx context.Context, projectID, id string, pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidProgress, pct)
	}
	defer t.lock(projectID)()

	set, err := t.store.LoadTasks(ctx, projectID)
	if err != nil {
		return err
	}
	tk, err := set.Get(id)
	if err != nil {
		return err
	}
	if !tk.IsLeaf() {
		return fmt.Errorf("%w: %s", ErrDerivedProgress, id)
	}
	from := tk.Progress
	if from == pct {
		return nil
	}
	tk.Progress = pct
	if pct > 0 && tk.Status == task.StatusNotStarted {
		tk.Status = task.StatusInProgress
	}
	if err := t.store.SaveTasks(ctx, projectID, []*task.Task{tk}); err != nil {
		return fmt.Errorf("tracker: set progress %s: %w", id, err)
	}

	log.Project(projectID).WithFields(logrus.Fields{"task": id, "from": from, "to": pct}).Info("progress updated")
	t.emit(journal.Event{
		Kind:      journal.KindProgress,
		ProjectID: projectID,
		TaskID:    id,
		Data:      journal.ProgressData{From: from, To: pct},
	})
	return nil
}

// Progress returns the snapshot and the effective progress of every task.
func (t *Tracker) Progress(ctx context.Context, projectID string) (*task.Set, map[string]int, error) {
	set, err := t.Snapshot(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return set, schedule.ProgressAll(set), nil
}

// CriticalPath returns the longest dependency chain of the project.
func (t *Tracker) CriticalPath(ctx context.Context, projectID string) ([]*task.Task, error) {
	set, err := t.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return schedule.CriticalPath(set), nil
}

// Slack runs the critical path method over the project.
func (t *Tracker) Slack(ctx context.Context, projectID string) (*task.Set, *schedule.Analysis, error) {
	set, err := t.Snapshot(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	a, err := schedule.Analyze(set)
	if err != nil {
		return set, nil, err
	}
	return set, a, nil
}

// Streams partitions the project into groups of tasks that share no
// dependency edges. A late finish in one stream never moves another.
func (t *Tracker) Streams(ctx context.Context, projectID string) ([]dag.Stream, error) {
	set, err := t.Snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return dag.FromSet(set).Streams()
}
