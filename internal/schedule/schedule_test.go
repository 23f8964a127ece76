package schedule

import (
	"testing"
	"time"

	"github.com/papapumpkin/gantt/internal/task"
)

var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return epoch.AddDate(0, 0, n)
}

// spec describes a task for buildSet. Dates are day offsets from epoch.
type spec struct {
	id        string
	start     int
	end       int
	deps      []string
	parent    string
	progress  int
	hours     float64
	status    task.Status
	completed *int
}

func buildSet(t *testing.T, specs ...spec) *task.Set {
	t.Helper()
	tasks := make([]*task.Task, 0, len(specs))
	for _, s := range specs {
		st := s.status
		if st == "" {
			st = task.StatusNotStarted
		}
		tk := &task.Task{
			ID:             s.id,
			Title:          s.id,
			Start:          day(s.start),
			End:            day(s.end),
			Status:         st,
			Priority:       task.PriorityNormal,
			Progress:       s.progress,
			EstimatedHours: s.hours,
			ParentID:       s.parent,
			Dependencies:   s.deps,
		}
		if s.completed != nil {
			at := day(*s.completed)
			tk.Completed = &at
		}
		tasks = append(tasks, tk)
	}
	set, err := task.NewSet(tasks...)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return set
}

func get(t *testing.T, s *task.Set, id string) *task.Task {
	t.Helper()
	tk, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return tk
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func intp(n int) *int { return &n }
