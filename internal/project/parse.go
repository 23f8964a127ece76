package project

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/gantt/internal/task"
)

// Load reads and parses the project file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoFile, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes project TOML. Tasks without an id get a generated UUID so
// that they can be stored; other tasks cannot reference them.
func Parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID == "" {
			f.Tasks[i].ID = uuid.NewString()
		}
	}
	return &f, nil
}

// Tasks validates the file and converts it into a task snapshot in file
// order. On validation failure the returned error wraps ErrInvalid and every
// *ValidationError found.
func (f *File) Tasks() (*task.Set, error) {
	if verrs := Validate(f); len(verrs) > 0 {
		errs := []error{ErrInvalid}
		for i := range verrs {
			errs = append(errs, &verrs[i])
		}
		return nil, errors.Join(errs...)
	}
	tasks, err := f.toTasks()
	if err != nil {
		return nil, err
	}
	return task.NewSet(tasks...)
}

// toTasks converts specs without cross-task validation.
func (f *File) toTasks() ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(f.Tasks))
	for _, ts := range f.Tasks {
		t, err := ts.toTask()
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", ts.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (ts TaskSpec) toTask() (*task.Task, error) {
	status, err := task.ParseStatus(ts.Status)
	if err != nil {
		return nil, err
	}
	if ts.Status == "" && ts.Completed != nil {
		status = task.StatusCompleted
	}
	priority, err := task.ParsePriority(ts.Priority)
	if err != nil {
		return nil, err
	}
	title := ts.Title
	if title == "" {
		title = ts.ID
	}
	t := &task.Task{
		ID:             ts.ID,
		Title:          title,
		Start:          Date(ts.Start),
		End:            Date(ts.End),
		Status:         status,
		Priority:       priority,
		Progress:       ts.Progress,
		EstimatedHours: ts.EstimatedHours,
		ParentID:       ts.Parent,
		Dependencies:   append([]string(nil), ts.DependsOn...),
	}
	if ts.Completed != nil {
		done := Date(*ts.Completed)
		t.Completed = &done
	}
	return t, nil
}

// FromSet builds a File from a task snapshot, preserving set order.
func FromSet(name string, s *task.Set) *File {
	f := &File{Project: Info{Name: name}}
	for _, t := range s.Tasks() {
		ts := TaskSpec{
			ID:             t.ID,
			Title:          t.Title,
			Start:          LocalDate(t.Start),
			End:            LocalDate(t.End),
			Status:         string(t.Status),
			Priority:       string(t.Priority),
			Progress:       t.Progress,
			EstimatedHours: t.EstimatedHours,
			Parent:         t.ParentID,
			DependsOn:      append([]string(nil), t.Dependencies...),
		}
		if t.Completed != nil {
			d := LocalDate(*t.Completed)
			ts.Completed = &d
		}
		f.Tasks = append(f.Tasks, ts)
	}
	return f
}
