package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/gantt/internal/dag"
	"github.com/papapumpkin/gantt/internal/task"
)

// ErrFileExists indicates the output file already exists and Overwrite was not set.
var ErrFileExists = errors.New("output file already exists")

// WriteOptions controls how a project file is written to disk.
type WriteOptions struct {
	Overwrite bool // If true, replace an existing file.
}

// Write encodes f to path. Tasks are written in dependency order
// (prerequisites first) when the graph allows it, otherwise in file order.
// The file is written to a temporary sibling and renamed into place.
func Write(path string, f *File, opts WriteOptions) error {
	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		return fmt.Errorf("%w: %s; use --force to overwrite", ErrFileExists, path)
	}

	data, err := Marshal(f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	success = true
	return nil
}

// Marshal encodes f as TOML with a short header comment.
func Marshal(f *File) ([]byte, error) {
	out := *f
	out.Tasks = sortedSpecs(f.Tasks)

	var buf bytes.Buffer
	buf.WriteString("# Project plan. Dates are calendar days (YYYY-MM-DD).\n\n")
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedSpecs returns specs in topological order, or unchanged if the
// dependency graph cannot be ordered.
func sortedSpecs(specs []TaskSpec) []TaskSpec {
	tasks := make([]*task.Task, 0, len(specs))
	for _, ts := range specs {
		p, _ := task.ParsePriority(ts.Priority)
		tasks = append(tasks, &task.Task{ID: ts.ID, Priority: p, Dependencies: ts.DependsOn})
	}
	s, err := task.NewSet(tasks...)
	if err != nil {
		return specs
	}
	order, err := dag.FromSet(s).TopologicalSort()
	if err != nil {
		return specs
	}
	byID := make(map[string]TaskSpec, len(specs))
	for _, ts := range specs {
		byID[ts.ID] = ts
	}
	sorted := make([]TaskSpec, 0, len(specs))
	for _, id := range order {
		sorted = append(sorted, byID[id])
	}
	return sorted
}
