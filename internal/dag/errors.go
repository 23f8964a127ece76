package dag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papapumpkin/gantt/internal/task"
)

var (
	// ErrSelfDependency is returned when a task is proposed to depend on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")
	// ErrCyclicDependency is returned when an edge would close a dependency cycle.
	ErrCyclicDependency = errors.New("dependency would create a cycle")
	// ErrTaskNotFound is returned when an edge references an unknown task.
	ErrTaskNotFound = task.ErrTaskNotFound
)

// GraphError describes a rejected dependency edge. Kind is one of the
// sentinel errors above so callers can match with errors.Is.
type GraphError struct {
	Kind         error
	Dependent    string
	Prerequisite string
	// Path is the existing chain prerequisite → ... → dependent that the
	// new edge would close. Empty for non-cycle errors.
	Path []string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s → %s", e.Kind.Error(), e.Dependent, e.Prerequisite)
	if len(e.Path) > 0 {
		msg += " (existing chain " + strings.Join(e.Path, " → ") + ")"
	}
	return msg
}

func (e *GraphError) Unwrap() error { return e.Kind }
