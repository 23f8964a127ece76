package project

import "errors"

// Sentinel errors for project file loading and validation.
var (
	// ErrNoFile indicates the project file does not exist.
	ErrNoFile = errors.New("project file not found")
	// ErrDuplicateID indicates two or more tasks share the same ID.
	ErrDuplicateID = errors.New("duplicate task ID")
	// ErrUnknownDep indicates a task depends on an ID that does not exist.
	ErrUnknownDep = errors.New("task depends on unknown task ID")
	// ErrUnknownParent indicates a task's parent does not exist.
	ErrUnknownParent = errors.New("task has unknown parent")
	// ErrMissingField indicates a required field (e.g. id, start) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDependencyCycle indicates a circular dependency among tasks.
	ErrDependencyCycle = errors.New("dependency cycle detected")
	// ErrParentCycle indicates a task is its own ancestor.
	ErrParentCycle = errors.New("parent cycle detected")
	// ErrOutOfBounds indicates a field value outside its valid range.
	ErrOutOfBounds = errors.New("value out of bounds")
	// ErrInvalid indicates the file failed validation; Tasks wraps it.
	ErrInvalid = errors.New("invalid project file")
)

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	ValCatMissingField    ValidationCategory = "missing_field"
	ValCatDuplicateID     ValidationCategory = "duplicate_id"
	ValCatUnknownDep      ValidationCategory = "unknown_dep"
	ValCatUnknownParent   ValidationCategory = "unknown_parent"
	ValCatCycle           ValidationCategory = "cycle"
	ValCatBoundsViolation ValidationCategory = "bounds_violation"
)

// ValidationError records a validation problem with source context.
type ValidationError struct {
	Category ValidationCategory
	TaskID   string
	Field    string
	Err      error
}

// Error returns a human-readable string including task context.
func (e *ValidationError) Error() string {
	if e.TaskID != "" {
		return "task " + e.TaskID + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
