package task

import "errors"

// Sentinel errors for task lookup and record validation.
var (
	// ErrTaskNotFound indicates an operation referenced an ID absent from the set.
	ErrTaskNotFound = errors.New("task not found")
	// ErrDuplicateID indicates two tasks share the same ID.
	ErrDuplicateID = errors.New("duplicate task ID")
	// ErrInvalidTask indicates a task record violates a field invariant.
	ErrInvalidTask = errors.New("invalid task")
)
