package maintenance

import (
	"fmt"
)

// UnknownOperationError is returned when an id is not in the registry.
type UnknownOperationError struct {
	ID string
	// Suggestion is the closest registered id, if any is close enough.
	Suggestion string
}

func (e *UnknownOperationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown operation: %s (did you mean %s?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown operation: %s", e.ID)
}

// DuplicateOperationError is returned when an id is registered twice.
type DuplicateOperationError struct {
	ID string
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("operation %q is already registered", e.ID)
}

// OperationExecutionError wraps an executor failure.
type OperationExecutionError struct {
	ID  string
	Err error
}

func (e *OperationExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.ID, e.Err)
}

func (e *OperationExecutionError) Unwrap() error {
	return e.Err
}
