package maintenance

import (
	"fmt"

	"github.com/dbsweep/dbsweep/internal/strutil"
)

// maxSuggestionDistance bounds "did you mean" suggestions for unknown ids.
const maxSuggestionDistance = 3

// Registry is the ordered catalog of operations. Registration order is the
// execution and display order.
type Registry struct {
	ops   []Operation
	index map[string]int
}

// NewRegistry creates a registry holding ops, in order.
func NewRegistry(ops ...Operation) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(ops))}
	for _, op := range ops {
		if err := r.Register(op); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for startup code, where a bad catalog is a
// programming error.
func MustRegistry(ops ...Operation) *Registry {
	r, err := NewRegistry(ops...)
	if err != nil {
		panic(fmt.Sprintf("failed to build operation registry: %v", err))
	}
	return r
}

// Register appends an operation to the catalog.
func (r *Registry) Register(op Operation) error {
	if op.ID == "" {
		return fmt.Errorf("operation id cannot be empty")
	}
	if op.Execute == nil {
		return fmt.Errorf("operation %q has no executor", op.ID)
	}
	if _, exists := r.index[op.ID]; exists {
		return &DuplicateOperationError{ID: op.ID}
	}

	r.index[op.ID] = len(r.ops)
	r.ops = append(r.ops, op)
	return nil
}

// Get looks up an operation by id.
func (r *Registry) Get(id string) (Operation, error) {
	i, ok := r.index[id]
	if !ok {
		suggestion, _ := strutil.FindClosest(id, r.IDs(), maxSuggestionDistance)
		return Operation{}, &UnknownOperationError{ID: id, Suggestion: suggestion}
	}
	return r.ops[i], nil
}

// List returns every operation in registration order.
func (r *Registry) List() []Operation {
	out := make([]Operation, len(r.ops))
	copy(out, r.ops)
	return out
}

// IDs returns every operation id in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.ops))
	for i, op := range r.ops {
		ids[i] = op.ID
	}
	return ids
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ops)
}
