package maintenance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsweep/dbsweep/internal/store"
)

func noop(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	return Done("nothing to do"), nil
}

func op(id string) Operation {
	return Operation{ID: id, Label: id, Description: "test operation " + id, Execute: noop}
}

func TestRegistry_ListPreservesRegistrationOrder(t *testing.T) {
	for n := 0; n <= 8; n++ {
		t.Run(fmt.Sprintf("%d operations", n), func(t *testing.T) {
			r, err := NewRegistry()
			require.NoError(t, err)

			var want []string
			for i := n; i > 0; i-- {
				id := fmt.Sprintf("op_%d", i)
				require.NoError(t, r.Register(op(id)))
				want = append(want, id)
			}

			assert.Equal(t, n, len(r.List()))
			assert.Equal(t, n, r.Len())
			if n == 0 {
				assert.Empty(t, r.IDs())
				return
			}
			assert.Equal(t, want, r.IDs())
		})
	}
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	r := MustRegistry(op("a"), op("b"))

	list := r.List()
	list[0].ID = "mutated"

	assert.Equal(t, []string{"a", "b"}, r.IDs())
}

func TestRegistry_Duplicate(t *testing.T) {
	r := MustRegistry(op("a"))

	err := r.Register(op("a"))
	var dup *DuplicateOperationError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a", dup.ID)
	assert.Equal(t, 1, r.Len())

	_, err = NewRegistry(op("x"), op("y"), op("x"))
	assert.True(t, errors.As(err, &dup))
}

func TestRegistry_RejectsInvalidOperations(t *testing.T) {
	r := MustRegistry()

	assert.Error(t, r.Register(Operation{ID: "", Execute: noop}))
	assert.Error(t, r.Register(Operation{ID: "no_executor"}))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Get(t *testing.T) {
	r := MustRegistry(Builtin()...)

	got, err := r.Get(OpAnalyzeTables)
	require.NoError(t, err)
	assert.Equal(t, OpAnalyzeTables, got.ID)
	assert.NotNil(t, got.Execute)

	_, err = r.Get("analyse_tables")
	var unknown *UnknownOperationError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "analyse_tables", unknown.ID)
	assert.Equal(t, OpAnalyzeTables, unknown.Suggestion)
	assert.Equal(t, "unknown operation: analyse_tables (did you mean analyze_tables?)", err.Error())

	_, err = r.Get("bogus_id")
	require.True(t, errors.As(err, &unknown))
	assert.Empty(t, unknown.Suggestion)
	assert.Equal(t, "unknown operation: bogus_id", err.Error())
}

func TestMustRegistry_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		MustRegistry(op("a"), op("a"))
	})
}

func TestBuiltin_Catalog(t *testing.T) {
	r := MustRegistry(Builtin()...)

	assert.Equal(t, []string{
		OpExpiredTransients,
		OpAnalyzeTables,
		OpDeleteOldRevisions,
		OpAutoDrafts,
		OpOrphanedPostmeta,
		OpSpamComments,
	}, r.IDs())

	for _, o := range r.List() {
		assert.NotEmpty(t, o.Label, o.ID)
		assert.NotEmpty(t, o.Description, o.ID)
		assert.NotNil(t, o.Execute, o.ID)
	}
}
