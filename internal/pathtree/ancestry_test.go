package pathtree

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultdrive/internal/domain"
)

// mapLookup строит LookupFunc поверх карты узлов.
func mapLookup(nodes map[int64]*Node) LookupFunc {
	return func(_ context.Context, id int64) (*Node, error) {
		return nodes[id], nil
	}
}

func ptr(v int64) *int64 { return &v }

func testTree() map[int64]*Node {
	// /Parent (1) / Child (2) / Grandchild (3); /Other (4)
	return map[int64]*Node{
		1: {ID: 1, Name: "Parent"},
		2: {ID: 2, Name: "Child", ParentID: ptr(1)},
		3: {ID: 3, Name: "Grandchild", ParentID: ptr(2)},
		4: {ID: 4, Name: "Other"},
	}
}

func TestAncestry(t *testing.T) {
	ctx := context.Background()
	lookup := mapLookup(testTree())

	t.Run("root level", func(t *testing.T) {
		chain, err := Ancestry(ctx, lookup, nil)
		require.NoError(t, err)
		assert.Empty(t, chain)
		assert.Equal(t, "/Parent", PathOf(chain, "Parent"))
	})

	t.Run("nested", func(t *testing.T) {
		chain, err := Ancestry(ctx, lookup, ptr(2))
		require.NoError(t, err)
		require.Equal(t, domain.PathArray{{ID: 1, Name: "Parent"}, {ID: 2, Name: "Child"}}, chain)
		assert.Equal(t, "/Parent/Child/Grandchild", PathOf(chain, "Grandchild"))
	})

	t.Run("dangling parent is a data integrity error", func(t *testing.T) {
		nodes := testTree()
		nodes[5] = &Node{ID: 5, Name: "Orphan", ParentID: ptr(99)}
		_, err := Ancestry(ctx, mapLookup(nodes), ptr(5))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDataIntegrity))
	})

	t.Run("cycle in parent chain is bounded", func(t *testing.T) {
		nodes := map[int64]*Node{
			1: {ID: 1, Name: "a", ParentID: ptr(2)},
			2: {ID: 2, Name: "b", ParentID: ptr(1)},
		}
		_, err := Ancestry(ctx, mapLookup(nodes), ptr(1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDataIntegrity))
	})
}

func TestIsAncestor(t *testing.T) {
	ctx := context.Background()
	lookup := mapLookup(testTree())

	tests := []struct {
		name      string
		candidate int64
		node      int64
		want      bool
	}{
		{"direct parent", 1, 2, true},
		{"transitive ancestor", 1, 3, true},
		{"descendant is not ancestor", 3, 1, false},
		{"unrelated root", 4, 3, false},
		{"self is not its own ancestor", 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsAncestor(ctx, lookup, tt.candidate, tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing node", func(t *testing.T) {
		_, err := IsAncestor(ctx, lookup, 1, 99)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("corrupted cyclic chain terminates", func(t *testing.T) {
		nodes := map[int64]*Node{
			1: {ID: 1, Name: "a", ParentID: ptr(2)},
			2: {ID: 2, Name: "b", ParentID: ptr(1)},
		}
		_, err := IsAncestor(ctx, mapLookup(nodes), 7, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDataIntegrity))
	})
}

func TestRenameEntry(t *testing.T) {
	chain := domain.PathArray{{ID: 1, Name: "Parent"}, {ID: 2, Name: "Child"}}

	renamed := RenameEntry(chain, 1, "NewParent")
	assert.Equal(t, domain.PathArray{{ID: 1, Name: "NewParent"}, {ID: 2, Name: "Child"}}, renamed)
	// Исходная цепочка не изменилась
	assert.Equal(t, "Parent", chain[0].Name)

	untouched := RenameEntry(chain, 42, "X")
	assert.Equal(t, chain, untouched)
}

func TestRebase(t *testing.T) {
	// /Source/ToMove/Sub: у Sub предки [Source, ToMove]
	chain := domain.PathArray{{ID: 1, Name: "Source"}, {ID: 2, Name: "ToMove"}}

	// ToMove переезжает из-под Source (глубина 1) под /Target
	newBase := domain.PathArray{{ID: 3, Name: "Target"}, {ID: 2, Name: "ToMove"}}
	got := Rebase(chain, 1, newBase[:1])
	assert.Equal(t, domain.PathArray{{ID: 3, Name: "Target"}, {ID: 2, Name: "ToMove"}}, got)

	// Переезд в корень: новая база пустая
	got = Rebase(chain, 1, nil)
	assert.Equal(t, domain.PathArray{{ID: 2, Name: "ToMove"}}, got)
}
