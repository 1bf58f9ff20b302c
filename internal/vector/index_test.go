package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchReturnsNearestByCosine(t *testing.T) {
	idx := New(3)
	require.NoError(t, idx.Add("a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add("b", []float32{0, 1, 0}))
	require.NoError(t, idx.Add("c", []float32{0.9, 0.1, 0}))

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ChunkID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearchAppliesFilter(t *testing.T) {
	idx := New(2)
	require.NoError(t, idx.Add("a", []float32{1, 0}))
	require.NoError(t, idx.Add("b", []float32{1, 0.01}))

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5, func(id string) bool {
		return id == "b"
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ChunkID)
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx := New(3)
	_, err := idx.Search(context.Background(), []float32{1, 0}, 5, nil)
	assert.Error(t, err)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := New(3)
	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReplaceUsesLazyDeletion(t *testing.T) {
	idx := New(2)
	require.NoError(t, idx.Add("a", []float32{1, 0}))
	require.NoError(t, idx.Add("a", []float32{0, 1}))
	assert.Equal(t, 1, idx.Len())
}
