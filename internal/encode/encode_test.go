package encode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpRerankerPreservesOrder(t *testing.T) {
	r := NoOpReranker{}
	scores, err := r.Rerank(context.Background(), "query", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[1], scores[2])
}

func TestNoOpRerankerAvailable(t *testing.T) {
	r := NoOpReranker{}
	assert.True(t, r.Available())
	assert.NoError(t, r.Close())
}

func TestNoOpRerankerEmptyPassages(t *testing.T) {
	r := NoOpReranker{}
	scores, err := r.Rerank(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestStubEncoderDeterministic(t *testing.T) {
	e := NewStubEncoder(16)
	v1, err := e.Encode(context.Background(), "massive hemoptysis")
	require.NoError(t, err)
	v2, err := e.Encode(context.Background(), "massive hemoptysis")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestStubEncoderDistinctTextsDiffer(t *testing.T) {
	e := NewStubEncoder(16)
	v1, err := e.Encode(context.Background(), "massive hemoptysis")
	require.NoError(t, err)
	v2, err := e.Encode(context.Background(), "pediatric dosing")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestStubEncoderUnitNorm(t *testing.T) {
	e := NewStubEncoder(32)
	v, err := e.Encode(context.Background(), "sample query")
	require.NoError(t, err)

	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sumSq, 0.01)
}

func TestStubEncoderDimensions(t *testing.T) {
	e := NewStubEncoder(0)
	assert.Equal(t, 8, e.Dimensions())

	e2 := NewStubEncoder(64)
	assert.Equal(t, 64, e2.Dimensions())
	assert.True(t, e2.Available())
}
