package bm25

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRanksByRelevance(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.IndexAll(map[string]string{
		"c1": "massive hemoptysis requires emergency bronchoscopy",
		"c2": "routine follow-up visit for asthma",
		"c3": "bronchoscopy is used for diagnostic biopsy",
	}))

	results, err := idx.Search(context.Background(), "bronchoscopy", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	ids := map[string]bool{}
	for _, r := range results {
		ids[r.ChunkID] = true
		assert.Greater(t, r.Score, 0.0)
	}
	assert.True(t, ids["c1"] || ids["c3"])
}

func TestSearchEmptyQueryReturnsNil(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyCorpusReturnsEmpty(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
