package orchestrate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

func resultFor(chunkID, docID string, docType corpus.DocType, tier corpus.AuthorityTier) retrieve.RetrievalResult {
	return retrieve.RetrievalResult{
		Chunk: corpus.Chunk{ChunkID: chunkID, DocID: docID, DocType: docType, AuthorityTier: tier},
	}
}

func TestSelectCitationsPrimaryPathNoFallback(t *testing.T) {
	policy := config.Default().Citations
	results := []retrieve.RetrievalResult{
		resultFor("c1", "d1", corpus.DocGuideline, corpus.TierA4),
	}
	citations, fallback := selectCitations(results, policy)
	assert.False(t, fallback)
	assert.Len(t, citations, 1)
}

func TestSelectCitationsFallsBackWhenPolicyZeroesOut(t *testing.T) {
	policy := config.Default().Citations
	// Every candidate is a denied doc type, so the primary loop yields
	// nothing and the fallback path must fire.
	results := []retrieve.RetrievalResult{
		resultFor("c1", "d1", corpus.DocBookChapter, corpus.TierA4),
		resultFor("c2", "d2", corpus.DocBookChapter, corpus.TierA2),
	}
	citations, fallback := selectCitations(results, policy)
	assert.True(t, fallback)
	assert.Empty(t, citations, "fallback still excludes book_chapter, per spec.md §4.8")
}

func TestSelectCitationsFallbackExcludesBookChapters(t *testing.T) {
	policy := config.Default().Citations
	results := []retrieve.RetrievalResult{
		resultFor("c1", "d1", corpus.DocBookChapter, corpus.TierA4),
		resultFor("c2", "d2", corpus.DocCaseSeries, corpus.TierA1), // denied tier, zeroes primary loop
	}
	citations, fallback := selectCitations(results, policy)
	assert.True(t, fallback)
	if assert.Len(t, citations, 1) {
		assert.Equal(t, "c2", citations[0].ChunkID)
	}
}

func TestSelectCitationsNoResultsNoFallback(t *testing.T) {
	policy := config.Default().Citations
	citations, fallback := selectCitations(nil, policy)
	assert.False(t, fallback)
	assert.Empty(t, citations)
}
