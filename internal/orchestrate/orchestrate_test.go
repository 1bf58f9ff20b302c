package orchestrate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipassist/retrieval-core/internal/bm25"
	"github.com/ipassist/retrieval-core/internal/compose"
	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

func writeCorpus(t *testing.T, records []map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	for _, r := range records {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		_, err = f.Write(append(b, '\n'))
		require.NoError(t, err)
	}
	return path
}

func newOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	records := []map[string]any{
		{
			"chunk_id": "c1", "doc_id": "doc1",
			"text":           "massive hemoptysis protocol requires emergency airway control",
			"section_title":  "Emergency Management",
			"section_type":   "general",
			"authority_tier": "A1",
			"evidence_level": "H1",
			"doc_type":       "guideline",
			"year":           2023,
			"domain":         []string{"other"},
		},
		{
			"chunk_id": "c2", "doc_id": "doc2",
			"text":           "routine bronchoscopy follow-up visit",
			"section_title":  "Follow-up",
			"section_type":   "general",
			"authority_tier": "A4",
			"evidence_level": "H3",
			"doc_type":       "journal_article",
			"year":           2021,
			"domain":         []string{"other"},
			"authors":        []string{"John Smith"},
			"journal":        "Chest",
		},
	}
	path := writeCorpus(t, records)
	store := corpus.New()
	require.NoError(t, store.Load(path, 3))

	idx, err := bm25.New()
	require.NoError(t, err)
	texts := map[string]string{}
	for _, c := range store.All() {
		texts[c.ChunkID] = c.Text
	}
	require.NoError(t, idx.IndexAll(texts))

	retriever := &retrieve.Retriever{Store: store, BM25: idx}

	return &Orchestrator{
		Store:     store,
		Retriever: retriever,
		Composer:  &compose.Facade{Backend: compose.FallbackBackend{}},
		Citations: config.Default().Citations,
	}
}

func TestProcessClassifiesEmergency(t *testing.T) {
	o := newOrchestrator(t)
	env, err := o.Process(context.Background(), Request{Query: "massive hemoptysis management", CurrentYear: 2026})
	require.NoError(t, err)
	assert.True(t, env.IsEmergency)
	assert.Equal(t, QueryTypeEmergency, env.QueryType)
	assert.Contains(t, env.AnswerText, "MASSIVE_HEMOPTYSIS")
}

func TestProcessClinicalQueryReturnsResults(t *testing.T) {
	o := newOrchestrator(t)
	env, err := o.Process(context.Background(), Request{Query: "bronchoscopy follow-up", CurrentYear: 2026})
	require.NoError(t, err)
	assert.Equal(t, QueryTypeClinical, env.QueryType)
	assert.NotEmpty(t, env.Results)
	assert.GreaterOrEqual(t, env.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, env.ConfidenceScore, 1.0)
}

func TestProcessCodingQueryRetriesWithoutFilterWhenEmpty(t *testing.T) {
	o := newOrchestrator(t)
	env, err := o.Process(context.Background(), Request{Query: "what is the billing code for bronchoscopy", CurrentYear: 2026})
	require.NoError(t, err)
	assert.Equal(t, QueryTypeCoding, env.QueryType)
	// No chunk has has_table=true, so the filter empties out and retry
	// without filters should still surface results.
	assert.NotEmpty(t, env.Results)
}

func TestProcessSetsIndexFingerprint(t *testing.T) {
	o := newOrchestrator(t)
	env, err := o.Process(context.Background(), Request{Query: "bronchoscopy", CurrentYear: 2026})
	require.NoError(t, err)
	assert.NotEmpty(t, env.IndexFingerprint)
}
