package retrieve

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipassist/retrieval-core/internal/bm25"
	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/vector"
)

type fakeEncoder struct {
	dim       int
	available bool
	vecs      map[string][]float32
}

func (f *fakeEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vecs[text]; ok {
		return v, nil
	}
	return make([]float32, f.dim), nil
}
func (f *fakeEncoder) Dimensions() int { return f.dim }
func (f *fakeEncoder) Available() bool { return f.available }

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

func baseRecord(id, text string) map[string]any {
	return map[string]any{
		"chunk_id":       id,
		"doc_id":         "doc-" + id,
		"text":           text,
		"section_title":  "General",
		"section_type":   "general",
		"authority_tier": "A2",
		"evidence_level": "H2",
		"doc_type":       "guideline",
		"year":           2022,
		"domain":         []string{"other"},
	}
}

func newTestStore(t *testing.T) *corpus.Store {
	t.Helper()
	records := []map[string]any{
		baseRecord("c1", "massive hemoptysis requires emergency bronchoscopy and airway control"),
		baseRecord("c2", "routine follow-up visit for stable asthma management"),
		baseRecord("c3", "bronchoscopy is used for diagnostic biopsy of lung lesions"),
	}
	path := writeCorpus(t, records)
	store := corpus.New()
	require.NoError(t, store.Load(path, 3))
	return store
}

func newTestBM25(t *testing.T, store *corpus.Store) *bm25.Index {
	t.Helper()
	idx, err := bm25.New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	texts := make(map[string]string)
	for _, c := range store.All() {
		texts[c.ChunkID] = c.Text
	}
	require.NoError(t, idx.IndexAll(texts))
	return idx
}

func TestRetrieveRanksByBlendedScore(t *testing.T) {
	store := newTestStore(t)
	bmIdx := newTestBM25(t, store)
	dense := vector.New(3)
	require.NoError(t, dense.Add("c1", []float32{1, 0, 0}))
	require.NoError(t, dense.Add("c2", []float32{0, 1, 0}))
	require.NoError(t, dense.Add("c3", []float32{0.9, 0.1, 0}))

	r := &Retriever{
		Store: store,
		BM25:  bmIdx,
		Dense: dense,
		Encoder: &fakeEncoder{dim: 3, available: true, vecs: map[string][]float32{
			"bronchoscopy": {1, 0, 0},
		}},
	}

	out, err := r.Retrieve(context.Background(), "bronchoscopy", Options{TopK: 2, CurrentYear: 2026})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.LessOrEqual(t, len(out.Results), 2)
	for i := 1; i < len(out.Results); i++ {
		assert.GreaterOrEqual(t, out.Results[i-1].Final, out.Results[i].Final)
	}
}

func TestRetrieveEmergencyUsesEmergencyWeights(t *testing.T) {
	store := newTestStore(t)
	bmIdx := newTestBM25(t, store)
	dense := vector.New(3)
	require.NoError(t, dense.Add("c1", []float32{1, 0, 0}))

	r := &Retriever{
		Store:   store,
		BM25:    bmIdx,
		Dense:   dense,
		Encoder: &fakeEncoder{dim: 3, available: true},
	}

	out, err := r.Retrieve(context.Background(), "massive hemoptysis airway control", Options{TopK: 3, CurrentYear: 2026})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	for _, res := range out.Results {
		if res.Chunk.ChunkID == "c1" {
			assert.Greater(t, res.Base, 0.0)
		}
	}
}

func TestRetrieveMissingDenseIndexDegrades(t *testing.T) {
	store := newTestStore(t)
	bmIdx := newTestBM25(t, store)

	r := &Retriever{
		Store: store,
		BM25:  bmIdx,
	}

	out, err := r.Retrieve(context.Background(), "bronchoscopy", Options{TopK: 2, CurrentYear: 2026})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Warnings)
	assert.NotEmpty(t, out.Results)
}

func TestRetrieveRequiresStore(t *testing.T) {
	r := &Retriever{}
	_, err := r.Retrieve(context.Background(), "query", Options{})
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestRetrieveUnknownChunkIDDropped(t *testing.T) {
	store := newTestStore(t)
	bmIdx := newTestBM25(t, store)
	dense := vector.New(3)
	require.NoError(t, dense.Add("ghost-chunk", []float32{1, 0, 0}))

	r := &Retriever{
		Store:   store,
		BM25:    bmIdx,
		Dense:   dense,
		Encoder: &fakeEncoder{dim: 3, available: true},
	}

	out, err := r.Retrieve(context.Background(), "bronchoscopy", Options{TopK: 5, CurrentYear: 2026})
	require.NoError(t, err)
	for _, res := range out.Results {
		assert.NotEqual(t, "ghost-chunk", res.Chunk.ChunkID)
	}
}
