// Package bm25 implements the BM25 Index component of spec.md §4.3: a
// sparse lexical scorer over whitespace-tokenized, lowercased chunk
// texts. Grounded on the teacher's internal/store/bm25.go, which wraps
// blevesearch/bleve/v2 the same way; the custom code-aware tokenizer used
// there is replaced with bleve's standard text analyzer since this corpus
// is prose, not source code.
package bm25

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// Result is one hit from Search: a chunk id with its raw (unnormalized)
// BM25 score. The Hybrid Retriever normalizes these by the per-query max,
// per spec.md §4.3.
type Result struct {
	ChunkID string
	Score   float64
}

// document is the structure bleve indexes for each chunk.
type document struct {
	Text string `json:"text"`
}

// Index wraps an in-memory bleve index. The Chunk Store is immutable for
// the process lifetime (spec.md §5), so this index is built once via
// IndexAll and never mutated afterward; concurrent Search calls require
// no external locking beyond bleve's own internal read-path safety.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

// New creates an empty in-memory BM25 index.
func New() (*Index, error) {
	mapping := bleve.NewIndexMapping()
	mapping.DefaultAnalyzer = "standard"
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create bm25 index: %w", err)
	}
	return &Index{index: idx}, nil
}

// IndexAll bulk-loads chunk texts keyed by chunk id. Intended to be
// called once at startup after the Chunk Store finishes loading.
func (i *Index) IndexAll(texts map[string]string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for chunkID, text := range texts {
		if err := batch.Index(chunkID, document{Text: text}); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunkID, err)
		}
	}
	return i.index.Batch(batch)
}

// Search returns the top_k chunk ids matching query, descending by raw
// BM25 score, with zero-score hits excluded, per spec.md §4.3. A missing
// or empty index returns an empty result rather than an error (spec.md
// §4.7 Failure semantics: "BM25 zero corpus: returns empty").
func (i *Index) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if strings.TrimSpace(query) == "" || topK <= 0 {
		return nil, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	q := bleve.NewMatchQuery(query)
	q.SetField("text")

	req := bleve.NewSearchRequest(q)
	req.Size = topK

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bm25 search: %w", err)
	}

	out := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if hit.Score <= 0 {
			continue
		}
		out = append(out, Result{ChunkID: hit.ID, Score: hit.Score})
	}
	return out, nil
}

// Close releases the underlying bleve index resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}
