// Package vector implements the Dense Index component of spec.md §4.4: a
// fixed-dimension cosine-similarity vector store over chunk embeddings,
// supporting optional metadata filters. Grounded on the teacher's
// internal/store/hnsw.go, which wraps the pure-Go coder/hnsw library the
// same way; filter support is new here since the teacher never filters.
package vector

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// Result is one hit from Search: a chunk id with its cosine score in
// [-1, 1], already normalized per spec.md §4.4.
type Result struct {
	ChunkID string
	Score   float64
}

// filterOverfetchFactor is how much larger a candidate pool Search pulls
// from the graph before post-filtering, since coder/hnsw has no native
// predicate pushdown. Documented gap vs. the teacher's HNSWStore, which
// never filters at all.
const filterOverfetchFactor = 6

// Index wraps a coder/hnsw graph keyed by chunk id.
type Index struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[uint64]
	dimensions int

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

// New creates an empty dense index for vectors of the given dimension.
func New(dimensions int) *Index {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 40
	graph.Ml = 0.25

	return &Index{
		graph:      graph,
		dimensions: dimensions,
		idMap:      make(map[string]uint64),
		keyMap:     make(map[uint64]string),
	}
}

// Add inserts (or replaces) the embedding for chunkID. Replacement uses
// lazy deletion — the stale key is unmapped but left in the graph — to
// avoid a known coder/hnsw issue when the last node in the graph is
// removed, matching the teacher's HNSWStore.Add.
func (idx *Index) Add(chunkID string, embedding []float32) error {
	if len(embedding) != idx.dimensions {
		return fmt.Errorf("dimension mismatch: expected %d, got %d", idx.dimensions, len(embedding))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if existing, ok := idx.idMap[chunkID]; ok {
		delete(idx.keyMap, existing)
		delete(idx.idMap, chunkID)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	normalizeInPlace(vec)

	key := idx.nextKey
	idx.nextKey++
	idx.graph.Add(hnsw.MakeNode(key, vec))
	idx.idMap[chunkID] = key
	idx.keyMap[key] = chunkID
	return nil
}

// Filter is a conjunctive equality predicate over chunk metadata,
// evaluated by chunk id, per spec.md §4.4.
type Filter func(chunkID string) bool

// Search returns up to topK nearest neighbors to queryVec by cosine
// similarity, satisfying filter if non-nil, per spec.md §4.4. An empty
// index returns an empty (not error) result, per spec.md §4.7 Failure
// semantics ("Missing dense index: skip semantic component").
func (idx *Index) Search(ctx context.Context, queryVec []float32, topK int, filter Filter) ([]Result, error) {
	if len(queryVec) != idx.dimensions {
		return nil, fmt.Errorf("dimension mismatch: expected %d, got %d", idx.dimensions, len(queryVec))
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.graph.Len() == 0 || topK <= 0 {
		return nil, nil
	}

	q := make([]float32, len(queryVec))
	copy(q, queryVec)
	normalizeInPlace(q)

	fetchK := topK
	if filter != nil {
		fetchK = topK * filterOverfetchFactor
		if fetchK > idx.graph.Len() {
			fetchK = idx.graph.Len()
		}
	}

	nodes := idx.graph.Search(q, fetchK)

	out := make([]Result, 0, topK)
	for _, node := range nodes {
		chunkID, ok := idx.keyMap[node.Key]
		if !ok {
			continue // lazily-deleted or orphaned key
		}
		if filter != nil && !filter(chunkID) {
			continue
		}

		distance := idx.graph.Distance(q, node.Value)
		score := 1.0 - float64(distance) // cosine distance -> similarity
		out = append(out, Result{ChunkID: chunkID, Score: score})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// Len returns the number of live (non-orphaned) vectors in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.idMap)
}

func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= norm
	}
}
