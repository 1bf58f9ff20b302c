// Package encode defines the Encoders contract of spec.md §4.5: the
// query encoder and cross-encoder reranker are external collaborators —
// only the interfaces live here, grounded on the teacher's
// internal/embed/types.go (Embedder interface) and
// internal/search/reranker.go (Reranker interface, NoOpReranker).
package encode

import (
	"context"
	"hash/fnv"
	"math"
)

// QueryEncoder maps text to a fixed-length unit vector. Implementations
// are injected by the process wiring the retrieval core together; no
// model-backed implementation ships here (StubEncoder below is a
// deterministic hash-based stand-in), per spec.md §1's "deliberately out
// of scope: embedding model inference".
type QueryEncoder interface {
	// Encode returns a unit-norm vector of length Dimensions().
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Available() bool
}

// Reranker scores (query, passage) pairs jointly. Order of input is
// preserved in output, per spec.md §4.5.
type Reranker interface {
	Rerank(ctx context.Context, query string, passages []string) ([]float64, error)
	Available() bool
	Close() error
}

// NoOpReranker preserves input order by assigning strictly decreasing
// scores. The CLI wiring uses it as the reranker when reranker_enabled is
// true, since no model-backed cross-encoder ships here; when the kill
// switch turns reranking off, the reranker is left nil instead. Grounded
// on the teacher's search.NoOpReranker.
type NoOpReranker struct{}

func (NoOpReranker) Rerank(_ context.Context, _ string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	for i := range passages {
		scores[i] = 1.0 - float64(i)*0.01
	}
	return scores, nil
}

func (NoOpReranker) Available() bool { return true }
func (NoOpReranker) Close() error    { return nil }

// StubEncoder produces deterministic unit vectors from a text hash, for
// tests and local dry runs that exercise the dense-retrieval path
// without a real embedding model. Grounded on the teacher's
// internal/embed/static.go approach of a hash-derived, seeded
// pseudo-embedding that avoids any model dependency.
type StubEncoder struct {
	dims int
}

// NewStubEncoder returns a StubEncoder producing vectors of the given
// dimensionality. dims defaults to 8 when non-positive.
func NewStubEncoder(dims int) *StubEncoder {
	if dims <= 0 {
		dims = 8
	}
	return &StubEncoder{dims: dims}
}

// Encode hashes text into a seed and expands it into a deterministic
// unit-norm vector via a linear congruential generator, so the same
// text always yields the same vector and distinct texts yield distinct
// vectors with high probability.
func (e *StubEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	if seed == 0 {
		seed = 1
	}

	vec := make([]float32, e.dims)
	state := seed
	for i := range vec {
		state = state*6364136223846793005 + 1442695040888963407
		vec[i] = float32(state>>40) / float32(1<<24)
	}
	return normalize(vec), nil
}

func (e *StubEncoder) Dimensions() int { return e.dims }
func (e *StubEncoder) Available() bool { return true }

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
