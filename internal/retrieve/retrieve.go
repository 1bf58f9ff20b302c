// Package retrieve implements the Hybrid Retriever of spec.md §4.7: it
// fans candidate generation out across the dense index, the BM25 index,
// and the exact CPT/alias term indices, blends them with the Precedence
// Scorer under emergency-aware weights, and optionally reranks. Grounded
// on the teacher's internal/search/engine.go, whose Search method runs
// BM25 and vector search concurrently via golang.org/x/sync/errgroup and
// fuses by chunk id the same way; the RRF fusion there is replaced with
// the weighted-sum blend spec.md §4.7 specifies.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ipassist/retrieval-core/internal/bm25"
	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/encode"
	"github.com/ipassist/retrieval-core/internal/normalize"
	"github.com/ipassist/retrieval-core/internal/precedence"
	"github.com/ipassist/retrieval-core/internal/vector"
)

// contentBoostWords are the query substrings that gate the multiplicative
// content boosts of spec.md §4.7 step 5.
var (
	contraindicationWords = []string{"contraindication"}
	tableWords            = []string{"table", "cpt", "code"}
	doseWords             = []string{"dose", "setting", "energy"}
)

// RetrievalResult is one scored, ranked chunk returned by Retrieve.
type RetrievalResult struct {
	Chunk        corpus.Chunk
	Semantic     float64
	BM25         float64
	Exact        float64
	Precedence   float64
	SectionBonus float64
	EntityBonus  float64
	Base         float64
	Reranked     bool
	RerankScore  float64
	Final        float64
}

// Options configures a single Retrieve call.
type Options struct {
	TopK        int
	UseReranker bool
	Filter      vector.Filter
	CurrentYear int
}

// Output is the result of a Retrieve call, including any degraded-mode
// warnings accrued along the way (spec.md §4.7 Failure semantics).
type Output struct {
	Results  []RetrievalResult
	Warnings []string
}

// Retriever holds the immutable, shared indices a query is served from.
type Retriever struct {
	Store      *corpus.Store
	BM25       *bm25.Index
	Dense      *vector.Index
	Encoder    encode.QueryEncoder
	Reranker   encode.Reranker
	Normalizer *normalize.Normalizer

	RerankConcurrency int

	warnedMissingDense sync.Once
}

type candidate struct {
	chunkID  string
	semantic float64
	bm25     float64
	exact    float64
}

// ErrNilDependency is returned by Retrieve when Store is nil, since the
// Chunk Store is the only dependency retrieval cannot degrade without.
var ErrNilDependency = fmt.Errorf("retrieve: store is required")

// Retrieve runs the full hybrid-retrieval procedure of spec.md §4.7.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts Options) (*Output, error) {
	if r.Store == nil {
		return nil, ErrNilDependency
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	nq := query
	if r.Normalizer != nil {
		nq = r.Normalizer.Normalize(query)
	}
	emergency := IsEmergency(nq) || IsEmergency(query)

	out := &Output{}

	candidates := map[string]*candidate{}
	var mu sync.Mutex
	get := func(id string) *candidate {
		c, ok := candidates[id]
		if !ok {
			c = &candidate{chunkID: id}
			candidates[id] = c
		}
		return c
	}

	g, gctx := errgroup.WithContext(ctx)

	// Dense candidate generation.
	g.Go(func() error {
		if r.Dense == nil || r.Encoder == nil || !r.Encoder.Available() {
			r.warnedMissingDense.Do(func() {
				slog.Warn("dense index unavailable, semantic component treated as zero")
			})
			mu.Lock()
			out.Warnings = append(out.Warnings, "semantic component skipped: dense index unavailable")
			mu.Unlock()
			return nil
		}
		qv, err := r.Encoder.Encode(gctx, nq)
		if err != nil {
			mu.Lock()
			out.Warnings = append(out.Warnings, fmt.Sprintf("semantic component skipped: encode failed: %v", err))
			mu.Unlock()
			return nil
		}
		results, err := r.Dense.Search(gctx, qv, 8*topK, opts.Filter)
		if err != nil {
			mu.Lock()
			out.Warnings = append(out.Warnings, fmt.Sprintf("semantic component skipped: %v", err))
			mu.Unlock()
			return nil
		}
		mu.Lock()
		for _, res := range results {
			get(res.ChunkID).semantic = res.Score
		}
		mu.Unlock()
		return nil
	})

	// BM25 candidate generation.
	g.Go(func() error {
		if r.BM25 == nil {
			return nil
		}
		hits, err := r.BM25.Search(gctx, nq, 5*topK)
		if err != nil {
			mu.Lock()
			out.Warnings = append(out.Warnings, fmt.Sprintf("bm25 component degraded: %v", err))
			mu.Unlock()
			return nil
		}
		if nq != query {
			rawHits, err := r.BM25.Search(gctx, query, 2*topK)
			if err == nil {
				hits = append(hits, rawHits...)
			}
		}
		max := 0.0
		for _, h := range hits {
			if h.Score > max {
				max = h.Score
			}
		}
		mu.Lock()
		for _, h := range hits {
			if opts.Filter != nil && !opts.Filter(h.ChunkID) {
				continue
			}
			normalized := 0.0
			if max > 0 {
				normalized = h.Score / max
			}
			c := get(h.ChunkID)
			if normalized > c.bm25 {
				c.bm25 = normalized
			}
		}
		mu.Unlock()
		return nil
	})

	// Exact CPT / alias candidate generation.
	g.Go(func() error {
		mu.Lock()
		for _, code := range cptDigitPattern.FindAllString(nq, -1) {
			for _, id := range r.Store.LookupCPT(code) {
				if opts.Filter != nil && !opts.Filter(id) {
					continue
				}
				c := get(id)
				if 1.0 > c.exact {
					c.exact = 1.0
				}
			}
		}
		for _, form := range r.Store.AliasSurfaceForms() {
			if form == "" {
				continue
			}
			if strings.Contains(nq, form) {
				for _, id := range r.Store.LookupAlias(form) {
					if opts.Filter != nil && !opts.Filter(id) {
						continue
					}
					c := get(id)
					if 0.8 > c.exact {
						c.exact = 0.8
					}
				}
			}
		}
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	currentYear := opts.CurrentYear
	queryTokens := strings.Fields(nq)

	scored := make([]RetrievalResult, 0, len(candidates))
	for id, c := range candidates {
		chunk, ok := r.Store.Get(id)
		if !ok {
			continue // unknown chunk_id silently dropped, per spec.md §4.7
		}

		prec := precedence.Score(chunk, currentYear, precedence.Options{})
		sectionBonus := 0.0
		lowerSection := strings.ToLower(chunk.SectionTitle)
		for _, tok := range queryTokens {
			if tok != "" && strings.Contains(lowerSection, tok) {
				sectionBonus = 0.1
				break
			}
		}
		entityBonus := 0.0
		if c.exact > 0 {
			entityBonus = 0.1
		}

		var base float64
		if emergency {
			base = 0.70*prec + 0.20*c.semantic + 0.05*c.bm25 + 0.025*sectionBonus + 0.025*entityBonus
		} else {
			base = 0.45*prec + 0.35*c.semantic + 0.10*c.bm25 + 0.05*sectionBonus + 0.05*entityBonus
		}

		base *= contentBoostMultiplier(chunk, nq)

		scored = append(scored, RetrievalResult{
			Chunk:        chunk,
			Semantic:     c.semantic,
			BM25:         c.bm25,
			Exact:        c.exact,
			Precedence:   prec,
			SectionBonus: sectionBonus,
			EntityBonus:  entityBonus,
			Base:         base,
			Final:        base,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Final != scored[j].Final {
			return scored[i].Final > scored[j].Final
		}
		return scored[i].Chunk.ChunkID < scored[j].Chunk.ChunkID
	})

	if opts.UseReranker && len(scored) > 0 && r.Reranker != nil && r.Reranker.Available() {
		rerankCount := 3 * topK
		if rerankCount > len(scored) {
			rerankCount = len(scored)
		}
		passages := make([]string, rerankCount)
		for i := 0; i < rerankCount; i++ {
			passages[i] = scored[i].Chunk.Text
		}
		rerankScores, err := r.Reranker.Rerank(ctx, query, passages)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("degraded ranking: reranker failed: %v", err))
		} else {
			for i := 0; i < rerankCount; i++ {
				scored[i].Reranked = true
				scored[i].RerankScore = rerankScores[i]
				weight := blendWeight(scored[i].Chunk.AuthorityTier)
				scored[i].Final = weight*scored[i].Base + (1-weight)*rerankScores[i]
			}
			sort.Slice(scored, func(i, j int) bool {
				if scored[i].Final != scored[j].Final {
					return scored[i].Final > scored[j].Final
				}
				return scored[i].Chunk.ChunkID < scored[j].Chunk.ChunkID
			})
		}
	}

	if topK < len(scored) {
		scored = scored[:topK]
	}
	out.Results = scored
	return out, nil
}

// blendWeight returns the current-score weight in the rerank blend of
// spec.md §4.7 step 6, keyed by authority tier.
func blendWeight(tier corpus.AuthorityTier) float64 {
	switch tier {
	case corpus.TierA1:
		return 0.60
	case corpus.TierA2, corpus.TierA3:
		return 0.55
	default:
		return 0.50
	}
}

func contentBoostMultiplier(chunk corpus.Chunk, nq string) float64 {
	m := 1.0
	if chunk.HasContraindication && containsAny(nq, contraindicationWords) {
		m *= 1.20
	}
	if chunk.HasTable && containsAny(nq, tableWords) {
		m *= 1.15
	}
	if chunk.HasDoseSetting && containsAny(nq, doseWords) {
		m *= 1.15
	}
	switch chunk.AuthorityTier {
	case corpus.TierA1:
		m *= 1.10
	case corpus.TierA2, corpus.TierA3:
		m *= 1.05
	}
	return m
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
