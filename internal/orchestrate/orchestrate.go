// Package orchestrate implements the Query Orchestrator of spec.md §4.8:
// an explicit classify → retrieve → select_citations → compose →
// safety_check state machine. Grounded on the teacher's
// internal/search/engine.go for the "plain Go control flow, no hidden
// state machine" shape that replaces the LangGraph state machine in
// original_source/src/orchestrator/flow.py, per spec.md §9's redesign
// note.
package orchestrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ipassist/retrieval-core/internal/cache"
	"github.com/ipassist/retrieval-core/internal/compose"
	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/normalize"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

// Request is the Query API request of spec.md §6.
type Request struct {
	Query       string
	TopK        int
	UseReranker bool
	CurrentYear int
}

// CitationView is the citation envelope entry of spec.md §6.
type CitationView struct {
	DocID   string
	Authors []string
	Journal string
	Year    int
	Volume  string
	Pages   string
	DOI     string
	PMID    string
	Score   float64
}

// AnswerEnvelope is the Query API response of spec.md §6.
type AnswerEnvelope struct {
	Query            string
	NormalizedQuery  string
	QueryType        QueryType
	IsEmergency      bool
	ConfidenceScore  float64
	SafetyFlags      []SafetyFlag
	NeedsReview      bool
	Results          []retrieve.RetrievalResult
	Citations        []CitationView
	AnswerText       string
	Warnings         []string
	ModelUsed        string
	IndexFingerprint string
	LatencyMS        int64
}

// Orchestrator wires the Hybrid Retriever, the citation policy, and the
// Composer Facade into the process_query contract.
type Orchestrator struct {
	Store      *corpus.Store
	Retriever  *retrieve.Retriever
	Composer   *compose.Facade
	Normalizer *normalize.Normalizer
	Citations  config.CitationPolicy

	// Cache is the Result Cache of spec.md §4.9. Nil disables caching.
	// Its key includes IndexFingerprint, so entries from a prior corpus
	// snapshot are never served after a reload even without an explicit
	// Purge — Swap purges anyway to bound memory growth across reloads.
	Cache *cache.Cache[AnswerEnvelope]

	// RetrieveCfg and ComposerModelTag feed the cache key only; they are
	// fixed for the orchestrator's lifetime (set once at construction,
	// untouched by Swap, which only replaces corpus-dependent fields).
	RetrieveCfg      config.RetrieveConfig
	ComposerModelTag string

	// mu guards the fields above against concurrent Swap calls, since the
	// corpus watcher reloads them from a background goroutine while
	// in-flight Process calls are reading them (spec.md §5 hot-swap).
	mu sync.RWMutex
}

// Swap atomically repoints the orchestrator at a freshly built Store,
// Retriever, and Composer, for corpus hot-reload. In-flight Process
// calls that already captured the previous dependencies run to
// completion unaffected; new calls see the swapped-in ones. The Result
// Cache is purged since every entry keyed to the old fingerprint is now
// unreachable dead weight.
func (o *Orchestrator) Swap(next *Orchestrator) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Store = next.Store
	o.Retriever = next.Retriever
	o.Composer = next.Composer
	o.Normalizer = next.Normalizer
	o.Citations = next.Citations
	if o.Cache != nil {
		o.Cache.Purge()
	}
}

// snapshot copies the dependency fields under the read lock so the rest
// of Process runs against a consistent view even if Swap runs concurrently.
func (o *Orchestrator) snapshot() (store *corpus.Store, retriever *retrieve.Retriever, composer *compose.Facade, normalizer *normalize.Normalizer, citations config.CitationPolicy) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Store, o.Retriever, o.Composer, o.Normalizer, o.Citations
}

// Process implements spec.md §4.8's process_query contract end to end.
func (o *Orchestrator) Process(ctx context.Context, req Request) (AnswerEnvelope, error) {
	start := time.Now()

	store, retriever, composer, normalizer, citationPolicy := o.snapshot()

	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	nq := req.Query
	if normalizer != nil {
		nq = normalizer.Normalize(req.Query)
	}

	var cacheKey cache.Key
	cacheable := o.Cache != nil && store != nil
	if cacheable {
		cacheKey = cache.Key{
			IndexFingerprint: store.Fingerprint(),
			NormalizedQuery:  nq,
			RerankerEnabled:  req.UseReranker,
			TopK:             topK,
			RetrieveM:        o.RetrieveCfg.RetrieveM,
			RerankN:          o.RetrieveCfg.RerankN,
			ComposerModelTag: o.ComposerModelTag,
		}
		if cached, ok := o.Cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	cls := classify(nq, req.Query, topK)
	filter := filterForType(store, cls.QueryType)

	retrieveOpts := retrieve.Options{
		TopK:        topK,
		UseReranker: req.UseReranker,
		Filter:      filter,
		CurrentYear: req.CurrentYear,
	}
	if cls.QueryType == QueryTypeEmergency {
		retrieveOpts.TopK = cls.CandidatePool
	}

	out, err := retriever.Retrieve(ctx, req.Query, retrieveOpts)
	if err != nil {
		return AnswerEnvelope{}, fmt.Errorf("retrieve: %w", err)
	}

	// Retry without filters if they zeroed out results, per spec.md §4.8 —
	// except emergency, which keeps the A1 restriction but widens its pool.
	if len(out.Results) == 0 && filter != nil {
		retryOpts := retrieveOpts
		if cls.QueryType == QueryTypeEmergency {
			retryOpts.TopK = 10 * topK
		} else {
			retryOpts.Filter = nil
		}
		out, err = retriever.Retrieve(ctx, req.Query, retryOpts)
		if err != nil {
			return AnswerEnvelope{}, fmt.Errorf("retrieve retry: %w", err)
		}
	}

	if topK < len(out.Results) {
		out.Results = out.Results[:topK]
	}

	citations, citationFallback := selectCitations(out.Results, citationPolicy)
	citationViews := make([]CitationView, 0, len(citations))
	for _, c := range citations {
		chunk, ok := store.Get(c.ChunkID)
		if !ok {
			continue
		}
		var score float64
		for _, r := range out.Results {
			if r.Chunk.ChunkID == c.ChunkID {
				score = r.Final
				break
			}
		}
		citationViews = append(citationViews, CitationView{
			DocID:   chunk.DocID,
			Authors: chunk.Authors,
			Journal: chunk.Journal,
			Year:    chunk.Year,
			Volume:  chunk.Volume,
			Pages:   chunk.Pages,
			DOI:     chunk.DOI,
			PMID:    chunk.PMID,
			Score:   score,
		})
	}

	answer := composer.Compose(ctx, req.Query, out.Results, safetyFlagStrings(cls.SafetyFlags), cls.IsEmergency)

	safety := safetyCheck(answer.AnswerText, cls.SafetyFlags)

	warnings := append([]string{}, out.Warnings...)
	warnings = append(warnings, answer.Warnings...)
	warnings = append(warnings, safety.Warnings...)
	if citationFallback {
		warnings = append(warnings, "citations: policy filtered all results, falling back to top-scoring non-book chunks")
	}

	confidence := 0.0
	if len(out.Results) > 0 {
		top := out.Results[0]
		confidence = clamp01((top.Precedence + top.Final) / 2)
	}

	fingerprint := ""
	if store != nil {
		fingerprint = store.Fingerprint()
	}

	envelope := AnswerEnvelope{
		Query:            req.Query,
		NormalizedQuery:  nq,
		QueryType:        cls.QueryType,
		IsEmergency:      cls.IsEmergency,
		ConfidenceScore:  confidence,
		SafetyFlags:      cls.SafetyFlags,
		NeedsReview:      safety.NeedsReview,
		Results:          out.Results,
		Citations:        citationViews,
		AnswerText:       answer.AnswerText,
		Warnings:         warnings,
		ModelUsed:        answer.ModelUsed,
		IndexFingerprint: fingerprint,
		LatencyMS:        time.Since(start).Milliseconds(),
	}

	if cacheable {
		o.Cache.Put(cacheKey, envelope)
	}

	return envelope, nil
}

func safetyFlagStrings(flags []SafetyFlag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
