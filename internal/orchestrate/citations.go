package orchestrate

import (
	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

// Citation is a display-ready citation entry produced by selectCitations.
type Citation struct {
	ChunkID string
	DocID   string
}

// selectCitations implements spec.md §4.8's select_citations step: filter
// the ranked list through the citation policy, dedup by doc_id, cap, and
// fall back to the top-scoring non-book chunks if the policy zeroes out.
// The second return value reports whether the fallback path fired (the
// policy kept nothing from a non-empty result list), so callers can record
// it in the answer envelope's warnings.
func selectCitations(results []retrieve.RetrievalResult, policy config.CitationPolicy) ([]Citation, bool) {
	allowed := toSet(policy.AllowedDocTypes)
	deniedDocTypes := toSet(policy.DeniedDocTypes)
	deniedTiers := toSet(policy.DeniedAuthorityTiers)

	maxCitations := policy.MaxCitations
	if maxCitations <= 0 {
		maxCitations = 10
	}
	fallbackCap := policy.FallbackCap
	if fallbackCap <= 0 {
		fallbackCap = 5
	}

	seen := map[string]bool{}
	var out []Citation
	for _, r := range results {
		docType := string(r.Chunk.DocType)
		tier := string(r.Chunk.AuthorityTier)
		if !allowed[docType] {
			continue
		}
		if deniedDocTypes[docType] {
			continue
		}
		if deniedTiers[tier] {
			continue
		}
		if seen[r.Chunk.DocID] {
			continue
		}
		seen[r.Chunk.DocID] = true
		out = append(out, Citation{ChunkID: r.Chunk.ChunkID, DocID: r.Chunk.DocID})
		if len(out) == maxCitations {
			return out, false
		}
	}
	if len(out) > 0 {
		return out, false
	}

	// Fallback: top-scoring non-book chunks, per spec.md §4.8.
	seen = map[string]bool{}
	for _, r := range results {
		if string(r.Chunk.DocType) == "book_chapter" {
			continue
		}
		if seen[r.Chunk.DocID] {
			continue
		}
		seen[r.Chunk.DocID] = true
		out = append(out, Citation{ChunkID: r.Chunk.ChunkID, DocID: r.Chunk.DocID})
		if len(out) == fallbackCap {
			break
		}
	}
	return out, len(results) > 0
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}
