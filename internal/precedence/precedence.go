// Package precedence implements the Precedence Scorer of spec.md §4.6: a
// pure function computing a per-chunk static quality score from authority
// tier, evidence level, domain, and year. Grounded on
// original_source/src/retrieval/hybrid_retriever.py's calculate_precedence,
// which this algorithm matches field-for-field.
package precedence

import (
	"math"

	"github.com/ipassist/retrieval-core/internal/corpus"
)

// authorityWeights are the constants from spec.md §3.
var authorityWeights = map[corpus.AuthorityTier]float64{
	corpus.TierA1: 1.00,
	corpus.TierA2: 0.85,
	corpus.TierA3: 0.70,
	corpus.TierA4: 0.10,
}

const defaultAuthorityWeight = 0.10

// evidenceWeights are the constants from spec.md §3.
var evidenceWeights = map[corpus.EvidenceLevel]float64{
	corpus.EvidenceH1: 1.00,
	corpus.EvidenceH2: 0.75,
	corpus.EvidenceH3: 0.50,
	corpus.EvidenceH4: 0.25,
}

const defaultEvidenceWeight = 0.50

// halfLives are the domain-specific recency half-lives (years) from
// spec.md §3.
var halfLives = map[string]float64{
	"coding_billing":         3,
	"technology_navigation":  4,
	"ablation":               5,
}

const defaultHalfLife = 6.0

// A1RecencyFloor is the minimum recency component applied to A1 chunks,
// per spec.md §3 and §8 property 5. spec.md §9's Open Question about
// whether the floor should apply to the whole score or only the recency
// component is resolved here in favor of "only recency" (see DESIGN.md),
// exposed as a flag so callers can opt into the alternative interpretation.
const A1RecencyFloor = 0.70

// Options configures Score's feature-flag behavior (spec.md §9 Open Questions).
type Options struct {
	// ApplyFloorToWholeScore, when true, applies A1RecencyFloor to the
	// final blended score instead of just the recency component. Default
	// false, matching the documented source behavior.
	ApplyFloorToWholeScore bool
}

// Score computes precedence(chunk, currentYear) per spec.md §4.6. The
// result is guaranteed in [0,1] by the weight constants (property 2).
func Score(chunk corpus.Chunk, currentYear int, opts Options) float64 {
	authority, ok := authorityWeights[chunk.AuthorityTier]
	if !ok {
		authority = defaultAuthorityWeight
	}
	evidence, ok := evidenceWeights[chunk.EvidenceLevel]
	if !ok {
		evidence = defaultEvidenceWeight
	}

	age := currentYear - chunk.Year
	if chunk.Year == 0 {
		age = 10
	}
	if age < 0 {
		age = 0
	}

	halfLife, ok := halfLives[chunk.PrimaryDomain()]
	if !ok {
		halfLife = defaultHalfLife
	}

	recency := math.Pow(0.5, float64(age)/halfLife)

	isA1 := chunk.AuthorityTier == corpus.TierA1
	if isA1 && !opts.ApplyFloorToWholeScore {
		recency = math.Max(recency, A1RecencyFloor)
	}

	var blended float64
	switch {
	case isA1:
		blended = 0.70*authority + 0.20*recency + 0.10*evidence
	case chunk.AuthorityTier == corpus.TierA2 || chunk.AuthorityTier == corpus.TierA3:
		blended = 0.60*authority + 0.25*recency + 0.15*evidence
	default:
		blended = 0.30*recency + 0.30*evidence + 0.40*authority
	}

	if isA1 && opts.ApplyFloorToWholeScore {
		blended = math.Max(blended, A1RecencyFloor)
	}

	return blended
}
