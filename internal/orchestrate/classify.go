package orchestrate

import (
	"regexp"

	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/retrieve"
	"github.com/ipassist/retrieval-core/internal/vector"
)

// QueryType is the single-label classification of spec.md §4.8's classify step.
type QueryType string

const (
	QueryTypeEmergency QueryType = "emergency"
	QueryTypeCoding    QueryType = "coding"
	QueryTypeProcedure QueryType = "procedure"
	QueryTypeSafety    QueryType = "safety"
	QueryTypeClinical  QueryType = "clinical"
)

// SafetyFlag is one multi-label safety concern surfaced by classify and
// later checked for in the drafted answer by safety_check.
type SafetyFlag string

const (
	FlagDosage           SafetyFlag = "dosage"
	FlagPediatric        SafetyFlag = "pediatric"
	FlagPregnancy        SafetyFlag = "pregnancy"
	FlagContraindication SafetyFlag = "contraindication"
	FlagAllergy          SafetyFlag = "allergy"
	FlagEmergency        SafetyFlag = "emergency"
)

// codingPattern, procedurePattern classify query_type, per spec.md §4.8.
// Grounded on the teacher's internal/search/patterns.go regex-classifier
// style (package-level compiled patterns, one function per label).
var (
	codingPattern    = regexp.MustCompile(`(?i)cpt|code|bill|reimburs|rvu`)
	procedurePattern = regexp.MustCompile(`(?i)procedure|technique|step|how to|perform`)

	dosageFlagPattern           = regexp.MustCompile(`(?i)dos(age|e)`)
	pediatricFlagPattern        = regexp.MustCompile(`(?i)pediatric|child|infant`)
	pregnancyFlagPattern        = regexp.MustCompile(`(?i)pregnan`)
	contraindicationFlagPattern = regexp.MustCompile(`(?i)contraindicat`)
	allergyFlagPattern          = regexp.MustCompile(`(?i)allerg`)
)

// Classification is the output of classify, per spec.md §4.8. Filter is
// resolved separately by filterForType once a Chunk Store is available.
type Classification struct {
	IsEmergency   bool
	SafetyFlags   []SafetyFlag
	QueryType     QueryType
	TopK          int
	CandidatePool int
}

// classify implements the classify state of spec.md §4.8's state machine.
func classify(normalizedQuery, rawQuery string, defaultTopK int) Classification {
	isEmergency := retrieve.IsEmergency(normalizedQuery) || retrieve.IsEmergency(rawQuery)

	flags := detectSafetyFlags(normalizedQuery)
	if isEmergency {
		flags = appendFlag(flags, FlagEmergency)
	}

	qt := classifyType(normalizedQuery, isEmergency, flags)

	c := Classification{
		IsEmergency:   isEmergency,
		SafetyFlags:   flags,
		QueryType:     qt,
		TopK:          defaultTopK,
		CandidatePool: defaultTopK,
	}
	if qt == QueryTypeEmergency {
		c.CandidatePool = 10
	}
	return c
}

func classifyType(q string, isEmergency bool, flags []SafetyFlag) QueryType {
	if isEmergency {
		return QueryTypeEmergency
	}
	if codingPattern.MatchString(q) {
		return QueryTypeCoding
	}
	if procedurePattern.MatchString(q) {
		return QueryTypeProcedure
	}
	if hasAnyFlag(flags, FlagContraindication, FlagAllergy, FlagPregnancy) {
		return QueryTypeSafety
	}
	return QueryTypeClinical
}

func detectSafetyFlags(q string) []SafetyFlag {
	var flags []SafetyFlag
	if dosageFlagPattern.MatchString(q) {
		flags = append(flags, FlagDosage)
	}
	if pediatricFlagPattern.MatchString(q) {
		flags = append(flags, FlagPediatric)
	}
	if pregnancyFlagPattern.MatchString(q) {
		flags = append(flags, FlagPregnancy)
	}
	if contraindicationFlagPattern.MatchString(q) {
		flags = append(flags, FlagContraindication)
	}
	if allergyFlagPattern.MatchString(q) {
		flags = append(flags, FlagAllergy)
	}
	return flags
}

func appendFlag(flags []SafetyFlag, f SafetyFlag) []SafetyFlag {
	for _, existing := range flags {
		if existing == f {
			return flags
		}
	}
	return append(flags, f)
}

func hasAnyFlag(flags []SafetyFlag, targets ...SafetyFlag) bool {
	for _, f := range flags {
		for _, t := range targets {
			if f == t {
				return true
			}
		}
	}
	return false
}

// filterForType builds the per-type metadata filter of spec.md §4.8 over
// the loaded Chunk Store, resolving chunk ids to full chunks for the
// predicate.
func filterForType(store *corpus.Store, qt QueryType) vector.Filter {
	switch qt {
	case QueryTypeEmergency:
		return func(chunkID string) bool {
			chunk, ok := store.Get(chunkID)
			return ok && chunk.AuthorityTier == corpus.TierA1
		}
	case QueryTypeCoding:
		return func(chunkID string) bool {
			chunk, ok := store.Get(chunkID)
			return ok && chunk.HasTable
		}
	case QueryTypeSafety:
		return func(chunkID string) bool {
			chunk, ok := store.Get(chunkID)
			return ok && chunk.HasContraindication
		}
	default:
		return nil
	}
}
