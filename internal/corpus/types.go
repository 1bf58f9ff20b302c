// Package corpus implements the Chunk Store component of spec.md §4.2:
// an in-memory, read-mostly collection of chunk records plus the CPT-code
// and alias inverted indices.
package corpus

// AuthorityTier is the editorial level of a chunk's source document.
// A1 is the flagship comprehensive reference; A4 is a journal article.
type AuthorityTier string

const (
	TierA1      AuthorityTier = "A1"
	TierA2      AuthorityTier = "A2"
	TierA3      AuthorityTier = "A3"
	TierA4      AuthorityTier = "A4"
	TierUnknown AuthorityTier = "A4" // unknown enum values fall back to the lowest rank, per spec.md §9.
)

// ParseAuthorityTier parses a tier string, defaulting to the lowest rank
// for unrecognized values (spec.md §9 re-architecture note).
func ParseAuthorityTier(s string) AuthorityTier {
	switch AuthorityTier(s) {
	case TierA1, TierA2, TierA3, TierA4:
		return AuthorityTier(s)
	default:
		return TierUnknown
	}
}

// EvidenceLevel is the evidence-hierarchy grade of a chunk's source.
type EvidenceLevel string

const (
	EvidenceH1      EvidenceLevel = "H1"
	EvidenceH2      EvidenceLevel = "H2"
	EvidenceH3      EvidenceLevel = "H3"
	EvidenceH4      EvidenceLevel = "H4"
	EvidenceUnknown EvidenceLevel = "H3" // conservative default per spec.md §9 Open Questions.
)

// ParseEvidenceLevel parses an evidence string, defaulting to H3 when a
// guideline lacks explicit grading (spec.md §9 Open Questions).
func ParseEvidenceLevel(s string) EvidenceLevel {
	switch EvidenceLevel(s) {
	case EvidenceH1, EvidenceH2, EvidenceH3, EvidenceH4:
		return EvidenceLevel(s)
	default:
		return EvidenceUnknown
	}
}

// DocType enumerates the kinds of source document a chunk may belong to.
type DocType string

const (
	DocGuideline         DocType = "guideline"
	DocSystematicReview  DocType = "systematic_review"
	DocRCT               DocType = "rct"
	DocCohort            DocType = "cohort"
	DocCaseSeries        DocType = "case_series"
	DocNarrativeReview   DocType = "narrative_review"
	DocBookChapter       DocType = "book_chapter"
	DocCodingUpdate      DocType = "coding_update"
	DocJournalArticle    DocType = "journal_article"
	DocUnknown           DocType = "journal_article"
)

// ParseDocType parses a doc-type string, defaulting to journal_article
// for unrecognized values.
func ParseDocType(s string) DocType {
	switch DocType(s) {
	case DocGuideline, DocSystematicReview, DocRCT, DocCohort, DocCaseSeries,
		DocNarrativeReview, DocBookChapter, DocCodingUpdate, DocJournalArticle:
		return DocType(s)
	default:
		return DocUnknown
	}
}

// SectionType enumerates the structural role of a chunk within its document.
type SectionType string

const (
	SectionAbstract         SectionType = "abstract"
	SectionProcedureSteps   SectionType = "procedure_steps"
	SectionComplications    SectionType = "complications"
	SectionCoding           SectionType = "coding"
	SectionAblation         SectionType = "ablation"
	SectionBLVR             SectionType = "blvr"
	SectionContraindications SectionType = "contraindications"
	SectionDoseParameters   SectionType = "dose_parameters"
	SectionEligibility      SectionType = "eligibility"
	SectionTableRow         SectionType = "table_row"
	SectionTableFull        SectionType = "table_full"
	SectionGeneral          SectionType = "general"
)

// ParseSectionType parses a section-type string, defaulting to general.
func ParseSectionType(s string) SectionType {
	switch SectionType(s) {
	case SectionAbstract, SectionProcedureSteps, SectionComplications, SectionCoding,
		SectionAblation, SectionBLVR, SectionContraindications, SectionDoseParameters,
		SectionEligibility, SectionTableRow, SectionTableFull, SectionGeneral:
		return SectionType(s)
	default:
		return SectionGeneral
	}
}

// Chunk is the unit of retrieval, per spec.md §3. It is a closed record
// type — no dynamic attribute dictionary — per spec.md §9's
// re-architecture note on source "dynamic attribute-dictionary objects".
type Chunk struct {
	ChunkID      string        `json:"chunk_id"`
	DocID        string        `json:"doc_id"`
	Text         string        `json:"text"`
	SectionTitle string        `json:"section_title"`
	SectionType  SectionType   `json:"section_type"`
	AuthorityTier AuthorityTier `json:"authority_tier"`
	EvidenceLevel EvidenceLevel `json:"evidence_level"`
	DocType      DocType       `json:"doc_type"`
	Year         int           `json:"year"`
	Domain       []string      `json:"domain"`

	Authors []string `json:"authors,omitempty"`
	Journal string   `json:"journal,omitempty"`
	Volume  string   `json:"volume,omitempty"`
	Issue   string   `json:"issue,omitempty"`
	Pages   string   `json:"pages,omitempty"`
	DOI     string   `json:"doi,omitempty"`
	PMID    string   `json:"pmid,omitempty"`

	HasTable            bool `json:"has_table"`
	HasContraindication bool `json:"has_contraindication"`
	HasDoseSetting      bool `json:"has_dose_setting"`

	CPTCodes []string `json:"cpt_codes,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`

	// RowIndex is the chunk's stable position in the embedding matrix.
	RowIndex int `json:"-"`
}

// PrimaryDomain returns the chunk's first domain tag, or "other" if it has
// none — used to look up the recency half-life in internal/precedence.
func (c Chunk) PrimaryDomain() string {
	if len(c.Domain) == 0 {
		return "other"
	}
	return c.Domain[0]
}
