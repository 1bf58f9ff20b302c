package mcp

// ProcessQueryInput is the input schema for the process_query tool.
type ProcessQueryInput struct {
	Query       string `json:"query" jsonschema:"the clinical question to answer"`
	TopK        int    `json:"top_k,omitempty" jsonschema:"number of evidence chunks to retrieve, default 5"`
	UseReranker bool   `json:"use_reranker,omitempty" jsonschema:"whether to apply cross-encoder reranking to the candidate pool"`
}

// ProcessQueryOutput is the output schema for the process_query tool.
type ProcessQueryOutput struct {
	QueryType       string             `json:"query_type" jsonschema:"classified query type: emergency, coding, procedure, safety, or clinical"`
	IsEmergency     bool               `json:"is_emergency" jsonschema:"true if the query matched a life-threatening emergency pattern"`
	ConfidenceScore float64            `json:"confidence_score" jsonschema:"blended precedence/relevance score of the top result, 0 to 1"`
	SafetyFlags     []string           `json:"safety_flags,omitempty" jsonschema:"safety considerations detected in the query: dosage, pediatric, pregnancy, contraindication, allergy, and emergency for emergency queries"`
	NeedsReview     bool               `json:"needs_review" jsonschema:"true if the drafted answer left more than two safety flags unaddressed"`
	AnswerText      string             `json:"answer_text" jsonschema:"the composed answer, or a safe enumeration fallback when the composer backend is unavailable"`
	Citations       []CitationOutput   `json:"citations" jsonschema:"evidence citations backing the answer, with author names as stored in the corpus"`
	Results         []RetrievedChunk   `json:"results" jsonschema:"ranked evidence chunks considered for this query"`
	Warnings        []string           `json:"warnings,omitempty" jsonschema:"degradation notices, e.g. missing dense index or reranker failure"`
	ModelUsed       string             `json:"model_used,omitempty" jsonschema:"identifier of the composer backend that drafted the answer"`
	IndexFingerprint string            `json:"index_fingerprint" jsonschema:"hash identifying the corpus snapshot this answer was computed against"`
	LatencyMS       int64              `json:"latency_ms" jsonschema:"end-to-end processing time in milliseconds"`
}

// CitationOutput is one citation entry in the process_query response.
type CitationOutput struct {
	DocID   string  `json:"doc_id"`
	Authors string  `json:"authors,omitempty"`
	Journal string  `json:"journal,omitempty"`
	Year    int     `json:"year,omitempty"`
	DOI     string  `json:"doi,omitempty"`
	PMID    string  `json:"pmid,omitempty"`
	Score   float64 `json:"score"`
}

// RetrievedChunk is one ranked evidence chunk in a tool response.
type RetrievedChunk struct {
	ChunkID       string  `json:"chunk_id"`
	DocID         string  `json:"doc_id"`
	SectionTitle  string  `json:"section_title,omitempty"`
	AuthorityTier string  `json:"authority_tier"`
	EvidenceLevel string  `json:"evidence_level"`
	Year          int     `json:"year"`
	Text          string  `json:"text"`
	Score         float64 `json:"score"`
	Reranked      bool    `json:"reranked,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query       string `json:"query" jsonschema:"the search query to execute against the evidence corpus"`
	TopK        int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return, default 5"`
	UseReranker bool   `json:"use_reranker,omitempty" jsonschema:"whether to apply cross-encoder reranking"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results  []RetrievedChunk `json:"results"`
	Warnings []string         `json:"warnings,omitempty"`
}
