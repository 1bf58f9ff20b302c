package corpus

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	ipretrieveerrors "github.com/ipassist/retrieval-core/internal/errors"
)

const schemaVersion = "1"

// boilerplatePatterns catches common non-content passages (copyright
// notices, running headers, empty tables of contents) that spec.md §3
// requires be dropped when under the 80-token floor.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)all rights reserved`),
	regexp.MustCompile(`(?i)^table of contents$`),
	regexp.MustCompile(`(?i)^references\s*$`),
	regexp.MustCompile(`(?i)^copyright\s+\d{4}`),
	regexp.MustCompile(`(?i)this page intentionally left blank`),
}

const boilerplateTokenFloor = 80

// ingestRecord mirrors the ingestion input contract of spec.md §6. All
// optional fields default per spec.md §3 when absent.
type ingestRecord struct {
	ChunkID      string   `json:"chunk_id"`
	DocID        string   `json:"doc_id"`
	Text         string   `json:"text"`
	SectionTitle string   `json:"section_title"`
	SectionType  string   `json:"section_type"`
	AuthorityTier string  `json:"authority_tier"`
	EvidenceLevel string  `json:"evidence_level"`
	DocType      string   `json:"doc_type"`
	Year         int      `json:"year"`
	Domain       []string `json:"domain"`

	Authors []string `json:"authors"`
	Journal string   `json:"journal"`
	Volume  string   `json:"volume"`
	Issue   string   `json:"issue"`
	Pages   string   `json:"pages"`
	DOI     string   `json:"doi"`
	PMID    string   `json:"pmid"`

	HasTable            bool `json:"has_table"`
	HasContraindication bool `json:"has_contraindication"`
	HasDoseSetting      bool `json:"has_dose_setting"`

	CPTCodes []string `json:"cpt_codes"`
	Aliases  []string `json:"aliases"`
}

var cptTokenPattern = regexp.MustCompile(`\b\d{5}\b`)

// Store is the build-once, read-only Chunk Store of spec.md §4.2.
type Store struct {
	chunks     []Chunk
	byID       map[string]int
	byDocID    map[string][]int
	cptIndex   map[string][]string
	aliasIndex map[string][]string
	dimension  int
	fingerprint string
}

// New returns an empty Store; call Load to populate it.
func New() *Store {
	return &Store{
		byID:       make(map[string]int),
		byDocID:    make(map[string][]int),
		cptIndex:   make(map[string][]string),
		aliasIndex: make(map[string][]string),
	}
}

// Load parses a newline-delimited chunk record stream, builds the
// id/doc-id maps, populates the CPT/alias inverted indices from each
// record's cpt_codes and aliases (extracting 5-digit tokens from the text
// when a record lists no cpt_codes), and computes the
// index fingerprint. chunk_id collisions are a fatal ingest error per
// spec.md §3.
func (s *Store) Load(path string, embeddingDim int) error {
	f, err := os.Open(path)
	if err != nil {
		return ipretrieveerrors.New(ipretrieveerrors.ErrCodeCorpusAbsent, "corpus file not found", err)
	}
	defer f.Close()

	seenHash := make(map[string]map[string]struct{}) // docID -> set of normalized text hashes

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec ingestRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return ipretrieveerrors.New(ipretrieveerrors.ErrCodeFileCorrupt, fmt.Sprintf("malformed ingest record: %v", err), err)
		}

		if isBoilerplate(rec.Text) {
			continue
		}

		if _, exists := s.byID[rec.ChunkID]; exists {
			return ipretrieveerrors.New(ipretrieveerrors.ErrCodeChunkIDCollision,
				fmt.Sprintf("duplicate chunk_id %q", rec.ChunkID), nil)
		}

		norm := normalizedHash(rec.Text)
		if seenHash[rec.DocID] == nil {
			seenHash[rec.DocID] = make(map[string]struct{})
		}
		if _, dup := seenHash[rec.DocID][norm]; dup {
			continue // duplicate text within doc_id, per spec.md §3 invariant.
		}
		seenHash[rec.DocID][norm] = struct{}{}

		chunk := Chunk{
			ChunkID:             rec.ChunkID,
			DocID:               rec.DocID,
			Text:                rec.Text,
			SectionTitle:        rec.SectionTitle,
			SectionType:         ParseSectionType(rec.SectionType),
			AuthorityTier:       ParseAuthorityTier(rec.AuthorityTier),
			EvidenceLevel:       ParseEvidenceLevel(rec.EvidenceLevel),
			DocType:             ParseDocType(rec.DocType),
			Year:                rec.Year,
			Domain:              rec.Domain,
			Authors:             rec.Authors,
			Journal:             rec.Journal,
			Volume:              rec.Volume,
			Issue:               rec.Issue,
			Pages:               rec.Pages,
			DOI:                 rec.DOI,
			PMID:                rec.PMID,
			HasTable:            rec.HasTable,
			HasContraindication: rec.HasContraindication,
			HasDoseSetting:      rec.HasDoseSetting,
			CPTCodes:            rec.CPTCodes,
			Aliases:             rec.Aliases,
			RowIndex:            row,
		}

		if len(chunk.CPTCodes) == 0 {
			chunk.CPTCodes = extractCPTCodes(chunk.Text)
		}

		s.byID[chunk.ChunkID] = len(s.chunks)
		s.byDocID[chunk.DocID] = append(s.byDocID[chunk.DocID], len(s.chunks))
		s.chunks = append(s.chunks, chunk)

		for _, cpt := range chunk.CPTCodes {
			key := strings.ToLower(cpt)
			s.cptIndex[key] = append(s.cptIndex[key], chunk.ChunkID)
		}
		for _, alias := range chunk.Aliases {
			key := strings.ToLower(alias)
			s.aliasIndex[key] = append(s.aliasIndex[key], chunk.ChunkID)
		}

		row++
	}
	if err := scanner.Err(); err != nil {
		return ipretrieveerrors.New(ipretrieveerrors.ErrCodeFileCorrupt, "failed reading corpus file", err)
	}

	s.dimension = embeddingDim
	s.fingerprint = computeFingerprint(len(s.chunks), embeddingDim, schemaVersion)
	return nil
}

// LoadTermIndex reads an optional externally-supplied term index file
// (newline-delimited {"term": <CPT code or alias>, "chunks": [chunk_id...]}
// records) into a new map keyed by the case-folded term, per spec.md §6.
// A missing file yields an empty map; malformed lines are skipped.
func LoadTermIndex(path string) (map[string][]string, error) {
	idx := make(map[string][]string)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	type rec struct {
		Term   string   `json:"term"`
		Chunks []string `json:"chunks"`
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var r rec
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		idx[strings.ToLower(r.Term)] = append(idx[strings.ToLower(r.Term)], r.Chunks...)
	}
	return idx, scanner.Err()
}

// Get looks up a chunk by id. Unknown ids return ok=false per spec.md §4.2.
func (s *Store) Get(chunkID string) (Chunk, bool) {
	idx, ok := s.byID[chunkID]
	if !ok {
		return Chunk{}, false
	}
	return s.chunks[idx], true
}

// ByDocID returns every chunk belonging to docID.
func (s *Store) ByDocID(docID string) []Chunk {
	idxs := s.byDocID[docID]
	out := make([]Chunk, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.chunks[i])
	}
	return out
}

// All returns every chunk in ingest order.
func (s *Store) All() []Chunk {
	return s.chunks
}

// Len returns the corpus size.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Dimension returns the embedding dimension declared at load time.
func (s *Store) Dimension() int {
	return s.dimension
}

// SetDimension updates the declared embedding dimension and recomputes the
// fingerprint, for callers that only learn the true dimension after
// inspecting the embedding artifact's file size (spec.md §6's embedding
// artifact carries no explicit dimension header).
func (s *Store) SetDimension(dim int) {
	s.dimension = dim
	s.fingerprint = computeFingerprint(len(s.chunks), dim, schemaVersion)
}

// Fingerprint returns the opaque index fingerprint summarizing corpus
// size, embedding dimension, and schema version, per spec.md §3 Lifecycle.
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

// LookupCPT returns chunk ids whose CPT index contains code.
func (s *Store) LookupCPT(code string) []string {
	return s.cptIndex[strings.ToLower(code)]
}

// LookupAlias returns chunk ids whose alias index contains form.
func (s *Store) LookupAlias(form string) []string {
	return s.aliasIndex[strings.ToLower(form)]
}

// AliasSurfaceForms returns every known alias surface form, used by the
// Hybrid Retriever to scan a normalized query for exact alias hits.
func (s *Store) AliasSurfaceForms() []string {
	forms := make([]string, 0, len(s.aliasIndex))
	for form := range s.aliasIndex {
		forms = append(forms, form)
	}
	return forms
}

func computeFingerprint(corpusSize, dim int, schema string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s", corpusSize, dim, schema)))
	return hex.EncodeToString(h[:])[:16]
}

func normalizedHash(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])
}

func isBoilerplate(text string) bool {
	tokenCount := len(strings.Fields(text))
	if tokenCount >= boilerplateTokenFloor {
		return false
	}
	for _, p := range boilerplatePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func extractCPTCodes(text string) []string {
	matches := cptTokenPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
