//go:build ignore

// Package main generates a synthetic clinical evidence ndjson corpus for
// benchmarking and load-testing the retrieval core.
// Usage: go run scripts/generate-test-corpus.go -chunks 5000 -output testdata/bench/corpus.ndjson
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
)

var (
	numChunks = flag.Int("chunks", 5000, "Number of chunks to generate")
	outputPath = flag.String("output", "testdata/bench/corpus.ndjson", "Output ndjson file path")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var sectionTypes = []string{
	"abstract", "procedure_steps", "complications", "coding", "ablation",
	"blvr", "contraindications", "dose_parameters", "eligibility",
	"table_row", "table_full", "general",
}

var authorityTiers = []string{"A1", "A2", "A3", "A4"}
var evidenceLevels = []string{"H1", "H2", "H3", "H4"}
var docTypes = []string{
	"guideline", "systematic_review", "rct", "cohort", "case_series",
	"narrative_review", "book_chapter", "coding_update", "journal_article",
}
var domains = []string{
	"bronchoscopy", "pleural_disease", "airway_stenting", "blvr",
	"ablation", "navigation", "ebus", "cryobiopsy", "thoracentesis",
}

var procedureNouns = []string{
	"endobronchial ultrasound", "electromagnetic navigation bronchoscopy",
	"bronchial thermoplasty", "endobronchial valve placement",
	"cryobiopsy", "rigid bronchoscopy", "pleuroscopy",
	"percutaneous tracheostomy", "airway stent placement",
	"radial probe EBUS", "robotic bronchoscopy", "balloon dilation",
}

var findingPhrases = []string{
	"demonstrated a reduction in procedure-related complications",
	"was associated with improved diagnostic yield for peripheral nodules",
	"showed no significant difference in 30-day mortality",
	"reported a pneumothorax rate consistent with prior literature",
	"supports consideration in patients with contraindications to surgery",
	"was well tolerated across the study population",
	"requires further prospective validation in larger cohorts",
}

var journals = []string{
	"Chest", "Journal of Bronchology & Interventional Pulmonology",
	"Respiration", "American Journal of Respiratory and Critical Care Medicine",
	"European Respiratory Journal",
}

var cptPool = []string{"31622", "31624", "31627", "31628", "31629", "31654", "32550", "32556"}

func randomWord(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

func randomSubset(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rand.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

type ingestRecord struct {
	ChunkID             string   `json:"chunk_id"`
	DocID               string   `json:"doc_id"`
	Text                string   `json:"text"`
	SectionTitle        string   `json:"section_title"`
	SectionType         string   `json:"section_type"`
	AuthorityTier       string   `json:"authority_tier"`
	EvidenceLevel       string   `json:"evidence_level"`
	DocType             string   `json:"doc_type"`
	Year                int      `json:"year"`
	Domain              []string `json:"domain"`
	Authors             []string `json:"authors,omitempty"`
	Journal             string   `json:"journal,omitempty"`
	Volume              string   `json:"volume,omitempty"`
	Pages               string   `json:"pages,omitempty"`
	DOI                 string   `json:"doi,omitempty"`
	PMID                string   `json:"pmid,omitempty"`
	HasTable            bool     `json:"has_table"`
	HasContraindication bool     `json:"has_contraindication"`
	HasDoseSetting      bool     `json:"has_dose_setting"`
	CPTCodes            []string `json:"cpt_codes,omitempty"`
	Aliases             []string `json:"aliases,omitempty"`
}

func generateChunk(index int) ingestRecord {
	docIndex := index / 8 // cluster ~8 chunks per synthetic document
	procedure := randomWord(procedureNouns)
	finding := randomWord(findingPhrases)
	journal := randomWord(journals)
	section := randomWord(sectionTypes)
	docType := randomWord(docTypes)
	year := 2008 + rand.Intn(18)

	text := fmt.Sprintf(
		"In a cohort evaluating %s, the study %s. Patients undergoing %s were followed for recurrence and procedural complications, with particular attention to contraindications and dosing parameters where applicable.",
		procedure, finding, procedure,
	)

	rec := ingestRecord{
		ChunkID:       fmt.Sprintf("chunk-%06d", index),
		DocID:         fmt.Sprintf("doc-%05d", docIndex),
		Text:          text,
		SectionTitle:  fmt.Sprintf("%s findings", procedure),
		SectionType:   section,
		AuthorityTier: randomWord(authorityTiers),
		EvidenceLevel: randomWord(evidenceLevels),
		DocType:       docType,
		Year:          year,
		Domain:        randomSubset(domains, 1+rand.Intn(2)),
		Authors:       []string{"Smith J", "Patel R"},
		Journal:       journal,
		Volume:        fmt.Sprintf("%d", 10+rand.Intn(40)),
		Pages:         fmt.Sprintf("%d-%d", 100+rand.Intn(900), 120+rand.Intn(900)),
		DOI:           fmt.Sprintf("10.1000/synthetic.%06d", index),
		HasTable:      rand.Intn(5) == 0,
		HasContraindication: rand.Intn(4) == 0,
		HasDoseSetting:      rand.Intn(6) == 0,
	}
	if rand.Intn(3) == 0 {
		rec.CPTCodes = randomSubset(cptPool, 1+rand.Intn(2))
	}
	return rec
}

func main() {
	flag.Parse()
	rand.Seed(*seed)

	f, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	enc := json.NewEncoder(w)
	for i := 0; i < *numChunks; i++ {
		if err := enc.Encode(generateChunk(i)); err != nil {
			fmt.Fprintf(os.Stderr, "error encoding chunk %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	fmt.Printf("generated %d chunks to %s\n", *numChunks, *outputPath)
}
