package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNDJSON(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.ndjson")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleChunk(id string, extra string) string {
	return `{"chunk_id":"` + id + `","doc_id":"doc-1","text":"This is a detailed passage about bronchoscopy management with more than eighty tokens describing the procedure steps complications and outcomes in full clinical detail to exceed the boilerplate floor threshold for this synthetic test fixture record used only to validate loading behavior across many repeated filler words words words words words words words words words words.` + extra + `","section_title":"Procedure","section_type":"procedure_steps","authority_tier":"A2","evidence_level":"H2","doc_type":"rct","year":2021,"domain":["ablation"],"has_table":true}`
}

func TestLoadBuildsIndices(t *testing.T) {
	path := writeNDJSON(t, sampleChunk("c1", " CPT 31633 applies."), sampleChunk("c2", " different text entirely here."))
	s := New()
	require.NoError(t, s.Load(path, 384))

	assert.Equal(t, 2, s.Len())
	c, ok := s.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "doc-1", c.DocID)
	assert.Contains(t, c.CPTCodes, "31633")
	assert.NotEmpty(t, s.Fingerprint())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestLoadRejectsDuplicateChunkID(t *testing.T) {
	path := writeNDJSON(t, sampleChunk("dup", " a"), sampleChunk("dup", " b"))
	s := New()
	err := s.Load(path, 384)
	assert.Error(t, err)
}

func TestLoadDropsDuplicateTextWithinDoc(t *testing.T) {
	line := sampleChunk("c1", "")
	path := writeNDJSON(t, line, `{"chunk_id":"c2","doc_id":"doc-1","text":"This is a detailed passage about bronchoscopy management with more than eighty tokens describing the procedure steps complications and outcomes in full clinical detail to exceed the boilerplate floor threshold for this synthetic test fixture record used only to validate loading behavior across many repeated filler words words words words words words words words words words.","section_title":"Procedure","section_type":"procedure_steps","authority_tier":"A2","evidence_level":"H2","doc_type":"rct","year":2021,"domain":["ablation"]}`)
	s := New()
	require.NoError(t, s.Load(path, 384))
	assert.Equal(t, 1, s.Len())
}

func TestLoadDropsBoilerplate(t *testing.T) {
	path := writeNDJSON(t, `{"chunk_id":"c1","doc_id":"doc-1","text":"Copyright 2021 All rights reserved","section_type":"general","authority_tier":"A4","evidence_level":"H4","doc_type":"journal_article","year":2021,"domain":["other"]}`)
	s := New()
	require.NoError(t, s.Load(path, 384))
	assert.Equal(t, 0, s.Len())
}

func TestUnknownEnumFallsBackToLowestRank(t *testing.T) {
	assert.Equal(t, TierA4, ParseAuthorityTier("bogus"))
	assert.Equal(t, EvidenceH3, ParseEvidenceLevel("bogus"))
	assert.Equal(t, DocJournalArticle, ParseDocType("bogus"))
}
