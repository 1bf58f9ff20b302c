package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/orchestrate"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

func TestToRetrievedChunk(t *testing.T) {
	r := retrieve.RetrievalResult{
		Chunk: corpus.Chunk{
			ChunkID:       "c1",
			DocID:         "doc1",
			SectionTitle:  "Emergency Management",
			AuthorityTier: corpus.AuthorityTier("A1"),
			EvidenceLevel: corpus.EvidenceLevel("H1"),
			Year:          2023,
			Text:          "massive hemoptysis protocol",
		},
		Final: 0.92,
	}
	out := toRetrievedChunk(r)
	assert.Equal(t, "c1", out.ChunkID)
	assert.Equal(t, "A1", out.AuthorityTier)
	assert.Equal(t, 0.92, out.Score)
}

func TestJoinAuthorsMultiple(t *testing.T) {
	assert.Equal(t, "Jane Doe, John Smith", joinAuthors([]string{"Jane Doe", "John Smith"}))
}

func TestJoinAuthorsEmpty(t *testing.T) {
	assert.Equal(t, "", joinAuthors(nil))
}

func TestToProcessQueryOutputFlattensSafetyFlags(t *testing.T) {
	env := orchestrate.AnswerEnvelope{
		QueryType:   orchestrate.QueryTypeSafety,
		SafetyFlags: []orchestrate.SafetyFlag{orchestrate.FlagDosage, orchestrate.FlagPediatric},
		Citations: []orchestrate.CitationView{
			{DocID: "doc1", Authors: []string{"Jane Doe"}, Score: 0.8},
		},
	}
	out := toProcessQueryOutput(env)
	assert.Equal(t, []string{"dosage", "pediatric"}, out.SafetyFlags)
	assert.Len(t, out.Citations, 1)
	assert.Equal(t, "Jane Doe", out.Citations[0].Authors)
}
