package mcp

import (
	"github.com/ipassist/retrieval-core/internal/orchestrate"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

// toRetrievedChunk converts a ranked retrieval result to its MCP output shape.
func toRetrievedChunk(r retrieve.RetrievalResult) RetrievedChunk {
	return RetrievedChunk{
		ChunkID:       r.Chunk.ChunkID,
		DocID:         r.Chunk.DocID,
		SectionTitle:  r.Chunk.SectionTitle,
		AuthorityTier: string(r.Chunk.AuthorityTier),
		EvidenceLevel: string(r.Chunk.EvidenceLevel),
		Year:          r.Chunk.Year,
		Text:          r.Chunk.Text,
		Score:         r.Final,
		Reranked:      r.Reranked,
	}
}

func toRetrievedChunks(results []retrieve.RetrievalResult) []RetrievedChunk {
	out := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		out = append(out, toRetrievedChunk(r))
	}
	return out
}

// toCitationOutput flattens an orchestrator citation view for MCP output,
// joining its author names as given.
func toCitationOutput(c orchestrate.CitationView) CitationOutput {
	return CitationOutput{
		DocID:   c.DocID,
		Authors: joinAuthors(c.Authors),
		Journal: c.Journal,
		Year:    c.Year,
		DOI:     c.DOI,
		PMID:    c.PMID,
		Score:   c.Score,
	}
}

func toCitationOutputs(citations []orchestrate.CitationView) []CitationOutput {
	out := make([]CitationOutput, 0, len(citations))
	for _, c := range citations {
		out = append(out, toCitationOutput(c))
	}
	return out
}

func joinAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		s := authors[0]
		for _, a := range authors[1:] {
			s += ", " + a
		}
		return s
	}
}

// toProcessQueryOutput converts a full answer envelope to the process_query
// tool's output schema.
func toProcessQueryOutput(env orchestrate.AnswerEnvelope) ProcessQueryOutput {
	flags := make([]string, len(env.SafetyFlags))
	for i, f := range env.SafetyFlags {
		flags[i] = string(f)
	}

	return ProcessQueryOutput{
		QueryType:        string(env.QueryType),
		IsEmergency:      env.IsEmergency,
		ConfidenceScore:  env.ConfidenceScore,
		SafetyFlags:      flags,
		NeedsReview:      env.NeedsReview,
		AnswerText:       env.AnswerText,
		Citations:        toCitationOutputs(env.Citations),
		Results:          toRetrievedChunks(env.Results),
		Warnings:         env.Warnings,
		ModelUsed:        env.ModelUsed,
		IndexFingerprint: env.IndexFingerprint,
		LatencyMS:        env.LatencyMS,
	}
}
