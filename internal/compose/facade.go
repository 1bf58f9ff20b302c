package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/ipassist/retrieval-core/internal/retrieve"
)

// promptTokenBudget bounds how many characters of chunk excerpt text are
// fed to the backend, a crude proxy for a token budget per spec.md §4.10
// ("top-N truncated by token budget").
const promptTokenBudget = 6000

// Answer is the Facade's output: the drafted answer plus the metadata
// needed to assemble an AnswerEnvelope.
type Answer struct {
	AnswerText       string
	UsedCitationIDs  []string
	ModelUsed        string
	Warnings         []string
}

// Facade implements the External Composer Facade of spec.md §4.10.
type Facade struct {
	Backend Backend
}

// Compose builds a prompt from rankedChunks, invokes the backend, and
// falls back to a safe enumeration (or the emergency protocol text) on
// backend failure. rankedChunks is never mutated.
func (f *Facade) Compose(ctx context.Context, query string, rankedChunks []retrieve.RetrievalResult, safetyFlags []string, isEmergency bool) Answer {
	prompt, usedIDs := buildPrompt(query, rankedChunks)

	if f.Backend == nil {
		return fallbackAnswer(query, rankedChunks, usedIDs, isEmergency, "no composer backend configured")
	}

	resp, err := f.Backend.Compose(ctx, Request{
		Query:       query,
		PromptText:  prompt,
		IsEmergency: isEmergency,
		SafetyFlags: safetyFlags,
	})
	if err != nil {
		return fallbackAnswer(query, rankedChunks, usedIDs, isEmergency, err.Error())
	}

	return Answer{
		AnswerText:      resp.AnswerText,
		UsedCitationIDs: usedIDs,
		ModelUsed:       resp.ModelUsed,
	}
}

// buildPrompt concatenates ranked chunk excerpts (in rank order) up to
// promptTokenBudget characters and returns the chunk ids actually
// included.
func buildPrompt(query string, rankedChunks []retrieve.RetrievalResult) (string, []string) {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nContext:\n")

	used := make([]string, 0, len(rankedChunks))
	budget := promptTokenBudget
	for _, r := range rankedChunks {
		excerpt := fmt.Sprintf("[%s] %s\n", r.Chunk.ChunkID, r.Chunk.Text)
		if len(excerpt) > budget {
			if budget <= 0 {
				break
			}
			excerpt = excerpt[:budget]
		}
		b.WriteString(excerpt)
		used = append(used, r.Chunk.ChunkID)
		budget -= len(excerpt)
		if budget <= 0 {
			break
		}
	}
	return b.String(), used
}

// fallbackAnswer implements spec.md §4.10's error path: a safe
// enumeration of top chunk excerpts, or the emergency protocol text when
// the query is an emergency, with the backend error surfaced as a warning.
func fallbackAnswer(query string, rankedChunks []retrieve.RetrievalResult, usedIDs []string, isEmergency bool, backendErr string) Answer {
	var text string
	if isEmergency {
		text = emergencyFallbackText(query)
	} else {
		text = safeEnumeration(rankedChunks)
	}
	return Answer{
		AnswerText:      text,
		UsedCitationIDs: usedIDs,
		ModelUsed:       "fallback",
		Warnings:        []string{"composer unavailable: " + backendErr},
	}
}

// safeEnumeration lists the top chunk excerpts verbatim when no backend
// is available to compose prose.
func safeEnumeration(rankedChunks []retrieve.RetrievalResult) string {
	if len(rankedChunks) == 0 {
		return "No relevant passages were found for this query."
	}
	var b strings.Builder
	b.WriteString("Composer unavailable. Top relevant passages:\n\n")
	limit := len(rankedChunks)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		r := rankedChunks[i]
		fmt.Fprintf(&b, "%d. (%s) %s\n", i+1, r.Chunk.ChunkID, r.Chunk.Text)
	}
	return b.String()
}

// FallbackBackend always returns an error, forcing the Facade onto its
// safe-fallback path. Used when no real composer is configured but a
// Backend value is still required by call sites.
type FallbackBackend struct{}

func (FallbackBackend) Compose(_ context.Context, _ Request) (Response, error) {
	return Response{}, fmt.Errorf("composer backend not configured")
}
