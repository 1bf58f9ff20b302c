package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/retrieve"
)

type stubBackend struct {
	resp Response
	err  error
}

func (s stubBackend) Compose(_ context.Context, _ Request) (Response, error) {
	return s.resp, s.err
}

func sampleChunks() []retrieve.RetrievalResult {
	return []retrieve.RetrievalResult{
		{Chunk: corpus.Chunk{ChunkID: "c1", Text: "bronchoscopy technique details"}},
		{Chunk: corpus.Chunk{ChunkID: "c2", Text: "follow-up care instructions"}},
	}
}

func TestComposeUsesBackendOnSuccess(t *testing.T) {
	f := &Facade{Backend: stubBackend{resp: Response{AnswerText: "drafted answer", ModelUsed: "gpt-test"}}}
	answer := f.Compose(context.Background(), "how to perform bronchoscopy", sampleChunks(), nil, false)
	assert.Equal(t, "drafted answer", answer.AnswerText)
	assert.Equal(t, "gpt-test", answer.ModelUsed)
	assert.Empty(t, answer.Warnings)
	assert.ElementsMatch(t, []string{"c1", "c2"}, answer.UsedCitationIDs)
}

func TestComposeFallsBackOnBackendError(t *testing.T) {
	f := &Facade{Backend: FallbackBackend{}}
	answer := f.Compose(context.Background(), "routine follow-up", sampleChunks(), nil, false)
	require.NotEmpty(t, answer.Warnings)
	assert.Contains(t, answer.AnswerText, "Top relevant passages")
}

func TestComposeFallsBackToEmergencyProtocol(t *testing.T) {
	f := &Facade{Backend: FallbackBackend{}}
	answer := f.Compose(context.Background(), "massive hemoptysis management", sampleChunks(), nil, true)
	assert.Contains(t, answer.AnswerText, "MASSIVE_HEMOPTYSIS")
}

func TestComposeNeverMutatesRankedChunks(t *testing.T) {
	chunks := sampleChunks()
	f := &Facade{Backend: stubBackend{resp: Response{AnswerText: "ok"}}}
	_ = f.Compose(context.Background(), "q", chunks, nil, false)
	assert.Equal(t, "c1", chunks[0].Chunk.ChunkID)
	assert.Equal(t, "bronchoscopy technique details", chunks[0].Chunk.Text)
}

func TestFormatAuthorAMASingleName(t *testing.T) {
	assert.Equal(t, "Smith", formatAuthorAMA("Smith"))
}

func TestFormatAuthorAMATwoParts(t *testing.T) {
	assert.Equal(t, "Smith J", formatAuthorAMA("John Smith"))
}

func TestFormatAuthorAMAAlreadyFormatted(t *testing.T) {
	assert.Equal(t, "Smith JA", formatAuthorAMA("Smith JA"))
}

func TestExtractAuthorFromDocIDAuthorYearPattern(t *testing.T) {
	assert.Equal(t, "Schweigert", extractAuthorFromDocID("Schweigert-2019-Interventional treatment"))
}

func TestBuildAMACitationWithJournal(t *testing.T) {
	text := BuildAMACitation([]string{"John Smith"}, "doc1", "A Study", "Chest", "160", "100-110", "10.1/xyz", 2021)
	assert.Equal(t, "Smith J. A Study. Chest. 2021;160:100-110. doi:10.1/xyz.", text)
}
