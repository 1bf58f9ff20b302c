package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ipassist/retrieval-core/internal/bm25"
	"github.com/ipassist/retrieval-core/internal/cache"
	"github.com/ipassist/retrieval-core/internal/compose"
	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/corpus"
	"github.com/ipassist/retrieval-core/internal/encode"
	"github.com/ipassist/retrieval-core/internal/normalize"
	"github.com/ipassist/retrieval-core/internal/orchestrate"
	"github.com/ipassist/retrieval-core/internal/retrieve"
	"github.com/ipassist/retrieval-core/internal/vector"
)

// system is the fully wired retrieval core: every component SPEC_FULL.md
// names, built from on-disk corpus and index artifacts.
type system struct {
	cfg          config.Config
	store        *corpus.Store
	orchestrator *orchestrate.Orchestrator
}

// buildSystem loads the corpus, builds the BM25 and (if present) dense
// indices, and wires the Hybrid Retriever, Composer Facade, and Query
// Orchestrator together per spec.md §4's component graph.
func buildSystem(cfg config.Config) (*system, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store := corpus.New()
	if err := store.Load(cfg.Paths.ChunksPath, 0); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	texts := make(map[string]string, store.Len())
	chunkIDs := make([]string, store.Len())
	for i, c := range store.All() {
		texts[c.ChunkID] = c.Text
		chunkIDs[i] = c.ChunkID
	}

	bmIndex, err := bm25.New()
	if err != nil {
		return nil, fmt.Errorf("create bm25 index: %w", err)
	}
	if err := bmIndex.IndexAll(texts); err != nil {
		return nil, fmt.Errorf("build bm25 index: %w", err)
	}

	var denseIndex *vector.Index
	var encoder encode.QueryEncoder
	dims, err := inferDimensions(cfg.Paths.EmbeddingsPath, len(chunkIDs))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("embeddings artifact: %w", err)
	}
	if err == nil && dims > 0 {
		store.SetDimension(dims)
		denseIndex, err = vector.LoadEmbeddings(cfg.Paths.EmbeddingsPath, chunkIDs, dims)
		if err != nil {
			slog.Warn("dense index unavailable, semantic component will be skipped", slog.String("error", err.Error()))
			denseIndex = nil
		} else if denseIndex != nil {
			encoder = encode.NewStubEncoder(dims)
		}
	} else {
		slog.Info("no embeddings configured, semantic component disabled",
			slog.String("embeddings_path", cfg.Paths.EmbeddingsPath))
	}

	var reranker encode.Reranker = encode.NoOpReranker{}
	if !cfg.Reranker.Enabled {
		reranker = nil
	}

	normalizer := normalize.New(85)

	retriever := &retrieve.Retriever{
		Store:             store,
		BM25:              bmIndex,
		Dense:             denseIndex,
		Encoder:           encoder,
		Reranker:          reranker,
		Normalizer:        normalizer,
		RerankConcurrency: cfg.Retrieve.RerankConcurrency,
	}

	composer := &compose.Facade{Backend: compose.FallbackBackend{}}

	resultCache := cache.New[orchestrate.AnswerEnvelope](
		cfg.Cache.MaxEntries,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
	)

	orchestrator := &orchestrate.Orchestrator{
		Store:            store,
		Retriever:        retriever,
		Composer:         composer,
		Normalizer:       normalizer,
		Citations:        cfg.Citations,
		Cache:            resultCache,
		RetrieveCfg:      cfg.Retrieve,
		ComposerModelTag: cfg.Cache.ComposerModelTag,
	}

	return &system{cfg: cfg, store: store, orchestrator: orchestrator}, nil
}

// inferDimensions derives the embedding dimension from the embedding
// artifact's file size, since spec.md §6's artifact carries no explicit
// dimension header: size == numChunks * dims * 4 bytes (float32). A
// missing or empty embeddings path yields (0, nil), meaning "no dense
// index configured" rather than an error.
func inferDimensions(path string, numChunks int) (int, error) {
	if path == "" || numChunks == 0 {
		return 0, nil
	}
	size, err := fileSize(path)
	if err != nil {
		return 0, err
	}
	const floatBytes = 4
	total := size / int64(numChunks*floatBytes)
	if total <= 0 || size%int64(numChunks*floatBytes) != 0 {
		return 0, fmt.Errorf("embeddings file %s size %d not divisible by %d chunks", path, size, numChunks)
	}
	return int(total), nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
