package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/corpus"
)

// indexReport summarizes a corpus file's ingest outcome for validation
// and CI smoke checks, without standing up the full retrieval core.
type indexReport struct {
	ChunkCount  int    `json:"chunk_count"`
	Dimension   int    `json:"dimension"`
	Fingerprint string `json:"fingerprint"`
	Docs        int    `json:"doc_count"`
}

func newIndexCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load and validate a corpus ndjson file",
		Long: `Load the configured chunk file, run it through the same ingest
validation the server applies (boilerplate filtering, duplicate
collapsing, chunk_id collision detection), and report the resulting
chunk count and index fingerprint without starting a server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store := corpus.New()
			if err := store.Load(cfg.Paths.ChunksPath, 0); err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}

			docs := make(map[string]struct{})
			for _, c := range store.All() {
				docs[c.DocID] = struct{}{}
			}

			report := indexReport{
				ChunkCount:  store.Len(),
				Dimension:   store.Dimension(),
				Fingerprint: store.Fingerprint(),
				Docs:        len(docs),
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chunks:      %d\n", report.ChunkCount)
			fmt.Fprintf(out, "documents:   %d\n", report.Docs)
			fmt.Fprintf(out, "dimension:   %d\n", report.Dimension)
			fmt.Fprintf(out, "fingerprint: %s\n", report.Fingerprint)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	return cmd
}
