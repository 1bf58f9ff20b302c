package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/orchestrate"
)

func newQueryCmd() *cobra.Command {
	var topK int
	var useReranker bool
	var currentYear int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Run a one-shot query against the retrieval core",
		Long: `Build the retrieval core from the configured corpus and indices, run a
single query through the Query Orchestrator, and print the answer
envelope. Useful for smoke-testing a corpus without starting the MCP
server.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			sys, err := buildSystem(cfg)
			if err != nil {
				return fmt.Errorf("build retrieval core: %w", err)
			}

			req := orchestrate.Request{
				Query:       strings.Join(args, " "),
				TopK:        topK,
				UseReranker: useReranker,
				CurrentYear: currentYear,
			}
			if req.CurrentYear == 0 {
				req.CurrentYear = time.Now().Year()
			}

			answer, err := sys.orchestrator.Process(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("process query: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(answer)
			}

			fmt.Fprintf(out, "query type:  %s\n", answer.QueryType)
			if answer.IsEmergency {
				fmt.Fprintln(out, "** EMERGENCY QUERY **")
			}
			fmt.Fprintf(out, "confidence:  %.2f\n", answer.ConfidenceScore)
			if answer.NeedsReview {
				fmt.Fprintln(out, "needs review: yes")
			}
			for _, w := range answer.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, answer.AnswerText)
			fmt.Fprintln(out)
			for i, c := range answer.Citations {
				fmt.Fprintf(out, "[%d] %s (%d) %s\n", i+1, strings.Join(c.Authors, ", "), c.Year, c.Journal)
			}
			fmt.Fprintf(out, "\nlatency: %dms  index: %s\n", answer.LatencyMS, answer.IndexFingerprint)
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 5, "Number of results to return")
	cmd.Flags().BoolVar(&useReranker, "rerank", false, "Enable the cross-encoder reranker stage")
	cmd.Flags().IntVar(&currentYear, "current-year", 0, "Override the current year used for recency scoring (defaults to now)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full answer envelope as JSON")

	return cmd
}
