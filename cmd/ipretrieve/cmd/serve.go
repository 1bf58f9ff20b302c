package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ipassist/retrieval-core/internal/config"
	"github.com/ipassist/retrieval-core/internal/lock"
	"github.com/ipassist/retrieval-core/internal/logging"
	ipretrievemcp "github.com/ipassist/retrieval-core/internal/mcp"
	"github.com/ipassist/retrieval-core/internal/telemetry"
	"github.com/ipassist/retrieval-core/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var transport string
	var telemetryPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Start the Query Orchestrator as an MCP server, exposing process_query
and retrieve tools to AI assistants.

The server watches the configured corpus file for changes and hot-swaps
its Chunk Store without a restart.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), transport, telemetryPath)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport (only stdio is supported)")
	cmd.Flags().StringVar(&telemetryPath, "telemetry-db", "", "Optional SQLite path for advisory query telemetry")

	return cmd
}

func runServe(ctx context.Context, transport, telemetryPath string) error {
	// MCP over stdio reserves stdout exclusively for JSON-RPC; all
	// diagnostics go to the log file or stderr, never stdout.
	logCfg := logging.DefaultConfig()
	if debug {
		logCfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	instanceLock := lock.New(filepath.Dir(cfg.Paths.ChunksPath))
	acquired, err := instanceLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("another ipretrieve server already has %s locked", instanceLock.Path())
	}
	defer instanceLock.Unlock()

	sys, err := buildSystem(cfg)
	if err != nil {
		return fmt.Errorf("build retrieval core: %w", err)
	}
	slog.Info("corpus loaded",
		slog.Int("chunks", sys.store.Len()),
		slog.String("fingerprint", sys.store.Fingerprint()))

	if telemetryPath != "" {
		sink, err := telemetry.NewSQLiteSink(telemetryPath)
		if err != nil {
			slog.Warn("telemetry sink unavailable, continuing without it", slog.String("error", err.Error()))
		} else {
			defer sink.Close()
			_ = telemetry.New(cfg.Telemetry.ZeroResultBuffer, sink)
		}
	}

	server, err := ipretrievemcp.NewServer(sys.orchestrator)
	if err != nil {
		return fmt.Errorf("create mcp server: %w", err)
	}

	corpusWatcher, err := watcher.NewHybridWatcher(watcher.DefaultOptions())
	if err != nil {
		slog.Warn("corpus watcher unavailable, hot-reload disabled", slog.String("error", err.Error()))
	} else {
		watchCtx, cancelWatch := context.WithCancel(ctx)
		defer cancelWatch()
		go watchCorpus(watchCtx, corpusWatcher, cfg, sys)
		go func() {
			if err := corpusWatcher.Start(watchCtx, cfg.Paths.ChunksPath); err != nil && watchCtx.Err() == nil {
				slog.Warn("corpus watcher stopped", slog.String("error", err.Error()))
			}
		}()
		defer corpusWatcher.Stop()
	}

	return server.Serve(ctx, transport)
}

// watchCorpus reloads the corpus and its indices in place whenever the
// configured chunk file changes on disk, per spec.md §5's hot-swap
// requirement: queries in flight keep running against the old Store
// while a new one is built, then the orchestrator is atomically repointed.
func watchCorpus(ctx context.Context, w *watcher.HybridWatcher, cfg config.Config, sys *system) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.Events():
			if !ok {
				return
			}
			reload := false
			for _, evt := range batch {
				if evt.Operation == watcher.OpModify || evt.Operation == watcher.OpCreate {
					reload = true
				}
			}
			if !reload {
				continue
			}
			slog.Info("corpus file changed, reloading")
			newSys, err := buildSystem(cfg)
			if err != nil {
				slog.Error("corpus reload failed, keeping previous index", slog.String("error", err.Error()))
				continue
			}
			sys.orchestrator.Swap(newSys.orchestrator)
			sys.store = newSys.store
			slog.Info("corpus reload complete",
				slog.Int("chunks", sys.store.Len()),
				slog.String("fingerprint", sys.store.Fingerprint()))
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			slog.Warn("corpus watcher error", slog.String("error", err.Error()))
		}
	}
}
