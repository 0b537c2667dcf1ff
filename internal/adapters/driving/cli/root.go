// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/planbridge-labs/docrag/internal/adapters/driven/config/file"
	"github.com/planbridge-labs/docrag/internal/adapters/driven/embedding/ollama"
	"github.com/planbridge-labs/docrag/internal/adapters/driven/embedding/openai"
	"github.com/planbridge-labs/docrag/internal/adapters/driven/storage/sqlite"
	"github.com/planbridge-labs/docrag/internal/chunking"
	"github.com/planbridge-labs/docrag/internal/core/ports/driven"
	"github.com/planbridge-labs/docrag/internal/core/ports/driving"
	"github.com/planbridge-labs/docrag/internal/core/services"
	"github.com/planbridge-labs/docrag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. Wired in setupServices; tests inject
// fakes directly.
var (
	ragService driving.RAGService
	appConfig  file.Config
)

// closers collects resources to release after the command runs.
var closers []io.Closer

// Persistent flags.
var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Document search and retrieval for participant records",
	Long: `docrag ingests participant documents (PDF, DOCX, plain text),
splits them into sentence-aware chunks, optionally embeds them, and
serves ranked search results and generation-ready context windows.

Documents are keyword-searchable out of the box. Configure an embedding
provider (Ollama or OpenAI) in ~/.docrag/config.toml to enable semantic
search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupServices(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		for _, c := range closers {
			_ = c.Close()
		}
		closers = nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.docrag/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// setupServices loads config and wires the orchestrator. A preset
// ragService (from tests) is left alone.
func setupServices(cmd *cobra.Command) error {
	if ragService != nil {
		return nil
	}

	cfg, err := file.Load(flagConfig)
	if err != nil {
		return err
	}
	appConfig = cfg

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetVerbose(flagVerbose || cfg.Verbose)

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closers = append(closers, store)

	opts := []services.RAGOption{
		splitterFromConfig(cfg.Chunking),
		services.WithSearchDefaults(cfg.Search.TopK, cfg.Search.Threshold),
	}

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}
	if embedder != nil {
		closers = append(closers, embedder)
		opts = append(opts, services.WithEmbeddingService(embedder))
	}

	ragService = services.NewRAGOrchestrator(store.ChunkStore(), store.JobStore(), opts...)
	return nil
}

// splitterFromConfig maps chunking config onto splitter options.
func splitterFromConfig(cfg file.ChunkingConfig) services.RAGOption {
	return services.WithSplitter(chunking.New(
		chunking.WithChunkSize(cfg.ChunkSize),
		chunking.WithOverlap(cfg.Overlap),
		chunking.WithMinChunkSize(cfg.MinChunkSize),
		chunking.WithBoundaryWindow(cfg.BoundaryBack, cfg.BoundaryForward),
	))
}

// buildEmbedder constructs the configured embedding provider, or nil
// when none is configured.
func buildEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want ollama, openai or empty)", cfg.Provider)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
