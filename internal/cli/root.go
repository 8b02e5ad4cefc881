// Package cli provides the command-line interface for ragsearch.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ragsearch/internal/app"
	"ragsearch/internal/config"
	"ragsearch/internal/logger"
	"ragsearch/internal/service"
)

var (
	cfgPath string
	verbose bool
	rebuild bool

	// cfg is resolved in PersistentPreRunE before any subcommand runs.
	cfg *config.AppConfig

	// newSearch constructs the orchestrator; tests replace it.
	newSearch func(ctx context.Context, cfg *config.AppConfig) (searcher, error) = func(ctx context.Context, cfg *config.AppConfig) (searcher, error) {
		return app.NewRAGSearch(ctx, cfg)
	}
)

// searcher is the subset of service.RAGSearch used by commands.
type searcher interface {
	tuiPort
	LLMModel() string
}

var _ searcher = (*service.RAGSearch)(nil)

var rootCmd = &cobra.Command{
	Use:   "ragsearch",
	Short: "Ask questions about a local document corpus",
	Long: `ragsearch retrieves the passages of a local corpus most similar to a
question and asks a language model to summarize them.

The vector index is built from the data directory on first use and persisted
as faiss.index and metadata.pkl in the persist directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/ragsearch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline details to stderr")
	rootCmd.PersistentFlags().BoolVar(&rebuild, "rebuild", false, "rebuild the index from the data directory")
}

func setup(_ *cobra.Command, _ []string) error {
	logger.Setup(nil, verbose)

	var err error
	path := cfgPath
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if rebuild {
		cfg.Index.Mode = string(service.IndexModeBuild)
	}
	log.Debug().Str("config", path).Str("persist_dir", cfg.Index.PersistDir).Msg("configuration loaded")
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
