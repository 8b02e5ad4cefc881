package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show details of the persisted index",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	svc, err := newSearch(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	info := svc.Info()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Persist dir:     %s\n", cfg.Index.PersistDir)
	fmt.Fprintf(out, "Build ID:        %s\n", info.BuildID)
	fmt.Fprintf(out, "Created:         %s\n", info.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Embedder:        %s (%s)\n", info.Embedder, info.EmbeddingModel)
	fmt.Fprintf(out, "Dimension:       %d\n", info.Dimension)
	fmt.Fprintf(out, "Documents:       %d\n", info.Documents)
	fmt.Fprintf(out, "Chunks:          %d\n", info.Chunks)
	fmt.Fprintf(out, "Language model:  %s\n", svc.LLMModel())
	if info.Digest != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, info.Digest)
	}
	return nil
}
