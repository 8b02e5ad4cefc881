package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Summarize the passages relevant to a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to retrieve (default from config)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := newSearch(ctx, cfg)
	if err != nil {
		return err
	}
	topK := queryTopK
	if topK == 0 {
		topK = cfg.Query.TopK
	}
	answer, err := svc.SearchAndSummarize(ctx, strings.Join(args, " "), topK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
