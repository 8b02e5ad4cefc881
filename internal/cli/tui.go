package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragsearch/internal/tui"
)

type tuiPort = tui.RAGPort

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ask questions interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := newSearch(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(tui.New(cmd.Context(), svc, cfg.Query.TopK), tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
