package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docqa/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Ask questions interactively in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log lines would corrupt the alternate screen.
		a, err := buildApp(io.Discard)
		if err != nil {
			return err
		}
		m := tui.New(a.router, a.summary(), a.cfg.Router.DefaultTopK, a.cfg.GeneratorTimeout())
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
