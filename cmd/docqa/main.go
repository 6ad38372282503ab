package main

import (
	"os"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "docqa",
	Short:        "Answer questions from a folder of text documents",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file (default ./config.yaml, then ~/.config/docqa/config.yaml)")
}
