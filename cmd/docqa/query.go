package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docqa/internal/index"
	"docqa/internal/service"
)

var (
	flagQueryTopK int
	flagAskTopK   int
	flagSource    string
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Rank corpus chunks against text without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(os.Stderr)
		if err != nil {
			return err
		}
		hits, err := a.holder.Query(strings.Join(args, " "), index.QueryOptions{
			TopK:           flagQueryTopK,
			SourceContains: flagSource,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(out, "No results.")
			return nil
		}
		for i, h := range hits {
			fmt.Fprintf(out, "[%d] %s (chunk %d)  score=%.4f\n", i+1, h.Chunk.Source, h.Chunk.ChunkID, h.Score)
			fmt.Fprintf(out, "    %s\n", service.Excerpt(strings.ReplaceAll(h.Chunk.Text, "\n", " "), a.cfg.Router.ExcerptChars))
		}
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the citations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(os.Stderr)
		if err != nil {
			return err
		}
		resp, err := a.router.Ask(context.Background(), service.AskRequest{
			Message: strings.Join(args, " "),
			TopK:    flagAskTopK,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, resp.Answer)
		if len(resp.Citations) > 0 {
			fmt.Fprintln(out)
		}
		for _, c := range resp.Citations {
			fmt.Fprintf(out, "[%d] %s (chunk %d)  score=%.4f\n", c.Rank, c.Source, c.ChunkID, c.Score)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&flagQueryTopK, "top-k", 5, "number of results")
	queryCmd.Flags().StringVar(&flagSource, "source", "", "only search sources whose name contains this text")
	askCmd.Flags().IntVar(&flagAskTopK, "top-k", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(queryCmd, askCmd)
}
