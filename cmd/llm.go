package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM usage",
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show totals for recorded LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		totals, err := s.EventRepo().LLMUsage(context.Background())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if totals.Requests == 0 {
			fmt.Fprintln(out, "No LLM requests recorded.")
			return nil
		}
		fmt.Fprintf(out, "Requests:       %d (%d failed)\n", totals.Requests, totals.Failures)
		fmt.Fprintf(out, "Input tokens:   %d\n", totals.InputTokens)
		fmt.Fprintf(out, "Output tokens:  %d\n", totals.OutputTokens)
		fmt.Fprintf(out, "Estimated cost: $%.4f\n", totals.CostUSD)
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmUsageCmd)
}
