package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently completed sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		modelID, _ := cmd.Flags().GetString("model")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := s.EventRepo().RecentResults(context.Background(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No completed sessions found.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-16s  %-20s  %-9s  %6s  %5s  %-10s\n",
			"Session", "Completed", "Model", "Reason", "Score", "CS", "Overall")
		fmt.Fprintln(out, strings.Repeat("─", 116))
		for _, r := range results {
			if modelID != "" && r.ModelID != modelID {
				continue
			}
			model := r.ModelID
			if len(model) > 20 {
				model = model[:20]
			}
			fmt.Fprintf(out, "%-36s  %-16s  %-20s  %-9s  %6d  %5d  %-10s\n",
				r.SessionID,
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				model,
				r.Reason,
				r.Score,
				r.CompletionScore,
				r.Profile.Overall,
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the interactions and profile of one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		repo := s.EventRepo()
		events, err := repo.Interactions(ctx, args[0], store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query interactions: %w", err)
		}
		result, err := repo.Result(ctx, args[0])
		if err != nil {
			return fmt.Errorf("query result: %w", err)
		}
		if len(events) == 0 && result == nil {
			return fmt.Errorf("session %s not found", args[0])
		}

		out := cmd.OutOrStdout()
		for _, e := range events {
			fmt.Fprintf(out, "%3d  %s  %-20s  %s  score %d\n",
				e.Event.Seq,
				e.Event.Timestamp.Local().Format("15:04:05"),
				e.Event.Kind,
				describeEvent(e.Event),
				e.Score,
			)
		}

		if result == nil {
			fmt.Fprintln(out, "\nSession not completed.")
			return nil
		}
		p := result.Profile
		fmt.Fprintf(out, "\nCompleted by %s after %.0fs: score %d, completion score %d/100, %s\n",
			result.Reason, result.ElapsedSeconds, result.Score, result.CompletionScore, p.Overall)
		fmt.Fprintf(out, "Top skill: %s  Focus area: %s\n", p.TopSkill, p.FocusArea)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of sessions to show")
	historyCmd.Flags().String("model", "", "Only show sessions of this model ID")
	historyCmd.AddCommand(historyShowCmd)
}

func describeEvent(e eventlog.Event) string {
	switch {
	case e.Connection != nil:
		return fmt.Sprintf("%s → %s (%s)", e.Connection.Source, e.Connection.Target, e.Connection.Classification)
	case e.Inspection != nil:
		return e.Inspection.NodeID
	case e.Hint != nil:
		return fmt.Sprintf("#%d %s → %s", e.Hint.Index, e.Hint.Source, e.Hint.Target)
	}
	return ""
}
