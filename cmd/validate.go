package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/conceptlink/internal/content"
	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/graph"
)

var validateCmd = &cobra.Command{
	Use:   "validate <model>...",
	Short: "Check puzzle model files",
	Long: `Load each model the same way play does (schema, version and graph checks)
and report every problem found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			m, err := content.LoadFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s\n", path)
				var verr *graph.ValidationError
				if errors.As(err, &verr) {
					for _, p := range verr.Problems {
						fmt.Fprintf(out, "    - %s\n", p)
					}
				} else {
					fmt.Fprintf(out, "    - %v\n", err)
				}
				continue
			}
			threshold := m.Threshold(game.DefaultThreshold)
			if appConfig != nil && appConfig.Game.Threshold > 0 {
				threshold = appConfig.Game.Threshold
			}
			fmt.Fprintf(out, "✓ %s  %s (%s): %d nodes, %d required links, %d to finish\n",
				path, m.ID, m.Version, len(m.Nodes), len(m.Solution),
				game.RequiredCorrect(len(m.Solution), threshold))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d models failed validation", failed, len(args))
		}
		return nil
	},
}
