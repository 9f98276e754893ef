package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <model>",
	Short: "Play a puzzle in the terminal",
	Long: `Load a puzzle from a JSON or YAML model file and play it interactively.

Every move and the final profile are recorded to the local store, and to
Postgres or MQTT when those sinks are configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}
