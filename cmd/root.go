package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/config"
	"github.com/abhisek/conceptlink/internal/logging"
	"github.com/abhisek/conceptlink/internal/store"
)

// Loaded by the root command before any subcommand runs.
var (
	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "conceptlink [model]",
	Short: "Concept connection puzzles for critical thinking",
	Long: `ConceptLink is a terminal puzzle game: connect the concepts of a scenario
in the right direction and get a critical-thinking profile at the end.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runApp(cmd, args[0])
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CONCEPTLINK_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/conceptlink/conceptlink.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	l, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	appConfig = cfg
	logger = l
	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured store.path, then CONCEPTLINK_DB or the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" && appConfig != nil {
		p = appConfig.Store.Path
	}
	if p == "" {
		return store.DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create database directory: %w", err)
	}
	return p, nil
}

// openStore resolves the database path and opens it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("opened store", zap.String("path", dbPath))
	return st, nil
}
