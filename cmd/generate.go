package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/content"
	"github.com/abhisek/conceptlink/internal/llm"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Author a new puzzle with an LLM",
	Long: `Ask the configured LLM provider for a new puzzle model, validate it exactly as
a loaded model is validated, and write it to --out (JSON or YAML by extension).

The provider comes from the llm section of the config. When no API key is
configured there, the standard vendor variables (ANTHROPIC_API_KEY,
OPENAI_API_KEY, GEMINI_API_KEY, OPENROUTER_API_KEY) are tried in order.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "Scenario topic (required)")
	generateCmd.Flags().String("audience", "", "Who the puzzle is for")
	generateCmd.Flags().Int("nodes", 6, "Approximate number of concept nodes")
	generateCmd.Flags().String("notes", "", "Extra guidance for the author")
	generateCmd.Flags().String("out", "", "Output file, .json or .yaml (required)")
	generateCmd.Flags().Bool("force", false, "Overwrite an existing output file")
	_ = generateCmd.MarkFlagRequired("topic")
	_ = generateCmd.MarkFlagRequired("out")
}

// resolveLLMConfig prefers the configured provider and falls back to the
// vendors' own environment variables.
func resolveLLMConfig(cfg llm.Config) (llm.Config, error) {
	err := cfg.Validate()
	if err == nil {
		return cfg, nil
	}
	discovered, ok := llm.DiscoverConfig()
	if !ok {
		return llm.Config{}, err
	}
	if cfg.Timeout > 0 {
		discovered.Timeout = cfg.Timeout
	}
	return discovered, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	audience, _ := cmd.Flags().GetString("audience")
	nodes, _ := cmd.Flags().GetInt("nodes")
	notes, _ := cmd.Flags().GetString("notes")
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := content.FormatFor(out); err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}
	}

	llmCfg, err := resolveLLMConfig(appConfig.LLM)
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}

	// Usage is recorded when the store can be opened; generation works without it.
	var usage llm.UsageRecorder
	if st, err := openStore(cmd); err != nil {
		logger.Warn("LLM usage will not be recorded", zap.Error(err))
	} else {
		defer st.Close()
		usage = st.EventRepo()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), llmCfg.Timeout)
	defer cancel()
	ctx = llm.WithPurpose(ctx, "generate-model")

	provider, err := llm.NewProvider(ctx, llmCfg, logger, usage)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating %q with %s...\n", topic, provider.ModelID())
	gen := content.NewGenerator(provider, content.DefaultGeneratorConfig())
	model, err := gen.Generate(ctx, content.Brief{
		Topic:    topic,
		Audience: audience,
		Nodes:    nodes,
		Notes:    notes,
	})
	if err != nil {
		return fmt.Errorf("generate model: %w", err)
	}

	if err := content.WriteFile(out, model); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %s (%d nodes, %d required links)\n",
		out, model.Title, len(model.Nodes), len(model.Solution))
	return nil
}
