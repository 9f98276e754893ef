package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `mapstructure:"provider"`

	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Retry      RetryConfig    `mapstructure:"retry"`

	// Timeout bounds a single generation including retries.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProviderConfig holds the credentials and model of one provider. BaseURL
// is honoured by the OpenAI-compatible providers only.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Provider-specific aliases kept for readability at call sites.
type (
	AnthropicConfig  = ProviderConfig
	OpenAIConfig     = ProviderConfig
	GeminiConfig     = ProviderConfig
	OpenRouterConfig = ProviderConfig
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults. Authoring whole
// puzzles needs a stronger model than single-question generation, so the
// defaults lean to the larger tiers.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  ProviderConfig{Model: "claude-sonnet"},
		OpenAI:     ProviderConfig{Model: "gpt-4.1"},
		Gemini:     ProviderConfig{Model: "gemini-pro"},
		OpenRouter: ProviderConfig{Model: "anthropic/claude-sonnet-4"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// DiscoverConfig probes the vendors' standard API key variables and
// returns a Config for the first provider whose key is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env      string
		provider string
		target   *ProviderConfig
	}{
		{"ANTHROPIC_API_KEY", "anthropic", &cfg.Anthropic},
		{"OPENAI_API_KEY", "openai", &cfg.OpenAI},
		{"GEMINI_API_KEY", "gemini", &cfg.Gemini},
		{"OPENROUTER_API_KEY", "openrouter", &cfg.OpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			p.target.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Selected returns the configuration of the active provider.
func (c Config) Selected() ProviderConfig {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic
	case "openai":
		return c.OpenAI
	case "gemini":
		return c.Gemini
	case "openrouter":
		return c.OpenRouter
	}
	return ProviderConfig{}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini", "openrouter":
		if c.Selected().APIKey == "" {
			return fmt.Errorf("CONCEPTLINK_LLM_%s_API_KEY is required for the %s provider", envName(c.Provider), c.Provider)
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

func envName(provider string) string {
	return strings.ToUpper(provider)
}
