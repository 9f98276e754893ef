// Package config loads conceptlink settings from a YAML file, environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/hints"
	"github.com/abhisek/conceptlink/internal/llm"
	"github.com/abhisek/conceptlink/internal/logging"
	"github.com/abhisek/conceptlink/internal/scoring"
)

// EnvPrefix prefixes every environment override, e.g. CONCEPTLINK_GAME_MAX_HINTS.
const EnvPrefix = "CONCEPTLINK"

// Config is the top-level configuration structure.
type Config struct {
	Game      GameConfig      `mapstructure:"game"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       logging.Config  `mapstructure:"log"`
	Sinks     SinksConfig     `mapstructure:"sinks"`
	Leads     LeadsConfig     `mapstructure:"leads"`
	LLM       llm.Config      `mapstructure:"llm"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// GameConfig holds gameplay settings. A zero Threshold defers to the model.
type GameConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	MaxHints  int     `mapstructure:"max_hints"`
}

// ScoringConfig mirrors scoring.Config.
type ScoringConfig struct {
	Mode               string          `mapstructure:"mode"`
	CorrectPoints      int             `mapstructure:"correct_points"`
	WrongPenalty       int             `mapstructure:"wrong_penalty"`
	HintPenalty        int             `mapstructure:"hint_penalty"`
	Weights            scoring.Weights `mapstructure:"weights"`
	TimeBonusThreshold time.Duration   `mapstructure:"time_bonus_threshold"`
}

// AnalyticsConfig holds profile settings.
type AnalyticsConfig struct {
	TargetRate float64 `mapstructure:"target_rate"`
}

// StoreConfig locates the SQLite database. An empty Path uses the default
// data directory.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SinksConfig configures where session records are sent besides the store.
type SinksConfig struct {
	QueueSize    int            `mapstructure:"queue_size"`
	WriteTimeout time.Duration  `mapstructure:"write_timeout"`
	Postgres     PostgresConfig `mapstructure:"postgres"`
	MQTT         MQTTConfig     `mapstructure:"mqtt"`
}

// PostgresConfig enables the Postgres sink when DSN is set.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// MQTTConfig enables the MQTT sink when Broker is set.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         int    `mapstructure:"qos"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// LeadsConfig enables lead capture when URL is set.
type LeadsConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

// setDefaults registers every key so environment variables can override it.
func setDefaults(v *viper.Viper) {
	sc := scoring.DefaultConfig()
	v.SetDefault("game.threshold", 0.0)
	v.SetDefault("game.max_hints", hints.DefaultMaxHints)

	v.SetDefault("scoring.mode", string(sc.Mode))
	v.SetDefault("scoring.correct_points", sc.CorrectPoints)
	v.SetDefault("scoring.wrong_penalty", sc.WrongPenalty)
	v.SetDefault("scoring.hint_penalty", sc.HintPenalty)
	v.SetDefault("scoring.weights.accuracy", sc.Weights.Accuracy)
	v.SetDefault("scoring.weights.required_coverage", sc.Weights.RequiredCoverage)
	v.SetDefault("scoring.weights.time_bonus", sc.Weights.TimeBonus)
	v.SetDefault("scoring.weights.efficiency", sc.Weights.Efficiency)
	v.SetDefault("scoring.time_bonus_threshold", sc.TimeBonusThreshold)

	v.SetDefault("analytics.target_rate", analytics.DefaultTargetRate)

	v.SetDefault("store.path", "")

	lc := logging.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.directory", lc.Directory)
	v.SetDefault("log.max_size", lc.MaxSize)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age", lc.MaxAge)
	v.SetDefault("log.compress", lc.Compress)
	v.SetDefault("log.console", lc.Console)

	v.SetDefault("sinks.queue_size", 256)
	v.SetDefault("sinks.write_timeout", 5*time.Second)
	v.SetDefault("sinks.postgres.dsn", "")
	v.SetDefault("sinks.mqtt.broker", "")
	v.SetDefault("sinks.mqtt.client_id", "")
	v.SetDefault("sinks.mqtt.topic_prefix", "conceptlink/sessions")
	v.SetDefault("sinks.mqtt.qos", 0)
	v.SetDefault("sinks.mqtt.username", "")
	v.SetDefault("sinks.mqtt.password", "")

	v.SetDefault("leads.url", "")
	v.SetDefault("leads.queue", "conceptlink.leads")

	lm := llm.DefaultConfig()
	v.SetDefault("llm.provider", lm.Provider)
	for name, pc := range map[string]llm.ProviderConfig{
		"anthropic":  lm.Anthropic,
		"openai":     lm.OpenAI,
		"gemini":     lm.Gemini,
		"openrouter": lm.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", pc.APIKey)
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}
	v.SetDefault("llm.retry.max_attempts", lm.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lm.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lm.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lm.Retry.Multiplier)
	v.SetDefault("llm.timeout", lm.Timeout)
}

// searchPaths lists the directories searched for conceptlink.yaml.
func searchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "conceptlink"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "conceptlink"))
	}
	return append(paths, ".")
}

// Load reads the configuration. When path is empty conceptlink.yaml is
// searched for and a missing file is not an error; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
		v.SetConfigName("conceptlink")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if _, err := cfg.GameConfig(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ScoringConfig returns the scoring settings.
func (c *Config) ScoringConfig() scoring.Config {
	return scoring.Config{
		Mode:               scoring.Mode(c.Scoring.Mode),
		CorrectPoints:      c.Scoring.CorrectPoints,
		WrongPenalty:       c.Scoring.WrongPenalty,
		HintPenalty:        c.Scoring.HintPenalty,
		Weights:            c.Scoring.Weights,
		TimeBonusThreshold: c.Scoring.TimeBonusThreshold,
	}
}

// GameConfig returns validated gameplay settings for game.WithConfig.
func (c *Config) GameConfig() (game.Config, error) {
	sc := c.ScoringConfig()
	if err := sc.Validate(); err != nil {
		return game.Config{}, err
	}
	if t := c.Game.Threshold; t < 0 || t > 1 {
		return game.Config{}, fmt.Errorf("game.threshold must be in (0, 1], got %g", t)
	}
	if c.Game.MaxHints < 0 {
		return game.Config{}, fmt.Errorf("game.max_hints must not be negative, got %d", c.Game.MaxHints)
	}
	if c.Analytics.TargetRate <= 0 {
		return game.Config{}, fmt.Errorf("analytics.target_rate must be positive, got %g", c.Analytics.TargetRate)
	}
	return game.Config{
		Threshold: c.Game.Threshold,
		MaxHints:  c.Game.MaxHints,
		Scoring:   sc,
		Analytics: analytics.Config{TargetRate: c.Analytics.TargetRate},
	}, nil
}
