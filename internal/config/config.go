// Package config handles configuration loading and management for Mentorra.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Mentorra.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Router    RouterConfig    `mapstructure:"router"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Grounding GroundingConfig `mapstructure:"grounding"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	TUI       TUIConfig       `mapstructure:"tui"`
	Paths     PathsConfig     `mapstructure:"paths"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. May contain ${VAR} references.
	APIKey string `mapstructure:"api_key"`
	// Model overrides the default model when non-empty.
	Model string `mapstructure:"model"`
	// UseBedrock routes calls through AWS Bedrock instead of the direct API.
	UseBedrock bool `mapstructure:"use_bedrock"`
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string `mapstructure:"aws_profile"`
}

// RouterConfig holds mentor selection settings.
type RouterConfig struct {
	// MaxMentors caps how many mentor personas a single run may select.
	MaxMentors int `mapstructure:"max_mentors"`
	// MinTagMatches is the tag-overlap score a persona needs to qualify.
	MinTagMatches int `mapstructure:"min_tag_matches"`
}

// TimeoutsConfig holds the pipeline timeout settings.
type TimeoutsConfig struct {
	// Agent bounds a single mentor invocation, including its repair attempt.
	Agent time.Duration `mapstructure:"agent"`
	// FanIn bounds the collection of all mentor results.
	FanIn time.Duration `mapstructure:"fanin"`
	// Global bounds an entire advisory run end to end.
	Global time.Duration `mapstructure:"global"`
}

// GroundingConfig holds market grounding settings.
type GroundingConfig struct {
	// Enabled toggles the best-effort market scan.
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the market scan service URL.
	Endpoint string `mapstructure:"endpoint"`
	// Timeout bounds the grounding fetch.
	Timeout time.Duration `mapstructure:"timeout"`
	// FreshnessWindow is how old scan data may be and still count as fresh.
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
}

// SynthesisConfig holds plan synthesis settings.
type SynthesisConfig struct {
	// AllowPartialOnCancel emits a plan from already-collected briefs
	// when a run is cancelled mid-flight.
	AllowPartialOnCancel bool `mapstructure:"allow_partial_on_cancel"`
}

// StorageConfig holds run-history storage settings.
type StorageConfig struct {
	// RetentionDays is how long completed runs are kept before purge.
	RetentionDays int `mapstructure:"retention_days"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// PathsConfig holds optional overrides for the bundled registry documents.
type PathsConfig struct {
	// Personas points at an external persona registry YAML. Empty uses the
	// embedded registry.
	Personas string `mapstructure:"personas"`
	// Prompts points at an external prompt library YAML. Empty uses the
	// embedded library.
	Prompts string `mapstructure:"prompts"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.mentorra.yaml in current directory or parent)
// 3. User config (~/.config/mentorra/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("")

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("grounding.endpoint", "MENTORRA_GROUNDING_ENDPOINT")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("router.max_mentors", cfg.Router.MaxMentors)
	v.Set("router.min_tag_matches", cfg.Router.MinTagMatches)
	v.Set("timeouts.agent", cfg.Timeouts.Agent.String())
	v.Set("timeouts.fanin", cfg.Timeouts.FanIn.String())
	v.Set("timeouts.global", cfg.Timeouts.Global.String())
	v.Set("grounding.enabled", cfg.Grounding.Enabled)
	v.Set("grounding.endpoint", cfg.Grounding.Endpoint)
	v.Set("grounding.timeout", cfg.Grounding.Timeout.String())
	v.Set("grounding.freshness_window", cfg.Grounding.FreshnessWindow.String())
	v.Set("synthesis.allow_partial_on_cancel", cfg.Synthesis.AllowPartialOnCancel)
	v.Set("storage.retention_days", cfg.Storage.RetentionDays)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())
	v.Set("paths.personas", cfg.Paths.Personas)
	v.Set("paths.prompts", cfg.Paths.Prompts)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("router.max_mentors", 4)
	v.SetDefault("router.min_tag_matches", 1)

	v.SetDefault("timeouts.agent", "30s")
	v.SetDefault("timeouts.fanin", "45s")
	v.SetDefault("timeouts.global", "90s")

	v.SetDefault("grounding.enabled", true)
	v.SetDefault("grounding.endpoint", "https://scan.mentorra.dev/v1/competitors")
	v.SetDefault("grounding.timeout", "10s")
	v.SetDefault("grounding.freshness_window", "168h")

	v.SetDefault("synthesis.allow_partial_on_cancel", false)

	v.SetDefault("storage.retention_days", 90)

	v.SetDefault("tui.refresh_rate", "100ms")

	v.SetDefault("paths.personas", "")
	v.SetDefault("paths.prompts", "")
}

// getUserConfigDir returns the XDG config directory for Mentorra.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mentorra")
	}

	// Fall back to ~/.config/mentorra
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "mentorra")
	}
	return filepath.Join(home, ".config", "mentorra")
}

// findProjectConfig searches for .mentorra.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".mentorra.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			APIKey: "",
		},
		Router: RouterConfig{
			MaxMentors:    4,
			MinTagMatches: 1,
		},
		Timeouts: TimeoutsConfig{
			Agent:  30 * time.Second,
			FanIn:  45 * time.Second,
			Global: 90 * time.Second,
		},
		Grounding: GroundingConfig{
			Enabled:         true,
			Endpoint:        "https://scan.mentorra.dev/v1/competitors",
			Timeout:         10 * time.Second,
			FreshnessWindow: 168 * time.Hour,
		},
		Synthesis: SynthesisConfig{
			AllowPartialOnCancel: false,
		},
		Storage: StorageConfig{
			RetentionDays: 90,
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
