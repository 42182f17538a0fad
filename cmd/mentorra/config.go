package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mentorra/mentorra/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Mentorra configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/mentorra/config.yaml
Project-specific overrides can be placed in .mentorra.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", orUnset(cfg.Anthropic.Model))
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("router.max_mentors: %d\n", cfg.Router.MaxMentors)
	fmt.Printf("router.min_tag_matches: %d\n", cfg.Router.MinTagMatches)
	fmt.Printf("timeouts.agent: %s\n", cfg.Timeouts.Agent)
	fmt.Printf("timeouts.fanin: %s\n", cfg.Timeouts.FanIn)
	fmt.Printf("timeouts.global: %s\n", cfg.Timeouts.Global)
	fmt.Printf("grounding.enabled: %t\n", cfg.Grounding.Enabled)
	fmt.Printf("grounding.endpoint: %s\n", cfg.Grounding.Endpoint)
	fmt.Printf("grounding.timeout: %s\n", cfg.Grounding.Timeout)
	fmt.Printf("grounding.freshness_window: %s\n", cfg.Grounding.FreshnessWindow)
	fmt.Printf("synthesis.allow_partial_on_cancel: %t\n", cfg.Synthesis.AllowPartialOnCancel)
	fmt.Printf("storage.retention_days: %d\n", cfg.Storage.RetentionDays)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
	fmt.Printf("paths.personas: %s\n", orUnset(cfg.Paths.Personas))
	fmt.Printf("paths.prompts: %s\n", orUnset(cfg.Paths.Prompts))
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	if strings.EqualFold(key, "anthropic.api_key") {
		value = config.MaskAPIKey(value)
	}
	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return orUnset(cfg.Anthropic.Model), nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "router.max_mentors":
		return strconv.Itoa(cfg.Router.MaxMentors), nil
	case "router.min_tag_matches":
		return strconv.Itoa(cfg.Router.MinTagMatches), nil
	case "timeouts.agent":
		return cfg.Timeouts.Agent.String(), nil
	case "timeouts.fanin":
		return cfg.Timeouts.FanIn.String(), nil
	case "timeouts.global":
		return cfg.Timeouts.Global.String(), nil
	case "grounding.enabled":
		return strconv.FormatBool(cfg.Grounding.Enabled), nil
	case "grounding.endpoint":
		return cfg.Grounding.Endpoint, nil
	case "grounding.timeout":
		return cfg.Grounding.Timeout.String(), nil
	case "grounding.freshness_window":
		return cfg.Grounding.FreshnessWindow.String(), nil
	case "synthesis.allow_partial_on_cancel":
		return strconv.FormatBool(cfg.Synthesis.AllowPartialOnCancel), nil
	case "storage.retention_days":
		return strconv.Itoa(cfg.Storage.RetentionDays), nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	case "paths.personas":
		return orUnset(cfg.Paths.Personas), nil
	case "paths.prompts":
		return orUnset(cfg.Paths.Prompts), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_bedrock: %w", err)
		}
		cfg.Anthropic.UseBedrock = b
	case "router.max_mentors":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_mentors: %w", err)
		}
		if n < 1 {
			return fmt.Errorf("max_mentors must be at least 1, got %d", n)
		}
		cfg.Router.MaxMentors = n
	case "router.min_tag_matches":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for min_tag_matches: %w", err)
		}
		cfg.Router.MinTagMatches = n
	case "timeouts.agent":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.agent: %w", err)
		}
		cfg.Timeouts.Agent = d
	case "timeouts.fanin":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.fanin: %w", err)
		}
		cfg.Timeouts.FanIn = d
	case "timeouts.global":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.global: %w", err)
		}
		cfg.Timeouts.Global = d
	case "grounding.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for grounding.enabled: %w", err)
		}
		cfg.Grounding.Enabled = b
	case "grounding.endpoint":
		cfg.Grounding.Endpoint = value
	case "grounding.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for grounding.timeout: %w", err)
		}
		cfg.Grounding.Timeout = d
	case "grounding.freshness_window":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for grounding.freshness_window: %w", err)
		}
		cfg.Grounding.FreshnessWindow = d
	case "synthesis.allow_partial_on_cancel":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for allow_partial_on_cancel: %w", err)
		}
		cfg.Synthesis.AllowPartialOnCancel = b
	case "storage.retention_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for retention_days: %w", err)
		}
		cfg.Storage.RetentionDays = n
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for refresh_rate: %w", err)
		}
		cfg.TUI.RefreshRate = d
	case "paths.personas":
		cfg.Paths.Personas = value
	case "paths.prompts":
		cfg.Paths.Prompts = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
