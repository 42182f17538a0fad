package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mentorra/mentorra/internal/api"
	"github.com/mentorra/mentorra/internal/config"
)

// buildGenerator creates the model client from configuration.
// It fails fast with setup guidance when no credentials are available, so
// a run never starts that cannot make a single model call.
func buildGenerator(cfg *config.Config) (*api.Client, error) {
	var key string
	if !cfg.Anthropic.UseBedrock {
		var err error
		key, err = config.GetAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("no Anthropic API key found\n\n" +
				"Mentorra calls the Anthropic API to run your mentor panel.\n\n" +
				"Set your key with:\n" +
				"  export ANTHROPIC_API_KEY=sk-ant-...\n\n" +
				"or store it in the config:\n" +
				"  mentorra config anthropic.api_key sk-ant-...")
		}
		if err := config.ValidateAPIKey(key); err != nil {
			return nil, fmt.Errorf("invalid Anthropic API key: %w", err)
		}
	}

	return api.NewClient(api.ClientConfig{
		Model:      anthropic.Model(cfg.Anthropic.Model),
		APIKey:     key,
		UseBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:  cfg.Anthropic.AWSRegion,
		AWSProfile: cfg.Anthropic.AWSProfile,
	})
}
