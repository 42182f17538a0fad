package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// maxBriefTokens bounds a single mentor brief. Five short sections fit
// comfortably; anything longer is the model rambling.
const maxBriefTokens = 4096

// Generator is the single-call model boundary for mentor invocations.
// One Generate call is exactly one model query; any retry or repair
// policy lives with the caller.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Generate sends one system+user exchange and returns the joined text
// blocks of the reply.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxBriefTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	return result.String(), nil
}
