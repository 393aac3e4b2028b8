// Package coach turns a ScoringResult into a short natural-language summary of a workout,
// using an LLM to narrate the zone breakdown a user already has as numbers. It is a thin
// optional layer on top of the scoring core: nothing here participates in stamina math.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

// Client narrates ScoringResult values with an OpenAI chat model.
type Client struct {
	client openai.Client
	logger *slog.Logger
	model  openai.ChatModel
}

// New returns a Client authenticated with apiKey that uses the GPT-4o model.
func New(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
		model:  openai.ChatModelGPT4o,
	}
}

// Narrate asks the model for a two-or-three sentence summary of a completed workout's
// ScoringResult. It never blocks zone computation or persistence; callers treat a failure
// here as "no narrative available" rather than a scoring error.
func (c *Client) Narrate(ctx context.Context, result scoring.ScoringResult) (string, error) {
	prompt := buildPrompt(result)

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	}

	c.logger.DebugContext(ctx, "sending chat completion request",
		"model", c.model, "zone_count", len(result.ZoneBreakdown))

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}

	content := completion.Choices[0].Message.Content
	c.logger.DebugContext(ctx, "received chat completion response",
		"total_tokens", completion.Usage.TotalTokens, "content_length", len(content))

	return content, nil
}

const systemPrompt = `You are a terse, encouraging endurance running coach. Given a ` +
	`workout's zone breakdown (minutes and stamina points earned per ventilatory zone), ` +
	`write two or three sentences summarizing the session. Mention the dominant zone by ` +
	`name and total stamina earned. Do not invent numbers that were not given to you.`

func buildPrompt(result scoring.ScoringResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total stamina gained: %.1f\n", result.StaminaGained)
	for _, entry := range result.ZoneBreakdown {
		fmt.Fprintf(&b, "%s: %.1f minutes, %.1f stamina\n", entry.Zone, entry.Minutes, entry.StaminaGained)
	}
	return b.String()
}
