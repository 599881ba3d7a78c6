package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeGenerator Anthropic Claude 实现
type ClaudeGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClaudeGenerator 创建 Claude 推理实例
func NewClaudeGenerator(apiKey, modelName string, maxTokens int, temperature float32) *ClaudeGenerator {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &ClaudeGenerator{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

var _ Generator = (*ClaudeGenerator)(nil)

// Generate 实现 Generator
func (g *ClaudeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if g.temperature > 0 {
		params.Temperature = anthropic.Float(float64(g.temperature))
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
