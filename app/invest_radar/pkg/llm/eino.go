package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoGenerator 基于 eino ChatModel 的实现，兼容 OpenAI 协议的服务
type EinoGenerator struct {
	chatModel model.BaseChatModel
}

// NewEinoGenerator 包装已有的 ChatModel
func NewEinoGenerator(cm model.BaseChatModel) *EinoGenerator {
	return &EinoGenerator{chatModel: cm}
}

// NewOpenAIGenerator 创建 OpenAI 兼容的推理实例
func NewOpenAIGenerator(ctx context.Context, baseURL, apiKey, modelName string, temperature float32, maxTokens int) (*EinoGenerator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       modelName,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewEinoGenerator(chatModel), nil
}

var _ Generator = (*EinoGenerator)(nil)

// Generate 实现 Generator
func (g *EinoGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: userPrompt},
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}
