package factory

import (
	"context"
	"fmt"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
)

// NewGenerator 根据配置创建推理实例，并接入共享限流器
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	var (
		gen llm.Generator
		err error
	)

	switch cfg.LLM.Provider {
	case "openai", "":
		gen, err = llm.NewOpenAIGenerator(ctx, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	case "gemini":
		gen, err = llm.NewGeminiGenerator(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
	case "claude":
		gen = llm.NewClaudeGenerator(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}

	limiter := llm.NewLimiter(cfg.Concurrency.RPM, cfg.Concurrency.QPS)
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limiter.Limit(), limiter.Burst())

	return llm.WithRateLimit(gen, limiter, cfg.Concurrency.MaxRetries, cfg.LLM.Provider), nil
}
