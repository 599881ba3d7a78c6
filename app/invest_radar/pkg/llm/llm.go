package llm

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/metrics"
)

// Generator 文本推理接口
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Generate 实现 Generator
func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// NewLimiter 根据 RPM/QPS 创建限流器
func NewLimiter(rpm, qps int) *rate.Limiter {
	limit := rate.Limit(float64(rpm) / 60.0)
	return rate.NewLimiter(limit, qps)
}

type rateLimited struct {
	next       Generator
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	provider   string
}

// WithRateLimit 在每次调用前等待限流器，maxRetries > 0 时对 429 做指数退避重试
func WithRateLimit(next Generator, limiter *rate.Limiter, maxRetries int, provider string) Generator {
	return &rateLimited{
		next:       next,
		limiter:    limiter,
		maxRetries: maxRetries,
		baseDelay:  2 * time.Second,
		provider:   provider,
	}
}

func (r *rateLimited) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	for i := 0; i <= r.maxRetries; i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}

		start := time.Now()
		resp, err := r.next.Generate(ctx, systemPrompt, userPrompt)
		metrics.ObserveInference(r.provider, time.Since(start), err)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		if !isRateLimited(err) || i == r.maxRetries {
			break
		}
		delay := r.baseDelay * time.Duration(1<<i)
		logger.Log.Warnf("LLM 请求被限流，%v 后重试 (%d/%d)", delay, i+1, r.maxRetries)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "rate limit")
}

// StripFences 去掉 LLM 回复外层的 markdown 代码块
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
