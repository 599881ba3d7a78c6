package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/invest_radar/app/display/internal/conf"
	"github.com/iWorld-y/invest_radar/app/display/internal/data"
	"github.com/iWorld-y/invest_radar/app/display/internal/service"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/engine"
	irLogger "github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
)

// NewEngineConfig 将 internal/conf.Analysis 转换为 pkg/config.Config 并完成校验
func NewEngineConfig(c *conf.Analysis) (*config.Config, error) {
	cfg := &config.Config{}
	if c != nil {
		if c.Llm != nil {
			cfg.LLM = config.LLMConfig{
				Provider:    c.Llm.Provider,
				BaseURL:     c.Llm.BaseUrl,
				APIKey:      c.Llm.ApiKey,
				Model:       c.Llm.Model,
				Temperature: c.Llm.Temperature,
				MaxTokens:   int(c.Llm.MaxTokens),
			}
		}
		if s := c.Search; s != nil {
			cfg.Search = config.SearchConfig{
				Provider:    s.Provider,
				Depth:       s.Depth,
				MaxResults:  int(s.MaxResults),
				Concurrency: int(s.Concurrency),
			}
			if s.Tavily != nil {
				cfg.Search.Tavily.APIKey = s.Tavily.ApiKey
			}
			if s.Searxng != nil {
				cfg.Search.SearXNG = config.SearXNGConfig{
					BaseURL: s.Searxng.BaseUrl,
					Timeout: int(s.Searxng.Timeout),
				}
			}
		}
		if c.Log != nil {
			cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
		}
		if cc := c.Concurrency; cc != nil {
			cfg.Concurrency = config.ConcurrencyConfig{
				QPS:        int(cc.Qps),
				RPM:        int(cc.Rpm),
				MaxRetries: int(cc.MaxRetries),
			}
		}
		if g := c.Guardrails; g != nil {
			cfg.Guardrails = config.Guardrails{
				MinContentLength:       int(g.MinContentLength),
				MaxContentLength:       int(g.MaxContentLength),
				ChunkSize:              int(g.ChunkSize),
				ChunkOverlap:           int(g.ChunkOverlap),
				MaxChunks:              int(g.MaxChunks),
				MaxChunkWorkers:        int(g.MaxChunkWorkers),
				MinChunkResponseLength: int(g.MinChunkResponseLength),
				MinResponseLength:      int(g.MinResponseLength),
				AgentTimeout:           parseDuration(g.AgentTimeout),
				RequestTimeout:         parseDuration(g.RequestTimeout),
				IdentitySampleLength:   int(g.IdentitySampleLength),
				QuestionContextLength:  int(g.QuestionContextLength),
			}
		}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration 非法或为空时返回 0，由默认值兜底
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// NewAnalysisEngine 初始化分析引擎
func NewAnalysisEngine(cfg *config.Config, logger log.Logger) (*engine.Engine, func(), error) {
	// 初始化日志
	if err := irLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine logger: %v", err)
		_ = irLogger.InitLogger("info", "") // 降级处理
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up analysis engine")
	}
	return eng, cleanup, nil
}

// NewServiceInfo 汇总健康检查信息
func NewServiceInfo(cfg *config.Config, c *conf.Data) service.ServiceInfo {
	return service.NewServiceInfo(cfg, data.StorageConfig(c))
}
