package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Guardrails  Guardrails        `yaml:"guardrails"`
	Storage     StorageConfig     `yaml:"storage"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, gemini, claude
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// SearchConfig 搜索相关配置，Provider 为空时不做联网检索
type SearchConfig struct {
	Provider    string        `yaml:"provider"`
	Tavily      TavilyConfig  `yaml:"tavily"`
	SearXNG     SearXNGConfig `yaml:"searxng"`
	Depth       string        `yaml:"depth"` // basic or advanced
	MaxResults  int           `yaml:"max_results"`
	Concurrency int           `yaml:"concurrency"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS        int `yaml:"qps"`
	RPM        int `yaml:"rpm"`
	MaxRetries int `yaml:"max_retries"` // 仅针对 429，默认 0 即单次调用
}

// Guardrails 分析流程的资源与时间约束
type Guardrails struct {
	MinContentLength       int           `yaml:"min_content_length"`
	MaxContentLength       int           `yaml:"max_content_length"`
	ChunkSize              int           `yaml:"chunk_size"`
	ChunkOverlap           int           `yaml:"chunk_overlap"`
	MaxChunks              int           `yaml:"max_chunks"`
	MaxChunkWorkers        int           `yaml:"max_chunk_workers"`
	MinChunkResponseLength int           `yaml:"min_chunk_response_length"`
	MinResponseLength      int           `yaml:"min_response_length"`
	AgentTimeout           time.Duration `yaml:"agent_timeout"`
	RequestTimeout         time.Duration `yaml:"request_timeout"`
	IdentitySampleLength   int           `yaml:"identity_sample_length"`
	QuestionContextLength  int           `yaml:"question_context_length"`
}

// StorageConfig 分析结果持久化配置
type StorageConfig struct {
	Driver string   `yaml:"driver"` // file, postgres, badger；为空时不持久化
	Path   string   `yaml:"path"`
	DB     DBConfig `yaml:"db"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DefaultGuardrails 默认约束
func DefaultGuardrails() Guardrails {
	return Guardrails{
		MinContentLength:       10,
		MaxContentLength:       1_000_000,
		ChunkSize:              4000,
		ChunkOverlap:           200,
		MaxChunks:              100,
		MaxChunkWorkers:        100,
		MinChunkResponseLength: 20,
		MinResponseLength:      50,
		AgentTimeout:           600 * time.Second,
		RequestTimeout:         900 * time.Second,
		IdentitySampleLength:   5000,
		QuestionContextLength:  8000,
	}
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv 环境变量覆盖，环境变量优先于配置文件
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		case "claude":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Search.Tavily.APIKey = v
	}
}

// ApplyDefaults 填充未配置项
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.1
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 600
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 10
	}
	if c.Search.Depth == "" {
		c.Search.Depth = "advanced"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	if c.Search.Concurrency <= 0 {
		c.Search.Concurrency = 3
	}

	def := DefaultGuardrails()
	g := &c.Guardrails
	if g.MinContentLength <= 0 {
		g.MinContentLength = def.MinContentLength
	}
	if g.MaxContentLength <= 0 {
		g.MaxContentLength = def.MaxContentLength
	}
	if g.ChunkSize <= 0 {
		g.ChunkSize = def.ChunkSize
	}
	if g.ChunkOverlap <= 0 {
		g.ChunkOverlap = def.ChunkOverlap
	}
	if g.MaxChunks <= 0 {
		g.MaxChunks = def.MaxChunks
	}
	if g.MaxChunkWorkers <= 0 {
		g.MaxChunkWorkers = g.MaxChunks
	}
	if g.MinChunkResponseLength <= 0 {
		g.MinChunkResponseLength = def.MinChunkResponseLength
	}
	if g.MinResponseLength <= 0 {
		g.MinResponseLength = def.MinResponseLength
	}
	if g.AgentTimeout <= 0 {
		g.AgentTimeout = def.AgentTimeout
	}
	if g.RequestTimeout <= 0 {
		g.RequestTimeout = def.RequestTimeout
	}
	if g.IdentitySampleLength <= 0 {
		g.IdentitySampleLength = def.IdentitySampleLength
	}
	if g.QuestionContextLength <= 0 {
		g.QuestionContextLength = def.QuestionContextLength
	}
}

// Validate 校验必要配置，失败时启动中止
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "gemini", "claude":
	default:
		return fmt.Errorf("%w: unknown llm provider %q", model.ErrMissingConfig, c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: llm api_key", model.ErrMissingConfig)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: llm model", model.ErrMissingConfig)
	}
	g := c.Guardrails
	if g.ChunkOverlap >= g.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", g.ChunkOverlap, g.ChunkSize)
	}
	if g.MinContentLength > g.MaxContentLength {
		return fmt.Errorf("min_content_length (%d) exceeds max_content_length (%d)", g.MinContentLength, g.MaxContentLength)
	}
	return nil
}
