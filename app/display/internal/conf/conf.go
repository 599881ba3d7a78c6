package conf

type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Analysis *Analysis `json:"analysis"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
	// MaxUploadMb 单次上传的内存上限
	MaxUploadMb int32 `json:"max_upload_mb"`
}

type Data struct {
	Storage *Storage `json:"storage"`
}

type Storage struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
	Db     *DB    `json:"db"`
}

type DB struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Analysis struct {
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Guardrails  *Guardrails  `json:"guardrails"`
}

type LLM struct {
	Provider    string  `json:"provider"`
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
}

type Search struct {
	Provider    string   `json:"provider"`
	Tavily      *Tavily  `json:"tavily"`
	Searxng     *SearXNG `json:"searxng"`
	Depth       string   `json:"depth"`
	MaxResults  int32    `json:"max_results"`
	Concurrency int32    `json:"concurrency"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps        int32 `json:"qps"`
	Rpm        int32 `json:"rpm"`
	MaxRetries int32 `json:"max_retries"`
}

// Guardrails 时长使用 time.ParseDuration 格式，如 "600s"
type Guardrails struct {
	MinContentLength       int32  `json:"min_content_length"`
	MaxContentLength       int32  `json:"max_content_length"`
	ChunkSize              int32  `json:"chunk_size"`
	ChunkOverlap           int32  `json:"chunk_overlap"`
	MaxChunks              int32  `json:"max_chunks"`
	MaxChunkWorkers        int32  `json:"max_chunk_workers"`
	MinChunkResponseLength int32  `json:"min_chunk_response_length"`
	MinResponseLength      int32  `json:"min_response_length"`
	AgentTimeout           string `json:"agent_timeout"`
	RequestTimeout         string `json:"request_timeout"`
	IdentitySampleLength   int32  `json:"identity_sample_length"`
	QuestionContextLength  int32  `json:"question_context_length"`
}
