package model

import "time"

// Category 文档分类
type Category string

const (
	CategoryPitchMaterial     Category = "pitch_material"
	CategoryFinancialData     Category = "financial_data"
	CategoryWebPresence       Category = "web_presence"
	CategoryInteractionRecord Category = "interaction_record"
	CategoryGeneral           Category = "general"

	// CategoryError 仅用于故障隔离后的结果条目
	CategoryError Category = "error"
)

// Categories 固定的分类顺序，决定合并结果与报告中的排列
var Categories = []Category{
	CategoryPitchMaterial,
	CategoryFinancialData,
	CategoryWebPresence,
	CategoryInteractionRecord,
	CategoryGeneral,
}

// Document 上传的原始文件
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExtractionMeta 文本提取元信息
type ExtractionMeta struct {
	SizeBytes int    `json:"size_bytes"`
	Extension string `json:"extension"`
	Method    string `json:"method,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ExtractedDocument 提取文本后的文档
type ExtractedDocument struct {
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Text        string         `json:"-"`
	Meta        ExtractionMeta `json:"meta"`
}

// RunMetadata 单个分类分析的运行信息
type RunMetadata struct {
	NumChunks          int      `json:"num_chunks"`
	AvgChunkLength     float64  `json:"avg_chunk_length"`
	ChunksProcessed    int      `json:"chunks_processed"`
	FailedChunks       int      `json:"failed_chunks"`
	FinalSummaryLength int      `json:"final_summary_length"`
	ContentTruncated   bool     `json:"content_truncated,omitempty"`
	ChunksTruncated    bool     `json:"chunks_truncated,omitempty"`
	FilesCount         int      `json:"files_count,omitempty"`
	Files              []string `json:"files,omitempty"`
	DurationMs         int64    `json:"duration_ms"`
	WebResultsCount    int      `json:"web_results_count,omitempty"`
	HasIdentity        bool     `json:"has_identity,omitempty"`
}

// AgentResult 单个分类的分析结果
type AgentResult struct {
	Category   Category    `json:"category"`
	Narrative  string      `json:"narrative"`
	Confidence float64     `json:"confidence"`
	Metadata   RunMetadata `json:"metadata"`
	Error      ErrorTag    `json:"error,omitempty"`
}

// Failed 结果是否为失败状态
func (r AgentResult) Failed() bool {
	return r.Error != "" || r.Category == CategoryError
}

// Identity 公司身份信息，所有字段可选
type Identity struct {
	Name        string   `json:"name,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Stage       string   `json:"stage,omitempty"`
	Products    []string `json:"products,omitempty"`
	Founders    []string `json:"founders,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// Usable 是否提取到可用的公司名称
func (i Identity) Usable() bool {
	return i.Name != ""
}

// Dimension 评分维度
type Dimension string

const (
	DimensionTeam       Dimension = "team"
	DimensionMarket     Dimension = "market"
	DimensionProduct    Dimension = "product"
	DimensionTraction   Dimension = "traction"
	DimensionFinancials Dimension = "financials"
	DimensionMoat       Dimension = "moat"
)

// Dimensions 固定的维度顺序
var Dimensions = []Dimension{
	DimensionTeam,
	DimensionMarket,
	DimensionProduct,
	DimensionTraction,
	DimensionFinancials,
	DimensionMoat,
}

// Recommendation 投资建议
type Recommendation string

const (
	RecommendationStrongBuy Recommendation = "Strong Buy"
	RecommendationBuy       Recommendation = "Buy"
	RecommendationHold      Recommendation = "Hold"
	RecommendationPass      Recommendation = "Pass"
)

// InvestmentScore 投资评分
type InvestmentScore struct {
	Team           float64               `json:"team"`
	Market         float64               `json:"market"`
	Product        float64               `json:"product"`
	Traction       float64               `json:"traction"`
	Financials     float64               `json:"financials"`
	Moat           float64               `json:"moat"`
	Weights        map[Dimension]float64 `json:"weights"`
	Overall        float64               `json:"overall"`
	Recommendation Recommendation        `json:"recommendation"`
}

// Get 按维度读取分数
func (s InvestmentScore) Get(d Dimension) float64 {
	switch d {
	case DimensionTeam:
		return s.Team
	case DimensionMarket:
		return s.Market
	case DimensionProduct:
		return s.Product
	case DimensionTraction:
		return s.Traction
	case DimensionFinancials:
		return s.Financials
	case DimensionMoat:
		return s.Moat
	}
	return 0
}

// Set 按维度写入分数
func (s *InvestmentScore) Set(d Dimension, v float64) {
	switch d {
	case DimensionTeam:
		s.Team = v
	case DimensionMarket:
		s.Market = v
	case DimensionProduct:
		s.Product = v
	case DimensionTraction:
		s.Traction = v
	case DimensionFinancials:
		s.Financials = v
	case DimensionMoat:
		s.Moat = v
	}
}

// QuestionCategories 分类问题
type QuestionCategories struct {
	Domain    string `json:"domain"`
	Alignment string `json:"alignment"`
	Risk      string `json:"risk"`
}

// QuestionSet 尽调问题
type QuestionSet struct {
	InterviewGuide string             `json:"interview_guide"`
	Categories     QuestionCategories `json:"categories"`
	Gaps           string             `json:"gaps"`
	TopQuestions   []string           `json:"top_questions"`
}

// AggregateMetadata 汇总元信息
type AggregateMetadata struct {
	SourceCategories []Category `json:"source_categories"`
	TotalAnalyses    int        `json:"total_analyses"`
	DurationMs       int64      `json:"duration_ms"`
	SynthesisError   string     `json:"synthesis_error,omitempty"`
}

// AggregateResult 汇总结果
type AggregateResult struct {
	Narrative  string            `json:"narrative"`
	Confidence float64           `json:"confidence"`
	Score      InvestmentScore   `json:"score"`
	Questions  QuestionSet       `json:"questions"`
	Metadata   AggregateMetadata `json:"metadata"`
}

// CategorySummary 单个分类的文件统计
type CategorySummary struct {
	FileCount      int      `json:"file_count"`
	Files          []string `json:"files"`
	TotalSizeBytes int      `json:"total_size_bytes"`
}

// ProcessingSummary 文件处理概况
type ProcessingSummary struct {
	Categories       map[Category]CategorySummary `json:"categories"`
	TotalFiles       int                          `json:"total_files"`
	FileTypes        map[string]int               `json:"file_types"`
	ProcessingErrors []string                     `json:"processing_errors"`
}

// ReportStatus 报告状态
type ReportStatus string

const (
	StatusSuccess ReportStatus = "success"
	StatusTimeout ReportStatus = "timeout"
	StatusError   ReportStatus = "error"
)

// ReportMetadata 报告元信息
type ReportMetadata struct {
	RunID              string     `json:"run_id"`
	TotalFiles         int        `json:"total_files"`
	CategoriesAnalyzed []Category `json:"categories_analyzed"`
	AgentsUsed         int        `json:"agents_used"`
	FailedAgents       int        `json:"failed_agents"`
	ProcessingSeconds  float64    `json:"processing_seconds"`
	Timestamp          time.Time  `json:"timestamp"`
	WebSearchPerformed bool       `json:"web_search_performed"`
}

// Report 对外统一的分析报告，成功与失败形状一致
type Report struct {
	ID                string            `json:"id,omitempty"`
	Status            ReportStatus      `json:"status"`
	Message           string            `json:"message,omitempty"`
	Narrative         string            `json:"narrative"`
	Confidence        float64           `json:"confidence"`
	Score             InvestmentScore   `json:"score"`
	Questions         QuestionSet       `json:"questions"`
	Analyses          []AgentResult     `json:"analyses"`
	Identity          Identity          `json:"identity"`
	ProcessingSummary ProcessingSummary `json:"processing_summary"`
	Metadata          ReportMetadata    `json:"metadata"`
}

// CompanyName 报告对应的公司名称
func (r *Report) CompanyName() string {
	if r.Identity.Name != "" {
		return r.Identity.Name
	}
	return "Unknown Company"
}
