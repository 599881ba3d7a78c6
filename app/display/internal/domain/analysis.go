package domain

import "github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"

// AnalysisSummary 分析列表条目
type AnalysisSummary struct {
	ID                 string               `json:"id"`
	CompanyName        string               `json:"company_name"`
	Date               string               `json:"date"`
	Recommendation     model.Recommendation `json:"recommendation"`
	OverallScore       float64              `json:"overall_score"`
	Confidence         float64              `json:"confidence"`
	FilesProcessed     int                  `json:"files_processed"`
	WebSearchPerformed bool                 `json:"web_search_performed"`
}

// StorageStats 存储统计
type StorageStats struct {
	TotalAnalyses     int     `json:"total_analyses"`
	StoragePath       string  `json:"storage_path"`
	TotalSizeMB       float64 `json:"total_size_mb"`
	CompaniesAnalyzed int     `json:"companies_analyzed"`
	OldestAnalysis    string  `json:"oldest_analysis,omitempty"`
	NewestAnalysis    string  `json:"newest_analysis,omitempty"`
}

// AnalysisQuery 列表查询条件
type AnalysisQuery struct {
	Company string
	Limit   int
}
