package service

import (
	"github.com/iWorld-y/invest_radar/app/display/internal/domain"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

type SummaryReply struct {
	Status             model.ReportStatus    `json:"status"`
	ID                 string                `json:"id,omitempty"`
	InvestmentSummary  string                `json:"investment_summary"`
	InvestmentScores   model.InvestmentScore `json:"investment_scores"`
	TopFounderQuestion []string              `json:"top_founder_questions"`
	ConfidenceScore    float64               `json:"confidence_score"`
	AgentsUsed         []model.Category      `json:"agents_used"`
	WebSearchPerformed bool                  `json:"web_search_performed"`
	FilesProcessed     int                   `json:"files_processed"`
	ProcessingTime     float64               `json:"processing_time"`
}

type QuestionsMeta struct {
	FilesAnalyzed      int     `json:"files_analyzed"`
	AnalysisConfidence float64 `json:"analysis_confidence"`
}

type QuestionsReply struct {
	Status             model.ReportStatus       `json:"status"`
	ID                 string                   `json:"id,omitempty"`
	InterviewGuide     string                   `json:"founder_interview_guide"`
	QuestionCategories model.QuestionCategories `json:"question_categories"`
	IdentifiedGaps     string                   `json:"identified_gaps"`
	CompanyInfo        model.Identity           `json:"company_info"`
	Metadata           QuestionsMeta            `json:"metadata"`
}

type DimensionScore struct {
	Score                float64 `json:"score"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

type ScoringFramework struct {
	Scale      string            `json:"scale"`
	Thresholds map[string]string `json:"thresholds"`
	WeightsSum float64           `json:"weights_sum"`
}

type ScoringReply struct {
	Status           model.ReportStatus                 `json:"status"`
	ID               string                             `json:"id,omitempty"`
	OverallScore     float64                            `json:"overall_score"`
	Recommendation   model.Recommendation               `json:"recommendation"`
	DetailedScores   map[model.Dimension]DimensionScore `json:"detailed_scores"`
	ScoringFramework ScoringFramework                   `json:"scoring_framework"`
	CompanyInfo      model.Identity                     `json:"company_info"`
}

type ListAnalysesReply struct {
	Analyses []*domain.AnalysisSummary `json:"analyses"`
	Total    int                       `json:"total"`
}

type DeleteReply struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type RootReply struct {
	Message  string   `json:"message"`
	Version  string   `json:"version"`
	Status   string   `json:"status"`
	Features []string `json:"features"`
}

type HealthReply struct {
	Status         string                      `json:"status"`
	Provider       string                      `json:"provider"`
	Model          string                      `json:"model"`
	Agents         []model.Category            `json:"agents"`
	SearchEnabled  bool                        `json:"search_enabled"`
	SearchProvider string                      `json:"search_provider,omitempty"`
	StorageDriver  string                      `json:"storage_driver,omitempty"`
	Weights        map[model.Dimension]float64 `json:"weights"`
}

type AgentInfo struct {
	Category   model.Category `json:"category"`
	FileTypes  []string       `json:"file_types"`
	Searchable bool           `json:"searchable"`
}

type AgentsReply struct {
	Agents []AgentInfo `json:"agents"`
}
