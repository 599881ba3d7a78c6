package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/invest_radar/app/display/internal/domain"
	"github.com/iWorld-y/invest_radar/app/display/internal/usecase"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/agent"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/scoring"
)

const Version = "3.0.0"

type DisplayService struct {
	uc   *usecase.AnalysisUseCase
	info ServiceInfo
	log  *log.Helper
}

// ServiceInfo 健康检查展示的运行配置
type ServiceInfo struct {
	Provider       string
	Model          string
	SearchProvider string
	StorageDriver  string
}

// NewServiceInfo 从引擎配置中提取展示信息，不包含任何密钥
func NewServiceInfo(cfg *config.Config, storage config.StorageConfig) ServiceInfo {
	return ServiceInfo{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		SearchProvider: cfg.Search.Provider,
		StorageDriver:  storage.Driver,
	}
}

func NewDisplayService(uc *usecase.AnalysisUseCase, info ServiceInfo, logger log.Logger) *DisplayService {
	return &DisplayService{
		uc:   uc,
		info: info,
		log:  log.NewHelper(logger),
	}
}

// Analyze 完整分析报告，超时与失败同样以报告形式返回
func (s *DisplayService) Analyze(ctx context.Context, docs []model.Document) (*model.Report, error) {
	return s.uc.Analyze(ctx, docs)
}

func (s *DisplayService) Summary(ctx context.Context, docs []model.Document) (*SummaryReply, error) {
	report, err := s.completed(ctx, docs)
	if err != nil {
		return nil, err
	}

	agents := make([]model.Category, 0, len(report.Analyses))
	for _, r := range report.Analyses {
		if !r.Failed() {
			agents = append(agents, r.Category)
		}
	}
	return &SummaryReply{
		Status:             report.Status,
		ID:                 report.ID,
		InvestmentSummary:  report.Narrative,
		InvestmentScores:   report.Score,
		TopFounderQuestion: nonNil(report.Questions.TopQuestions),
		ConfidenceScore:    report.Confidence,
		AgentsUsed:         agents,
		WebSearchPerformed: report.Metadata.WebSearchPerformed,
		FilesProcessed:     report.Metadata.TotalFiles,
		ProcessingTime:     report.Metadata.ProcessingSeconds,
	}, nil
}

func (s *DisplayService) Questions(ctx context.Context, docs []model.Document) (*QuestionsReply, error) {
	report, err := s.completed(ctx, docs)
	if err != nil {
		return nil, err
	}
	return &QuestionsReply{
		Status:             report.Status,
		ID:                 report.ID,
		InterviewGuide:     report.Questions.InterviewGuide,
		QuestionCategories: report.Questions.Categories,
		IdentifiedGaps:     report.Questions.Gaps,
		CompanyInfo:        report.Identity,
		Metadata: QuestionsMeta{
			FilesAnalyzed:      report.Metadata.TotalFiles,
			AnalysisConfidence: report.Confidence,
		},
	}, nil
}

func (s *DisplayService) Scoring(ctx context.Context, docs []model.Document) (*ScoringReply, error) {
	report, err := s.completed(ctx, docs)
	if err != nil {
		return nil, err
	}
	return NewScoringReply(report), nil
}

// NewScoringReply 按维度展开评分与权重贡献
func NewScoringReply(report *model.Report) *ScoringReply {
	score := report.Score
	reply := &ScoringReply{
		Status:         report.Status,
		ID:             report.ID,
		OverallScore:   score.Overall,
		Recommendation: score.Recommendation,
		DetailedScores: make(map[model.Dimension]DimensionScore, len(model.Dimensions)),
		ScoringFramework: ScoringFramework{
			Scale: "0-100",
			Thresholds: map[string]string{
				"strong_buy": "75+",
				"buy":        "60-74",
				"hold":       "45-59",
				"pass":       "<45",
			},
		},
		CompanyInfo: report.Identity,
	}
	for _, d := range model.Dimensions {
		v, w := score.Get(d), score.Weights[d]
		reply.DetailedScores[d] = DimensionScore{Score: v, Weight: w, WeightedContribution: v * w}
		reply.ScoringFramework.WeightsSum += w
	}
	return reply
}

// completed 执行分析并把非成功状态转换为错误
func (s *DisplayService) completed(ctx context.Context, docs []model.Document) (*model.Report, error) {
	report, err := s.uc.Analyze(ctx, docs)
	if err != nil {
		return nil, err
	}
	switch report.Status {
	case model.StatusSuccess:
		return report, nil
	case model.StatusTimeout:
		return nil, errors.GatewayTimeout("ANALYSIS_TIMEOUT", report.Message)
	default:
		return nil, errors.InternalServer("ANALYSIS_FAILED", report.Message)
	}
}

func (s *DisplayService) ListAnalyses(ctx context.Context, company string, limit int) (*ListAnalysesReply, error) {
	list, err := s.uc.List(ctx, company, limit)
	if err != nil {
		return nil, err
	}
	return &ListAnalysesReply{Analyses: list, Total: len(list)}, nil
}

func (s *DisplayService) GetAnalysis(ctx context.Context, id string) (*model.Report, error) {
	return s.uc.Get(ctx, id)
}

func (s *DisplayService) DeleteAnalysis(ctx context.Context, id string) (*DeleteReply, error) {
	if err := s.uc.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DeleteReply{ID: id, Deleted: true}, nil
}

func (s *DisplayService) Stats(ctx context.Context) (*domain.StorageStats, error) {
	return s.uc.Stats(ctx)
}

func (s *DisplayService) Root(context.Context) *RootReply {
	return &RootReply{
		Message: "Multi-Agent Investment Analysis System",
		Version: Version,
		Status:  "operational",
		Features: []string{
			"Multi-agent analysis",
			"Web search intelligence",
			"Investment scoring framework",
			"Founder question generation",
		},
	}
}

func (s *DisplayService) Health(context.Context) *HealthReply {
	agents := make([]model.Category, 0)
	for _, p := range agent.All() {
		agents = append(agents, p.Category())
	}
	return &HealthReply{
		Status:         "healthy",
		Provider:       s.info.Provider,
		Model:          s.info.Model,
		Agents:         agents,
		SearchEnabled:  s.info.SearchProvider != "",
		SearchProvider: s.info.SearchProvider,
		StorageDriver:  s.info.StorageDriver,
		Weights:        scoring.DefaultWeights(),
	}
}

func (s *DisplayService) Agents(context.Context) *AgentsReply {
	reply := &AgentsReply{Agents: make([]AgentInfo, 0)}
	for _, p := range agent.All() {
		reply.Agents = append(reply.Agents, AgentInfo{
			Category:   p.Category(),
			FileTypes:  fileTypes[p.Category()],
			Searchable: p.Searchable(),
		})
	}
	return reply
}

var fileTypes = map[model.Category][]string{
	model.CategoryPitchMaterial:     {".pdf", ".pptx", ".key"},
	model.CategoryFinancialData:     {".xlsx", ".xls", ".csv"},
	model.CategoryWebPresence:       {".txt", ".md", ".json", ".html"},
	model.CategoryInteractionRecord: {"transcripts", "call notes", "questionnaires"},
	model.CategoryGeneral:           {"any text-based format"},
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
