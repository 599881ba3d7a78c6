package usecase

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/invest_radar/app/display/internal/domain"
	"github.com/iWorld-y/invest_radar/app/display/internal/repo"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// DefaultListLimit 列表默认返回条数
const DefaultListLimit = 20

// Analyzer 分析引擎
type Analyzer interface {
	Analyze(ctx context.Context, docs []model.Document) *model.Report
}

// AnalysisUseCase 分析业务逻辑
type AnalysisUseCase struct {
	engine Analyzer
	repo   repo.AnalysisRepo
	log    *log.Helper
}

// NewAnalysisUseCase 创建分析业务逻辑实例
func NewAnalysisUseCase(engine Analyzer, repo repo.AnalysisRepo, logger log.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{engine: engine, repo: repo, log: log.NewHelper(logger)}
}

// Analyze 执行分析，成功的报告会尝试持久化，持久化失败不影响返回
func (uc *AnalysisUseCase) Analyze(ctx context.Context, docs []model.Document) (*model.Report, error) {
	if len(docs) == 0 {
		return nil, errors.BadRequest("NO_FILES", "No files provided for analysis")
	}

	report := uc.engine.Analyze(ctx, docs)
	if report.Status != model.StatusSuccess {
		uc.log.Warnf("analysis finished with status %s: %s", report.Status, report.Message)
		return report, nil
	}

	id, err := uc.repo.SaveAnalysis(ctx, report)
	if err != nil {
		uc.log.Warnf("save analysis: %v", err)
		return report, nil
	}
	report.ID = id
	return report, nil
}

// List 按公司名过滤列出分析摘要
func (uc *AnalysisUseCase) List(ctx context.Context, company string, limit int) ([]*domain.AnalysisSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return uc.repo.ListAnalyses(ctx, domain.AnalysisQuery{Company: company, Limit: limit})
}

// Get 根据 ID 获取报告
func (uc *AnalysisUseCase) Get(ctx context.Context, id string) (*model.Report, error) {
	return uc.repo.GetAnalysis(ctx, id)
}

// Delete 删除分析，不存在时返回 NotFound
func (uc *AnalysisUseCase) Delete(ctx context.Context, id string) error {
	existed, err := uc.repo.DeleteAnalysis(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return errors.NotFound("ANALYSIS_NOT_FOUND", "analysis not found")
	}
	return nil
}

// Stats 存储统计
func (uc *AnalysisUseCase) Stats(ctx context.Context) (*domain.StorageStats, error) {
	return uc.repo.Stats(ctx)
}
