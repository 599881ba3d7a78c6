package repo

import (
	"context"

	"github.com/iWorld-y/invest_radar/app/display/internal/domain"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// AnalysisRepo 分析结果仓库接口
type AnalysisRepo interface {
	// SaveAnalysis 保存报告并返回生成的 ID
	SaveAnalysis(ctx context.Context, report *model.Report) (string, error)
	// ListAnalyses 按时间倒序获取分析摘要
	ListAnalyses(ctx context.Context, q domain.AnalysisQuery) ([]*domain.AnalysisSummary, error)
	// GetAnalysis 根据 ID 获取完整报告
	GetAnalysis(ctx context.Context, id string) (*model.Report, error)
	// DeleteAnalysis 删除分析，返回记录是否存在
	DeleteAnalysis(ctx context.Context, id string) (bool, error)
	// Stats 获取存储统计
	Stats(ctx context.Context) (*domain.StorageStats, error)
}
