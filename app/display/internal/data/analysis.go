package data

import (
	"context"
	"errors"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/invest_radar/app/display/internal/domain"
	"github.com/iWorld-y/invest_radar/app/display/internal/repo"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/storage"
)

const dateLayout = "2006-01-02 15:04:05"

var errStorageDisabled = kerrors.ServiceUnavailable("STORAGE_DISABLED", "analysis storage is not configured")

type analysisRepo struct {
	data *Data
	log  *log.Helper
	now  func() time.Time
}

func NewAnalysisRepo(data *Data, logger log.Logger) repo.AnalysisRepo {
	return &analysisRepo{
		data: data,
		log:  log.NewHelper(logger),
		now:  time.Now,
	}
}

func (r *analysisRepo) SaveAnalysis(ctx context.Context, report *model.Report) (string, error) {
	if r.data.store == nil {
		return "", errStorageDisabled
	}
	rec := storage.NewRecord(report, r.now())
	if err := r.data.store.Save(ctx, rec, report); err != nil {
		return "", err
	}
	r.log.Infof("analysis saved: %s", rec.ID)
	return rec.ID, nil
}

func (r *analysisRepo) ListAnalyses(ctx context.Context, q domain.AnalysisQuery) ([]*domain.AnalysisSummary, error) {
	if r.data.store == nil {
		return nil, errStorageDisabled
	}
	records, err := r.data.store.List(ctx, storage.Filter{Company: q.Company, Limit: q.Limit})
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.AnalysisSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, &domain.AnalysisSummary{
			ID:                 rec.ID,
			CompanyName:        rec.CompanyName,
			Date:               rec.Timestamp.Format(dateLayout),
			Recommendation:     rec.Recommendation,
			OverallScore:       rec.Score.Overall,
			Confidence:         rec.Confidence,
			FilesProcessed:     rec.Metadata.FilesProcessed,
			WebSearchPerformed: rec.Metadata.WebSearchPerformed,
		})
	}
	return summaries, nil
}

func (r *analysisRepo) GetAnalysis(ctx context.Context, id string) (*model.Report, error) {
	if r.data.store == nil {
		return nil, errStorageDisabled
	}
	report, err := r.data.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, kerrors.NotFound("ANALYSIS_NOT_FOUND", "analysis not found")
		}
		return nil, err
	}
	report.ID = id
	return report, nil
}

func (r *analysisRepo) DeleteAnalysis(ctx context.Context, id string) (bool, error) {
	if r.data.store == nil {
		return false, errStorageDisabled
	}
	return r.data.store.Delete(ctx, id)
}

func (r *analysisRepo) Stats(ctx context.Context) (*domain.StorageStats, error) {
	if r.data.store == nil {
		return nil, errStorageDisabled
	}
	st, err := r.data.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &domain.StorageStats{
		TotalAnalyses:     st.TotalAnalyses,
		StoragePath:       st.StoragePath,
		TotalSizeMB:       st.TotalSizeMB,
		CompaniesAnalyzed: st.CompaniesAnalyzed,
	}
	if st.OldestAnalysis != nil {
		out.OldestAnalysis = st.OldestAnalysis.Format(dateLayout)
	}
	if st.NewestAnalysis != nil {
		out.NewestAnalysis = st.NewestAnalysis.Format(dateLayout)
	}
	return out, nil
}
