package usecase

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/display/internal/domain"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// mockAnalysisRepo 模拟分析仓库
type mockAnalysisRepo struct {
	saved   []*model.Report
	saveErr error
	query   domain.AnalysisQuery
	existed bool
}

func (m *mockAnalysisRepo) SaveAnalysis(ctx context.Context, report *model.Report) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, report)
	return "acme_20250314_093005", nil
}

func (m *mockAnalysisRepo) ListAnalyses(ctx context.Context, q domain.AnalysisQuery) ([]*domain.AnalysisSummary, error) {
	m.query = q
	return []*domain.AnalysisSummary{{ID: "acme_20250314_093005", CompanyName: "Acme"}}, nil
}

func (m *mockAnalysisRepo) GetAnalysis(ctx context.Context, id string) (*model.Report, error) {
	return &model.Report{ID: id}, nil
}

func (m *mockAnalysisRepo) DeleteAnalysis(ctx context.Context, id string) (bool, error) {
	return m.existed, nil
}

func (m *mockAnalysisRepo) Stats(ctx context.Context) (*domain.StorageStats, error) {
	return &domain.StorageStats{TotalAnalyses: 1}, nil
}

type stubAnalyzer struct {
	report *model.Report
	calls  int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, docs []model.Document) *model.Report {
	s.calls++
	return s.report
}

var oneDoc = []model.Document{{Filename: "deck.pdf", Data: []byte("x")}}

func TestAnalysisUseCase_AnalyzeSaves(t *testing.T) {
	repo := &mockAnalysisRepo{}
	engine := &stubAnalyzer{report: &model.Report{Status: model.StatusSuccess}}
	uc := NewAnalysisUseCase(engine, repo, log.DefaultLogger)

	report, err := uc.Analyze(context.Background(), oneDoc)
	require.NoError(t, err)
	assert.Equal(t, "acme_20250314_093005", report.ID)
	assert.Len(t, repo.saved, 1)
}

func TestAnalysisUseCase_AnalyzeFailureNotSaved(t *testing.T) {
	repo := &mockAnalysisRepo{}
	engine := &stubAnalyzer{report: &model.Report{Status: model.StatusTimeout, Message: "timed out"}}
	uc := NewAnalysisUseCase(engine, repo, log.DefaultLogger)

	report, err := uc.Analyze(context.Background(), oneDoc)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTimeout, report.Status)
	assert.Empty(t, repo.saved)
}

func TestAnalysisUseCase_SaveErrorIgnored(t *testing.T) {
	repo := &mockAnalysisRepo{saveErr: errors.ServiceUnavailable("STORAGE_DISABLED", "off")}
	engine := &stubAnalyzer{report: &model.Report{Status: model.StatusSuccess}}
	uc := NewAnalysisUseCase(engine, repo, log.DefaultLogger)

	report, err := uc.Analyze(context.Background(), oneDoc)
	require.NoError(t, err)
	assert.Empty(t, report.ID)
}

func TestAnalysisUseCase_NoFiles(t *testing.T) {
	engine := &stubAnalyzer{}
	uc := NewAnalysisUseCase(engine, &mockAnalysisRepo{}, log.DefaultLogger)

	_, err := uc.Analyze(context.Background(), nil)
	assert.True(t, errors.IsBadRequest(err))
	assert.Equal(t, 0, engine.calls)
}

func TestAnalysisUseCase_List(t *testing.T) {
	repo := &mockAnalysisRepo{}
	uc := NewAnalysisUseCase(&stubAnalyzer{}, repo, log.DefaultLogger)

	list, err := uc.List(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, domain.AnalysisQuery{Company: "acme", Limit: DefaultListLimit}, repo.query)
}

func TestAnalysisUseCase_Delete(t *testing.T) {
	repo := &mockAnalysisRepo{existed: true}
	uc := NewAnalysisUseCase(&stubAnalyzer{}, repo, log.DefaultLogger)
	assert.NoError(t, uc.Delete(context.Background(), "a"))

	repo.existed = false
	err := uc.Delete(context.Background(), "a")
	assert.True(t, errors.IsNotFound(err))
}
