package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

var base = time.Date(2025, 3, 14, 9, 30, 5, 0, time.UTC)

func sampleReport(company string, overall float64) *model.Report {
	return &model.Report{
		Status:     model.StatusSuccess,
		Narrative:  "Investment summary for " + company,
		Confidence: 0.72,
		Score: model.InvestmentScore{
			Team:           60,
			Overall:        overall,
			Recommendation: model.RecommendationHold,
		},
		Identity: model.Identity{Name: company},
		Metadata: model.ReportMetadata{TotalFiles: 3, ProcessingSeconds: 12.5, WebSearchPerformed: true},
	}
}

func TestSanitizeAndNewID(t *testing.T) {
	assert.Equal(t, "acme_robotics__inc_", SanitizeName(" Acme Robotics, Inc. "))
	assert.Equal(t, "ledger-ly_ai", SanitizeName("Ledger-ly AI"))
	assert.Equal(t, "投资雷达", SanitizeName("投资雷达"))
	assert.Equal(t, "acme_20250314_093005", NewID("Acme", base))
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord(sampleReport("Acme Robotics", 55), base)
	assert.Equal(t, "acme_robotics_20250314_093005", rec.ID)
	assert.Equal(t, "Acme Robotics", rec.CompanyName)
	assert.Equal(t, model.RecommendationHold, rec.Recommendation)
	assert.Equal(t, 3, rec.Metadata.FilesProcessed)
	assert.True(t, rec.Metadata.WebSearchPerformed)

	unknown := NewRecord(&model.Report{}, base)
	assert.Equal(t, "Unknown Company", unknown.CompanyName)
	assert.Equal(t, "unknown_company_20250314_093005", unknown.ID)
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = New(config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)

	fs, err := New(config.StorageConfig{Driver: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, fs)
}

// exerciseStore 对任意实现执行同一组行为检查
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	older := NewRecord(sampleReport("Acme Robotics", 50), base)
	newer := NewRecord(sampleReport("Ledgerly", 70), base.Add(time.Hour))
	latest := NewRecord(sampleReport("Acme Robotics", 65), base.Add(2*time.Hour))

	require.NoError(t, s.Save(ctx, older, sampleReport("Acme Robotics", 50)))
	require.NoError(t, s.Save(ctx, newer, sampleReport("Ledgerly", 70)))
	require.NoError(t, s.Save(ctx, latest, sampleReport("Acme Robotics", 65)))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, latest.ID, all[0].ID)
	assert.Equal(t, newer.ID, all[1].ID)
	assert.Equal(t, older.ID, all[2].ID)

	acme, err := s.List(ctx, Filter{Company: "acme", Limit: 1})
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, latest.ID, acme[0].ID)

	report, err := s.Load(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ledgerly", report.CompanyName())
	assert.Equal(t, 70.0, report.Score.Overall)

	_, err = s.Load(ctx, "missing_20200101_000000")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalAnalyses)
	assert.Equal(t, 2, st.CompaniesAnalyzed)
	require.NotNil(t, st.NewestAnalysis)
	require.NotNil(t, st.OldestAnalysis)
	assert.True(t, st.NewestAnalysis.Equal(latest.Timestamp))
	assert.True(t, st.OldestAnalysis.Equal(older.Timestamp))

	ok, err := s.Delete(ctx, older.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Delete(ctx, older.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err = s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	_, err = os.Stat(filepath.Join(dir, indexFile))
	assert.NoError(t, err)
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Save(context.Background(), Record{ID: "../x"}, &model.Report{}))
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}
