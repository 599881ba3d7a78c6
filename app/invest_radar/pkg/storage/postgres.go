package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// PostgresStore 基于 PostgreSQL 的存储，记录与报告以 JSONB 保存
type PostgresStore struct {
	db   *sql.DB
	path string
}

// NewPostgresStore 打开连接并初始化表结构
func NewPostgresStore(cfg config.DBConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := newPostgresStore(db, fmt.Sprintf("postgres://%s:%d/%s", cfg.Host, cfg.Port, cfg.Name))
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func newPostgresStore(db *sql.DB, path string) *PostgresStore {
	return &PostgresStore{db: db, path: path}
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			recommendation TEXT,
			overall DOUBLE PRECISION,
			confidence DOUBLE PRECISION,
			record JSONB NOT NULL,
			report JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// Save 写入或覆盖同 ID 的分析
func (s *PostgresStore) Save(ctx context.Context, rec Record, report *model.Report) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO analyses
		(id, company_name, created_at, recommendation, overall, confidence, record, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			created_at = EXCLUDED.created_at,
			recommendation = EXCLUDED.recommendation,
			overall = EXCLUDED.overall,
			confidence = EXCLUDED.confidence,
			record = EXCLUDED.record,
			report = EXCLUDED.report`,
		rec.ID, rec.CompanyName, rec.Timestamp, string(rec.Recommendation),
		rec.Score.Overall, rec.Confidence, recJSON, reportJSON)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Load 读取完整报告
func (s *PostgresStore) Load(ctx context.Context, id string) (*model.Report, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT report FROM analyses WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	var report model.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", id, err)
	}
	return &report, nil
}

// List 按创建时间倒序列出
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT record FROM analyses WHERE ($1 = '' OR company_name ILIKE '%' || $1 || '%') ORDER BY created_at DESC`
	args := []any{f.Company}
	if f.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parse record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete 返回记录是否存在
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats 聚合统计
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var (
		st             = Stats{StoragePath: s.path}
		size           int64
		oldest, newest sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT company_name),
		COALESCE(SUM(octet_length(report::text)), 0), MIN(created_at), MAX(created_at) FROM analyses`).
		Scan(&st.TotalAnalyses, &st.CompaniesAnalyzed, &size, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	st.TotalSizeMB = math.Round(float64(size)/(1024*1024)*100) / 100
	if oldest.Valid {
		st.OldestAnalysis = &oldest.Time
	}
	if newest.Valid {
		st.NewestAnalysis = &newest.Time
	}
	return st, nil
}

// Close 关闭连接
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
