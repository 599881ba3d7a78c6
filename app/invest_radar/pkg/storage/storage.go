package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// ErrNotFound 分析记录不存在
var ErrNotFound = errors.New("analysis not found")

var idPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

// RecordMeta 记录附带的运行信息
type RecordMeta struct {
	FilesProcessed     int               `json:"files_processed"`
	ProcessingSeconds  float64           `json:"processing_time"`
	WebSearchPerformed bool              `json:"web_search_performed"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// Record 分析索引条目，不含完整报告
type Record struct {
	ID             string                `json:"id"`
	CompanyName    string                `json:"company_name"`
	Timestamp      time.Time             `json:"timestamp"`
	Filename       string                `json:"filename,omitempty"`
	Score          model.InvestmentScore `json:"scores"`
	Recommendation model.Recommendation  `json:"recommendation"`
	Confidence     float64               `json:"confidence"`
	Metadata       RecordMeta            `json:"metadata"`
}

// Filter 列表过滤条件，Company 为不区分大小写的子串匹配，Limit <= 0 不限制
type Filter struct {
	Company string
	Limit   int
}

// Stats 存储统计
type Stats struct {
	TotalAnalyses     int        `json:"total_analyses"`
	StoragePath       string     `json:"storage_path"`
	TotalSizeMB       float64    `json:"total_size_mb"`
	CompaniesAnalyzed int        `json:"companies_analyzed"`
	OldestAnalysis    *time.Time `json:"oldest_analysis"`
	NewestAnalysis    *time.Time `json:"newest_analysis"`
}

// Store 分析结果持久化
type Store interface {
	Save(ctx context.Context, rec Record, report *model.Report) error
	Load(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, f Filter) ([]Record, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// New 按驱动创建存储，driver 为空时返回 nil
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "file":
		return NewFileStore(orDefault(cfg.Path, "data/analyses"))
	case "badger":
		return NewBadgerStore(orDefault(cfg.Path, "data/badger"))
	case "postgres":
		return NewPostgresStore(cfg.DB)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

// NewRecord 由报告生成索引条目，ID 为公司名加时间戳
func NewRecord(report *model.Report, now time.Time) Record {
	company := report.CompanyName()
	return Record{
		ID:             NewID(company, now),
		CompanyName:    company,
		Timestamp:      now,
		Score:          report.Score,
		Recommendation: report.Score.Recommendation,
		Confidence:     report.Confidence,
		Metadata: RecordMeta{
			FilesProcessed:     report.Metadata.TotalFiles,
			ProcessingSeconds:  report.Metadata.ProcessingSeconds,
			WebSearchPerformed: report.Metadata.WebSearchPerformed,
		},
	}
}

// NewID 公司名规范化后拼接 _YYYYMMDD_HHMMSS
func NewID(company string, t time.Time) string {
	return SanitizeName(company) + "_" + t.Format("20060102_150405")
}

// SanitizeName 仅保留字母数字、空格、- 与 _，空格替换为 _ 并转小写
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	safe := strings.ReplaceAll(strings.TrimSpace(sb.String()), " ", "_")
	return strings.ToLower(safe)
}

func validID(id string) bool {
	return idPattern.MatchString(id)
}

func matches(rec Record, company string) bool {
	return company == "" || strings.Contains(strings.ToLower(rec.CompanyName), strings.ToLower(company))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
