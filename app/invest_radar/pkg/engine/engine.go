package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/agent"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/aggregator"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/categorizer"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/extract"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/identity"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	llmfactory "github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm/factory"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/metrics"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/questions"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/scoring"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/search"
	searchfactory "github.com/iWorld-y/invest_radar/app/invest_radar/pkg/search/factory"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/summarizer"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/webintel"
)

// identityOrder 身份提取时合并文本的分类优先级
var identityOrder = []model.Category{
	model.CategoryPitchMaterial,
	model.CategoryWebPresence,
	model.CategoryFinancialData,
	model.CategoryInteractionRecord,
	model.CategoryGeneral,
}

// Engine 核心处理引擎
type Engine struct {
	cfg        config.Config
	extractor  *extract.Extractor
	identity   *identity.Extractor
	enricher   *webintel.Enricher
	aggregator *aggregator.Aggregator
	analyzers  map[model.Category]summarizer.Analyzer
	searchable model.Category
}

// NewEngine 根据配置创建 LLM 与搜索客户端并组装引擎
func NewEngine(cfg *config.Config) (*Engine, error) {
	ctx := context.Background()

	gen, err := llmfactory.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	searcher, err := searchfactory.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	return New(*cfg, gen, searcher)
}

// New 使用给定的推理与搜索实现组装引擎，searcher 可为 nil
func New(cfg config.Config, gen llm.Generator, searcher search.Searcher) (*Engine, error) {
	agg, err := aggregator.New(gen, scoring.NewScorer(),
		questions.NewGenerator(gen, cfg.Guardrails.QuestionContextLength))
	if err != nil {
		return nil, err
	}

	analyzers := make(map[model.Category]summarizer.Analyzer)
	for _, p := range agent.All() {
		analyzers[p.Category()] = summarizer.New(p, gen, cfg.Guardrails)
	}

	return &Engine{
		cfg:        cfg,
		extractor:  extract.New(),
		identity:   identity.NewExtractor(gen, cfg.Guardrails.IdentitySampleLength),
		enricher:   webintel.NewEnricher(searcher, cfg.Search),
		aggregator: agg,
		analyzers:  analyzers,
		searchable: agent.SearchableCategory(),
	}, nil
}

// WithAnalyzer 替换某个分类的分析实现
func (e *Engine) WithAnalyzer(c model.Category, a summarizer.Analyzer) *Engine {
	e.analyzers[c] = a
	return e
}

type outcome struct {
	report *model.Report
	err    error
}

// Analyze 完整处理一次请求，超时与故障同样返回结构一致的报告
func (e *Engine) Analyze(ctx context.Context, docs []model.Document) *model.Report {
	start := time.Now()
	runID := uuid.NewString()
	timeout := e.cfg.Guardrails.RequestTimeout
	log := logger.Log.WithField("run_id", runID)
	log.Infof("开始分析，共 %d 个文件", len(docs))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", model.ErrAgentFault, r)}
			}
		}()
		report, err := e.analyze(ctx, docs)
		done <- outcome{report: report, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{err: ctx.Err()}
	}

	report := out.report
	switch {
	case out.err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Warnf("分析超时 (%v)", timeout)
		report = e.failureReport(model.StatusTimeout, fmt.Sprintf("Analysis timed out after %v", timeout))
	default:
		log.Errorf("分析失败: %v", out.err)
		report = e.failureReport(model.StatusError, fmt.Sprintf("Analysis failed: %v", out.err))
	}

	elapsed := time.Since(start)
	report.Metadata.RunID = runID
	report.Metadata.ProcessingSeconds = elapsed.Seconds()
	report.Metadata.Timestamp = start
	if report.Metadata.TotalFiles == 0 {
		report.Metadata.TotalFiles = len(docs)
	}
	metrics.ObserveRequest(string(report.Status), elapsed)
	log.Infof("分析结束: status=%s 耗时 %v", report.Status, elapsed)
	return report
}

func (e *Engine) analyze(ctx context.Context, docs []model.Document) (*model.Report, error) {
	if len(docs) == 0 {
		return nil, errors.New("no files provided for analysis")
	}

	extracted := e.extractor.ExtractAll(ctx, docs, 0)
	partition := categorizer.Partition(extracted)
	summary := BuildProcessingSummary(extracted, partition)

	id := e.identity.Extract(ctx, IdentityText(partition))

	results, info := e.RunAnalysis(ctx, partition, id)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	agg, err := e.aggregator.Aggregate(ctx, results)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Status:            model.StatusSuccess,
		Narrative:         agg.Narrative,
		Confidence:        agg.Confidence,
		Score:             agg.Score,
		Questions:         agg.Questions,
		Analyses:          results,
		Identity:          id,
		ProcessingSummary: summary,
		Metadata: model.ReportMetadata{
			TotalFiles:         info.TotalFiles,
			CategoriesAnalyzed: info.Categories,
		},
	}
	for _, r := range results {
		if r.Failed() {
			report.Metadata.FailedAgents++
		} else {
			report.Metadata.AgentsUsed++
		}
		if r.Metadata.WebResultsCount > 0 {
			report.Metadata.WebSearchPerformed = true
		}
	}
	return report, nil
}

func (e *Engine) failureReport(status model.ReportStatus, msg string) *model.Report {
	return &model.Report{
		Status:     status,
		Message:    msg,
		Narrative:  msg,
		Confidence: 0,
		Score:      model.ZeroScore(scoring.DefaultWeights()),
		ProcessingSummary: model.ProcessingSummary{
			Categories: map[model.Category]model.CategorySummary{},
			FileTypes:  map[string]int{},
		},
	}
}

// IdentityText 按优先级合并各分类文本用于身份提取
func IdentityText(partition map[model.Category][]model.ExtractedDocument) string {
	var parts []string
	for _, c := range identityOrder {
		for _, d := range partition[c] {
			if strings.TrimSpace(d.Text) != "" {
				parts = append(parts, d.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// BuildProcessingSummary 统计各分类文件、文件类型与提取错误
func BuildProcessingSummary(extracted []model.ExtractedDocument, partition map[model.Category][]model.ExtractedDocument) model.ProcessingSummary {
	summary := model.ProcessingSummary{
		Categories:       make(map[model.Category]model.CategorySummary),
		TotalFiles:       len(extracted),
		FileTypes:        make(map[string]int),
		ProcessingErrors: []string{},
	}
	for _, d := range extracted {
		ext := strings.ToLower(filepath.Ext(d.Filename))
		if ext == "" {
			ext = "unknown"
		}
		summary.FileTypes[ext]++
		if d.Meta.Error != "" {
			summary.ProcessingErrors = append(summary.ProcessingErrors, fmt.Sprintf("%s: %s", d.Filename, d.Meta.Error))
		}
	}
	for c, docs := range partition {
		cs := model.CategorySummary{FileCount: len(docs)}
		for _, d := range docs {
			cs.Files = append(cs.Files, d.Filename)
			cs.TotalSizeBytes += d.Meta.SizeBytes
		}
		summary.Categories[c] = cs
	}
	return summary
}
