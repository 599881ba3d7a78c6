package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// RunInfo 一次分类并发分析的概况
type RunInfo struct {
	TotalFiles int
	Categories []model.Category
	Duration   time.Duration
}

// categoryRun 单个分类任务的输入
type categoryRun struct {
	category model.Category
	files    []string
	content  string
}

// RunAnalysis 对每个非空分类并发执行分析，等待全部完成
// 单个分类的故障被转换为 error 结果，不影响其他分类
func (e *Engine) RunAnalysis(ctx context.Context, categorized map[model.Category][]model.ExtractedDocument, id model.Identity) ([]model.AgentResult, RunInfo) {
	start := time.Now()
	info := RunInfo{}

	var runs []categoryRun
	for _, c := range model.Categories {
		docs := categorized[c]
		if len(docs) == 0 {
			continue
		}
		if _, ok := e.analyzers[c]; !ok {
			logger.Log.Warnf("分类 %s 没有可用的分析器，跳过", c)
			continue
		}
		run := categoryRun{category: c}
		var parts []string
		for _, d := range docs {
			run.files = append(run.files, d.Filename)
			parts = append(parts, fmt.Sprintf("=== File: %s ===\n%s", d.Filename, d.Text))
		}
		run.content = strings.Join(parts, "\n\n")
		runs = append(runs, run)
		info.TotalFiles += len(docs)
		info.Categories = append(info.Categories, c)
	}

	results := make([]model.AgentResult, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	if len(runs) > 0 {
		g.SetLimit(len(runs))
	}
	for i, run := range runs {
		g.Go(func() error {
			results[i] = e.runCategory(gctx, run, id)
			return nil
		})
	}
	_ = g.Wait()

	info.Duration = time.Since(start)
	logger.Log.Infof("分类分析完成: %d 个分类, %d 个文件, 耗时 %v", len(runs), info.TotalFiles, info.Duration)
	return results, info
}

// runCategory 执行单个分类，panic 与故障在此处收敛
func (e *Engine) runCategory(ctx context.Context, run categoryRun, id model.Identity) (res model.AgentResult) {
	log := logger.Log.WithField("category", run.category)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("分析器 panic: %v", r)
			res = faultResult(run, fmt.Errorf("%w: %v", model.ErrAgentFault, r))
		}
	}()

	content := run.content
	webResults := 0
	hasIdentity := false
	if run.category == e.searchable && id.Usable() {
		block, n := e.enricher.Build(ctx, id)
		if block != "" {
			content += "\n\n" + block
			webResults = n
			hasIdentity = true
		}
	}

	res, err := e.analyzers[run.category].Analyze(ctx, content)
	if err != nil {
		log.Errorf("分析器故障: %v", err)
		return faultResult(run, err)
	}

	res.Category = run.category
	res.Metadata.Files = run.files
	res.Metadata.FilesCount = len(run.files)
	res.Metadata.WebResultsCount = webResults
	res.Metadata.HasIdentity = hasIdentity
	return res
}

func faultResult(run categoryRun, err error) model.AgentResult {
	return model.AgentResult{
		Category:   model.CategoryError,
		Narrative:  fmt.Sprintf("Agent error: %v", err),
		Confidence: 0,
		Error:      model.ErrAgentFaultTag,
		Metadata: model.RunMetadata{
			Files:      run.files,
			FilesCount: len(run.files),
		},
	}
}
