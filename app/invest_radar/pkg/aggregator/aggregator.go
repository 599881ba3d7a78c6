package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/questions"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/scoring"
)

var separator = strings.Repeat("=", 80)

// Aggregator 合并各分类结果，生成投资综述、评分与尽调问题
type Aggregator struct {
	gen       llm.Generator
	scorer    *scoring.Scorer
	questions *questions.Generator
	schema    *gojsonschema.Schema
}

// New 创建汇总器，schema 在此编译
func New(gen llm.Generator, scorer *scoring.Scorer, qgen *questions.Generator) (*Aggregator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(aggregateSchema))
	if err != nil {
		return nil, fmt.Errorf("compile aggregate schema: %w", err)
	}
	return &Aggregator{gen: gen, scorer: scorer, questions: qgen, schema: schema}, nil
}

// Aggregate 综述调用失败时退回合并文本，结构校验失败返回 ErrAggregateShape
func (a *Aggregator) Aggregate(ctx context.Context, results []model.AgentResult) (model.AggregateResult, error) {
	start := time.Now()
	combined := Combine(results)

	out := model.AggregateResult{
		Confidence: MeanConfidence(results),
		Metadata: model.AggregateMetadata{
			SourceCategories: sourceCategories(results),
			TotalAnalyses:    len(results),
		},
	}

	narrative, err := a.gen.Generate(ctx, synthesisSystem, fmt.Sprintf(synthesisPrompt, combined))
	narrative = strings.TrimSpace(narrative)
	switch {
	case err != nil:
		logger.Log.Warnf("投资综述生成失败，使用合并结果: %v", err)
		out.Metadata.SynthesisError = err.Error()
		narrative = combined
	case narrative == "":
		logger.Log.Warn("投资综述为空，使用合并结果")
		out.Metadata.SynthesisError = string(model.ErrEmptyResponse)
		narrative = combined
	}
	out.Narrative = narrative

	out.Score = a.scorer.Score(narrative)
	logger.Log.Infof("评分完成: overall=%.2f recommendation=%s", out.Score.Overall, out.Score.Recommendation)

	if a.questions != nil {
		out.Questions = a.questions.Generate(ctx, questionContext(out))
	}
	out.Metadata.DurationMs = time.Since(start).Milliseconds()

	if err := a.Validate(out); err != nil {
		return out, err
	}
	return out, nil
}

// Validate 校验汇总结果结构
func (a *Aggregator) Validate(res model.AggregateResult) error {
	result, err := a.schema.Validate(gojsonschema.NewGoLoader(res))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAggregateShape, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", model.ErrAggregateShape, strings.Join(errs, "; "))
	}
	return nil
}

// Combine 将各分类结果拼成带标签的合并文本
func Combine(results []model.AgentResult) string {
	var sb strings.Builder
	sb.WriteString("\n\n" + separator + "\n\n")
	for _, r := range results {
		narrative := r.Narrative
		if narrative == "" {
			narrative = "No analysis available"
		}
		fmt.Fprintf(&sb, "**%s ANALYSIS** (Confidence: %.1f)\n", strings.ToUpper(string(r.Category)), r.Confidence)
		sb.WriteString(narrative)
		sb.WriteString("\n\n" + separator + "\n\n")
	}
	return sb.String()
}

// MeanConfidence 非失败结果的平均置信度
func MeanConfidence(results []model.AgentResult) float64 {
	var (
		sum float64
		n   int
	)
	for _, r := range results {
		if r.Failed() {
			continue
		}
		sum += r.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func sourceCategories(results []model.AgentResult) []model.Category {
	out := make([]model.Category, 0, len(results))
	for _, r := range results {
		out = append(out, r.Category)
	}
	return out
}

func questionContext(res model.AggregateResult) string {
	var sb strings.Builder
	sb.WriteString("**COMPREHENSIVE INVESTMENT ANALYSIS SUMMARY**\n\n")
	fmt.Fprintf(&sb, "**Executive Summary:**\n%s\n\n", res.Narrative)
	fmt.Fprintf(&sb, "**Overall Confidence:** %.2f\n\n", res.Confidence)
	if len(res.Metadata.SourceCategories) > 0 {
		names := make([]string, len(res.Metadata.SourceCategories))
		for i, c := range res.Metadata.SourceCategories {
			names[i] = string(c)
		}
		fmt.Fprintf(&sb, "**Analysis Sources:** %s\n", strings.Join(names, ", "))
	}
	return sb.String()
}
