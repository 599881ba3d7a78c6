package questions

import (
	"context"
	"fmt"
	"strings"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

const (
	mustAskHeader   = "Priority 1 - Must Ask"
	nextHeader      = "Priority 2"
	maxTopQuestions = 5
	minQuestionLen  = 10
)

// Generator 尽调问题生成流水线：gaps → domain → alignment → risk → compile，严格串行
type Generator struct {
	gen        llm.Generator
	contextLen int
}

// NewGenerator contextLen 为各阶段可见的分析上下文字符数
func NewGenerator(gen llm.Generator, contextLen int) *Generator {
	return &Generator{gen: gen, contextLen: contextLen}
}

// Generate 单个阶段失败记为空串并继续，compile 失败或为空时返回空问题集
func (g *Generator) Generate(ctx context.Context, synthesis string) model.QuestionSet {
	content := truncate(synthesis, g.contextLen)

	gaps := g.stage(ctx, "gaps", gapsSystem, fmt.Sprintf(gapsPrompt, content))
	domain := g.stage(ctx, "domain", domainSystem, fmt.Sprintf(domainPrompt, content, gaps))
	alignment := g.stage(ctx, "alignment", alignmentSystem, fmt.Sprintf(alignmentPrompt, content, domain))
	risk := g.stage(ctx, "risk", riskSystem, fmt.Sprintf(riskPrompt, content, gaps))
	guide := g.stage(ctx, "compile", compileSystem, fmt.Sprintf(compilePrompt, gaps, domain, alignment, risk))

	if guide == "" {
		logger.Log.Warn("问题汇编失败，返回空问题集")
		return model.QuestionSet{}
	}
	return model.QuestionSet{
		InterviewGuide: guide,
		Categories: model.QuestionCategories{
			Domain:    domain,
			Alignment: alignment,
			Risk:      risk,
		},
		Gaps:         gaps,
		TopQuestions: TopQuestions(guide),
	}
}

func (g *Generator) stage(ctx context.Context, name, system, prompt string) string {
	if ctx.Err() != nil {
		return ""
	}
	resp, err := g.gen.Generate(ctx, system, prompt)
	if err != nil {
		logger.Log.Warnf("问题生成阶段 [%s] 失败: %v", name, err)
		return ""
	}
	return strings.TrimSpace(resp)
}

// TopQuestions 从 "Priority 1 - Must Ask" 段落中取至多 5 条问题
func TopQuestions(guide string) []string {
	_, section, ok := strings.Cut(guide, mustAskHeader)
	if !ok {
		return nil
	}
	section, _, _ = strings.Cut(section, nextHeader)
	// 标题行余下部分
	if _, rest, found := strings.Cut(section, "\n"); found {
		section = rest
	} else {
		section = ""
	}

	var out []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= minQuestionLen || strings.HasPrefix(line, "[") {
			continue
		}
		out = append(out, line)
		if len(out) >= maxTopQuestions {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
