package webintel

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/gg/gson"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/search"
)

const (
	maxContentRunes  = 500
	maxResultsPerTab = 10
	maxProducts      = 3
)

// queryGroup 一组检索主题，模板中 %[1]s 为公司名，%[2]s 为行业
type queryGroup struct {
	name          string
	templates     []string
	needsIndustry bool
}

var companyQueries = []queryGroup{
	{name: "corporate_info", templates: []string{
		`"%[1]s" headquarters location employees`,
		`"%[1]s" incorporated registration company`,
	}},
	{name: "funding_news", templates: []string{
		`"%[1]s" funding round investment seed series`,
		`"%[1]s" investors venture capital valuation`,
	}},
	{name: "product_presence", templates: []string{
		`"%[1]s" product launch features announcement`,
		`"%[1]s" pricing plans subscription model`,
	}},
	{name: "market_presence", templates: []string{
		`"%[1]s" growth metrics users customers`,
		`"%[1]s" partnerships integrations deals`,
	}},
	{name: "team_talent", templates: []string{
		`"%[1]s" team founders leadership`,
		`"%[1]s" hiring jobs careers`,
	}},
	{name: "technical_signals", templates: []string{
		`"%[1]s" github API documentation developers`,
	}},
	{name: "social_proof", templates: []string{
		`"%[1]s" press coverage media mentions`,
		`"%[1]s" product hunt launch`,
	}},
	{name: "competitive", templates: []string{
		`"%[1]s" competitors alternatives comparison versus`,
		`"%[1]s" competitive advantage differentiation`,
	}},
	{name: "industry_landscape", needsIndustry: true, templates: []string{
		`%[2]s market leaders top companies`,
		`%[2]s market size growth forecast trends`,
	}},
	{name: "validation", templates: []string{
		`"%[1]s" customer success case study ROI`,
		`"%[1]s" complaints issues problems reddit`,
		`"%[1]s" review rating testimonial`,
	}},
}

type query struct {
	group string
	text  string
}

// Enricher 为可检索分类构造公司身份块与联网检索情报
type Enricher struct {
	searcher    search.Searcher
	depth       string
	maxResults  int
	concurrency int
}

// NewEnricher searcher 为 nil 时只生成身份块
func NewEnricher(searcher search.Searcher, cfg config.SearchConfig) *Enricher {
	return &Enricher{
		searcher:    searcher,
		depth:       cfg.Depth,
		maxResults:  cfg.MaxResults,
		concurrency: cfg.Concurrency,
	}
}

// Build 返回附加输入块及检索结果条数，身份不可用时返回空串
func (e *Enricher) Build(ctx context.Context, id model.Identity) (string, int) {
	if !id.Usable() {
		return "", 0
	}

	var sb strings.Builder
	sb.WriteString(IdentityBlock(id))

	if e.searcher == nil {
		return sb.String(), 0
	}

	grouped, count := e.searchAll(ctx, buildQueries(id))
	if count > 0 {
		sb.WriteString("\n")
		sb.WriteString(formatResults(grouped))
	}
	return sb.String(), count
}

// IdentityBlock 公司身份摘要
func IdentityBlock(id model.Identity) string {
	var sb strings.Builder
	sb.WriteString("**COMPANY INFORMATION:**\n")
	fmt.Fprintf(&sb, "Name: %s\n", id.Name)
	fmt.Fprintf(&sb, "Industry: %s\n", orUnknown(id.Industry))
	fmt.Fprintf(&sb, "Stage: %s\n", orUnknown(id.Stage))
	if len(id.Founders) > 0 {
		fmt.Fprintf(&sb, "Founders: %s\n", strings.Join(id.Founders, ", "))
	}
	if len(id.Products) > 0 {
		fmt.Fprintf(&sb, "Products: %s\n", strings.Join(id.Products, ", "))
	}
	if id.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", id.Location)
	}
	if id.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", id.Description)
	}
	return sb.String()
}

func buildQueries(id model.Identity) []query {
	var qs []query
	for _, g := range companyQueries {
		if g.needsIndustry && id.Industry == "" {
			continue
		}
		for _, tpl := range g.templates {
			qs = append(qs, query{group: g.name, text: fmt.Sprintf(tpl, id.Name, id.Industry)})
		}
	}
	for i, p := range id.Products {
		if i >= maxProducts {
			break
		}
		qs = append(qs, query{group: "validation", text: fmt.Sprintf(`"%s" review comparison benchmark`, p)})
	}
	return qs
}

type groupResults struct {
	name    string
	results []search.Result
}

// searchAll 并发执行检索，单条失败跳过，结果按分组顺序返回
func (e *Enricher) searchAll(ctx context.Context, qs []query) ([]groupResults, int) {
	slots := make([][]search.Result, len(qs))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, q := range qs {
		g.Go(func() error {
			slots[i] = e.searchOne(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	var (
		out   []groupResults
		index = map[string]int{}
		seen  = map[string]bool{}
		count int
	)
	for i, q := range qs {
		for _, r := range slots[i] {
			if r.URL != "" && seen[r.URL] {
				continue
			}
			pos, ok := index[q.group]
			if !ok {
				pos = len(out)
				index[q.group] = pos
				out = append(out, groupResults{name: q.group})
			}
			if len(out[pos].results) >= maxResultsPerTab {
				continue
			}
			seen[r.URL] = true
			out[pos].results = append(out[pos].results, r)
			count++
		}
	}
	return out, count
}

// searchOne 执行单条检索，失败或 panic 时跳过该条
func (e *Enricher) searchOne(ctx context.Context, q query) (results []search.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("检索 panic [%s]: %v", q.text, r)
			results = nil
		}
	}()

	resp, err := e.searcher.Search(ctx, &search.Request{
		Query:      q.text,
		Topic:      "general",
		Depth:      e.depth,
		MaxResults: e.maxResults,
	})
	if err != nil {
		logger.Log.Warnf("检索失败 [%s]: %v", q.text, err)
		return nil
	}
	if resp == nil {
		return nil
	}
	logger.Log.Debugf("检索 [%s] 成功: %s", q.text, gson.ToString(resp))
	return resp.Results
}

// formatResults 将检索结果格式化为分析输入
func formatResults(groups []groupResults) string {
	var sb strings.Builder
	sb.WriteString("**WEB SEARCH INSIGHTS:**\n")
	for _, g := range groups {
		if len(g.results) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n**%s:**\n", strings.ToUpper(strings.ReplaceAll(g.name, "_", " ")))
		for i, r := range g.results {
			fmt.Fprintf(&sb, "\n%d. **%s**\n", i+1, orDefault(r.Title, "No title"))
			fmt.Fprintf(&sb, "   Source: %s\n", orDefault(r.URL, "No URL"))
			if r.PublishedDate != "" {
				fmt.Fprintf(&sb, "   Date: %s\n", r.PublishedDate)
			}
			fmt.Fprintf(&sb, "   %s\n", clip(r.Content, maxContentRunes))
		}
	}
	return sb.String()
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
