package webintel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/search"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []*search.Request
	fail    func(q string) bool
}

func (f *fakeSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	f.mu.Lock()
	f.queries = append(f.queries, req)
	f.mu.Unlock()

	if f.fail != nil && f.fail(req.Query) {
		return nil, errors.New("quota exceeded")
	}
	if strings.Contains(req.Query, "funding round") {
		return &search.Response{Results: []search.Result{
			{Title: "Acme raises $3M seed", URL: "https://news.example.com/acme-seed", Content: strings.Repeat("c", 800), PublishedDate: "2025-01-10"},
		}}, nil
	}
	if strings.Contains(req.Query, "press coverage") {
		// 与融资新闻重复的链接会被去重
		return &search.Response{Results: []search.Result{
			{Title: "dup", URL: "https://news.example.com/acme-seed"},
			{Title: "Acme on TechDaily", URL: "https://techdaily.example.com/acme"},
		}}, nil
	}
	return &search.Response{}, nil
}

var acme = model.Identity{Name: "Acme Robotics", Industry: "robotics", Stage: "Seed", Founders: []string{"Jane Doe"}, Products: []string{"AutoPick"}}

func TestBuild_UnusableIdentity(t *testing.T) {
	fs := &fakeSearcher{}
	e := NewEnricher(fs, config.SearchConfig{MaxResults: 5, Concurrency: 2})

	block, n := e.Build(context.Background(), model.Identity{Industry: "fintech"})
	assert.Empty(t, block)
	assert.Zero(t, n)
	assert.Empty(t, fs.queries)
}

func TestBuild_IdentityOnlyWithoutSearcher(t *testing.T) {
	e := NewEnricher(nil, config.SearchConfig{})
	block, n := e.Build(context.Background(), model.Identity{Name: "Ledgerly"})

	assert.Zero(t, n)
	assert.Equal(t, "**COMPANY INFORMATION:**\nName: Ledgerly\nIndustry: Unknown\nStage: Unknown\n", block)
}

func TestBuild_WithSearch(t *testing.T) {
	fs := &fakeSearcher{fail: func(q string) bool { return strings.Contains(q, "reddit") }}
	e := NewEnricher(fs, config.SearchConfig{Depth: "advanced", MaxResults: 5, Concurrency: 3})

	block, n := e.Build(context.Background(), acme)

	assert.Equal(t, 2, n)
	assert.Contains(t, block, "Name: Acme Robotics")
	assert.Contains(t, block, "Founders: Jane Doe")
	assert.Contains(t, block, "**WEB SEARCH INSIGHTS:**")
	assert.Contains(t, block, "**FUNDING NEWS:**")
	assert.Contains(t, block, "**SOCIAL PROOF:**")
	assert.Contains(t, block, "Date: 2025-01-10")
	assert.Contains(t, block, strings.Repeat("c", 500)+"...")
	assert.NotContains(t, block, strings.Repeat("c", 501))
	assert.NotContains(t, block, "**dup**")

	require.NotEmpty(t, fs.queries)
	var sawIndustry, sawProduct bool
	for _, q := range fs.queries {
		assert.Equal(t, "advanced", q.Depth)
		assert.Equal(t, 5, q.MaxResults)
		if strings.HasPrefix(q.Query, "robotics market") {
			sawIndustry = true
		}
		if strings.Contains(q.Query, `"AutoPick" review`) {
			sawProduct = true
		}
	}
	assert.True(t, sawIndustry)
	assert.True(t, sawProduct)
}

func TestBuildQueries_SkipsIndustryWithoutIndustry(t *testing.T) {
	qs := buildQueries(model.Identity{Name: "Ledgerly"})
	for _, q := range qs {
		assert.NotEqual(t, "industry_landscape", q.group)
		assert.Contains(t, q.text, "Ledgerly")
	}
}

func TestBuild_AllSearchesFail(t *testing.T) {
	fs := &fakeSearcher{fail: func(string) bool { return true }}
	e := NewEnricher(fs, config.SearchConfig{Concurrency: 1})

	block, n := e.Build(context.Background(), acme)
	assert.Zero(t, n)
	assert.Contains(t, block, "**COMPANY INFORMATION:**")
	assert.NotContains(t, block, "WEB SEARCH INSIGHTS")
}

// scriptedSearcher 按查询文本返回预设结果，nil 条目返回 (nil, nil)
type scriptedSearcher struct {
	results map[string][]search.Result
	nilFor  string
	panicOn string
}

func (s scriptedSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	if s.panicOn != "" && strings.Contains(req.Query, s.panicOn) {
		panic("malformed response")
	}
	if s.nilFor != "" && strings.Contains(req.Query, s.nilFor) {
		return nil, nil
	}
	return &search.Response{Results: s.results[req.Query]}, nil
}

func TestBuild_NilAndPanickingResponsesSkipped(t *testing.T) {
	s := scriptedSearcher{
		results: map[string][]search.Result{
			`"Acme" funding round investment seed series`: {{Title: "Acme seed", URL: "https://news.example.com/acme"}},
		},
		nilFor:  "hiring",
		panicOn: "reddit",
	}
	e := NewEnricher(s, config.SearchConfig{Concurrency: 2})

	block, n := e.Build(context.Background(), model.Identity{Name: "Acme"})
	assert.Equal(t, 1, n)
	assert.Contains(t, block, "Acme seed")
}

func TestSearchAll_CappedResultStaysAvailable(t *testing.T) {
	var first []search.Result
	for i := 0; i < maxResultsPerTab; i++ {
		first = append(first, search.Result{Title: "a", URL: "https://a.example.com/" + string(rune('a'+i))})
	}
	overflow := search.Result{Title: "overflow", URL: "https://b.example.com/overflow"}
	s := scriptedSearcher{results: map[string][]search.Result{
		"q1": first,
		"q2": {overflow},
		"q3": {overflow},
	}}
	e := NewEnricher(s, config.SearchConfig{Concurrency: 1})

	groups, n := e.searchAll(context.Background(), []query{
		{group: "corporate_info", text: "q1"},
		{group: "corporate_info", text: "q2"},
		{group: "funding_news", text: "q3"},
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].results, maxResultsPerTab)
	require.Len(t, groups[1].results, 1)
	assert.Equal(t, "overflow", groups[1].results[0].Title)
	assert.Equal(t, maxResultsPerTab+1, n)
}
