package categorizer

import (
	"path/filepath"
	"strings"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

type keywordRule struct {
	category model.Category
	keywords []string
}

// 文件名关键字规则，按顺序匹配，先命中者优先
var keywordRules = []keywordRule{
	{model.CategoryPitchMaterial, []string{"pitch", "deck", "presentation", "slides"}},
	{model.CategoryFinancialData, []string{"financial", "traction", "metrics", "kpi", "revenue", "onepager", "one-pager"}},
	{model.CategoryWebPresence, []string{"website", "landing", "blog", "faq", "web", "content"}},
	{model.CategoryInteractionRecord, []string{"call", "recording", "transcript", "interview", "questionnaire", "feedback"}},
}

var extensionRules = map[string]model.Category{
	".pdf":  model.CategoryPitchMaterial,
	".pptx": model.CategoryPitchMaterial,
	".key":  model.CategoryPitchMaterial,
	".xlsx": model.CategoryFinancialData,
	".xls":  model.CategoryFinancialData,
	".csv":  model.CategoryFinancialData,
	".txt":  model.CategoryWebPresence,
	".md":   model.CategoryWebPresence,
	".json": model.CategoryWebPresence,
	".html": model.CategoryWebPresence,
	".htm":  model.CategoryWebPresence,
}

type contentTypeRule struct {
	category model.Category
	fragment string
}

var contentTypeRules = []contentTypeRule{
	{model.CategoryPitchMaterial, "application/pdf"},
	{model.CategoryPitchMaterial, "presentation"},
	{model.CategoryFinancialData, "text/csv"},
	{model.CategoryFinancialData, "spreadsheet"},
	{model.CategoryFinancialData, "ms-excel"},
	{model.CategoryWebPresence, "text/html"},
	{model.CategoryWebPresence, "text/markdown"},
	{model.CategoryWebPresence, "application/json"},
}

// Categorize 根据文件名与内容类型判定分类，结果确定且总能返回一个分类
func Categorize(filename, contentType string) model.Category {
	name := strings.ToLower(filename)

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}

	if c, ok := extensionRules[filepath.Ext(name)]; ok {
		return c
	}

	ct := strings.ToLower(contentType)
	if ct != "" {
		for _, rule := range contentTypeRules {
			if strings.Contains(ct, rule.fragment) {
				return rule.category
			}
		}
	}

	return model.CategoryGeneral
}

// Partition 将文档划分到各分类，每个文档恰好出现一次
func Partition(docs []model.ExtractedDocument) map[model.Category][]model.ExtractedDocument {
	out := make(map[model.Category][]model.ExtractedDocument)
	for _, doc := range docs {
		c := Categorize(doc.Filename, doc.ContentType)
		out[c] = append(out[c], doc)
	}
	return out
}
