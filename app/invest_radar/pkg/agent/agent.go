package agent

import (
	"fmt"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// Profile 分类分析能力：系统提示、分块提示与汇总提示
type Profile interface {
	Category() model.Category
	SystemPrompt() string
	ChunkPrompt(chunk string) string
	ReducePrompt(summaries string) string
	// Searchable 是否接收公司身份与联网检索补充的输入
	Searchable() bool
}

type profile struct {
	category   model.Category
	system     string
	sections   string
	searchable bool
}

func (p profile) Category() model.Category { return p.category }
func (p profile) SystemPrompt() string     { return p.system }
func (p profile) Searchable() bool         { return p.searchable }

func (p profile) ChunkPrompt(chunk string) string {
	return fmt.Sprintf(chunkTemplate, p.sections, chunk)
}

func (p profile) ReducePrompt(summaries string) string {
	return fmt.Sprintf(reduceTemplate, summaries)
}

// 静态分派表
var registry = map[model.Category]Profile{
	model.CategoryPitchMaterial: profile{
		category: model.CategoryPitchMaterial,
		system:   pitchSystem,
		sections: pitchSections,
	},
	model.CategoryFinancialData: profile{
		category: model.CategoryFinancialData,
		system:   financialSystem,
		sections: financialSections,
	},
	model.CategoryWebPresence: profile{
		category:   model.CategoryWebPresence,
		system:     webSystem,
		sections:   webSections,
		searchable: true,
	},
	model.CategoryInteractionRecord: profile{
		category: model.CategoryInteractionRecord,
		system:   interactionSystem,
		sections: interactionSections,
	},
	model.CategoryGeneral: profile{
		category: model.CategoryGeneral,
		system:   generalSystem,
		sections: generalSections,
	},
}

// Lookup 查找分类对应的分析能力
func Lookup(c model.Category) (Profile, bool) {
	p, ok := registry[c]
	return p, ok
}

// All 按固定分类顺序返回全部能力
func All() []Profile {
	out := make([]Profile, 0, len(registry))
	for _, c := range model.Categories {
		if p, ok := registry[c]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SearchableCategory 接收身份补充信息的分类
func SearchableCategory() model.Category {
	for _, p := range All() {
		if p.Searchable() {
			return p.Category()
		}
	}
	return ""
}
