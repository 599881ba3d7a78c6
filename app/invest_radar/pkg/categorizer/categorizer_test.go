package categorizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        model.Category
	}{
		{"Acme_Pitch_Deck.pdf", "application/pdf", model.CategoryPitchMaterial},
		{"series-a-slides.key", "", model.CategoryPitchMaterial},
		{"financial_model.xlsx", "", model.CategoryFinancialData},
		{"KPI-dashboard.png", "image/png", model.CategoryFinancialData},
		{"acme-one-pager.docx", "", model.CategoryFinancialData},
		{"website_copy.docx", "", model.CategoryWebPresence},
		{"customer_call_notes.docx", "", model.CategoryInteractionRecord},
		{"founder_interview.m4a", "audio/mp4", model.CategoryInteractionRecord},
		{"overview.pdf", "", model.CategoryPitchMaterial},
		{"cap_table.csv", "", model.CategoryFinancialData},
		{"about.md", "", model.CategoryWebPresence},
		{"homepage.html", "", model.CategoryWebPresence},
		{"export.bin", "text/html; charset=utf-8", model.CategoryWebPresence},
		{"export.bin", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", model.CategoryFinancialData},
		{"photo.png", "image/png", model.CategoryGeneral},
		{"", "", model.CategoryGeneral},
		// 关键字优先于扩展名
		{"pitch_metrics.csv", "", model.CategoryPitchMaterial},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s|%s", tt.filename, tt.contentType), func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.filename, tt.contentType))
		})
	}
}

func TestCategorize_Idempotent(t *testing.T) {
	for _, name := range []string{"deck.pdf", "notes.txt", "x.unknown", "Traction.XLSX"} {
		first := Categorize(name, "")
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Categorize(name, ""))
		}
	}
}

func TestPartition_NoLossNoDuplication(t *testing.T) {
	docs := []model.ExtractedDocument{
		{Filename: "deck.pdf"},
		{Filename: "revenue.xlsx"},
		{Filename: "landing.html"},
		{Filename: "call_transcript.txt"},
		{Filename: "logo.png"},
		{Filename: "deck_v2.pdf"},
	}

	groups := Partition(docs)

	seen := map[string]int{}
	total := 0
	for c, group := range groups {
		for _, d := range group {
			seen[d.Filename]++
			assert.Equal(t, Categorize(d.Filename, d.ContentType), c)
		}
		total += len(group)
	}
	assert.Equal(t, len(docs), total)
	for _, d := range docs {
		assert.Equal(t, 1, seen[d.Filename], d.Filename)
	}
	assert.Len(t, groups[model.CategoryPitchMaterial], 2)
	assert.Len(t, groups[model.CategoryGeneral], 1)
}
