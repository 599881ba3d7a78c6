package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

func TestRegistryCoversAllCategories(t *testing.T) {
	for _, c := range model.Categories {
		p, ok := Lookup(c)
		require.True(t, ok, c)
		assert.Equal(t, c, p.Category())
		assert.NotEmpty(t, p.SystemPrompt())
	}

	_, ok := Lookup(model.CategoryError)
	assert.False(t, ok)
}

func TestAllIsOrdered(t *testing.T) {
	all := All()
	require.Len(t, all, len(model.Categories))
	for i, p := range all {
		assert.Equal(t, model.Categories[i], p.Category())
	}
}

func TestSearchableCategory(t *testing.T) {
	assert.Equal(t, model.CategoryWebPresence, SearchableCategory())
}

func TestPrompts(t *testing.T) {
	p, _ := Lookup(model.CategoryPitchMaterial)
	chunk := p.ChunkPrompt("Acme sells robots to warehouses.")
	assert.Contains(t, chunk, "Acme sells robots to warehouses.")
	assert.Contains(t, chunk, "**Team Assessment:**")

	reduce := p.ReducePrompt("summary one\n\nsummary two")
	assert.Contains(t, reduce, "summary one\n\nsummary two")
}
