package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
)

const deck = `Acme Robotics - Warehouse automation for everyone
Company: Acme Robotics
We are raising a Seed round to scale our software platform.
Founder: Jane Doe
Co-founder: John Smith
Product: AutoPick picking arm
`

// replies 按调用顺序返回预设回复
func replies(t *testing.T, out ...string) (llm.Generator, *int) {
	t.Helper()
	calls := 0
	return llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		defer func() { calls++ }()
		if calls >= len(out) {
			t.Fatalf("unexpected call %d", calls+1)
		}
		if out[calls] == "ERR" {
			return "", errors.New("llm down")
		}
		return out[calls], nil
	}), &calls
}

func TestExtract_StructuredJSON(t *testing.T) {
	gen, calls := replies(t, "```json\n"+`{"name":"Acme Robotics","industry":"robotics","stage":"Seed","founders":["Jane Doe"],"products":["AutoPick"],"location":"Berlin, Germany","description":"Warehouse picking robots"}`+"\n```")
	id := NewExtractor(gen, 5000).Extract(context.Background(), deck)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, "Acme Robotics", id.Name)
	assert.Equal(t, "robotics", id.Industry)
	assert.Equal(t, "Seed", id.Stage)
	assert.Equal(t, []string{"Jane Doe"}, id.Founders)
	assert.Equal(t, "Berlin, Germany", id.Location)
	assert.Equal(t, SourceLLM, id.Source)
	assert.True(t, id.Usable())
}

func TestExtract_FallbackToPatterns(t *testing.T) {
	gen, calls := replies(t, "I think the company is Acme.")
	id := NewExtractor(gen, 5000).Extract(context.Background(), deck)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, SourcePattern, id.Source)
	assert.Equal(t, "Acme Robotics", id.Name)
	assert.Equal(t, "saas", id.Industry)
	assert.Equal(t, "Seed", id.Stage)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, id.Founders)
	assert.Equal(t, []string{"AutoPick picking arm"}, id.Products)
}

func TestExtract_FallbackOnInferenceError(t *testing.T) {
	gen, _ := replies(t, "ERR")
	id := NewExtractor(gen, 5000).Extract(context.Background(), deck)
	assert.Equal(t, "Acme Robotics", id.Name)
	assert.Equal(t, SourcePattern, id.Source)
}

func TestExtract_TemplateArtifactTriggersSecondCall(t *testing.T) {
	gen, calls := replies(t,
		`{"name":"[Company Name]","industry":"fintech","stage":"Series A"}`,
		"Ledgerly",
	)
	id := NewExtractor(gen, 5000).Extract(context.Background(), "Ledgerly helps small businesses reconcile payments. Series A.")

	assert.Equal(t, 2, *calls)
	assert.Equal(t, "Ledgerly", id.Name)
	assert.Equal(t, "fintech", id.Industry)
}

func TestExtract_SecondCallCannotFindName(t *testing.T) {
	gen, calls := replies(t, `{"name":"Unknown Company"}`, "NONE")
	id := NewExtractor(gen, 5000).Extract(context.Background(), "an anonymous memo about the market")

	assert.Equal(t, 2, *calls)
	assert.False(t, id.Usable())
}

func TestExtract_EmptyText(t *testing.T) {
	gen, calls := replies(t)
	id := NewExtractor(gen, 5000).Extract(context.Background(), "   ")
	assert.Equal(t, 0, *calls)
	assert.False(t, id.Usable())
}

func TestExtract_UsesSampleOnly(t *testing.T) {
	var got string
	gen := llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		got = u
		return `{"name":"Acme"}`, nil
	})
	text := strings.Repeat("a", 100) + "SECRET_TAIL"
	NewExtractor(gen, 100).Extract(context.Background(), text)
	assert.NotContains(t, got, "SECRET_TAIL")
}

func TestExtract_EmptyNameSkipsSecondCall(t *testing.T) {
	gen, calls := replies(t, `{"name":"","industry":"fintech"}`)
	id := NewExtractor(gen, 5000).Extract(context.Background(), "a deck with no company name on any slide")

	assert.Equal(t, 1, *calls)
	assert.Empty(t, id.Name)
	assert.Equal(t, "fintech", id.Industry)
	assert.False(t, id.Usable())
}

func TestFromPatterns_Stage(t *testing.T) {
	assert.Equal(t, "Pre-seed", FromPatterns("We are raising a pre-seed round").Stage)
	assert.Equal(t, "Series B", FromPatterns("Closed our Series B last year").Stage)
	assert.Equal(t, "", FromPatterns("bootstrapped and profitable").Stage)
}

func TestIsArtifact(t *testing.T) {
	for _, name := range []string{"", "Unknown", "Unknown Company", "N/A", "[Company Name]", "<name>", "{company}", "Your Company", "Company Name", "TBD", "XXXX Inc"} {
		assert.True(t, IsArtifact(name), name)
	}
	for _, name := range []string{"Acme Robotics", "Ledgerly", "N26", "Company.io"} {
		assert.False(t, IsArtifact(name), name)
	}
}

func TestFromPatterns_SkipsArtifactNames(t *testing.T) {
	id := FromPatterns("Company: Company Name\nStartup: Ledgerly")
	require.Equal(t, SourcePattern, id.Source)
	assert.Equal(t, "Ledgerly", id.Name)
}
