package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/agent"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

const reduceMarker = "Partial analyses:"

var longSummary = strings.Repeat("Strong founding team with relevant experience. ", 30)

func pitchProfile(t *testing.T) agent.Profile {
	t.Helper()
	p, ok := agent.Lookup(model.CategoryPitchMaterial)
	require.True(t, ok)
	return p
}

// scripted 分别模拟分块调用与汇总调用
func scripted(chunk func(prompt string) (string, error), reduce func(prompt string) (string, error)) llm.Generator {
	return llm.GeneratorFunc(func(ctx context.Context, system, user string) (string, error) {
		if strings.Contains(user, reduceMarker) {
			return reduce(user)
		}
		return chunk(user)
	})
}

func okChunk(string) (string, error)  { return "Chunk summary with enough detail to pass.", nil }
func okReduce(string) (string, error) { return longSummary, nil }

func TestAnalyze_ContentTooShort(t *testing.T) {
	var calls int32
	gen := llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", nil
	})
	s := New(pitchProfile(t), gen, config.DefaultGuardrails())

	res, err := s.Analyze(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, model.ErrContentTooShort, res.Error)
	assert.Equal(t, 0.0, res.Confidence)
	assert.True(t, strings.HasPrefix(res.Narrative, "Error during analysis: "))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestAnalyze_WhitespaceOnlyProducesNoChunks(t *testing.T) {
	s := New(pitchProfile(t), scripted(okChunk, okReduce), config.DefaultGuardrails())

	res, err := s.Analyze(context.Background(), strings.Repeat(" \n", 20))
	require.NoError(t, err)
	assert.Equal(t, model.ErrNoChunksProduced, res.Error)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestAnalyze_Success(t *testing.T) {
	var chunkCalls int32
	gen := scripted(func(p string) (string, error) {
		atomic.AddInt32(&chunkCalls, 1)
		return okChunk(p)
	}, okReduce)
	s := New(pitchProfile(t), gen, config.DefaultGuardrails())

	// 10000 字符按 4000/200 切分为 3 块
	res, err := s.Analyze(context.Background(), strings.Repeat("a", 10000))
	require.NoError(t, err)
	require.Empty(t, res.Error)

	assert.Equal(t, model.CategoryPitchMaterial, res.Category)
	assert.Equal(t, 3, res.Metadata.NumChunks)
	assert.Equal(t, 3, res.Metadata.ChunksProcessed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&chunkCalls))
	assert.Equal(t, strings.TrimSpace(longSummary), res.Narrative)
	assert.InDelta(t, 0.6+0.4*0.6, res.Confidence, 1e-9)
	assert.False(t, res.Metadata.ContentTruncated)
	assert.False(t, res.Metadata.ChunksTruncated)
}

func TestAnalyze_ContentTruncated(t *testing.T) {
	limits := config.DefaultGuardrails()
	limits.MaxContentLength = 100
	limits.ChunkSize = 40
	limits.ChunkOverlap = 0

	var seen []string
	gen := scripted(func(p string) (string, error) { return okChunk(p) }, func(p string) (string, error) {
		seen = append(seen, p)
		return okReduce(p)
	})
	s := New(pitchProfile(t), gen, limits)

	res, err := s.Analyze(context.Background(), strings.Repeat("x", 150))
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.True(t, res.Metadata.ContentTruncated)
	// 100 字符按 40 切分为 3 块
	assert.Equal(t, 3, res.Metadata.NumChunks)
	require.Len(t, seen, 1)
}

func TestAnalyze_ChunksTruncated(t *testing.T) {
	limits := config.DefaultGuardrails()
	limits.ChunkSize = 10
	limits.ChunkOverlap = 0
	limits.MaxChunks = 3

	s := New(pitchProfile(t), scripted(okChunk, okReduce), limits)
	res, err := s.Analyze(context.Background(), strings.Repeat("y", 100))
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.True(t, res.Metadata.ChunksTruncated)
	assert.Equal(t, 3, res.Metadata.NumChunks)
	assert.LessOrEqual(t, res.Metadata.NumChunks, limits.MaxChunks)
}

func TestAnalyze_ChunkFailuresAreStubbed(t *testing.T) {
	limits := config.DefaultGuardrails()
	limits.ChunkSize = 20
	limits.ChunkOverlap = 0

	var reducePrompt string
	gen := scripted(func(p string) (string, error) {
		switch {
		case strings.Contains(p, "BBBB"):
			return "", errors.New("upstream 500")
		case strings.Contains(p, "CCCC"):
			return "too short", nil
		}
		return okChunk(p)
	}, func(p string) (string, error) {
		reducePrompt = p
		return okReduce(p)
	})
	s := New(pitchProfile(t), gen, limits)

	content := strings.Repeat("A", 20) + strings.Repeat("B", 20) + strings.Repeat("C", 20)
	res, err := s.Analyze(context.Background(), content)
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.Equal(t, 3, res.Metadata.ChunksProcessed)
	assert.Equal(t, 2, res.Metadata.FailedChunks)
	assert.Contains(t, reducePrompt, "Error analyzing chunk 2: upstream 500")
	assert.Contains(t, reducePrompt, "Error analyzing chunk 3: response too short")
	assert.Contains(t, reducePrompt, "Chunk summary with enough detail")
}

func TestAnalyze_ReduceFailures(t *testing.T) {
	tests := []struct {
		name   string
		reduce func(string) (string, error)
		want   model.ErrorTag
	}{
		{"empty", func(string) (string, error) { return "   ", nil }, model.ErrEmptyResponse},
		{"too short", func(string) (string, error) { return "Looks good.", nil }, model.ErrResponseTooShort},
		{"inference error", func(string) (string, error) { return "", errors.New("boom") }, model.ErrInferenceFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(pitchProfile(t), scripted(okChunk, tt.reduce), config.DefaultGuardrails())
			res, err := s.Analyze(context.Background(), strings.Repeat("content ", 50))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Error)
			assert.Equal(t, 0.0, res.Confidence)
			assert.Equal(t, 1, res.Metadata.NumChunks)
		})
	}
}

func TestAnalyze_TimeoutReturnsPromptly(t *testing.T) {
	limits := config.DefaultGuardrails()
	limits.AgentTimeout = 50 * time.Millisecond

	// 忽略 ctx 的慢调用
	gen := llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		time.Sleep(2 * time.Second)
		return longSummary, nil
	})
	s := New(pitchProfile(t), gen, limits)

	start := time.Now()
	res, err := s.Analyze(context.Background(), strings.Repeat("z", 500))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, model.ErrTimeout, res.Error)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Less(t, elapsed, time.Second)
}

func TestAnalyze_ParentCancelIsNotTimeout(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		time.Sleep(2 * time.Second)
		return longSummary, nil
	})
	s := New(pitchProfile(t), gen, config.DefaultGuardrails())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	res, err := s.Analyze(ctx, strings.Repeat("z", 500))

	require.NoError(t, err)
	assert.Equal(t, model.ErrCancelled, res.Error)
	assert.Contains(t, res.Narrative, "cancelled")
	assert.Less(t, time.Since(start), time.Second)
}

func TestAnalyze_PanicBecomesFault(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		panic("nil map write")
	})
	s := New(pitchProfile(t), gen, config.DefaultGuardrails())

	_, err := s.Analyze(context.Background(), strings.Repeat("p", 500))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAgentFault)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		length, chunks int
		want           float64
	}{
		{0, 0, 0.1},
		{100, 1, 0.6*0.1 + 0.4*0.2},
		{1000, 5, 0.95},
		{5000, 50, 0.95},
		{500, 5, 0.6*0.5 + 0.4},
	}
	for _, tt := range tests {
		got := Confidence(tt.length, tt.chunks)
		assert.InDelta(t, tt.want, got, 1e-9)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestSplit(t *testing.T) {
	chunks := Split(strings.Repeat("a", 10000), 4000, 200)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 4000)
	assert.Len(t, chunks[1], 4000)
	assert.Len(t, chunks[2], 10000-7600)

	// 重叠部分
	text := "0123456789"
	assert.Equal(t, []string{"0123", "3456", "6789"}, Split(text, 4, 1))

	// 多字节字符按字符计数
	assert.Equal(t, []string{"投资分", "析引擎"}, Split("投资分析引擎", 3, 0))

	assert.Empty(t, Split("", 10, 2))
	assert.Empty(t, Split("     ", 2, 0))
}
