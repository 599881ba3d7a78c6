package aggregator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/questions"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/scoring"
)

var results = []model.AgentResult{
	{Category: model.CategoryPitchMaterial, Narrative: "Seasoned founders.", Confidence: 0.8},
	{Category: model.CategoryFinancialData, Narrative: "Error during analysis: too short", Error: model.ErrContentTooShort},
	{Category: model.CategoryWebPresence, Narrative: "Strong press coverage.", Confidence: 0.6},
	{Category: model.CategoryError, Narrative: "Agent error: panic", Error: model.ErrAgentFaultTag},
}

func newAggregator(t *testing.T, gen llm.Generator, withQuestions bool) *Aggregator {
	t.Helper()
	var qgen *questions.Generator
	if withQuestions {
		qgen = questions.NewGenerator(gen, 8000)
	}
	a, err := New(gen, scoring.NewScorer(), qgen)
	require.NoError(t, err)
	return a
}

func TestAggregate_Success(t *testing.T) {
	var synthesisPromptSeen string
	var calls int32
	gen := llm.GeneratorFunc(func(ctx context.Context, system, user string) (string, error) {
		atomic.AddInt32(&calls, 1)
		if system == synthesisSystem {
			synthesisPromptSeen = user
			return "A strong team going after a large market with recurring revenue.", nil
		}
		return "**Priority 1 - Must Ask**\n1. What is the current net revenue retention?\n", nil
	})
	a := newAggregator(t, gen, true)

	res, err := a.Aggregate(context.Background(), results)
	require.NoError(t, err)

	assert.Contains(t, synthesisPromptSeen, "**PITCH_MATERIAL ANALYSIS** (Confidence: 0.8)")
	assert.Contains(t, synthesisPromptSeen, "**ERROR ANALYSIS** (Confidence: 0.0)")
	assert.Equal(t, "A strong team going after a large market with recurring revenue.", res.Narrative)
	assert.Empty(t, res.Metadata.SynthesisError)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
	assert.Equal(t, 4, res.Metadata.TotalAnalyses)
	assert.Equal(t, model.CategoryPitchMaterial, res.Metadata.SourceCategories[0])

	assert.Equal(t, 45.0, res.Score.Team)
	assert.Equal(t, 50.0, res.Score.Market)
	assert.Equal(t, []string{"1. What is the current net revenue retention?"}, res.Questions.TopQuestions)
	// 综述 1 次 + 问题流水线 5 次
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestAggregate_SynthesisFailureFallsBack(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("provider unavailable")
	})
	a := newAggregator(t, gen, true)

	res, err := a.Aggregate(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, "provider unavailable", res.Metadata.SynthesisError)
	assert.Equal(t, Combine(results), res.Narrative)
	assert.Contains(t, res.Narrative, "Seasoned founders.")
	// 问题流水线全部失败时返回空问题集
	assert.Empty(t, res.Questions.InterviewGuide)
	assert.Empty(t, res.Questions.TopQuestions)
}

func TestAggregate_EmptySynthesis(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, system, user string) (string, error) {
		return "   ", nil
	})
	res, err := newAggregator(t, gen, false).Aggregate(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, string(model.ErrEmptyResponse), res.Metadata.SynthesisError)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(res.Narrative), strings.Repeat("=", 80)))
}

func TestAggregate_NoResults(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, system, user string) (string, error) {
		return "Nothing to analyze.", nil
	})
	res, err := newAggregator(t, gen, false).Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, 0, res.Metadata.TotalAnalyses)
	assert.Equal(t, model.RecommendationPass, res.Score.Recommendation)
}

func TestValidate_RejectsInvalidShape(t *testing.T) {
	a := newAggregator(t, llm.GeneratorFunc(func(ctx context.Context, s, u string) (string, error) { return "", nil }), false)

	valid := model.AggregateResult{
		Narrative:  "ok",
		Confidence: 0.5,
		Score:      scoring.NewScorer().Score("ok"),
	}
	require.NoError(t, a.Validate(valid))

	tests := map[string]func(r *model.AggregateResult){
		"confidence out of range": func(r *model.AggregateResult) { r.Confidence = 1.5 },
		"empty narrative":         func(r *model.AggregateResult) { r.Narrative = "" },
		"score out of range":      func(r *model.AggregateResult) { r.Score.Team = 140 },
		"unknown recommendation":  func(r *model.AggregateResult) { r.Score.Recommendation = "Maybe" },
		"too many top questions":  func(r *model.AggregateResult) { r.Questions.TopQuestions = make([]string, 6) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := valid
			r.Score.Weights = scoring.DefaultWeights()
			mutate(&r)
			assert.ErrorIs(t, a.Validate(r), model.ErrAggregateShape)
		})
	}
}

func TestMeanConfidence(t *testing.T) {
	assert.InDelta(t, 0.7, MeanConfidence(results), 1e-9)
	assert.Equal(t, 0.0, MeanConfidence(nil))
	assert.Equal(t, 0.0, MeanConfidence(results[1:2]))
}
