package scoring

import (
	"math"
	"strings"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// Signal 关键词及其加减分
type Signal struct {
	Keyword string
	Delta   float64
}

// SignalTable 单个维度的基础分与信号表
type SignalTable struct {
	Dimension model.Dimension
	Base      float64
	Signals   []Signal
}

// DefaultTables 各维度信号表，按维度顺序排列
var DefaultTables = []SignalTable{
	{
		Dimension: model.DimensionTeam,
		Base:      40,
		Signals: []Signal{
			{"founder", 5}, {"experience", 5}, {"track record", 5}, {"technical", 5},
			{"domain expert", 10}, {"previous exit", 10}, {"strong team", 5}, {"seasoned", 5}, {"veteran", 5},
			{"first-time", -5}, {"inexperienced", -10}, {"solo founder", -5}, {"no technical", -10}, {"team risk", -5},
		},
	},
	{
		Dimension: model.DimensionMarket,
		Base:      40,
		Signals: []Signal{
			{"large market", 10}, {"billion", 10}, {"growing market", 5}, {"tam", 5},
			{"market opportunity", 5}, {"unmet need", 5}, {"pain point", 5}, {"urgent", 5},
			{"small market", -10}, {"declining", -10}, {"saturated", -10}, {"competitive", -5}, {"low barrier", -5},
		},
	},
	{
		Dimension: model.DimensionProduct,
		Base:      40,
		Signals: []Signal{
			{"innovative", 5}, {"proprietary", 10}, {"patent", 10}, {"unique", 5}, {"differentiated", 5},
			{"scalable", 5}, {"platform", 5}, {"network effect", 10}, {"moat", 10},
			{"commodity", -10}, {"no differentiation", -10}, {"me too", -10}, {"easily copied", -5}, {"no moat", -5},
		},
	},
	{
		Dimension: model.DimensionTraction,
		Base:      30,
		Signals: []Signal{
			{"revenue", 10}, {"growth", 10}, {"customers", 5}, {"retention", 10}, {"engagement", 5},
			{"viral", 10}, {"testimonial", 5}, {"case study", 5}, {"mrr", 10}, {"arr", 10},
			{"no revenue", -15}, {"no customers", -15}, {"churn", -10}, {"declining", -10}, {"no traction", -15},
		},
	},
	{
		Dimension: model.DimensionFinancials,
		Base:      40,
		Signals: []Signal{
			{"profitable", 20}, {"positive cash", 15}, {"efficient", 10}, {"low burn", 10}, {"runway", 5}, {"unit economics", 10},
			{"high burn", -15}, {"no runway", -20}, {"cash crunch", -20}, {"unsustainable", -15},
		},
	},
	{
		Dimension: model.DimensionMoat,
		Base:      30,
		Signals: []Signal{
			{"network effect", 20}, {"data advantage", 15}, {"patent", 15}, {"proprietary", 10},
			{"switching cost", 10}, {"brand", 5}, {"regulatory barrier", 10}, {"exclusive", 10},
			{"no moat", -20}, {"easily replicated", -15}, {"commodity", -15},
		},
	},
}

// DefaultWeights 维度权重，总和为 1
func DefaultWeights() map[model.Dimension]float64 {
	return map[model.Dimension]float64{
		model.DimensionTeam:       0.25,
		model.DimensionMarket:     0.25,
		model.DimensionProduct:    0.20,
		model.DimensionTraction:   0.20,
		model.DimensionFinancials: 0.05,
		model.DimensionMoat:       0.05,
	}
}

// Scorer 基于信号表的确定性评分
type Scorer struct {
	tables  []SignalTable
	weights map[model.Dimension]float64
}

// NewScorer 使用默认信号表和权重
func NewScorer() *Scorer {
	return &Scorer{tables: DefaultTables, weights: DefaultWeights()}
}

// Weights 返回权重副本
func (s *Scorer) Weights() map[model.Dimension]float64 {
	out := make(map[model.Dimension]float64, len(s.weights))
	for k, v := range s.weights {
		out[k] = v
	}
	return out
}

// Score 对文本逐维度匹配信号并计算加权总分
func (s *Scorer) Score(text string) model.InvestmentScore {
	lower := strings.ToLower(text)
	score := model.InvestmentScore{Weights: s.Weights()}

	var overall float64
	for _, t := range s.tables {
		v := t.Evaluate(lower)
		score.Set(t.Dimension, v)
		overall += v * s.weights[t.Dimension]
	}
	score.Overall = math.Round(overall*100) / 100
	score.Recommendation = Recommend(score.Overall)
	return score
}

// Evaluate 对已转小写的文本求维度分，结果截断到 [0,100]
func (t SignalTable) Evaluate(lower string) float64 {
	v := t.Base
	for _, sig := range t.Signals {
		if strings.Contains(lower, sig.Keyword) {
			v += sig.Delta
		}
	}
	return math.Max(0, math.Min(100, v))
}

// Recommend 总分映射为投资建议
func Recommend(overall float64) model.Recommendation {
	switch {
	case overall >= 75:
		return model.RecommendationStrongBuy
	case overall >= 60:
		return model.RecommendationBuy
	case overall >= 45:
		return model.RecommendationHold
	default:
		return model.RecommendationPass
	}
}
