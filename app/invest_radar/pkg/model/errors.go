package model

import "errors"

// ErrorTag 失败结果上的错误标签
type ErrorTag string

const (
	ErrContentTooShort       ErrorTag = "content_too_short"
	ErrContentTruncated      ErrorTag = "content_truncated"
	ErrChunksTruncated       ErrorTag = "chunks_truncated"
	ErrEmptyResponse         ErrorTag = "empty_response"
	ErrResponseTooShort      ErrorTag = "response_too_short"
	ErrNoChunksProduced      ErrorTag = "no_chunks_produced"
	ErrTimeout               ErrorTag = "timeout"
	ErrCancelled             ErrorTag = "cancelled"
	ErrAgentFaultTag         ErrorTag = "agent_fault"
	ErrInvalidAggregateShape ErrorTag = "invalid_aggregate_shape"
	ErrInferenceFailed       ErrorTag = "inference_failed"
)

var (
	// ErrAgentFault 分析过程中出现未预期的故障（panic 等）
	ErrAgentFault = errors.New("agent fault")
	// ErrAggregateShape 汇总结果不满足结构约束
	ErrAggregateShape = errors.New("invalid aggregate shape")
	// ErrMissingConfig 缺少必要配置
	ErrMissingConfig = errors.New("missing mandatory config")
)

// ZeroScore 失败报告使用的零分评分
func ZeroScore(weights map[Dimension]float64) InvestmentScore {
	return InvestmentScore{
		Weights:        weights,
		Recommendation: RecommendationPass,
	}
}
