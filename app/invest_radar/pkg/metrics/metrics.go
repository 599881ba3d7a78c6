package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	agentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invest_radar_agent_runs_total",
			Help: "Category analyses by outcome",
		},
		[]string{"category", "status"},
	)

	agentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invest_radar_agent_duration_seconds",
			Help:    "Duration of a single category analysis",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"category"},
	)

	chunkFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invest_radar_chunk_failures_total",
			Help: "Chunk summaries replaced by an error stub",
		},
		[]string{"category"},
	)

	inferenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invest_radar_inference_calls_total",
			Help: "Text inference calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	inferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invest_radar_inference_duration_seconds",
			Help:    "Latency of text inference calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invest_radar_requests_total",
			Help: "Analysis requests by final status",
		},
		[]string{"status"},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invest_radar_request_duration_seconds",
			Help:    "End to end analysis request duration",
			Buckets: []float64{5, 30, 60, 120, 300, 600, 900},
		},
	)
)

// ObserveAgent 记录一次分类分析
func ObserveAgent(category, status string, d time.Duration) {
	agentRunsTotal.WithLabelValues(category, status).Inc()
	agentDuration.WithLabelValues(category).Observe(d.Seconds())
}

// AddChunkFailures 记录被替换为错误占位的分块数
func AddChunkFailures(category string, n int) {
	if n > 0 {
		chunkFailuresTotal.WithLabelValues(category).Add(float64(n))
	}
}

// ObserveInference 记录一次推理调用
func ObserveInference(provider string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	inferenceTotal.WithLabelValues(provider, status).Inc()
	inferenceDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveRequest 记录一次完整请求
func ObserveRequest(status string, d time.Duration) {
	requestsTotal.WithLabelValues(status).Inc()
	requestDuration.Observe(d.Seconds())
}
