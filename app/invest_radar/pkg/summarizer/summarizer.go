package summarizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/agent"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/config"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/llm"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/logger"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/metrics"
	"github.com/iWorld-y/invest_radar/app/invest_radar/pkg/model"
)

// Analyzer 单个分类的分析入口
// 返回的 error 仅表示未预期的故障，可预期的失败体现在 AgentResult.Error 中
type Analyzer interface {
	Analyze(ctx context.Context, content string) (model.AgentResult, error)
}

type stage int

const (
	stageInit stage = iota
	stageChunking
	stageMapping
	stageReducing
	stageDone
	stageFailed
)

func (s stage) String() string {
	switch s {
	case stageInit:
		return "init"
	case stageChunking:
		return "chunking"
	case stageMapping:
		return "mapping"
	case stageReducing:
		return "reducing"
	case stageDone:
		return "done"
	case stageFailed:
		return "failed"
	}
	return "unknown"
}

// workflowState 单次分析独占的状态
type workflowState struct {
	stage     stage
	content   string
	chunks    []string
	summaries []string
	final     string
	meta      model.RunMetadata
	errTag    model.ErrorTag
	errMsg    string
}

func (st *workflowState) fail(tag model.ErrorTag, msg string) {
	st.stage = stageFailed
	st.errTag = tag
	st.errMsg = msg
}

// Summarizer 分块 map-reduce 摘要状态机
type Summarizer struct {
	profile agent.Profile
	gen     llm.Generator
	limits  config.Guardrails
}

// New 创建摘要器，limits 按值持有
func New(profile agent.Profile, gen llm.Generator, limits config.Guardrails) *Summarizer {
	return &Summarizer{profile: profile, gen: gen, limits: limits}
}

var _ Analyzer = (*Summarizer)(nil)

type outcome struct {
	result model.AgentResult
	err    error
}

// Analyze 执行一次完整分析，超时后在 AgentTimeout 附近返回 timeout 结果
func (s *Summarizer) Analyze(ctx context.Context, content string) (model.AgentResult, error) {
	start := time.Now()
	category := s.profile.Category()
	log := logger.Log.WithField("category", category)

	ctx, cancel := context.WithTimeout(ctx, s.limits.AgentTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %s: %v", model.ErrAgentFault, category, r)}
			}
		}()
		st := &workflowState{stage: stageInit, content: content}
		if err := s.run(ctx, st); err != nil {
			done <- outcome{err: err}
			return
		}
		done <- outcome{result: s.result(st)}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		st := &workflowState{}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warnf("分析超时 (%v)", s.limits.AgentTimeout)
			st.fail(model.ErrTimeout, fmt.Sprintf("analysis timed out after %v", s.limits.AgentTimeout))
		} else {
			log.Warnf("分析被取消: %v", ctx.Err())
			st.fail(model.ErrCancelled, fmt.Sprintf("analysis cancelled: %v", ctx.Err()))
		}
		out = outcome{result: s.result(st)}
	}

	elapsed := time.Since(start)
	out.result.Metadata.DurationMs = elapsed.Milliseconds()

	status := "success"
	switch {
	case out.err != nil:
		status = "fault"
	case out.result.Error != "":
		status = string(out.result.Error)
	}
	metrics.ObserveAgent(string(category), status, elapsed)
	metrics.AddChunkFailures(string(category), out.result.Metadata.FailedChunks)

	if out.err != nil {
		log.Errorf("分析出现故障: %v", out.err)
	} else {
		log.Infof("分析结束: status=%s chunks=%d confidence=%.2f 耗时 %v",
			status, out.result.Metadata.NumChunks, out.result.Confidence, elapsed)
	}
	return out.result, out.err
}

func (s *Summarizer) run(ctx context.Context, st *workflowState) error {
	log := logger.Log.WithField("category", s.profile.Category())

	for st.stage != stageDone && st.stage != stageFailed {
		log.Debugf("进入阶段 %s", st.stage)
		switch st.stage {
		case stageInit:
			s.init(st)
		case stageChunking:
			s.chunk(st)
		case stageMapping:
			if err := s.mapChunks(ctx, st); err != nil {
				return err
			}
		case stageReducing:
			s.reduce(ctx, st)
		}
	}
	return nil
}

func (s *Summarizer) init(st *workflowState) {
	n := utf8.RuneCountInString(st.content)
	if n < s.limits.MinContentLength {
		st.fail(model.ErrContentTooShort,
			fmt.Sprintf("content too short (%d characters, minimum %d)", n, s.limits.MinContentLength))
		return
	}
	if n > s.limits.MaxContentLength {
		st.content = string([]rune(st.content)[:s.limits.MaxContentLength])
		st.meta.ContentTruncated = true
		logger.Log.Warnf("[%s] 内容超长 (%d)，截断至 %d 字符", s.profile.Category(), n, s.limits.MaxContentLength)
	}
	st.stage = stageChunking
}

func (s *Summarizer) chunk(st *workflowState) {
	chunks := Split(st.content, s.limits.ChunkSize, s.limits.ChunkOverlap)
	if len(chunks) == 0 {
		st.fail(model.ErrNoChunksProduced, "no chunks produced from content")
		return
	}
	if len(chunks) > s.limits.MaxChunks {
		logger.Log.Warnf("[%s] 分块数 %d 超过上限，仅保留前 %d 块", s.profile.Category(), len(chunks), s.limits.MaxChunks)
		chunks = chunks[:s.limits.MaxChunks]
		st.meta.ChunksTruncated = true
	}

	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c)
	}
	st.chunks = chunks
	st.meta.NumChunks = len(chunks)
	st.meta.AvgChunkLength = float64(total) / float64(len(chunks))
	st.stage = stageMapping
}

func (s *Summarizer) mapChunks(ctx context.Context, st *workflowState) error {
	summaries := make([]string, len(st.chunks))
	failed := make([]bool, len(st.chunks))

	var g errgroup.Group
	if s.limits.MaxChunkWorkers > 0 {
		g.SetLimit(s.limits.MaxChunkWorkers)
	}
	for i, chunk := range st.chunks {
		g.Go(func() (fault error) {
			defer func() {
				if r := recover(); r != nil {
					fault = fmt.Errorf("%w: %s chunk %d: %v", model.ErrAgentFault, s.profile.Category(), i+1, r)
				}
			}()
			resp, err := s.gen.Generate(ctx, s.profile.SystemPrompt(), s.profile.ChunkPrompt(chunk))
			switch {
			case err != nil:
				summaries[i] = fmt.Sprintf("Error analyzing chunk %d: %v", i+1, err)
				failed[i] = true
			case utf8.RuneCountInString(strings.TrimSpace(resp)) < s.limits.MinChunkResponseLength:
				summaries[i] = fmt.Sprintf("Error analyzing chunk %d: response too short", i+1)
				failed[i] = true
			default:
				summaries[i] = resp
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range failed {
		if f {
			st.meta.FailedChunks++
		}
	}
	if st.meta.FailedChunks > 0 {
		logger.Log.Warnf("[%s] %d/%d 个分块分析失败，已替换为错误占位", s.profile.Category(), st.meta.FailedChunks, len(st.chunks))
	}
	st.summaries = summaries
	st.meta.ChunksProcessed = len(summaries)
	st.stage = stageReducing
	return nil
}

func (s *Summarizer) reduce(ctx context.Context, st *workflowState) {
	joined := strings.Join(st.summaries, "\n\n")
	resp, err := s.gen.Generate(ctx, s.profile.SystemPrompt(), s.profile.ReducePrompt(joined))
	if err != nil {
		st.fail(model.ErrInferenceFailed, fmt.Sprintf("reduce failed: %v", err))
		return
	}

	resp = strings.TrimSpace(resp)
	n := utf8.RuneCountInString(resp)
	switch {
	case n == 0:
		st.fail(model.ErrEmptyResponse, "empty response from reduce step")
		return
	case n < s.limits.MinResponseLength:
		st.fail(model.ErrResponseTooShort,
			fmt.Sprintf("response too short (%d characters, minimum %d)", n, s.limits.MinResponseLength))
		return
	}

	st.final = resp
	st.meta.FinalSummaryLength = n
	st.stage = stageDone
}

func (s *Summarizer) result(st *workflowState) model.AgentResult {
	res := model.AgentResult{
		Category: s.profile.Category(),
		Metadata: st.meta,
	}
	if st.stage == stageFailed {
		res.Narrative = "Error during analysis: " + st.errMsg
		res.Error = st.errTag
		return res
	}
	res.Narrative = st.final
	res.Confidence = Confidence(st.meta.FinalSummaryLength, st.meta.NumChunks)
	return res
}

// Confidence 由摘要长度与分块数估算的置信度，范围 [0.1, 0.95]
func Confidence(summaryLength, chunks int) float64 {
	lengthFactor := math.Min(1, float64(summaryLength)/1000)
	chunkFactor := math.Min(1, float64(chunks)/5)
	c := 0.6*lengthFactor + 0.4*chunkFactor
	return math.Max(0.1, math.Min(0.95, c))
}
