package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeChatModel struct {
	gotMessages []*schema.Message
	reply       string
	err         error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.gotMessages = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoGenerator(t *testing.T) {
	cm := &fakeChatModel{reply: "analysis"}
	gen := NewEinoGenerator(cm)

	out, err := gen.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "analysis", out)
	require.Len(t, cm.gotMessages, 2)
	assert.Equal(t, schema.System, cm.gotMessages[0].Role)
	assert.Equal(t, "sys", cm.gotMessages[0].Content)
	assert.Equal(t, schema.User, cm.gotMessages[1].Role)
	assert.Equal(t, "user", cm.gotMessages[1].Content)
}

func TestWithRateLimit_SingleAttemptByDefault(t *testing.T) {
	calls := 0
	inner := GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		calls++
		return "", errors.New("status 429: too many requests")
	})

	gen := WithRateLimit(inner, rate.NewLimiter(rate.Inf, 1), 0, "test")
	_, err := gen.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRateLimit_RetriesOn429(t *testing.T) {
	calls := 0
	inner := GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("429 Too Many Requests")
		}
		return "ok", nil
	})

	gen := WithRateLimit(inner, rate.NewLimiter(rate.Inf, 1), 3, "test").(*rateLimited)
	gen.baseDelay = time.Millisecond

	out, err := gen.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, calls)
}

func TestWithRateLimit_NoRetryOnOtherErrors(t *testing.T) {
	calls := 0
	inner := GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		calls++
		return "", errors.New("invalid api key")
	})

	gen := WithRateLimit(inner, rate.NewLimiter(rate.Inf, 1), 3, "test")
	_, err := gen.Generate(context.Background(), "s", "u")
	assert.EqualError(t, err, "invalid api key")
	assert.Equal(t, 1, calls)
}

func TestWithRateLimit_ContextCanceled(t *testing.T) {
	inner := GeneratorFunc(func(ctx context.Context, s, u string) (string, error) {
		return "unreachable", nil
	})
	gen := WithRateLimit(inner, rate.NewLimiter(1, 1), 0, "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gen.Generate(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}```"))
	assert.Equal(t, "plain", StripFences("  plain "))
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(120, 5)
	assert.Equal(t, rate.Limit(2), l.Limit())
	assert.Equal(t, 5, l.Burst())
}
