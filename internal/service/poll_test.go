package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"papermind-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPollResult_ReadyImmediately 验证首次查询就绪时立即返回，不等待间隔。
func TestPollResult_ReadyImmediately(t *testing.T) {
	client := &stubAgentClient{
		fetchFn: func(ctx context.Context, correlationID string) (*model.AnalysisResult, error) {
			return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusReady, Summary: "done"}, nil
		},
	}

	start := time.Now()
	res, err := pollResult(context.Background(), client, "cid-1", time.Second, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "done", res.Summary)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

// TestPollResult_NotReadyThenReady 验证未就绪时按间隔重试，直到拿到结果。
func TestPollResult_NotReadyThenReady(t *testing.T) {
	calls := 0
	client := &stubAgentClient{
		fetchFn: func(ctx context.Context, correlationID string) (*model.AnalysisResult, error) {
			calls++
			if calls < 3 {
				return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusNotReady}, nil
			}
			return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusReady, Summary: "done"}, nil
		},
	}

	res, err := pollResult(context.Background(), client, "cid-1", time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "done", res.Summary)
	assert.Equal(t, 3, calls)
}

// TestPollResult_MismatchedCorrelationIDDiscarded 验证关联 ID 不匹配的
// 就绪结果被丢弃：等待方宁可超时，也绝不拿到别的任务的结果。
func TestPollResult_MismatchedCorrelationIDDiscarded(t *testing.T) {
	client := &stubAgentClient{
		fetchFn: func(ctx context.Context, correlationID string) (*model.AnalysisResult, error) {
			return &model.AnalysisResult{CorrelationID: "someone-else", Status: model.ResultStatusReady, Summary: "stolen"}, nil
		},
	}

	res, err := pollResult(context.Background(), client, "cid-1", time.Millisecond, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Nil(t, res)
}

// TestPollResult_TransientErrorThenReady 验证单次查询失败只消耗预算，不终止轮询。
func TestPollResult_TransientErrorThenReady(t *testing.T) {
	calls := 0
	client := &stubAgentClient{
		fetchFn: func(ctx context.Context, correlationID string) (*model.AnalysisResult, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection refused")
			}
			return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusReady, Summary: "done"}, nil
		},
	}

	res, err := pollResult(context.Background(), client, "cid-1", time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "done", res.Summary)
}

// TestPollResult_BudgetExhausted 验证预算耗尽后返回 ErrPollTimeout。
func TestPollResult_BudgetExhausted(t *testing.T) {
	client := &stubAgentClient{}

	start := time.Now()
	_, err := pollResult(context.Background(), client, "cid-1", 5*time.Millisecond, 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

// TestPollResult_FullBudgetConsumed 验证预算不是间隔的整数倍时也会被用满：
// 剩余时间不足一个间隔时缩短等待，并在预算耗尽的时刻做最后一次探测。
func TestPollResult_FullBudgetConsumed(t *testing.T) {
	// 间隔 50ms、预算 75ms：探测发生在 0ms、50ms、75ms。
	// 第三次探测才就绪——如果最后那 25ms 被放弃，这里会错误地超时。
	calls := 0
	client := &stubAgentClient{
		fetchFn: func(ctx context.Context, correlationID string) (*model.AnalysisResult, error) {
			calls++
			if calls < 3 {
				return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusNotReady}, nil
			}
			return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusReady, Summary: "done"}, nil
		},
	}

	res, err := pollResult(context.Background(), client, "cid-1", 50*time.Millisecond, 75*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "done", res.Summary)
	assert.Equal(t, 3, calls)
}

// TestPollResult_ContextCancelled 验证上下文取消会立刻终止轮询。
func TestPollResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pollResult(ctx, &stubAgentClient{}, "cid-1", 10*time.Millisecond, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
