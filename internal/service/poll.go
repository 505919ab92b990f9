// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"time"

	"papermind-go/internal/model"
	"papermind-go/pkg/agent"
	"papermind-go/pkg/log"
)

// ErrPollTimeout 表示在预算时间内没有等到匹配的分析结果。
var ErrPollTimeout = errors.New("analysis result poll timed out")

// pollResult 按固定间隔轮询 Agent 的结果接口，直到拿到关联 ID 匹配的
// 就绪结果或预算耗尽。每个在途任务持有自己的轮询循环和关联 ID，
// 不同请求之间没有任何共享的"当前结果"状态。
//
// 单次查询的四种情况：未就绪继续等；就绪且关联 ID 匹配则返回；
// 就绪但关联 ID 不匹配则丢弃继续等（绝不把别的任务的结果交给当前等待方）；
// 瞬时错误记日志后继续，计入同一预算。
//
// 预算会被用满：剩余时间不足一个完整间隔时，按剩余时间缩短等待，
// 在预算耗尽的时刻做最后一次探测后才放弃。
func pollResult(ctx context.Context, client agent.Client, correlationID string, interval, budget time.Duration) (*model.AnalysisResult, error) {
	deadline := time.Now().Add(budget)

	for {
		res, err := client.FetchResult(ctx, correlationID)
		switch {
		case err != nil:
			log.Warnf("查询分析结果失败，稍后重试: correlationId=%s, err=%v", correlationID, err)
		case res.Status == model.ResultStatusReady:
			if res.CorrelationID == correlationID {
				return res, nil
			}
			log.Warnf("丢弃关联 ID 不匹配的结果: got=%s, want=%s", res.CorrelationID, correlationID)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrPollTimeout
		}
		wait := interval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
