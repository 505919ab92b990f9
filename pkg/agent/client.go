// Package agent 提供了与外部分析 Agent 服务交互的客户端。
// Agent 对本服务而言是一个不透明的异步能力：提交任务，然后按关联 ID 取结果。
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"papermind-go/internal/config"
	"papermind-go/internal/model"
)

// Client 定义了分析 Agent 客户端的接口。
type Client interface {
	// Submit 将任务投递到 Agent 的接收接口。返回错误即代表本次任务
	// 提交失败，不会再进入轮询阶段。
	Submit(ctx context.Context, job model.AnalysisJob) error
	// FetchResult 按关联 ID 查询一次结果。结果尚未就绪时返回
	// Status 为 not_ready 的结果，而不是错误。
	FetchResult(ctx context.Context, correlationID string) (*model.AnalysisResult, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 Agent 客户端实例。
func NewClient(cfg config.AgentConfig) Client {
	return &httpClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.SubmitTimeout()},
	}
}

// Submit 将任务以 JSON 形式 POST 到 Agent 的接收接口。
func (c *httpClient) Submit(ctx context.Context, job model.AnalysisJob) error {
	reqBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("序列化分析任务失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/analysis", bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("创建提交请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("调用 Agent 接收接口失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Agent 拒绝任务 [%d]: %s", resp.StatusCode, string(body))
	}
	return nil
}

// FetchResult 查询一次指定关联 ID 的分析结果。
// 404 表示结果尚未就绪，按 not_ready 处理，由调用方继续轮询。
func (c *httpClient) FetchResult(ctx context.Context, correlationID string) (*model.AnalysisResult, error) {
	url := fmt.Sprintf("%s/api/v1/analysis/%s/result", c.baseURL, correlationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建结果查询请求失败: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用 Agent 结果接口失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &model.AnalysisResult{CorrelationID: correlationID, Status: model.ResultStatusNotReady}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Agent 结果接口返回错误 [%d]: %s", resp.StatusCode, string(body))
	}

	var result model.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析分析结果失败: %w", err)
	}
	return &result, nil
}
