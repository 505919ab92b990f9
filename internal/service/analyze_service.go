// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"papermind-go/internal/config"
	"papermind-go/internal/model"
	"papermind-go/internal/repository"
	"papermind-go/pkg/agent"
	"papermind-go/pkg/kafka"
	"papermind-go/pkg/log"
	"papermind-go/pkg/tasks"

	"github.com/google/uuid"
)

// 各类降级回答的提示文案，作为系统消息入账，对话不因此中断。
const (
	degradedSubmitNote  = "分析服务暂时不可用，本次提问未能完成文档分析，请稍后重试。"
	degradedTimeoutNote = "文档分析超时，本次提问未能在限定时间内得到结果，请稍后重试。"
)

// AnalyzeService 定义了文档分析编排的接口。
// 它串起一次分析请求的完整链路：会话解析 -> 临时文档托管 -> 任务提交 ->
// 结果轮询 -> 入账 -> 文档释放。
type AnalyzeService interface {
	// Analyze 处理一次文档分析请求，返回归属的会话 ID 与回答载荷。
	// 会话标记无法匹配时返回 repository.ErrSessionNotFound；
	// Agent 侧的失败（提交失败、超时）不作为错误返回，而是降级为
	// 系统回答并照常入账；入账失败才作为错误抛给调用方。
	Analyze(ctx context.Context, caller Caller, sessionToken, query string, doc *multipart.FileHeader) (string, model.AnswerPayload, error)
}

type analyzeService struct {
	sessions     SessionService
	artifacts    ArtifactService
	agentClient  agent.Client
	ledger       repository.ConversationRepository
	pollInterval time.Duration
	pollBudget   time.Duration

	// 注入点，测试时替换；默认发往 Kafka
	produceIndexTask func(tasks.MessageIndexTask) error
}

// NewAnalyzeService 创建一个新的 AnalyzeService 实例。
func NewAnalyzeService(
	sessions SessionService,
	artifacts ArtifactService,
	agentClient agent.Client,
	ledger repository.ConversationRepository,
	agentCfg config.AgentConfig,
) AnalyzeService {
	return &analyzeService{
		sessions:         sessions,
		artifacts:        artifacts,
		agentClient:      agentClient,
		ledger:           ledger,
		pollInterval:     agentCfg.PollInterval(),
		pollBudget:       agentCfg.PollBudget(),
		produceIndexTask: kafka.ProduceIndexTask,
	}
}

// Analyze 编排一次完整的文档分析。
func (s *analyzeService) Analyze(ctx context.Context, caller Caller, sessionToken, query string, doc *multipart.FileHeader) (string, model.AnswerPayload, error) {
	sessionID, err := s.sessions.Resolve(ctx, caller.UserID, sessionToken)
	if err != nil {
		return "", model.AnswerPayload{}, err
	}

	var answer model.AnswerPayload
	err = s.artifacts.WithDocument(ctx, caller.UserID, doc, func(artifact *DocumentArtifact) error {
		answer = s.runJob(caller, sessionID, query, artifact.ObjectName)

		// 入账在文档释放之前完成；这里用后台上下文，
		// 客户端断开连接时已经拿到的结果仍然要写进会话
		msg := model.Message{Query: query, Answer: answer, Timestamp: time.Now().UTC()}
		if err := s.ledger.AppendMessage(context.Background(), caller.UserID, sessionID, msg); err != nil {
			return fmt.Errorf("会话入账失败: %w", err)
		}
		s.publishIndex(caller.UserID, sessionID, msg)
		return nil
	})
	if err != nil {
		return "", model.AnswerPayload{}, err
	}
	return sessionID, answer, nil
}

// runJob 提交任务并等待结果。Agent 侧的任何失败都降级成系统回答，
// 因为产品形态是对话式的：用户总要得到一条响应。
func (s *analyzeService) runJob(caller Caller, sessionID, query, documentRef string) model.AnswerPayload {
	correlationID := uuid.NewString()
	job := model.AnalysisJob{
		CorrelationID: correlationID,
		UserID:        caller.UserID,
		SessionID:     sessionID,
		Query:         query,
		DocumentRef:   documentRef,
		Username:      caller.Username,
	}

	// 任务提交与轮询用后台上下文：客户端断开不终止在途任务，
	// 拿到的结果照常入账（参见 DESIGN.md 的取消策略）
	jobCtx := context.Background()
	if err := s.agentClient.Submit(jobCtx, job); err != nil {
		log.Errorf("提交分析任务失败: correlationId=%s, sessionId=%s, err=%v", correlationID, sessionID, err)
		return model.AnswerPayload{Kind: model.AnswerKindDegraded, DegradedNote: degradedSubmitNote}
	}
	log.Infof("分析任务已提交: correlationId=%s, sessionId=%s", correlationID, sessionID)

	res, err := pollResult(jobCtx, s.agentClient, correlationID, s.pollInterval, s.pollBudget)
	if err != nil {
		log.Errorf("等待分析结果失败: correlationId=%s, err=%v", correlationID, err)
		return model.AnswerPayload{Kind: model.AnswerKindDegraded, DegradedNote: degradedTimeoutNote}
	}
	if res.Error != "" {
		log.Warnf("分析任务返回错误: correlationId=%s, error=%s", correlationID, res.Error)
		return model.AnswerPayload{Kind: model.AnswerKindDegraded, DegradedNote: res.Error}
	}

	return model.AnswerPayload{
		Kind:          model.AnswerKindAnalysis,
		Summary:       res.Summary,
		Steps:         res.Steps,
		Visualization: res.Visualization,
	}
}

// publishIndex 把入账的消息投递到索引管道。投递失败只记日志，
// 检索索引可以容忍少量缺口，不影响本次请求的结果。
func (s *analyzeService) publishIndex(userID uint, sessionID string, msg model.Message) {
	task := tasks.MessageIndexTask{
		UserID:    userID,
		SessionID: sessionID,
		Query:     msg.Query,
		Answer:    answerText(msg.Answer),
		Kind:      msg.Answer.Kind,
		Timestamp: msg.Timestamp,
	}
	if err := s.produceIndexTask(task); err != nil {
		log.Errorf("投递索引任务失败: sessionId=%s, err=%v", sessionID, err)
	}
}

// answerText 取回答中适合做全文检索的文本。
func answerText(a model.AnswerPayload) string {
	if a.Kind == model.AnswerKindDegraded {
		return a.DegradedNote
	}
	return a.Summary
}
