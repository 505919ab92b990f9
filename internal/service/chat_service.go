// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"time"

	"papermind-go/internal/model"
	"papermind-go/internal/repository"
	"papermind-go/pkg/kafka"
	"papermind-go/pkg/log"
	"papermind-go/pkg/tasks"
)

// ChatService 定义了纯文本聊天的接口。
// 这条路径不涉及文档和分析 Agent：会话解析后在本地生成回答并直接入账。
type ChatService interface {
	Chat(ctx context.Context, caller Caller, sessionToken, query string) (string, model.AnswerPayload, error)
}

type chatService struct {
	sessions SessionService
	ledger   repository.ConversationRepository

	produceIndexTask func(tasks.MessageIndexTask) error
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(sessions SessionService, ledger repository.ConversationRepository) ChatService {
	return &chatService{
		sessions:         sessions,
		ledger:           ledger,
		produceIndexTask: kafka.ProduceIndexTask,
	}
}

// Chat 处理一次纯文本提问。
func (s *chatService) Chat(ctx context.Context, caller Caller, sessionToken, query string) (string, model.AnswerPayload, error) {
	sessionID, err := s.sessions.Resolve(ctx, caller.UserID, sessionToken)
	if err != nil {
		return "", model.AnswerPayload{}, err
	}

	answer := model.AnswerPayload{
		Kind:    model.AnswerKindChat,
		Summary: fmt.Sprintf("已收到你的提问：%s。如需对文档做深入分析，请在提问时附带文档。", query),
	}

	msg := model.Message{Query: query, Answer: answer, Timestamp: time.Now().UTC()}
	if err := s.ledger.AppendMessage(ctx, caller.UserID, sessionID, msg); err != nil {
		return "", model.AnswerPayload{}, fmt.Errorf("会话入账失败: %w", err)
	}

	task := tasks.MessageIndexTask{
		UserID:    caller.UserID,
		SessionID: sessionID,
		Query:     msg.Query,
		Answer:    answer.Summary,
		Kind:      answer.Kind,
		Timestamp: msg.Timestamp,
	}
	if err := s.produceIndexTask(task); err != nil {
		log.Errorf("投递索引任务失败: sessionId=%s, err=%v", sessionID, err)
	}

	return sessionID, answer, nil
}
