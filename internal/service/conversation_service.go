// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"papermind-go/internal/model"
	"papermind-go/internal/repository"
)

// ConversationService 定义了会话查询与管理的接口。
type ConversationService interface {
	// GetTranscript 返回指定会话的完整记录，消息按插入顺序排列。
	GetTranscript(ctx context.Context, userID uint, sessionID string) (*model.SessionTranscript, error)
	// ListSessions 返回该用户全部会话的元数据。
	ListSessions(ctx context.Context, userID uint) ([]model.SessionMeta, error)
	// DeleteSession 删除指定会话；重复删除幂等，第二次返回 false。
	DeleteSession(ctx context.Context, userID uint, sessionID string) (bool, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

func (s *conversationService) GetTranscript(ctx context.Context, userID uint, sessionID string) (*model.SessionTranscript, error) {
	return s.repo.GetTranscript(ctx, userID, sessionID)
}

func (s *conversationService) ListSessions(ctx context.Context, userID uint) ([]model.SessionMeta, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *conversationService) DeleteSession(ctx context.Context, userID uint, sessionID string) (bool, error) {
	return s.repo.DeleteSession(ctx, userID, sessionID)
}
