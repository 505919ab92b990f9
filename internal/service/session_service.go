// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"

	"papermind-go/internal/repository"

	"github.com/google/uuid"
)

// NewSessionSentinel 是客户端请求开启新会话时使用的标记值。
// 历史版本的前端传 "-1"，一并按新会话处理。空串不是新会话标记：
// 缺失的会话标记由入口校验直接拒绝，不会被悄悄当成新会话。
const NewSessionSentinel = "new"

// Caller 标识一次请求的调用者，由身份中间件从 JWT 中解析得到。
type Caller struct {
	UserID   uint
	Username string
}

// SessionService 定义了会话解析的接口。
// 所有入口（分析、聊天）都必须通过这里决定请求归属的会话，
// 不允许各自的 handler 重新实现这段逻辑。
type SessionService interface {
	// Resolve 将客户端提交的会话标记解析为该用户名下的规范会话 ID。
	// 新会话标记会铸造一个全新的全局唯一 ID（不落库，首条消息追加时才创建）；
	// 已存在的会话原样返回；无法匹配的标记统一返回 ErrSessionNotFound，
	// 让客户端能够感知会话丢失，而不是被悄悄换成新会话。
	Resolve(ctx context.Context, userID uint, clientToken string) (string, error)
}

type sessionService struct {
	repo repository.ConversationRepository
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(repo repository.ConversationRepository) SessionService {
	return &sessionService{repo: repo}
}

// IsNewSessionToken 判断客户端标记是否表示“开启新会话”。
func IsNewSessionToken(token string) bool {
	return token == NewSessionSentinel || token == "-1"
}

// Resolve 解析会话标记。
func (s *sessionService) Resolve(ctx context.Context, userID uint, clientToken string) (string, error) {
	if IsNewSessionToken(clientToken) {
		return uuid.NewString(), nil
	}

	exists, err := s.repo.SessionExists(ctx, userID, clientToken)
	if err != nil {
		return "", fmt.Errorf("查询会话失败: %w", err)
	}
	if !exists {
		return "", repository.ErrSessionNotFound
	}
	return clientToken, nil
}
