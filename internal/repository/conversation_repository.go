// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"papermind-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 表示指定用户名下不存在该会话。
var ErrSessionNotFound = errors.New("session not found")

// ConversationRepository 定义了会话账本的操作接口。
// 账本以 (用户, 会话) 为键，消息只追加、不修改、不重排。
type ConversationRepository interface {
	// AppendMessage 以原子方式向会话追加一条消息：会话不存在时随首条
	// 消息一并创建，存在时只追加并刷新 updatedAt，不会出现先读后写的竞态。
	AppendMessage(ctx context.Context, userID uint, sessionID string, msg model.Message) error
	// SessionExists 检查会话是否属于该用户。
	SessionExists(ctx context.Context, userID uint, sessionID string) (bool, error)
	// GetTranscript 返回会话的完整记录，消息按插入顺序排列。
	// 会话不存在时返回 ErrSessionNotFound。
	GetTranscript(ctx context.Context, userID uint, sessionID string) (*model.SessionTranscript, error)
	// ListSessions 返回该用户全部会话的元数据，按最近更新排序。
	ListSessions(ctx context.Context, userID uint) ([]model.SessionMeta, error)
	// DeleteSession 删除会话及其全部消息。重复删除是幂等的：
	// 第一次返回 true，之后返回 false 且不改变任何状态。
	DeleteSession(ctx context.Context, userID uint, sessionID string) (bool, error)
}

type redisConversationRepository struct {
	redisClient *redis.Client
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(redisClient *redis.Client) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient}
}

// 每个用户两个元数据 hash 加每会话一个消息 list。
// 消息用 RPUSH 追加，由 Redis 保证不丢写；createdAt 用 HSETNX 写入，
// 重复追加不会覆盖首次创建时间。
func createdKey(userID uint) string {
	return fmt.Sprintf("chat:%d:sessions:created", userID)
}

func updatedKey(userID uint) string {
	return fmt.Sprintf("chat:%d:sessions:updated", userID)
}

func messagesKey(userID uint, sessionID string) string {
	return fmt.Sprintf("chat:%d:session:%s:messages", userID, sessionID)
}

// AppendMessage 向会话追加一条消息。
func (r *redisConversationRepository) AppendMessage(ctx context.Context, userID uint, sessionID string, msg model.Message) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	pipe := r.redisClient.TxPipeline()
	pipe.RPush(ctx, messagesKey(userID, sessionID), msgBytes)
	pipe.HSetNX(ctx, createdKey(userID), sessionID, now)
	pipe.HSet(ctx, updatedKey(userID), sessionID, now)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// SessionExists 检查会话是否存在于该用户的账本中。
func (r *redisConversationRepository) SessionExists(ctx context.Context, userID uint, sessionID string) (bool, error) {
	exists, err := r.redisClient.HExists(ctx, createdKey(userID), sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return exists, nil
}

// GetTranscript 获取会话的完整记录。
func (r *redisConversationRepository) GetTranscript(ctx context.Context, userID uint, sessionID string) (*model.SessionTranscript, error) {
	createdStr, err := r.redisClient.HGet(ctx, createdKey(userID), sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session metadata: %w", err)
	}
	updatedStr, err := r.redisClient.HGet(ctx, updatedKey(userID), sessionID).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get session metadata: %w", err)
	}

	rawMsgs, err := r.redisClient.LRange(ctx, messagesKey(userID, sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session messages: %w", err)
	}

	transcript := &model.SessionTranscript{
		SessionMeta: model.SessionMeta{
			SessionID: sessionID,
			CreatedAt: parseTime(createdStr),
			UpdatedAt: parseTime(updatedStr),
		},
		Messages: make([]model.Message, 0, len(rawMsgs)),
	}
	for _, raw := range rawMsgs {
		var msg model.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		transcript.Messages = append(transcript.Messages, msg)
	}
	return transcript, nil
}

// ListSessions 返回该用户全部会话的元数据。
func (r *redisConversationRepository) ListSessions(ctx context.Context, userID uint) ([]model.SessionMeta, error) {
	created, err := r.redisClient.HGetAll(ctx, createdKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	updated, err := r.redisClient.HGetAll(ctx, updatedKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	metas := make([]model.SessionMeta, 0, len(created))
	for sessionID, createdStr := range created {
		metas = append(metas, model.SessionMeta{
			SessionID: sessionID,
			CreatedAt: parseTime(createdStr),
			UpdatedAt: parseTime(updated[sessionID]),
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// DeleteSession 删除会话，返回是否真的删除了内容。
func (r *redisConversationRepository) DeleteSession(ctx context.Context, userID uint, sessionID string) (bool, error) {
	pipe := r.redisClient.TxPipeline()
	delCreated := pipe.HDel(ctx, createdKey(userID), sessionID)
	pipe.HDel(ctx, updatedKey(userID), sessionID)
	pipe.Del(ctx, messagesKey(userID, sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return delCreated.Val() > 0, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
