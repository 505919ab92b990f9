package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"papermind-go/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) ConversationRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewConversationRepository(client)
}

func chatMsg(query string) model.Message {
	return model.Message{
		Query:     query,
		Answer:    model.AnswerPayload{Kind: model.AnswerKindChat, Summary: "答：" + query},
		Timestamp: time.Now().UTC(),
	}
}

// TestConversationRepository_AppendCreatesSession 验证首条消息入账时
// 会话随之创建，之前不可见。
func TestConversationRepository_AppendCreatesSession(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	exists, err := repo.SessionExists(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg("q1")))

	exists, err = repo.SessionExists(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

// TestConversationRepository_AppendPreservesCreatedAt 验证再次追加只刷新
// updatedAt，createdAt 保持首次入账的时间。
func TestConversationRepository_AppendPreservesCreatedAt(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg("q1")))
	first, err := repo.GetTranscript(ctx, 1, "sess-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg("q2")))

	second, err := repo.GetTranscript(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "createdAt 不应被覆盖")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updatedAt 应被刷新")
}

// TestConversationRepository_TranscriptOrder 验证消息按插入顺序返回。
func TestConversationRepository_TranscriptOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, q := range []string{"q1", "q2", "q3"} {
		require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg(q)))
	}

	transcript, err := repo.GetTranscript(ctx, 1, "sess-1")
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 3)
	assert.Equal(t, "q1", transcript.Messages[0].Query)
	assert.Equal(t, "q2", transcript.Messages[1].Query)
	assert.Equal(t, "q3", transcript.Messages[2].Query)
	assert.Equal(t, "答：q2", transcript.Messages[1].Answer.Summary)
}

// TestConversationRepository_GetTranscriptNotFound 验证未知会话返回
// ErrSessionNotFound。
func TestConversationRepository_GetTranscriptNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetTranscript(context.Background(), 1, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// TestConversationRepository_ConcurrentAppendsSameSession 验证同一会话的
// 并发追加全部保留：RPUSH 在事务管道里执行，没有先读后写的竞态。
func TestConversationRepository_ConcurrentAppendsSameSession(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	const n = 30
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			err := repo.AppendMessage(ctx, 1, "sess-1", chatMsg(fmt.Sprintf("q%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	transcript, err := repo.GetTranscript(ctx, 1, "sess-1")
	require.NoError(t, err)
	require.Len(t, transcript.Messages, n)

	seen := make(map[string]bool, n)
	for _, m := range transcript.Messages {
		seen[m.Query] = true
	}
	assert.Len(t, seen, n, "每条并发消息都应恰好保留一次")
}

// TestConversationRepository_ConcurrentSessionsIsolated 验证不同会话的
// 并发追加互不干扰。
func TestConversationRepository_ConcurrentSessionsIsolated(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	const perSession = 15
	var wg sync.WaitGroup
	wg.Add(2 * perSession)
	for i := 0; i < perSession; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AppendMessage(ctx, 1, "sess-a", chatMsg("to-a")))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AppendMessage(ctx, 1, "sess-b", chatMsg("to-b")))
		}()
	}
	wg.Wait()

	a, err := repo.GetTranscript(ctx, 1, "sess-a")
	require.NoError(t, err)
	require.Len(t, a.Messages, perSession)
	for _, m := range a.Messages {
		assert.Equal(t, "to-a", m.Query)
	}
	b, err := repo.GetTranscript(ctx, 1, "sess-b")
	require.NoError(t, err)
	assert.Len(t, b.Messages, perSession)
}

// TestConversationRepository_UsersIsolated 验证不同用户可以使用相同的
// 会话 ID 而互不可见。
func TestConversationRepository_UsersIsolated(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg("user1")))

	exists, err := repo.SessionExists(ctx, 2, "sess-1")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = repo.GetTranscript(ctx, 2, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// TestConversationRepository_ListSessionsSorted 验证会话列表按最近更新排序。
func TestConversationRepository_ListSessionsSorted(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-old", chatMsg("q1")))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-new", chatMsg("q2")))
	time.Sleep(5 * time.Millisecond)
	// 旧会话又有了新消息，应排到最前
	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-old", chatMsg("q3")))

	metas, err := repo.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "sess-old", metas[0].SessionID)
	assert.Equal(t, "sess-new", metas[1].SessionID)
}

// TestConversationRepository_DeleteSession 验证删除清空消息与元数据，
// 重复删除幂等返回 false，且不影响其他会话。
func TestConversationRepository_DeleteSession(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg("q1")))
	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-2", chatMsg("q2")))

	deleted, err := repo.DeleteSession(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetTranscript(ctx, 1, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	exists, err := repo.SessionExists(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.False(t, exists)

	// 幂等：第二次删除返回 false
	deleted, err = repo.DeleteSession(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	// 其他会话不受影响
	other, err := repo.GetTranscript(ctx, 1, "sess-2")
	require.NoError(t, err)
	assert.Len(t, other.Messages, 1)
}

// TestConversationRepository_DeletedSessionTokenRejected 验证删除后的
// 会话 ID 不再被认领，追加前的存在性检查会失败。
func TestConversationRepository_DeletedSessionTokenRejected(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, 1, "sess-1", chatMsg("q1")))
	_, err := repo.DeleteSession(ctx, 1, "sess-1")
	require.NoError(t, err)

	exists, err := repo.SessionExists(ctx, 1, "sess-1")
	require.NoError(t, err)
	assert.False(t, exists)
}
