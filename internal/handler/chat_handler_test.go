package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"papermind-go/internal/model"
	"papermind-go/internal/repository"
	"papermind-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatRouter(svc service.ChatService) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/chat", withTestClaims(1, "alice"), NewChatHandler(svc).Chat)
	return r
}

// TestChatHandler_Success 验证聊天请求的成功响应。
func TestChatHandler_Success(t *testing.T) {
	svc := &stubChatService{
		fn: func(ctx context.Context, caller service.Caller, sessionToken, query string) (string, model.AnswerPayload, error) {
			assert.Equal(t, "sess-1", sessionToken)
			return "sess-1", model.AnswerPayload{Kind: model.AnswerKindChat, Summary: "回答"}, nil
		},
	}

	body := bytes.NewBufferString(`{"query":"你好","sessionId":"sess-1"}`)
	w := doRequest(newChatRouter(svc), http.MethodPost, "/api/v1/chat", "application/json", body)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			SessionID string              `json:"sessionId"`
			Answer    model.AnswerPayload `json:"answer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.Data.SessionID)
	assert.Equal(t, model.AnswerKindChat, resp.Data.Answer.Kind)
}

// TestChatHandler_InvalidBody 验证非法请求体返回 400。
func TestChatHandler_InvalidBody(t *testing.T) {
	svc := &stubChatService{fn: func(ctx context.Context, caller service.Caller, sessionToken, query string) (string, model.AnswerPayload, error) {
		t.Fatal("不应调用到 service")
		return "", model.AnswerPayload{}, nil
	}}

	w := doRequest(newChatRouter(svc), http.MethodPost, "/api/v1/chat", "application/json", bytes.NewBufferString("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestChatHandler_EmptyQuery 验证空提问返回 400。
func TestChatHandler_EmptyQuery(t *testing.T) {
	svc := &stubChatService{fn: func(ctx context.Context, caller service.Caller, sessionToken, query string) (string, model.AnswerPayload, error) {
		t.Fatal("不应调用到 service")
		return "", model.AnswerPayload{}, nil
	}}

	w := doRequest(newChatRouter(svc), http.MethodPost, "/api/v1/chat", "application/json", bytes.NewBufferString(`{"query":"  "}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestChatHandler_MissingSessionToken 验证请求体缺失 sessionId 字段时
// 返回 400，而不是被当成新会话。
func TestChatHandler_MissingSessionToken(t *testing.T) {
	svc := &stubChatService{fn: func(ctx context.Context, caller service.Caller, sessionToken, query string) (string, model.AnswerPayload, error) {
		t.Fatal("不应调用到 service")
		return "", model.AnswerPayload{}, nil
	}}
	r := newChatRouter(svc)

	w := doRequest(r, http.MethodPost, "/api/v1/chat", "application/json", bytes.NewBufferString(`{"query":"你好"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/chat", "application/json", bytes.NewBufferString(`{"query":"你好","sessionId":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestChatHandler_SessionNotFound 验证未知会话标记返回 404。
func TestChatHandler_SessionNotFound(t *testing.T) {
	svc := &stubChatService{fn: func(ctx context.Context, caller service.Caller, sessionToken, query string) (string, model.AnswerPayload, error) {
		return "", model.AnswerPayload{}, repository.ErrSessionNotFound
	}}

	w := doRequest(newChatRouter(svc), http.MethodPost, "/api/v1/chat", "application/json", bytes.NewBufferString(`{"query":"你好","sessionId":"gone"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
