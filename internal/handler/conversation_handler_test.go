package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"papermind-go/internal/model"
	"papermind-go/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationRouter(svc *stubConversationService) *gin.Engine {
	r := gin.New()
	h := NewConversationHandler(svc)
	sessions := r.Group("/api/v1/sessions", withTestClaims(1, "alice"))
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetTranscript)
	sessions.DELETE("/:id", h.DeleteSession)
	return r
}

// TestConversationHandler_ListSessions 验证会话列表的返回。
func TestConversationHandler_ListSessions(t *testing.T) {
	svc := &stubConversationService{
		listFn: func(ctx context.Context, userID uint) ([]model.SessionMeta, error) {
			assert.Equal(t, uint(1), userID)
			return []model.SessionMeta{{SessionID: "sess-1"}, {SessionID: "sess-2"}}, nil
		},
	}

	w := doRequest(newConversationRouter(svc), http.MethodGet, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.SessionMeta `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}

// TestConversationHandler_GetTranscript 验证会话记录读取与 404 处理。
func TestConversationHandler_GetTranscript(t *testing.T) {
	svc := &stubConversationService{
		getFn: func(ctx context.Context, userID uint, sessionID string) (*model.SessionTranscript, error) {
			if sessionID != "sess-1" {
				return nil, repository.ErrSessionNotFound
			}
			return &model.SessionTranscript{
				SessionMeta: model.SessionMeta{SessionID: "sess-1"},
				Messages:    []model.Message{{Query: "q1"}},
			}, nil
		},
	}
	r := newConversationRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/v1/sessions/sess-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data model.SessionTranscript `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Messages, 1)

	w = doRequest(r, http.MethodGet, "/api/v1/sessions/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestConversationHandler_DeleteSession 验证删除成功与重复删除的 404。
func TestConversationHandler_DeleteSession(t *testing.T) {
	deleted := false
	svc := &stubConversationService{
		deleteFn: func(ctx context.Context, userID uint, sessionID string) (bool, error) {
			if deleted {
				return false, nil
			}
			deleted = true
			return true, nil
		},
	}
	r := newConversationRouter(svc)

	w := doRequest(r, http.MethodDelete, "/api/v1/sessions/sess-1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodDelete, "/api/v1/sessions/sess-1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
