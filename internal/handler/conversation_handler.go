// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"papermind-go/internal/repository"
	"papermind-go/internal/service"
	"papermind-go/pkg/log"
	"papermind-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与会话相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// ListSessions 处理 GET /api/v1/sessions，返回调用者全部会话的元数据。
func (h *ConversationHandler) ListSessions(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)

	metas, err := h.service.ListSessions(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Errorf("获取会话列表失败: user=%d, err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取会话列表失败", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": metas})
}

// GetTranscript 处理 GET /api/v1/sessions/:id，返回会话的完整记录。
func (h *ConversationHandler) GetTranscript(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)
	sessionID := c.Param("id")

	transcript, err := h.service.GetTranscript(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "会话不存在", "data": nil})
			return
		}
		log.Errorf("获取会话记录失败: user=%d, session=%s, err=%v", claims.UserID, sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取会话记录失败", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": transcript})
}

// DeleteSession 处理 DELETE /api/v1/sessions/:id。
// 删除是幂等的：会话已不存在时返回 404，但不会改变任何状态。
func (h *ConversationHandler) DeleteSession(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)
	sessionID := c.Param("id")

	deleted, err := h.service.DeleteSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		log.Errorf("删除会话失败: user=%d, session=%s, err=%v", claims.UserID, sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "删除会话失败", "data": nil})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "会话不存在", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}
