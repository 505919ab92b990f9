// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strings"

	"papermind-go/internal/repository"
	"papermind-go/internal/service"
	"papermind-go/pkg/log"
	"papermind-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ChatHandler 处理纯文本聊天请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SessionID 用指针区分"字段缺失"和"显式传值"：缺失是校验错误，
// 不会被当成开启新会话。
type chatRequest struct {
	Query     string  `json:"query"`
	SessionID *string `json:"sessionId"`
}

// Chat 处理 POST /api/v1/chat。
func (h *ChatHandler) Chat(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求体", "data": nil})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "请提供提问内容", "data": nil})
		return
	}
	if req.SessionID == nil || strings.TrimSpace(*req.SessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "请提供会话标记，新会话请传 \"new\"", "data": nil})
		return
	}

	caller := service.Caller{UserID: claims.UserID, Username: claims.Username}
	sessionID, answer, err := h.chatService.Chat(c.Request.Context(), caller, *req.SessionID, strings.TrimSpace(req.Query))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "会话不存在", "data": nil})
			return
		}
		log.Errorf("处理聊天请求失败: user=%d, err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "聊天请求处理失败", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"sessionId": sessionID,
			"answer":    answer,
		},
	})
}
