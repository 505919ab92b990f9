// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"papermind-go/internal/service"
	"papermind-go/pkg/log"
	"papermind-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// SearchHandler 处理会话历史检索请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 处理 GET /api/v1/sessions/search?q=...&topK=...。
func (h *SearchHandler) Search(c *gin.Context) {
	claims := c.MustGet("claims").(*token.CustomClaims)

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "请提供检索关键词", "data": nil})
		return
	}
	topK, _ := strconv.Atoi(c.DefaultQuery("topK", "10"))

	hits, err := h.searchService.SearchMessages(c.Request.Context(), claims.UserID, query, topK)
	if err != nil {
		log.Errorf("历史记录检索失败: user=%d, err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "检索失败", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": hits})
}
